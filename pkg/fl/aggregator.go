package fl

import "math"

type Aggregator interface {
	Aggregate(updates []Update) (Model, error)
}

type FedAvgAggregator struct{}

func NewFedAvgAggregator() Aggregator {
	return &FedAvgAggregator{}
}

// Aggregate averages the update models weighted by their scalars. All models
// must share the first update's length and data type. Integer data types are
// rounded to the nearest value.
func (f *FedAvgAggregator) Aggregate(updates []Update) (Model, error) {
	if len(updates) == 0 {
		return Model{}, ErrNoUpdates
	}

	first := updates[0].Model
	aggregated := make([]float64, first.Len())
	var totalScalar float64

	for _, update := range updates {
		if update.Model.Len() != first.Len() {
			return Model{}, ErrModelLength
		}
		if update.Model.DataType != first.DataType {
			return Model{}, ErrDataType
		}
		if update.Scalar <= 0 || math.IsNaN(update.Scalar) || math.IsInf(update.Scalar, 0) {
			return Model{}, ErrInvalidScalar
		}

		totalScalar += update.Scalar
		for i, v := range update.Model.Values {
			aggregated[i] += v * update.Scalar
		}
	}

	for i := range aggregated {
		aggregated[i] /= totalScalar
		if first.DataType == I32 || first.DataType == I64 {
			aggregated[i] = math.Round(aggregated[i])
		}
	}

	model := Model{DataType: first.DataType, Values: aggregated}
	if err := model.Validate(); err != nil {
		return Model{}, err
	}

	return model, nil
}
