package fl_test

import (
	"testing"

	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFedAvgAggregate(t *testing.T) {
	t.Parallel()

	update := func(scalar float64, dt fl.DataType, values ...float64) fl.Update {
		return fl.Update{Scalar: scalar, Model: fl.Model{DataType: dt, Values: values}}
	}

	cases := []struct {
		desc    string
		updates []fl.Update
		model   fl.Model
		err     error
	}{
		{
			desc:    "single update",
			updates: []fl.Update{update(1, fl.F32, 1, 2)},
			model:   fl.Model{DataType: fl.F32, Values: []float64{1, 2}},
		},
		{
			desc:    "weighted by scalar",
			updates: []fl.Update{update(1, fl.F64, 0, 4), update(3, fl.F64, 4, 0)},
			model:   fl.Model{DataType: fl.F64, Values: []float64{3, 1}},
		},
		{
			desc:    "integers are rounded",
			updates: []fl.Update{update(1, fl.I32, 1), update(1, fl.I32, 2)},
			model:   fl.Model{DataType: fl.I32, Values: []float64{2}},
		},
		{
			desc: "no updates",
			err:  fl.ErrNoUpdates,
		},
		{
			desc:    "length mismatch",
			updates: []fl.Update{update(1, fl.F32, 1, 2), update(1, fl.F32, 1)},
			err:     fl.ErrModelLength,
		},
		{
			desc:    "data type mismatch",
			updates: []fl.Update{update(1, fl.F32, 1), update(1, fl.F64, 1)},
			err:     fl.ErrDataType,
		},
		{
			desc:    "zero scalar",
			updates: []fl.Update{update(0, fl.F32, 1)},
			err:     fl.ErrInvalidScalar,
		},
	}

	agg := fl.NewFedAvgAggregator()
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			model, err := agg.Aggregate(tc.updates)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.model, model)
		})
	}
}
