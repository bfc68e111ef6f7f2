package participant_test

import (
	"testing"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/stretchr/testify/assert"
)

func TestModelStoreSetLocal(t *testing.T) {
	t.Parallel()

	params := fl.RoundParams{Round: 3, ModelLength: 2, DataType: fl.F32}

	cases := []struct {
		desc   string
		params *fl.RoundParams
		round  uint64
		model  fl.Model
		err    error
	}{
		{
			desc:   "matching model",
			params: &params,
			round:  3,
			model:  fl.Model{DataType: fl.F32, Values: []float64{1, 2}},
		},
		{
			desc:   "length mismatch",
			params: &params,
			round:  3,
			model:  fl.Model{DataType: fl.F32, Values: []float64{1}},
			err:    participant.ErrModelMismatch,
		},
		{
			desc:   "data type mismatch",
			params: &params,
			round:  3,
			model:  fl.Model{DataType: fl.I64, Values: []float64{1, 2}},
			err:    participant.ErrModelMismatch,
		},
		{
			desc:  "no announced parameters",
			round: 3,
			model: fl.Model{DataType: fl.F64, Values: []float64{1, 2, 3}},
		},
		{
			desc:   "parameters of another round do not apply",
			params: &params,
			round:  4,
			model:  fl.Model{DataType: fl.F64, Values: []float64{1}},
		},
		{
			desc:  "invalid data type without parameters",
			round: 3,
			model: fl.Model{DataType: "bf16", Values: []float64{1}},
			err:   participant.ErrModelMismatch,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			ms := participant.NewModelStore()
			if tc.params != nil {
				ms.SetParams(*tc.params)
			}

			err := ms.SetLocal(tc.round, tc.model)
			assert.ErrorIs(t, err, tc.err)

			round, model, ok := ms.Pending()
			if tc.err != nil {
				assert.False(t, ok)

				return
			}
			assert.True(t, ok)
			assert.Equal(t, tc.round, round)
			assert.Equal(t, tc.model, model)

			ms.ClearPending()
			_, _, ok = ms.Pending()
			assert.False(t, ok)
		})
	}
}

func TestModelStoreGlobal(t *testing.T) {
	t.Parallel()

	ms := participant.NewModelStore()
	_, ok := ms.Global()
	assert.False(t, ok)

	ms.SetGlobal([]float64{1})
	ms.SetGlobal([]float64{2})
	global, ok := ms.Global()
	assert.True(t, ok)
	assert.Equal(t, []float64{2}, global)
}

func TestModelStoreParamsPruning(t *testing.T) {
	t.Parallel()

	ms := participant.NewModelStore()
	ms.SetParams(fl.RoundParams{Round: 1, ModelLength: 1})
	ms.SetParams(fl.RoundParams{Round: 2, ModelLength: 2})

	_, ok := ms.Params(1)
	assert.False(t, ok)
	p, ok := ms.Params(2)
	assert.True(t, ok)
	assert.Equal(t, 2, p.ModelLength)
}

func TestModelStoreNotification(t *testing.T) {
	t.Parallel()

	ms := participant.NewModelStore()
	assert.True(t, ms.Notify())
	assert.False(t, ms.Notify())

	select {
	case <-ms.Notification():
	default:
		t.Fatal("expected a pending notification")
	}

	assert.True(t, ms.Notify())
	ms.ClearNotification()
	select {
	case <-ms.Notification():
		t.Fatal("notification should have been cleared")
	default:
	}
}
