package trainer_test

import (
	"testing"

	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/absmach/fedlearn/pkg/trainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	t.Parallel()

	model := fl.Model{DataType: fl.F32, Values: []float64{1, 2}}

	cases := []struct {
		desc   string
		global any
		want   string
		err    error
	}{
		{
			desc: "without global model",
			want: `{"round":3}`,
		},
		{
			desc:   "with global model",
			global: model,
			want:   `{"round":3,"global":{"data_type":"f32","values":[1,2]}}`,
		},
		{
			desc:   "with global model pointer",
			global: &model,
			want:   `{"round":3,"global":{"data_type":"f32","values":[1,2]}}`,
		},
		{
			desc:   "with foreign global model",
			global: []float64{1},
			err:    trainer.ErrResultType,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			req, err := trainer.NewRequest(3, tc.global)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)

				return
			}
			require.NoError(t, err)

			data, err := req.Encode()
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(data))
		})
	}
}

func TestDecodeResult(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc  string
		out   string
		model fl.Model
		err   error
	}{
		{
			desc:  "valid model",
			out:   "{\"data_type\":\"i32\",\"values\":[1,2,3]}\n",
			model: fl.Model{DataType: fl.I32, Values: []float64{1, 2, 3}},
		},
		{
			desc: "empty output",
			out:  " \n",
			err:  trainer.ErrEmptyOutput,
		},
		{
			desc: "malformed output",
			out:  "loss=0.1",
			err:  trainer.ErrInvalidModel,
		},
		{
			desc: "invalid data type",
			out:  `{"data_type":"bf16","values":[1]}`,
			err:  trainer.ErrInvalidModel,
		},
		{
			desc: "fractional integer value",
			out:  `{"data_type":"i64","values":[1.5]}`,
			err:  trainer.ErrInvalidModel,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			model, err := trainer.DecodeResult([]byte(tc.out))
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, tc.model, model)
		})
	}
}

func TestCodec(t *testing.T) {
	t.Parallel()

	var codec trainer.Codec
	model := fl.Model{DataType: fl.F64, Values: []float64{0.5}}

	global, err := codec.Deserialize(model)
	require.NoError(t, err)
	assert.Equal(t, model, global)

	got, err := codec.Serialize(model)
	require.NoError(t, err)
	assert.Equal(t, model, got)

	got, err = codec.Serialize(&model)
	require.NoError(t, err)
	assert.Equal(t, model, got)

	_, err = codec.Serialize((*fl.Model)(nil))
	assert.ErrorIs(t, err, trainer.ErrResultType)

	_, err = codec.Serialize("weights")
	assert.ErrorIs(t, err, trainer.ErrResultType)
}
