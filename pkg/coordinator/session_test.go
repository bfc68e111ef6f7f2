package coordinator_test

import (
	"testing"

	"github.com/absmach/fedlearn/pkg/coordinator"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	t.Parallel()

	s, err := coordinator.NewSession("token", coordinator.DefaultScalar)
	require.NoError(t, err)
	assert.NoError(t, s.Validate())

	other, err := coordinator.NewSession("token", coordinator.DefaultScalar)
	require.NoError(t, err)
	assert.NotEqual(t, s.ParticipantID, other.ParticipantID)

	_, err = coordinator.NewSession("token", 0)
	assert.ErrorIs(t, err, coordinator.ErrInvalidScalar)
}

func TestRestoreSession(t *testing.T) {
	t.Parallel()

	s, err := coordinator.NewSession("token", 0.5)
	require.NoError(t, err)
	data, err := s.Marshal()
	require.NoError(t, err)

	other, err := coordinator.NewSession("", coordinator.DefaultScalar)
	require.NoError(t, err)
	mismatched := s
	mismatched.PublicKey = other.PublicKey
	mismatchedData, err := mismatched.Marshal()
	require.NoError(t, err)

	cases := []struct {
		desc string
		data []byte
		err  error
	}{
		{desc: "valid session", data: data},
		{desc: "garbage", data: []byte{0xff, 0x00}, err: coordinator.ErrInvalidSession},
		{desc: "mismatched keys", data: mismatchedData, err: coordinator.ErrInvalidSession},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			restored, err := coordinator.RestoreSession(tc.data)
			assert.ErrorIs(t, err, tc.err)
			if tc.err != nil {
				return
			}
			assert.Equal(t, s.ParticipantID, restored.ParticipantID)
			assert.Equal(t, s.Token, restored.Token)
			assert.Equal(t, s.Scalar, restored.Scalar)
		})
	}
}

func TestNewUpdateIsSigned(t *testing.T) {
	t.Parallel()

	s, err := coordinator.NewSession("", coordinator.DefaultScalar)
	require.NoError(t, err)

	u, err := s.NewUpdate(4, fl.Model{DataType: fl.I32, Values: []float64{1, 2}})
	require.NoError(t, err)
	assert.NoError(t, u.Verify(s.PublicKey))

	u.Round = 5
	assert.ErrorIs(t, u.Verify(s.PublicKey), fl.ErrSignature)
}
