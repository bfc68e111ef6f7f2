package sdk_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/participant/api"
	"github.com/absmach/fedlearn/participant/mocks"
	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/absmach/fedlearn/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSDK(t *testing.T) (sdk.SDK, *mocks.Service) {
	t.Helper()

	svc := mocks.NewService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(api.MakeHandler(svc, logger, "participant-1"))
	t.Cleanup(ts.Close)

	return sdk.NewSDK(sdk.Config{ParticipantURL: ts.URL + "/"}), svc
}

func TestStatus(t *testing.T) {
	t.Parallel()

	status := participant.Status{
		State:  participant.PostTraining,
		Round:  3,
		Worker: participant.Running,
		Mode:   participant.ModeSync,
	}

	cases := []struct {
		desc     string
		wait     string
		waitCall string
		status   sdk.Status
		code     int
	}{
		{
			desc:   "without waiting",
			status: sdk.Status{State: "post_training", Round: 3, Worker: "running", Mode: "sync"},
		},
		{
			desc:     "wait for next round",
			wait:     "next_round",
			waitCall: "WaitUntilNextRound",
			status:   sdk.Status{State: "post_training", Round: 3, Worker: "running", Mode: "sync"},
		},
		{
			desc: "invalid wait",
			wait: "forever",
			code: http.StatusBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			client, svc := newSDK(t)
			if tc.waitCall != "" {
				svc.On(tc.waitCall, mock.Anything).Return(participant.PostTraining, nil)
			}
			if tc.code == 0 {
				svc.On("Status", mock.Anything).Return(status, nil)
			}

			got, err := client.Status(tc.wait)
			if tc.code != 0 {
				assert.True(t, sdk.IsStatus(err, tc.code), err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.status, got)
		})
	}
}

func TestGlobalModel(t *testing.T) {
	t.Parallel()

	model := fl.Model{DataType: fl.F64, Values: []float64{0.25, 0.5}}

	t.Run("cached model", func(t *testing.T) {
		t.Parallel()
		client, svc := newSDK(t)
		svc.On("GlobalModel", mock.Anything).Return(model, nil)

		got, err := client.GlobalModel()
		require.NoError(t, err)
		assert.Equal(t, model, got)
	})

	t.Run("no model yet", func(t *testing.T) {
		t.Parallel()
		client, svc := newSDK(t)
		svc.On("GlobalModel", mock.Anything).Return(nil, pkgerrors.ErrNotFound)

		_, err := client.GlobalModel()
		assert.True(t, sdk.IsStatus(err, http.StatusNotFound), err)
	})
}

func TestSubmitModel(t *testing.T) {
	t.Parallel()

	model := fl.Model{DataType: fl.I32, Values: []float64{1, 2}}

	cases := []struct {
		desc   string
		model  fl.Model
		svcErr error
		code   int
	}{
		{
			desc:  "accepted",
			model: model,
		},
		{
			desc:   "not selected",
			model:  model,
			svcErr: participant.ErrNotSelected,
			code:   http.StatusConflict,
		},
		{
			desc:  "invalid model",
			model: fl.Model{DataType: fl.I32, Values: []float64{0.5}},
			code:  http.StatusBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			client, svc := newSDK(t)
			if tc.code != http.StatusBadRequest {
				svc.On("SubmitLocalModel", mock.Anything, tc.model).Return(tc.svcErr)
			}

			err := client.SubmitModel(tc.model)
			if tc.code != 0 {
				assert.True(t, sdk.IsStatus(err, tc.code), err)

				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStop(t *testing.T) {
	t.Parallel()

	client, svc := newSDK(t)
	savedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.On("Stop", mock.Anything).Return(participant.Snapshot{
		State:   participant.Done,
		Round:   9,
		Session: []byte("secret"),
		SavedAt: savedAt,
	}, nil)

	res, err := client.Stop()
	require.NoError(t, err)
	assert.Equal(t, sdk.StopResult{State: "done", Round: 9, SavedAt: savedAt}, res)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	client, _ := newSDK(t)

	h, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "pass", h.Status)
	assert.Equal(t, "participant-1", h.InstanceID)
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := &sdk.Error{StatusCode: http.StatusConflict, Message: "participant is stopped"}
	assert.Equal(t, "unexpected response code: 409: participant is stopped", err.Error())

	err = &sdk.Error{StatusCode: http.StatusBadGateway}
	assert.Equal(t, "unexpected response code: 502", err.Error())
}
