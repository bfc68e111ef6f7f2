package mqtt_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/coordinator"
	coordmqtt "github.com/absmach/fedlearn/pkg/coordinator/mqtt"
	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/absmach/fedlearn/pkg/mqtt"
	"github.com/absmach/fedlearn/pkg/mqtt/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var topics = mqtt.NewTopics("domain", "channel")

type harness struct {
	client   *coordmqtt.Client
	pubsub   *mocks.PubSub
	session  coordinator.Session
	handlers map[string]mqtt.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	session, err := coordinator.NewSession("", coordinator.DefaultScalar)
	require.NoError(t, err)

	h := &harness{
		pubsub:   mocks.NewPubSub(t),
		session:  session,
		handlers: map[string]mqtt.Handler{},
	}
	h.pubsub.On("Subscribe", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			h.handlers[args.String(1)] = args.Get(2).(mqtt.Handler)
		}).
		Return(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.client, err = coordmqtt.NewClient(context.Background(), h.pubsub, topics, session, logger)
	require.NoError(t, err)
	require.Contains(t, h.handlers, topics.Status())
	require.Contains(t, h.handlers, topics.Model())

	return h
}

func (h *harness) announce(t *testing.T, a coordmqtt.Announcement) {
	t.Helper()

	data, err := fl.EncodeCBOR(a)
	require.NoError(t, err)
	require.NoError(t, h.handlers[topics.Status()](topics.Status(), data))
}

func TestHeartbeat(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	_, err := h.client.Heartbeat(ctx)
	assert.ErrorIs(t, err, pkgerrors.ErrUnavailable)

	cases := []struct {
		desc string
		ann  coordmqtt.Announcement
		want participant.HeartbeatKind
	}{
		{
			desc: "standby",
			ann:  coordmqtt.Announcement{RoundStatus: fl.RoundStatus{Phase: fl.PhaseStandby}},
			want: participant.Standby,
		},
		{
			desc: "round open to everyone",
			ann:  coordmqtt.Announcement{RoundStatus: fl.RoundStatus{Phase: fl.PhaseRound, Round: 1}},
			want: participant.RoundOpen,
		},
		{
			desc: "round selecting this participant",
			ann: coordmqtt.Announcement{
				RoundStatus: fl.RoundStatus{Phase: fl.PhaseRound, Round: 2},
				Selected:    []string{"other", h.session.ParticipantID},
			},
			want: participant.RoundOpen,
		},
		{
			desc: "round selecting others",
			ann: coordmqtt.Announcement{
				RoundStatus: fl.RoundStatus{Phase: fl.PhaseRound, Round: 3},
				Selected:    []string{"other"},
			},
			want: participant.Standby,
		},
		{
			desc: "finished",
			ann:  coordmqtt.Announcement{RoundStatus: fl.RoundStatus{Phase: fl.PhaseFinished}},
			want: participant.Finished,
		},
	}

	// Cases share one client, so they run in order.
	for _, tc := range cases {
		h.announce(t, tc.ann)
		hb, err := h.client.Heartbeat(ctx)
		require.NoError(t, err, tc.desc)
		assert.Equal(t, tc.want, hb.Kind, tc.desc)
	}
}

func TestFetchGlobalModel(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	model, err := h.client.FetchGlobalModel(ctx)
	require.NoError(t, err)
	assert.Nil(t, model)

	handler := h.handlers[topics.Model()]
	assert.Error(t, handler(topics.Model(), []byte("not cbor")))

	data, err := fl.EncodeCBOR(fl.Model{DataType: fl.F32, Values: []float64{3, 4}})
	require.NoError(t, err)
	require.NoError(t, handler(topics.Model(), data))

	model, err = h.client.FetchGlobalModel(ctx)
	require.NoError(t, err)
	require.NotNil(t, model)
	assert.Equal(t, []float64{3, 4}, model.Values)

	model.Values[0] = 100
	again, err := h.client.FetchGlobalModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, again.Values)
}

func TestSubmitLocalModel(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	h.announce(t, coordmqtt.Announcement{RoundStatus: fl.RoundStatus{
		Phase:  fl.PhaseRound,
		Round:  5,
		Params: &fl.RoundParams{ModelLength: 2, DataType: fl.F64},
	}})

	err := h.client.SubmitLocalModel(ctx, 5, fl.Model{DataType: fl.F64, Values: []float64{1}})
	assert.ErrorIs(t, err, participant.ErrModelMismatch)

	var published fl.Update
	h.pubsub.On("Publish", mock.Anything, topics.Update(h.session.ParticipantID), mock.AnythingOfType("fl.Update")).
		Run(func(args mock.Arguments) {
			published = args.Get(2).(fl.Update)
		}).
		Return(nil).Once()

	model := fl.Model{DataType: fl.F64, Values: []float64{1, 2}}
	require.NoError(t, h.client.SubmitLocalModel(ctx, 5, model))
	assert.Equal(t, uint64(5), published.Round)
	assert.Equal(t, model, published.Model)
	assert.NoError(t, published.Verify(h.session.PublicKey))
}

func TestClose(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.pubsub.On("Unsubscribe", mock.Anything, topics.Status()).Return(nil).Once()
	h.pubsub.On("Unsubscribe", mock.Anything, topics.Model()).Return(nil).Once()

	assert.NoError(t, h.client.Close(context.Background()))
}
