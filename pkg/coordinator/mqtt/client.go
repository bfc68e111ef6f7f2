// Package mqtt implements a participant.Coordinator on top of MQTT. The
// coordinator publishes round announcements and the global model as retained
// messages; participants publish signed updates on their own topic.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/coordinator"
	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/absmach/fedlearn/pkg/mqtt"
)

// Announcement is the retained message on the status topic. A round only
// selects the participants listed in Selected; an empty list selects everyone.
type Announcement struct {
	fl.RoundStatus

	Selected []string `cbor:"selected,omitempty"`
}

var _ participant.Coordinator = (*Client)(nil)

type Client struct {
	pubsub  mqtt.PubSub
	topics  mqtt.Topics
	session coordinator.Session
	logger  *slog.Logger

	mu     sync.RWMutex
	status *Announcement
	model  *fl.Model
}

// NewClient subscribes to the coordinator's status and model topics.
func NewClient(ctx context.Context, pubsub mqtt.PubSub, topics mqtt.Topics, session coordinator.Session, logger *slog.Logger) (*Client, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		pubsub:  pubsub,
		topics:  topics,
		session: session,
		logger:  logger,
	}

	if err := pubsub.Subscribe(ctx, topics.Status(), c.handleStatus); err != nil {
		return nil, fmt.Errorf("failed to subscribe to status topic: %w", err)
	}
	if err := pubsub.Subscribe(ctx, topics.Model(), c.handleModel); err != nil {
		return nil, fmt.Errorf("failed to subscribe to model topic: %w", err)
	}

	return c, nil
}

func (c *Client) Heartbeat(_ context.Context) (participant.Heartbeat, error) {
	c.mu.RLock()
	status := c.status
	c.mu.RUnlock()

	if status == nil {
		return participant.Heartbeat{}, fmt.Errorf("%w: no round announcement received yet", pkgerrors.ErrUnavailable)
	}

	if status.Phase == fl.PhaseRound && len(status.Selected) > 0 && !slices.Contains(status.Selected, c.session.ParticipantID) {
		return participant.StandbyHeartbeat(), nil
	}

	return participant.HeartbeatFromStatus(status.RoundStatus)
}

func (c *Client) FetchGlobalModel(_ context.Context) (*fl.Model, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.model == nil {
		return nil, nil
	}
	model := fl.Model{
		DataType: c.model.DataType,
		Values:   slices.Clone(c.model.Values),
	}

	return &model, nil
}

// SubmitLocalModel publishes a signed update. Models are checked against the
// announced round parameters first since MQTT gives no rejection feedback.
func (c *Client) SubmitLocalModel(ctx context.Context, round uint64, model fl.Model) error {
	c.mu.RLock()
	status := c.status
	c.mu.RUnlock()

	if status != nil && status.Params != nil && status.Round == round {
		if err := status.Params.Check(model); err != nil {
			return fmt.Errorf("%w: %w", participant.ErrModelMismatch, err)
		}
	}

	update, err := c.session.NewUpdate(round, model)
	if err != nil {
		return err
	}

	return c.pubsub.Publish(ctx, c.topics.Update(c.session.ParticipantID), update)
}

func (c *Client) Session() ([]byte, error) {
	return c.session.Marshal()
}

// Close unsubscribes from the coordinator topics. The PubSub itself is owned
// by the caller.
func (c *Client) Close(ctx context.Context) error {
	if err := c.pubsub.Unsubscribe(ctx, c.topics.Status()); err != nil {
		return err
	}

	return c.pubsub.Unsubscribe(ctx, c.topics.Model())
}

func (c *Client) handleStatus(_ string, payload []byte) error {
	var a Announcement
	if err := fl.DecodeCBOR(payload, &a); err != nil {
		return fmt.Errorf("failed to decode round announcement: %w", err)
	}

	c.mu.Lock()
	c.status = &a
	c.mu.Unlock()

	c.logger.Debug("received round announcement", slog.String("phase", string(a.Phase)), slog.Uint64("round", a.Round))

	return nil
}

func (c *Client) handleModel(_ string, payload []byte) error {
	var m fl.Model
	if err := fl.DecodeCBOR(payload, &m); err != nil {
		return fmt.Errorf("failed to decode global model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("received invalid global model: %w", err)
	}

	c.mu.Lock()
	c.model = &m
	c.mu.Unlock()

	c.logger.Debug("received global model", slog.Int("length", m.Len()))

	return nil
}
