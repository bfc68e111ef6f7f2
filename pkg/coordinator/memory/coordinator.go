// Package memory provides an in-process coordinator that replays a scripted
// sequence of round statuses. It backs dry runs and end to end tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/coordinator"
	"github.com/absmach/fedlearn/pkg/fl"
)

var errInvalidScript = errors.New("invalid coordinator script")

var _ participant.Coordinator = (*Coordinator)(nil)

type Coordinator struct {
	session coordinator.Session

	mu      sync.Mutex
	script  []fl.RoundStatus
	current fl.RoundStatus
	model   *fl.Model
	updates []fl.Update
}

// New returns a coordinator answering heartbeats with script, one status per
// call. The last status repeats once the script is exhausted.
func New(session coordinator.Session, script ...fl.RoundStatus) *Coordinator {
	return &Coordinator{
		session: session,
		script:  script,
		current: fl.RoundStatus{Phase: fl.PhaseStandby},
	}
}

// Push appends statuses to the script.
func (c *Coordinator) Push(statuses ...fl.RoundStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.script = append(c.script, statuses...)
}

func (c *Coordinator) SetModel(m fl.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.model = &m
}

// Updates returns the updates submitted so far.
func (c *Coordinator) Updates() []fl.Update {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.updates)
}

func (c *Coordinator) Heartbeat(_ context.Context) (participant.Heartbeat, error) {
	c.mu.Lock()
	if len(c.script) > 0 {
		c.current, c.script = c.script[0], c.script[1:]
	}
	status := c.current
	c.mu.Unlock()

	return participant.HeartbeatFromStatus(status)
}

func (c *Coordinator) FetchGlobalModel(_ context.Context) (*fl.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model == nil {
		return nil, nil
	}
	m := fl.Model{DataType: c.model.DataType, Values: slices.Clone(c.model.Values)}

	return &m, nil
}

func (c *Coordinator) SubmitLocalModel(_ context.Context, round uint64, model fl.Model) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current.Phase != fl.PhaseRound || c.current.Round != round {
		return fmt.Errorf("%w: round %d is not open", participant.ErrModelMismatch, round)
	}
	if p := c.current.Params; p != nil {
		if err := p.Check(model); err != nil {
			return fmt.Errorf("%w: %w", participant.ErrModelMismatch, err)
		}
	}

	update, err := c.session.NewUpdate(round, model)
	if err != nil {
		return err
	}
	c.updates = append(c.updates, update)

	return nil
}

func (c *Coordinator) Session() ([]byte, error) {
	return c.session.Marshal()
}

// ParseScript parses a comma separated script such as
// "standby,round:1,round:2,finished". A round entry may carry the expected
// model as "round:3:4:f32" (round, length, data type).
func ParseScript(s string) ([]fl.RoundStatus, error) {
	var script []fl.RoundStatus
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		switch fl.Phase(parts[0]) {
		case fl.PhaseStandby, fl.PhaseFinished:
			if len(parts) != 1 {
				return nil, fmt.Errorf("%w: %q", errInvalidScript, entry)
			}
			script = append(script, fl.RoundStatus{Phase: fl.Phase(parts[0])})
		case fl.PhaseRound:
			status, err := parseRound(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", errInvalidScript, entry, err)
			}
			script = append(script, status)
		default:
			return nil, fmt.Errorf("%w: %q", errInvalidScript, entry)
		}
	}

	return script, nil
}

func parseRound(parts []string) (fl.RoundStatus, error) {
	if len(parts) != 1 && len(parts) != 3 {
		return fl.RoundStatus{}, errors.New("expected round:<n> or round:<n>:<length>:<type>")
	}

	round, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return fl.RoundStatus{}, err
	}
	status := fl.RoundStatus{Phase: fl.PhaseRound, Round: round}
	if len(parts) == 1 {
		return status, nil
	}

	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return fl.RoundStatus{}, err
	}
	dt := fl.DataType(parts[2])
	if err := dt.Validate(); err != nil {
		return fl.RoundStatus{}, err
	}
	status.Params = &fl.RoundParams{Round: round, ModelLength: length, DataType: dt}

	return status, nil
}
