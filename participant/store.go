package participant

import (
	"errors"
	"fmt"
	"sync"

	"github.com/absmach/fedlearn/pkg/fl"
)

type pendingModel struct {
	round uint64
	model fl.Model
}

// ModelStore caches the latest global model and buffers one local model
// awaiting submission.
type ModelStore struct {
	mu        sync.Mutex
	global    any
	hasGlobal bool
	params    map[uint64]fl.RoundParams
	pending   *pendingModel
	notify    chan struct{}
}

func NewModelStore() *ModelStore {
	return &ModelStore{
		params: make(map[uint64]fl.RoundParams),
		notify: make(chan struct{}, 1),
	}
}

func (ms *ModelStore) SetGlobal(model any) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.global = model
	ms.hasGlobal = true
}

func (ms *ModelStore) Global() (any, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.global, ms.hasGlobal
}

// SetParams records the expectations announced for a round. Parameters of
// older rounds are dropped.
func (ms *ModelStore) SetParams(p fl.RoundParams) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for r := range ms.params {
		if r < p.Round {
			delete(ms.params, r)
		}
	}
	ms.params[p.Round] = p
}

func (ms *ModelStore) Params(round uint64) (fl.RoundParams, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	p, ok := ms.params[round]

	return p, ok
}

// SetLocal validates model against the round's announced parameters and
// buffers it for submission, replacing any earlier pending model.
func (ms *ModelStore) SetLocal(round uint64, model fl.Model) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	check := model.Validate
	if p, ok := ms.params[round]; ok {
		check = func() error { return p.Check(model) }
	}
	if err := check(); err != nil {
		if errors.Is(err, fl.ErrInvalidValue) || errors.Is(err, fl.ErrModelLength) || errors.Is(err, fl.ErrDataType) {
			return fmt.Errorf("%w: %w", ErrModelMismatch, err)
		}

		return err
	}

	ms.pending = &pendingModel{round: round, model: model}

	return nil
}

func (ms *ModelStore) Pending() (uint64, fl.Model, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.pending == nil {
		return 0, fl.Model{}, false
	}

	return ms.pending.round, ms.pending.model, true
}

func (ms *ModelStore) ClearPending() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.pending = nil
}

// Notify raises the one-shot new model notification. Repeated calls before
// the notification is consumed have no effect.
func (ms *ModelStore) Notify() bool {
	select {
	case ms.notify <- struct{}{}:
		return true
	default:
		return false
	}
}

func (ms *ModelStore) ClearNotification() {
	select {
	case <-ms.notify:
	default:
	}
}

func (ms *ModelStore) Notification() <-chan struct{} {
	return ms.notify
}
