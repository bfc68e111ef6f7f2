package participant

import (
	"context"
	"sync"
)

type State uint8

const (
	WaitingForSelection State = iota
	Training
	PostTraining
	Done
)

func (s State) String() string {
	switch s {
	case WaitingForSelection:
		return "waiting_for_selection"
	case Training:
		return "training"
	case PostTraining:
		return "post_training"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "waiting_for_selection":
		*s = WaitingForSelection
	case "training":
		*s = Training
	case "post_training":
		*s = PostTraining
	case "done":
		*s = Done
	default:
		return ErrUnknownState
	}

	return nil
}

// Transit maps the current (state, round) and a heartbeat to the next
// (state, round). It is total and has no side effects. Training is only left
// through StateRecord.FinishTraining.
func Transit(state State, round uint64, hb Heartbeat) (State, uint64) {
	switch state {
	case WaitingForSelection:
		switch hb.Kind {
		case RoundOpen:
			return Training, hb.Round
		case Finished:
			return Done, round
		}
	case PostTraining:
		switch hb.Kind {
		case RoundOpen:
			if hb.Round > round {
				return Training, hb.Round
			}
		case Finished:
			return Done, round
		case Standby:
			return WaitingForSelection, round
		}
	}

	return state, round
}

// StateRecord holds the participant's protocol state and wakes waiters on
// every change.
type StateRecord struct {
	mu      sync.Mutex
	state   State
	round   uint64
	entries uint64
	changed chan struct{}
}

func NewStateRecord(state State, round uint64) *StateRecord {
	return &StateRecord{
		state:   state,
		round:   round,
		changed: make(chan struct{}),
	}
}

func (r *StateRecord) Lookup() (State, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state, r.round
}

// Transit applies hb and reports whether state or round changed.
func (r *StateRecord) Transit(hb Heartbeat) (State, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, round := Transit(r.state, r.round, hb)
	changed := state != r.state || round != r.round
	r.set(state, round)

	return state, round, changed
}

// FinishTraining moves Training at round to PostTraining. It is a no-op in any
// other state or round.
func (r *StateRecord) FinishTraining(round uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Training || r.round != round {
		return false
	}
	r.set(PostTraining, round)

	return true
}

func (r *StateRecord) set(state State, round uint64) {
	if state == PostTraining && r.state != PostTraining {
		r.entries++
	}
	r.state, r.round = state, round

	close(r.changed)
	r.changed = make(chan struct{})
}

// WaitUntilSelectedOrDone blocks until the state is Training or Done.
func (r *StateRecord) WaitUntilSelectedOrDone(ctx context.Context) (State, error) {
	return r.wait(ctx, func(s State, _ uint64) bool {
		return s == Training || s == Done
	})
}

// WaitUntilNextRound blocks until the current post-training episode resolves.
// When called during Training it first waits for that round to be finished.
func (r *StateRecord) WaitUntilNextRound(ctx context.Context) (State, error) {
	r.mu.Lock()
	startEntries := r.entries
	startedInPost := r.state == PostTraining
	r.mu.Unlock()

	return r.wait(ctx, func(s State, entries uint64) bool {
		switch s {
		case PostTraining:
			return false
		case Training:
			return startedInPost || entries > startEntries
		default:
			return true
		}
	})
}

func (r *StateRecord) wait(ctx context.Context, done func(State, uint64) bool) (State, error) {
	for {
		r.mu.Lock()
		state, entries, changed := r.state, r.entries, r.changed
		r.mu.Unlock()

		if done(state, entries) {
			return state, nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return state, ctx.Err()
		}
	}
}
