package participant

import (
	"context"

	"github.com/absmach/fedlearn/pkg/fl"
)

// Coordinator is the client side of the coordinator protocol. Implementations
// must be safe for concurrent use.
type Coordinator interface {
	// Heartbeat returns the coordinator's current round status.
	Heartbeat(ctx context.Context) (Heartbeat, error)

	// FetchGlobalModel returns the latest global model, or nil when the
	// coordinator has not published one yet.
	FetchGlobalModel(ctx context.Context) (*fl.Model, error)

	// SubmitLocalModel submits a trained model for round. It returns an error
	// wrapping ErrModelMismatch when the coordinator rejects the model shape.
	SubmitLocalModel(ctx context.Context, round uint64, model fl.Model) error

	// Session returns the material needed to resume this participant.
	Session() ([]byte, error)
}

// Trainer is the user supplied training capability. It is only ever called
// from the worker, never concurrently with itself.
type Trainer interface {
	Train(ctx context.Context, round uint64, global any) (any, error)
	Serialize(result any) (fl.Model, error)
	Deserialize(model fl.Model) (any, error)
}

// GlobalModelObserver is implemented by trainers that want to see every newly
// fetched global model.
type GlobalModelObserver interface {
	OnNewGlobalModel(global any)
}

// StopObserver is implemented by trainers that need to release resources once
// the participant stopped.
type StopObserver interface {
	OnStop()
}

// ParticipationPolicy decides whether to train in a round the participant was
// selected for. Declining forfeits the round.
type ParticipationPolicy func(round uint64) bool

func AlwaysParticipate(uint64) bool {
	return true
}

// TickFunc runs one reconciliation cycle.
type TickFunc func(ctx context.Context) (Disposition, error)

// TickMiddleware decorates every tick, the worker's as well as direct Tick
// calls.
type TickMiddleware func(next TickFunc) TickFunc
