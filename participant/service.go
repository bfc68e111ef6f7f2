package participant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/absmach/fedlearn/pkg/backoff"
	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/fl"
)

var (
	errMissingCoordinator = errors.New("coordinator is required")
	errMissingTrainer     = errors.New("trainer is required in sync mode")
)

// Disposition describes what a tick observed and did. State and Round are
// read once the tick finished.
type Disposition struct {
	NewGlobalModel bool   `json:"new_global_model"`
	SubmitModel    bool   `json:"submit_model"`
	MadeProgress   bool   `json:"made_progress"`
	State          State  `json:"state"`
	Round          uint64 `json:"round"`
}

type Status struct {
	State        State       `json:"state"`
	Round        uint64      `json:"round"`
	Worker       WorkerState `json:"worker"`
	Mode         Mode        `json:"mode"`
	GlobalModel  bool        `json:"global_model"`
	PendingRound *uint64     `json:"pending_round,omitempty"`
}

type Service interface {
	// Start spawns the background worker.
	Start(ctx context.Context) error

	// Tick runs one reconciliation cycle. It is used by the worker and may be
	// called directly when no worker is running.
	Tick(ctx context.Context) (Disposition, error)

	// Stop stops the worker, persists the final snapshot once and returns it.
	// Later calls return the same snapshot.
	Stop(ctx context.Context) (Snapshot, error)

	Lookup() (State, uint64)
	Status(ctx context.Context) (Status, error)
	WaitUntilSelectedOrDone(ctx context.Context) (State, error)
	WaitUntilNextRound(ctx context.Context) (State, error)

	// GlobalModel returns the cached global model and consumes the new model
	// notification.
	GlobalModel(ctx context.Context) (any, error)

	// SubmitLocalModel buffers a local model for the current round. The worker
	// forwards it to the coordinator.
	SubmitLocalModel(ctx context.Context, model fl.Model) error

	// NewGlobalModel delivers one notification per newly cached global model
	// in async mode.
	NewGlobalModel() <-chan struct{}

	// Done is closed once the worker exited. Err reports why.
	Done() <-chan struct{}
	Err() error
}

var _ Service = (*service)(nil)

type service struct {
	cfg         Config
	coordinator Coordinator
	trainer     Trainer
	snapshots   SnapshotStore
	participate ParticipationPolicy
	backoff     *backoff.Policy
	record      *StateRecord
	store       *ModelStore
	logger      *slog.Logger
	tickFn      TickFunc

	// tickMu spans a whole tick including training; Stop takes it to wait for
	// the in-flight tick.
	tickMu sync.Mutex
	final  *Snapshot

	// mu covers coordinator exchanges and the reconciliation that follows.
	mu           sync.Mutex
	fetchPending bool

	stopped atomic.Bool
	worker  atomic.Uint32

	lifeMu  sync.Mutex
	started bool
	cancel  context.CancelFunc
	err     error
	done    chan struct{}
}

// NewService creates a participant. trainer may be nil in async mode and
// snapshots may be nil when the final snapshot only needs to be returned.
func NewService(cfg Config, coordinator Coordinator, trainer Trainer, snapshots SnapshotStore, logger *slog.Logger, opts ...Option) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if coordinator == nil {
		return nil, errMissingCoordinator
	}
	if cfg.Mode == ModeSync && trainer == nil {
		return nil, errMissingTrainer
	}

	o := options{participate: AlwaysParticipate}
	for _, opt := range opts {
		opt(&o)
	}

	bo, err := backoff.New(cfg.Backoff)
	if err != nil {
		return nil, err
	}

	state, round := WaitingForSelection, uint64(0)
	if o.restore != nil {
		state, round = o.restore.State, o.restore.Round
	}

	svc := &service{
		cfg:          cfg,
		coordinator:  coordinator,
		trainer:      trainer,
		snapshots:    snapshots,
		participate:  o.participate,
		backoff:      bo,
		record:       NewStateRecord(state, round),
		store:        NewModelStore(),
		logger:       logger,
		fetchPending: state == Training,
		done:         make(chan struct{}),
	}

	svc.tickFn = svc.lockedTick
	for i := len(o.tick) - 1; i >= 0; i-- {
		svc.tickFn = o.tick[i](svc.tickFn)
	}

	return svc, nil
}

func (svc *service) Start(ctx context.Context) error {
	svc.lifeMu.Lock()
	defer svc.lifeMu.Unlock()

	if svc.stopped.Load() {
		return ErrStopped
	}
	if svc.started {
		return ErrAlreadyActive
	}

	ctx, svc.cancel = context.WithCancel(ctx)
	svc.started = true
	svc.worker.Store(uint32(Running))

	go svc.run(ctx)

	return nil
}

func (svc *service) run(ctx context.Context) {
	defer close(svc.done)

	err := svc.loop(ctx)
	svc.stopped.Store(true)
	svc.worker.Store(uint32(Stopped))

	if err != nil {
		svc.logger.Error("unrecoverable error, shutting down participant", slog.Any("error", err))

		svc.lifeMu.Lock()
		svc.err = err
		svc.lifeMu.Unlock()
	}
}

func (svc *service) loop(ctx context.Context) error {
	for !svc.stopped.Load() {
		_, err := svc.Tick(ctx)
		switch {
		case errors.Is(err, ErrTrainerFailed):
			return err
		case errors.Is(err, ErrStopped):
			return nil
		case err != nil && ctx.Err() == nil:
			svc.logger.Warn("participant tick failed", slog.Any("error", err))
		}

		timer := time.NewTimer(svc.backoff.Duration())
		select {
		case <-ctx.Done():
			timer.Stop()

			return nil
		case <-timer.C:
		}
	}

	return nil
}

func (svc *service) Tick(ctx context.Context) (Disposition, error) {
	return svc.tickFn(ctx)
}

func (svc *service) lockedTick(ctx context.Context) (Disposition, error) {
	svc.tickMu.Lock()
	defer svc.tickMu.Unlock()

	if svc.stopped.Load() {
		state, round := svc.record.Lookup()

		return Disposition{State: state, Round: round}, ErrStopped
	}

	return svc.tick(ctx)
}

func (svc *service) tick(ctx context.Context) (d Disposition, err error) {
	defer func() {
		if d.MadeProgress {
			svc.backoff.Reset()
		}
		d.State, d.Round = svc.record.Lookup()
	}()

	d, state, round, err := svc.reconcile(ctx)
	if err != nil {
		return d, err
	}

	if d.NewGlobalModel {
		fetched, err := svc.fetchGlobalModel(ctx)
		if err != nil {
			return d, err
		}
		d.MadeProgress = d.MadeProgress || fetched
	}

	if state != Training {
		return d, nil
	}

	if _, _, ok := svc.store.Pending(); !ok && svc.cfg.Mode == ModeSync {
		forfeited, err := svc.train(ctx, round)
		if err != nil {
			return d, err
		}
		d.MadeProgress = d.MadeProgress || forfeited
	}

	submitted, err := svc.submit(ctx, round)
	d.MadeProgress = d.MadeProgress || submitted

	return d, err
}

func (svc *service) reconcile(ctx context.Context) (Disposition, State, uint64, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	hb, err := svc.coordinator.Heartbeat(ctx)
	if err != nil {
		return Disposition{}, 0, 0, fmt.Errorf("%w: %w", ErrHeartbeat, err)
	}

	prevState, prevRound := svc.record.Lookup()
	state, round, changed := svc.record.Transit(hb)
	if hb.Params != nil {
		svc.store.SetParams(*hb.Params)
	}

	switch {
	case changed:
		svc.logger.Info("participant state changed",
			slog.String("from", prevState.String()),
			slog.String("to", state.String()),
			slog.Uint64("round", round),
		)
		if prevState == PostTraining && state == Training && round > prevRound+1 {
			svc.logger.Warn("coordinator skipped rounds without deselecting participant",
				slog.Uint64("previous_round", prevRound),
				slog.Uint64("round", round),
			)
		}
		if state == Training || state == Done {
			svc.fetchPending = true
		}
	case state == PostTraining && hb.Kind == RoundOpen && hb.Round < round:
		svc.logger.Debug("ignoring stale round", slog.Uint64("round", hb.Round), slog.Uint64("current_round", round))
	}
	if state != Training && state != Done {
		svc.fetchPending = false
	}

	return Disposition{
		NewGlobalModel: svc.fetchPending,
		SubmitModel:    state == Training,
		MadeProgress:   changed,
	}, state, round, nil
}

func (svc *service) fetchGlobalModel(ctx context.Context) (bool, error) {
	svc.mu.Lock()
	raw, err := svc.coordinator.FetchGlobalModel(ctx)
	if err != nil {
		svc.mu.Unlock()

		return false, fmt.Errorf("failed to fetch global model: %w", err)
	}
	svc.fetchPending = false
	svc.mu.Unlock()

	if raw == nil {
		svc.logger.Debug("coordinator has not published a global model")

		return false, nil
	}

	var global any = *raw
	if svc.trainer != nil {
		global, err = callHook(func() (any, error) {
			return svc.trainer.Deserialize(*raw)
		})
		if err != nil {
			return false, err
		}
	}
	svc.store.SetGlobal(global)

	if obs, ok := svc.trainer.(GlobalModelObserver); ok {
		if _, err := callHook(func() (struct{}, error) {
			obs.OnNewGlobalModel(global)

			return struct{}{}, nil
		}); err != nil {
			return true, err
		}
	}

	if svc.cfg.Mode == ModeAsync && svc.store.Notify() {
		svc.logger.Debug("notified that a new global model is available")
	}

	return true, nil
}

// train buffers a local model for round. It reports whether the round was
// forfeited, which finishes training without a submission.
func (svc *service) train(ctx context.Context, round uint64) (bool, error) {
	if !svc.participate(round) {
		svc.logger.Info("declined to participate in round", slog.Uint64("round", round))

		return svc.record.FinishTraining(round), nil
	}

	global, _ := svc.store.Global()
	result, err := callHook(func() (any, error) {
		return svc.trainer.Train(ctx, round, global)
	})
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		return false, err
	}

	model, err := callHook(func() (fl.Model, error) {
		return svc.trainer.Serialize(result)
	})
	if err != nil {
		return false, err
	}

	if err := svc.store.SetLocal(round, model); err != nil {
		svc.logger.Warn("failed to set local model, forfeiting round",
			slog.Uint64("round", round),
			slog.Any("error", err),
		)

		return svc.record.FinishTraining(round), nil
	}

	return false, nil
}

func (svc *service) submit(ctx context.Context, round uint64) (bool, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	pendingRound, model, ok := svc.store.Pending()
	if !ok {
		return false, nil
	}
	if pendingRound != round {
		svc.logger.Warn("discarding local model of another round",
			slog.Uint64("model_round", pendingRound),
			slog.Uint64("round", round),
		)
		svc.store.ClearPending()

		return false, nil
	}

	err := svc.coordinator.SubmitLocalModel(ctx, round, model)
	switch {
	case err == nil:
		svc.logger.Info("submitted local model", slog.Uint64("round", round), slog.Int("length", model.Len()))
	case errors.Is(err, ErrModelMismatch):
		svc.logger.Warn("coordinator rejected local model, forfeiting round",
			slog.Uint64("round", round),
			slog.Any("error", err),
		)
	default:
		return false, fmt.Errorf("failed to submit local model: %w", err)
	}

	svc.store.ClearPending()
	svc.record.FinishTraining(round)

	return true, nil
}

func (svc *service) Stop(ctx context.Context) (Snapshot, error) {
	svc.stopped.Store(true)
	svc.store.ClearNotification()

	svc.lifeMu.Lock()
	cancel, started := svc.cancel, svc.started
	svc.lifeMu.Unlock()

	if cancel != nil {
		cancel()
	}
	svc.worker.CompareAndSwap(uint32(Running), uint32(Stopping))

	snap, err := svc.finalSnapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	if started {
		select {
		case <-svc.done:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
	svc.worker.Store(uint32(Stopped))

	return snap, nil
}

func (svc *service) finalSnapshot(ctx context.Context) (Snapshot, error) {
	svc.tickMu.Lock()
	defer svc.tickMu.Unlock()

	if svc.final != nil {
		return *svc.final, nil
	}

	svc.mu.Lock()
	state, round := svc.record.Lookup()
	session, err := svc.coordinator.Session()
	svc.mu.Unlock()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read coordinator session: %w", err)
	}

	snap := Snapshot{
		Version: snapshotVersion,
		State:   state,
		Round:   round,
		Session: session,
		SavedAt: time.Now().UTC(),
	}

	if svc.snapshots != nil {
		data, err := snap.Encode()
		if err != nil {
			return Snapshot{}, err
		}
		if err := svc.snapshots.Save(ctx, svc.cfg.SnapshotKey, data); err != nil {
			return Snapshot{}, fmt.Errorf("failed to save snapshot: %w", err)
		}
	}
	svc.final = &snap

	if obs, ok := svc.trainer.(StopObserver); ok {
		if _, err := callHook(func() (struct{}, error) {
			obs.OnStop()

			return struct{}{}, nil
		}); err != nil {
			svc.logger.Warn("stop hook failed", slog.Any("error", err))
		}
	}

	svc.logger.Info("participant stopped", slog.String("state", state.String()), slog.Uint64("round", round))

	return snap, nil
}

func (svc *service) Lookup() (State, uint64) {
	return svc.record.Lookup()
}

func (svc *service) Status(_ context.Context) (Status, error) {
	state, round := svc.record.Lookup()
	_, hasGlobal := svc.store.Global()

	st := Status{
		State:       state,
		Round:       round,
		Worker:      WorkerState(svc.worker.Load()),
		Mode:        svc.cfg.Mode,
		GlobalModel: hasGlobal,
	}
	if r, _, ok := svc.store.Pending(); ok {
		st.PendingRound = &r
	}

	return st, nil
}

func (svc *service) WaitUntilSelectedOrDone(ctx context.Context) (State, error) {
	return svc.record.WaitUntilSelectedOrDone(ctx)
}

func (svc *service) WaitUntilNextRound(ctx context.Context) (State, error) {
	return svc.record.WaitUntilNextRound(ctx)
}

func (svc *service) GlobalModel(_ context.Context) (any, error) {
	svc.store.ClearNotification()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	global, ok := svc.store.Global()
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}

	return global, nil
}

func (svc *service) SubmitLocalModel(_ context.Context, model fl.Model) error {
	if svc.stopped.Load() {
		return ErrStopped
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	state, round := svc.record.Lookup()
	if state != Training {
		return fmt.Errorf("%w: state is %s", ErrNotSelected, state)
	}

	return svc.store.SetLocal(round, model)
}

func (svc *service) NewGlobalModel() <-chan struct{} {
	return svc.store.Notification()
}

func (svc *service) Done() <-chan struct{} {
	return svc.done
}

func (svc *service) Err() error {
	svc.lifeMu.Lock()
	defer svc.lifeMu.Unlock()

	return svc.err
}

// callHook runs a training hook call, turning errors and panics into
// ErrTrainerFailed.
func callHook[T any](fn func() (T, error)) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrTrainerFailed, r)
		}
	}()

	res, err = fn()
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrTrainerFailed, err)
	}

	return res, nil
}
