package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/fl"
)

var _ participant.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    participant.Service
}

func Logging(logger *slog.Logger, svc participant.Service) participant.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Start(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Start participant failed", args...)

			return
		}
		lm.logger.Info("Start participant completed successfully", args...)
	}(time.Now())

	return lm.svc.Start(ctx)
}

// Tick is logged by LoggingTick, which the worker's ticks pass through too.
func (lm *loggingMiddleware) Tick(ctx context.Context) (participant.Disposition, error) {
	return lm.svc.Tick(ctx)
}

func (lm *loggingMiddleware) Stop(ctx context.Context) (snap participant.Snapshot, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("snapshot",
				slog.String("state", snap.State.String()),
				slog.Uint64("round", snap.Round),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Stop participant failed", args...)

			return
		}
		lm.logger.Info("Stop participant completed successfully", args...)
	}(time.Now())

	return lm.svc.Stop(ctx)
}

func (lm *loggingMiddleware) Lookup() (participant.State, uint64) {
	return lm.svc.Lookup()
}

func (lm *loggingMiddleware) Status(ctx context.Context) (st participant.Status, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("state", st.State.String()),
			slog.Uint64("round", st.Round),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get status failed", args...)

			return
		}
		lm.logger.Debug("Get status completed successfully", args...)
	}(time.Now())

	return lm.svc.Status(ctx)
}

func (lm *loggingMiddleware) WaitUntilSelectedOrDone(ctx context.Context) (state participant.State, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("state", state.String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Wait until selected or done failed", args...)

			return
		}
		lm.logger.Info("Wait until selected or done completed successfully", args...)
	}(time.Now())

	return lm.svc.WaitUntilSelectedOrDone(ctx)
}

func (lm *loggingMiddleware) WaitUntilNextRound(ctx context.Context) (state participant.State, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("state", state.String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Wait until next round failed", args...)

			return
		}
		lm.logger.Info("Wait until next round completed successfully", args...)
	}(time.Now())

	return lm.svc.WaitUntilNextRound(ctx)
}

func (lm *loggingMiddleware) GlobalModel(ctx context.Context) (global any, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get global model failed", args...)

			return
		}
		lm.logger.Info("Get global model completed successfully", args...)
	}(time.Now())

	return lm.svc.GlobalModel(ctx)
}

func (lm *loggingMiddleware) SubmitLocalModel(ctx context.Context, model fl.Model) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("model",
				slog.String("data_type", string(model.DataType)),
				slog.Int("length", model.Len()),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Submit local model failed", args...)

			return
		}
		lm.logger.Info("Submit local model completed successfully", args...)
	}(time.Now())

	return lm.svc.SubmitLocalModel(ctx, model)
}

func (lm *loggingMiddleware) NewGlobalModel() <-chan struct{} {
	return lm.svc.NewGlobalModel()
}

func (lm *loggingMiddleware) Done() <-chan struct{} {
	return lm.svc.Done()
}

func (lm *loggingMiddleware) Err() error {
	return lm.svc.Err()
}

// LoggingTick logs every tick. Ticks are logged at debug level since the
// worker runs one on every poll.
func LoggingTick(logger *slog.Logger) participant.TickMiddleware {
	return func(next participant.TickFunc) participant.TickFunc {
		return func(ctx context.Context) (d participant.Disposition, err error) {
			defer func(begin time.Time) {
				args := []any{
					slog.String("duration", time.Since(begin).String()),
					slog.Group("disposition",
						slog.Bool("new_global_model", d.NewGlobalModel),
						slog.Bool("submit_model", d.SubmitModel),
						slog.Bool("made_progress", d.MadeProgress),
						slog.String("state", d.State.String()),
						slog.Uint64("round", d.Round),
					),
				}
				if err != nil {
					args = append(args, slog.Any("error", err))
					logger.Warn("Tick failed", args...)

					return
				}
				logger.Debug("Tick completed successfully", args...)
			}(time.Now())

			return next(ctx)
		}
	}
}
