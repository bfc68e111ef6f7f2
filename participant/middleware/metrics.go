package middleware

import (
	"context"
	"time"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/go-kit/kit/metrics"
)

var _ participant.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     participant.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc participant.Service) participant.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Start(ctx context.Context) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "start").Add(1)
		mm.latency.With("method", "start").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Start(ctx)
}

func (mm *metricsMiddleware) Tick(ctx context.Context) (participant.Disposition, error) {
	return mm.svc.Tick(ctx)
}

func (mm *metricsMiddleware) Stop(ctx context.Context) (participant.Snapshot, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "stop").Add(1)
		mm.latency.With("method", "stop").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Stop(ctx)
}

func (mm *metricsMiddleware) Lookup() (participant.State, uint64) {
	mm.counter.With("method", "lookup").Add(1)

	return mm.svc.Lookup()
}

func (mm *metricsMiddleware) Status(ctx context.Context) (participant.Status, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "status").Add(1)
		mm.latency.With("method", "status").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Status(ctx)
}

func (mm *metricsMiddleware) WaitUntilSelectedOrDone(ctx context.Context) (participant.State, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "wait-until-selected-or-done").Add(1)
		mm.latency.With("method", "wait-until-selected-or-done").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.WaitUntilSelectedOrDone(ctx)
}

func (mm *metricsMiddleware) WaitUntilNextRound(ctx context.Context) (participant.State, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "wait-until-next-round").Add(1)
		mm.latency.With("method", "wait-until-next-round").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.WaitUntilNextRound(ctx)
}

func (mm *metricsMiddleware) GlobalModel(ctx context.Context) (any, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "global-model").Add(1)
		mm.latency.With("method", "global-model").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.GlobalModel(ctx)
}

func (mm *metricsMiddleware) SubmitLocalModel(ctx context.Context, model fl.Model) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "submit-local-model").Add(1)
		mm.latency.With("method", "submit-local-model").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.SubmitLocalModel(ctx, model)
}

func (mm *metricsMiddleware) NewGlobalModel() <-chan struct{} {
	return mm.svc.NewGlobalModel()
}

func (mm *metricsMiddleware) Done() <-chan struct{} {
	return mm.svc.Done()
}

func (mm *metricsMiddleware) Err() error {
	return mm.svc.Err()
}

// TickMetrics counts and times ticks and exposes the state and round observed
// by the last one.
func TickMetrics(counter metrics.Counter, latency metrics.Histogram, state, round metrics.Gauge) participant.TickMiddleware {
	return func(next participant.TickFunc) participant.TickFunc {
		return func(ctx context.Context) (d participant.Disposition, err error) {
			defer func(begin time.Time) {
				counter.Add(1)
				latency.Observe(time.Since(begin).Seconds())
				state.Set(float64(d.State))
				round.Set(float64(d.Round))
			}(time.Now())

			return next(ctx)
		}
	}
}
