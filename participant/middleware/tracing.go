package middleware

import (
	"context"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/fl"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ participant.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    participant.Service
}

func Tracing(tracer trace.Tracer, svc participant.Service) participant.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Start(ctx context.Context) error {
	ctx, span := tm.tracer.Start(ctx, "start")
	defer span.End()

	return tm.svc.Start(ctx)
}

func (tm *tracing) Tick(ctx context.Context) (participant.Disposition, error) {
	return tm.svc.Tick(ctx)
}

func (tm *tracing) Stop(ctx context.Context) (snap participant.Snapshot, err error) {
	ctx, span := tm.tracer.Start(ctx, "stop")
	defer func() {
		span.SetAttributes(
			attribute.String("state", snap.State.String()),
			attribute.Int64("round", int64(snap.Round)),
		)
		span.End()
	}()

	return tm.svc.Stop(ctx)
}

func (tm *tracing) Lookup() (participant.State, uint64) {
	return tm.svc.Lookup()
}

func (tm *tracing) Status(ctx context.Context) (participant.Status, error) {
	ctx, span := tm.tracer.Start(ctx, "status")
	defer span.End()

	return tm.svc.Status(ctx)
}

func (tm *tracing) WaitUntilSelectedOrDone(ctx context.Context) (participant.State, error) {
	ctx, span := tm.tracer.Start(ctx, "wait-until-selected-or-done")
	defer span.End()

	return tm.svc.WaitUntilSelectedOrDone(ctx)
}

func (tm *tracing) WaitUntilNextRound(ctx context.Context) (participant.State, error) {
	ctx, span := tm.tracer.Start(ctx, "wait-until-next-round")
	defer span.End()

	return tm.svc.WaitUntilNextRound(ctx)
}

func (tm *tracing) GlobalModel(ctx context.Context) (any, error) {
	ctx, span := tm.tracer.Start(ctx, "global-model")
	defer span.End()

	return tm.svc.GlobalModel(ctx)
}

func (tm *tracing) SubmitLocalModel(ctx context.Context, model fl.Model) error {
	ctx, span := tm.tracer.Start(ctx, "submit-local-model", trace.WithAttributes(
		attribute.String("data_type", string(model.DataType)),
		attribute.Int("length", model.Len()),
	))
	defer span.End()

	return tm.svc.SubmitLocalModel(ctx, model)
}

func (tm *tracing) NewGlobalModel() <-chan struct{} {
	return tm.svc.NewGlobalModel()
}

func (tm *tracing) Done() <-chan struct{} {
	return tm.svc.Done()
}

func (tm *tracing) Err() error {
	return tm.svc.Err()
}

func TracingTick(tracer trace.Tracer) participant.TickMiddleware {
	return func(next participant.TickFunc) participant.TickFunc {
		return func(ctx context.Context) (d participant.Disposition, err error) {
			ctx, span := tracer.Start(ctx, "tick")
			defer func() {
				span.SetAttributes(
					attribute.Bool("new_global_model", d.NewGlobalModel),
					attribute.Bool("submit_model", d.SubmitModel),
					attribute.Bool("made_progress", d.MadeProgress),
					attribute.String("state", d.State.String()),
					attribute.Int64("round", int64(d.Round)),
				)
				if err != nil {
					span.RecordError(err)
				}
				span.End()
			}()

			return next(ctx)
		}
	}
}
