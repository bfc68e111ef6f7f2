package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/participant/api"
	"github.com/absmach/fedlearn/participant/middleware"
	"github.com/absmach/fedlearn/pkg/coordinator"
	coordhttp "github.com/absmach/fedlearn/pkg/coordinator/http"
	"github.com/absmach/fedlearn/pkg/coordinator/memory"
	coordmqtt "github.com/absmach/fedlearn/pkg/coordinator/mqtt"
	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/mqtt"
	"github.com/absmach/fedlearn/pkg/registry"
	"github.com/absmach/fedlearn/pkg/storage"
	"github.com/absmach/fedlearn/pkg/trainer/host"
	"github.com/absmach/fedlearn/pkg/trainer/wasm"
	"github.com/absmach/supermq/pkg/jaeger"
	"github.com/absmach/supermq/pkg/prometheus"
	"github.com/absmach/supermq/pkg/server"
	httpserver "github.com/absmach/supermq/pkg/server/http"
	"github.com/caarlos0/env/v11"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
)

const (
	svcName        = "participant"
	defHTTPPort    = "7080"
	envPrefix      = "FL_PARTICIPANT_"
	pathEnv        = ".env"
	completionPoll = time.Second
	stopTimeout    = 30 * time.Second
)

var errUnknownKind = errors.New("unknown kind")

type config struct {
	LogLevel    string  `env:"FL_PARTICIPANT_LOG_LEVEL"   envDefault:"info"`
	InstanceID  string  `env:"FL_PARTICIPANT_INSTANCE_ID"`
	Coordinator string  `env:"FL_PARTICIPANT_COORDINATOR" envDefault:"http"`
	Trainer     string  `env:"FL_PARTICIPANT_TRAINER"     envDefault:"host"`
	Token       string  `env:"FL_PARTICIPANT_TOKEN"`
	Scalar      float64 `env:"FL_PARTICIPANT_SCALAR"      envDefault:"1"`
	Script      string  `env:"FL_PARTICIPANT_SCRIPT"      envDefault:"round:1,finished"`
	OTELURL     url.URL `env:"FL_PARTICIPANT_OTEL_URL"`
	TraceRatio  float64 `env:"FL_PARTICIPANT_TRACE_RATIO" envDefault:"0"`

	Participant participant.Config `envPrefix:"FL_PARTICIPANT_"`
	Storage     storage.Config     `envPrefix:"FL_PARTICIPANT_STORAGE_"`
	HTTP        coordhttp.Config   `envPrefix:"FL_COORDINATOR_"`
	MQTT        mqtt.Config        `envPrefix:"FL_MQTT_"`
	Host        host.Config        `envPrefix:"FL_TRAINER_HOST_"`
	Wasm        wasm.Config        `envPrefix:"FL_TRAINER_WASM_"`
	Registry    registry.Config    `envPrefix:"FL_REGISTRY_"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := config{Participant: participant.DefaultConfig()}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	var tp trace.TracerProvider
	switch {
	case cfg.OTELURL == (url.URL{}):
		tp = noop.NewTracerProvider()
	default:
		sdktp, err := jaeger.NewProvider(ctx, svcName, cfg.OTELURL, cfg.InstanceID, cfg.TraceRatio)
		if err != nil {
			logger.Error("failed to initialize opentelemetry", slog.String("error", err.Error()))

			return
		}
		defer func() {
			if err := sdktp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	repo, err := storage.NewRepository(cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize snapshot storage", slog.String("error", err.Error()))

		return
	}
	defer repo.Close()

	session, opts, err := restore(ctx, cfg, repo, logger)
	if err != nil {
		logger.Error("failed to restore participant", slog.String("error", err.Error()))

		return
	}

	coord, closeCoord, err := newCoordinator(ctx, cfg, session, logger)
	if err != nil {
		logger.Error("failed to initialize coordinator client", slog.String("error", err.Error()))

		return
	}
	defer closeCoord()

	tr, err := newTrainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize trainer", slog.String("error", err.Error()))

		return
	}

	opts = append(opts, participant.WithTickMiddleware(
		middleware.LoggingTick(logger),
		middleware.TracingTick(tracer),
		newTickMetrics(),
	))

	svc, err := participant.NewService(cfg.Participant, coord, tr, repo, logger, opts...)
	if err != nil {
		logger.Error("failed to create participant", slog.String("error", err.Error()))

		return
	}
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)

	httpServerConfig := server.Config{Port: defHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefix + "HTTP_"}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err.Error()))

		return
	}

	hs := httpserver.NewServer(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(svc, logger, cfg.InstanceID), logger)

	if err := svc.Start(ctx); err != nil {
		logger.Error("failed to start participant", slog.String("error", err.Error()))

		return
	}
	logger.Info("participant started",
		slog.String("participant_id", session.ParticipantID),
		slog.String("coordinator", cfg.Coordinator),
		slog.String("trainer", cfg.Trainer),
		slog.String("mode", string(cfg.Participant.Mode)),
	)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	g.Go(func() error {
		return awaitCompletion(ctx, cancel, svc, logger)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()

	snap, err := svc.Stop(stopCtx)
	if err != nil {
		logger.Error("failed to stop participant", slog.String("error", err.Error()))

		return
	}
	logger.Info("participant snapshot saved",
		slog.String("key", cfg.Participant.SnapshotKey),
		slog.String("state", snap.State.String()),
		slog.Uint64("round", snap.Round),
	)
}

// restore resumes the participant stored under the snapshot key, or starts a
// new session when there is none.
func restore(ctx context.Context, cfg config, repo storage.Repository, logger *slog.Logger) (coordinator.Session, []participant.Option, error) {
	data, err := repo.Load(ctx, cfg.Participant.SnapshotKey)
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		session, err := coordinator.NewSession(cfg.Token, cfg.Scalar)
		if err != nil {
			return coordinator.Session{}, nil, err
		}
		logger.Info("created participant session", slog.String("participant_id", session.ParticipantID))

		return session, nil, nil
	case err != nil:
		return coordinator.Session{}, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap, err := participant.DecodeSnapshot(data)
	if err != nil {
		return coordinator.Session{}, nil, err
	}
	session, err := coordinator.RestoreSession(snap.Session)
	if err != nil {
		return coordinator.Session{}, nil, err
	}
	logger.Info("restored participant from snapshot",
		slog.String("participant_id", session.ParticipantID),
		slog.String("state", snap.State.String()),
		slog.Uint64("round", snap.Round),
		slog.Time("saved_at", snap.SavedAt),
	)

	return session, []participant.Option{participant.WithRestore(snap)}, nil
}

func newCoordinator(ctx context.Context, cfg config, session coordinator.Session, logger *slog.Logger) (participant.Coordinator, func(), error) {
	switch cfg.Coordinator {
	case "http":
		c, err := coordhttp.NewClient(cfg.HTTP, session)

		return c, func() {}, err
	case "mqtt":
		pubsub, err := mqtt.NewPubSub(cfg.MQTT, session.ParticipantID, logger)
		if err != nil {
			return nil, nil, err
		}
		topics := mqtt.NewTopics(cfg.MQTT.DomainID, cfg.MQTT.ChannelID)
		c, err := coordmqtt.NewClient(ctx, pubsub, topics, session, logger)
		if err != nil {
			_ = pubsub.Disconnect(ctx)

			return nil, nil, err
		}

		return c, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.MQTT.Timeout)
			defer cancel()
			if err := c.Close(closeCtx); err != nil {
				logger.Warn("failed to unsubscribe from coordinator topics", slog.Any("error", err))
			}
			if err := pubsub.Disconnect(closeCtx); err != nil {
				logger.Warn("failed to disconnect from mqtt broker", slog.Any("error", err))
			}
		}, nil
	case "memory":
		script, err := memory.ParseScript(cfg.Script)
		if err != nil {
			return nil, nil, err
		}

		return memory.New(session, script...), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w of coordinator: %q", errUnknownKind, cfg.Coordinator)
	}
}

func newTrainer(ctx context.Context, cfg config, logger *slog.Logger) (participant.Trainer, error) {
	switch cfg.Trainer {
	case "host":
		return host.New(cfg.Host, logger)
	case "wasm":
		binary, err := loadModule(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}

		return wasm.New(ctx, binary, cfg.Wasm.Args, logger)
	default:
		return nil, fmt.Errorf("%w of trainer: %q", errUnknownKind, cfg.Trainer)
	}
}

func loadModule(ctx context.Context, cfg config, logger *slog.Logger) ([]byte, error) {
	if cfg.Wasm.ModulePath != "" {
		logger.Info("loading wasm module", slog.String("path", cfg.Wasm.ModulePath))

		return os.ReadFile(cfg.Wasm.ModulePath)
	}
	if cfg.Wasm.ImageURL == "" {
		return nil, errors.New("either a wasm module path or an image URL is required")
	}

	client, err := registry.NewClient(cfg.Registry, logger)
	if err != nil {
		return nil, err
	}

	return client.Pull(ctx, cfg.Wasm.ImageURL)
}

// awaitCompletion shuts the process down once training finished or the
// worker stopped on its own.
func awaitCompletion(ctx context.Context, cancel context.CancelFunc, svc participant.Service, logger *slog.Logger) error {
	ticker := time.NewTicker(completionPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.Done():
			cancel()

			return svc.Err()
		case <-ticker.C:
			if state, round := svc.Lookup(); state == participant.Done {
				logger.Info("training finished", slog.Uint64("round", round))
				cancel()

				return nil
			}
		}
	}
}

func newTickMetrics() participant.TickMiddleware {
	counter := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: svcName,
		Subsystem: "worker",
		Name:      "tick_count",
		Help:      "Number of ticks run.",
	}, nil)
	latency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
		Namespace: svcName,
		Subsystem: "worker",
		Name:      "tick_latency_seconds",
		Help:      "Duration of ticks in seconds.",
	}, nil)
	state := kitprometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
		Namespace: svcName,
		Subsystem: "worker",
		Name:      "state",
		Help:      "Participant state: 0 waiting for selection, 1 training, 2 post training, 3 done.",
	}, nil)
	round := kitprometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
		Namespace: svcName,
		Subsystem: "worker",
		Name:      "round",
		Help:      "Round the participant is in.",
	}, nil)

	return middleware.TickMetrics(counter, latency, state, round)
}
