// Package host runs the training program as a child process, for example a
// python script or a wasm module under an external runtime such as wasmtime.
package host

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/trainer"
)

const waitDelay = time.Second

var (
	_ participant.Trainer = (*Trainer)(nil)

	ErrEmptyCommand = errors.New("training command is required")
	errRun          = errors.New("training command failed")
)

type Config struct {
	Command string        `env:"COMMAND"`
	Args    []string      `env:"ARGS"`
	Env     []string      `env:"ENV"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"0s"`
}

type Trainer struct {
	trainer.Codec

	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Trainer, error) {
	if cfg.Command == "" {
		return nil, ErrEmptyCommand
	}
	if _, err := exec.LookPath(cfg.Command); err != nil {
		return nil, err
	}

	return &Trainer{
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (t *Trainer) Train(ctx context.Context, round uint64, global any) (any, error) {
	req, err := trainer.NewRequest(round, global)
	if err != nil {
		return nil, err
	}
	in, err := req.Encode()
	if err != nil {
		return nil, err
	}

	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.cfg.Command, t.cfg.Args...)
	cmd.Stdin = bytes.NewReader(in)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children of the command may keep the output pipes open after a kill.
	cmd.WaitDelay = waitDelay
	if len(t.cfg.Env) > 0 {
		cmd.Env = append(cmd.Environ(), t.cfg.Env...)
	}

	begin := time.Now()
	err = cmd.Run()
	if stderr.Len() > 0 {
		t.logger.Debug("training command stderr", slog.Uint64("round", round), slog.String("stderr", stderr.String()))
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(errRun, ctxErr)
		}

		return nil, errors.Join(errRun, err)
	}
	t.logger.Debug("training command finished",
		slog.Uint64("round", round),
		slog.String("command", t.cfg.Command),
		slog.String("duration", time.Since(begin).String()),
	)

	return trainer.DecodeResult(stdout.Bytes())
}
