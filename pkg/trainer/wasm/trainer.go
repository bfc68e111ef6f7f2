// Package wasm runs a WASI training program inside the participant process
// using wazero.
package wasm

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/trainer"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

var (
	_ participant.Trainer      = (*Trainer)(nil)
	_ participant.StopObserver = (*Trainer)(nil)

	ErrEmptyModule = errors.New("empty wasm module")
	ErrClosed      = errors.New("wasm trainer is closed")
	errCompile     = errors.New("failed to compile wasm module")
	errRun         = errors.New("wasm training program failed")
)

type Config struct {
	ModulePath string   `env:"MODULE_PATH"`
	ImageURL   string   `env:"IMAGE_URL"`
	Args       []string `env:"ARGS"`
}

// Trainer instantiates the compiled module once per round. Each instance runs
// the module's _start function to completion.
type Trainer struct {
	trainer.Codec

	mu       sync.Mutex
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	args     []string
	logger   *slog.Logger
}

func New(ctx context.Context, wasmBinary []byte, args []string, logger *slog.Logger) (*Trainer, error) {
	if len(wasmBinary) == 0 {
		return nil, ErrEmptyModule
	}

	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))

	// Training programs are plain WASI commands that only need stdio.
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	compiled, err := r.CompileModule(ctx, wasmBinary)
	if err != nil {
		_ = r.Close(ctx)

		return nil, errors.Join(errCompile, err)
	}

	return &Trainer{
		runtime:  r,
		compiled: compiled,
		args:     args,
		logger:   logger,
	}, nil
}

func (t *Trainer) Train(ctx context.Context, round uint64, global any) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runtime == nil {
		return nil, ErrClosed
	}

	req, err := trainer.NewRequest(round, global)
	if err != nil {
		return nil, err
	}
	in, err := req.Encode()
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithArgs(append([]string{"train"}, t.args...)...).
		WithStdin(bytes.NewReader(in)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	mod, err := t.runtime.InstantiateModule(ctx, t.compiled, cfg)
	if mod != nil {
		defer mod.Close(ctx)
	}
	if stderr.Len() > 0 {
		t.logger.Debug("wasm training program stderr", slog.Uint64("round", round), slog.String("stderr", stderr.String()))
	}
	if err != nil {
		var exitErr *sys.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 0 {
			return nil, errors.Join(errRun, err)
		}
	}

	return trainer.DecodeResult(stdout.Bytes())
}

func (t *Trainer) Close(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runtime == nil {
		return nil
	}
	err := t.runtime.Close(ctx)
	t.runtime = nil

	return err
}

func (t *Trainer) OnStop() {
	if err := t.Close(context.Background()); err != nil {
		t.logger.Warn("failed to close wasm runtime", slog.Any("error", err))
	}
}
