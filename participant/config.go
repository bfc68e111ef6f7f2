package participant

import (
	"errors"
	"fmt"

	"github.com/absmach/fedlearn/pkg/backoff"
)

var errEmptySnapshotKey = errors.New("snapshot key is required")

type Mode string

const (
	// ModeSync trains inside the worker through the configured Trainer.
	ModeSync Mode = "sync"
	// ModeAsync leaves training to the embedder, who is notified of new
	// global models and pushes local models back.
	ModeAsync Mode = "async"
)

type Config struct {
	Mode        Mode           `env:"MODE"         envDefault:"sync"`
	SnapshotKey string         `env:"SNAPSHOT_KEY" envDefault:"participant"`
	Backoff     backoff.Config `envPrefix:"BACKOFF_"`
}

func DefaultConfig() Config {
	return Config{
		Mode:        ModeSync,
		SnapshotKey: "participant",
		Backoff:     backoff.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeSync, ModeAsync:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if c.SnapshotKey == "" {
		return errEmptySnapshotKey
	}
	if err := c.Backoff.Validate(); err != nil {
		return fmt.Errorf("invalid backoff configuration: %w", err)
	}

	return nil
}

type options struct {
	participate ParticipationPolicy
	restore     *Snapshot
	tick        []TickMiddleware
}

type Option func(*options)

// WithParticipationPolicy overrides the default policy of training in every
// round the participant is selected for.
func WithParticipationPolicy(p ParticipationPolicy) Option {
	return func(o *options) {
		if p != nil {
			o.participate = p
		}
	}
}

// WithTickMiddleware wraps ticks with mws. The first middleware is the
// outermost one.
func WithTickMiddleware(mws ...TickMiddleware) Option {
	return func(o *options) {
		o.tick = append(o.tick, mws...)
	}
}

// WithRestore resumes from a snapshot returned by an earlier Stop.
func WithRestore(s Snapshot) Option {
	return func(o *options) {
		o.restore = &s
	}
}
