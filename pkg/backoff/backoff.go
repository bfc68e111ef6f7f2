// Package backoff computes the adaptive delay between coordinator polls.
package backoff

import (
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const jitterFactor = 0.5

var (
	errInvalidBounds = errors.New("backoff minimum must be positive and not above maximum")
	errInvalidFactor = errors.New("backoff factor must be at least 1")
)

type Config struct {
	Min    time.Duration `env:"MIN"    envDefault:"100ms"`
	Max    time.Duration `env:"MAX"    envDefault:"10s"`
	Factor float64       `env:"FACTOR" envDefault:"1.2"`
	Jitter bool          `env:"JITTER" envDefault:"false"`
}

func DefaultConfig() Config {
	return Config{
		Min:    100 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 1.2,
	}
}

func (c Config) Validate() error {
	if c.Min <= 0 || c.Min > c.Max {
		return errInvalidBounds
	}
	if c.Factor < 1 {
		return errInvalidFactor
	}

	return nil
}

// Policy is an exponential backoff that grows on every Duration call and is
// clipped to the configured maximum. It is safe for concurrent use.
type Policy struct {
	mu  sync.Mutex
	cfg Config
	exp *backoff.ExponentialBackOff
}

func New(cfg Config) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	exp := &backoff.ExponentialBackOff{
		InitialInterval: cfg.Min,
		Multiplier:      cfg.Factor,
		MaxInterval:     cfg.Max,
	}
	if cfg.Jitter {
		exp.RandomizationFactor = jitterFactor
	}
	exp.Reset()

	return &Policy{cfg: cfg, exp: exp}, nil
}

// Duration returns the current delay and advances it for the next call.
func (p *Policy) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := p.exp.NextBackOff()
	if d > p.cfg.Max {
		d = p.cfg.Max
	}
	if d < p.cfg.Min && !p.cfg.Jitter {
		d = p.cfg.Min
	}

	return d
}

// Reset makes the next Duration call return the minimum delay.
func (p *Policy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.exp.Reset()
}
