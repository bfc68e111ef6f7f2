package backoff_test

import (
	"testing"
	"time"

	"github.com/absmach/fedlearn/pkg/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc string
		cfg  backoff.Config
		fail bool
	}{
		{desc: "defaults", cfg: backoff.DefaultConfig()},
		{desc: "constant delay", cfg: backoff.Config{Min: time.Second, Max: time.Second, Factor: 1}},
		{desc: "zero minimum", cfg: backoff.Config{Max: time.Second, Factor: 2}, fail: true},
		{desc: "minimum above maximum", cfg: backoff.Config{Min: 2 * time.Second, Max: time.Second, Factor: 2}, fail: true},
		{desc: "shrinking factor", cfg: backoff.Config{Min: time.Millisecond, Max: time.Second, Factor: 0.5}, fail: true},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if tc.fail {
				assert.Error(t, err)

				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDurationGrowsToMaximum(t *testing.T) {
	t.Parallel()

	cfg := backoff.DefaultConfig()
	p, err := backoff.New(cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.Min, p.Duration())

	prev := cfg.Min
	for range 100 {
		d := p.Duration()
		assert.GreaterOrEqual(t, d, prev)
		assert.LessOrEqual(t, d, cfg.Max)
		prev = d
	}
	assert.Equal(t, cfg.Max, prev)
}

func TestResetReturnsToMinimum(t *testing.T) {
	t.Parallel()

	cfg := backoff.Config{Min: 10 * time.Millisecond, Max: time.Second, Factor: 2}
	p, err := backoff.New(cfg)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, p.Duration())
	assert.Equal(t, 20*time.Millisecond, p.Duration())
	assert.Equal(t, 40*time.Millisecond, p.Duration())

	p.Reset()
	assert.Equal(t, 10*time.Millisecond, p.Duration())
	assert.Equal(t, 20*time.Millisecond, p.Duration())
}

func TestJitterStaysWithinMaximum(t *testing.T) {
	t.Parallel()

	cfg := backoff.Config{Min: 10 * time.Millisecond, Max: 50 * time.Millisecond, Factor: 2, Jitter: true}
	p, err := backoff.New(cfg)
	require.NoError(t, err)

	for range 50 {
		d := p.Duration()
		assert.Positive(t, d)
		assert.LessOrEqual(t, d, cfg.Max)
	}
}
