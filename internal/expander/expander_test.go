package expander

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGenerator records calls and returns a canned expansion.
type countingGenerator struct {
	calls int
	err   error
}

func (g *countingGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("expanded[%d]: %s", g.calls, prompt), nil
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"React Dev", "react dev"},
		{"  need a Python mentor  ", "need a python mentor"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestExpandCacheHit(t *testing.T) {
	gen := &countingGenerator{}
	exp := New(gen)
	ctx := context.Background()

	first, err := exp.Expand(ctx, "react dev")
	require.NoError(t, err)

	second, err := exp.Expand(ctx, "react dev")
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls, "second call must be a cache hit")
	assert.Equal(t, first, second)
}

func TestExpandNormalizedKeysShareCache(t *testing.T) {
	gen := &countingGenerator{}
	exp := New(gen)
	ctx := context.Background()

	_, err := exp.Expand(ctx, "React Dev")
	require.NoError(t, err)
	_, err = exp.Expand(ctx, "  react dev ")
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
}

func TestExpandMissAfterTTLExpiry(t *testing.T) {
	gen := &countingGenerator{}
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	exp := New(gen, WithTTL(24*time.Hour), WithClock(clock.Now))
	ctx := context.Background()

	_, err := exp.Expand(ctx, "golang backend")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)

	// Just before expiry: still a hit
	clock.Advance(24*time.Hour - time.Second)
	_, err = exp.Expand(ctx, "golang backend")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)

	// Past expiry: fresh provider call
	clock.Advance(2 * time.Second)
	_, err = exp.Expand(ctx, "golang backend")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestExpandProviderFailure(t *testing.T) {
	gen := &countingGenerator{err: errors.New("quota exceeded")}
	exp := New(gen)

	_, err := exp.Expand(context.Background(), "ml engineer")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExpansionFailed)
	assert.Equal(t, 0, exp.Size(), "failed expansions must not be cached")
}

func TestExpandEmptyQuery(t *testing.T) {
	gen := &countingGenerator{}
	exp := New(gen)

	_, err := exp.Expand(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrExpansionFailed)
	assert.Equal(t, 0, gen.calls)
}

func TestCacheBounded(t *testing.T) {
	gen := &countingGenerator{}
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	exp := New(gen, WithTTL(time.Hour), WithClock(clock.Now), WithCacheSize(50))
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_, err := exp.Expand(ctx, fmt.Sprintf("query %d", i))
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, exp.Size(), 50, "cache must evict when full")

	// Entries that outlived their TTL don't pin capacity either
	clock.Advance(48 * time.Hour)
	_, err := exp.Expand(ctx, "fresh query")
	require.NoError(t, err)
	for i := 950; i < 1000; i++ {
		_, ok := exp.lookup(fmt.Sprintf("query %d", i))
		assert.False(t, ok)
	}
}

func TestExpiredEntryEvicted(t *testing.T) {
	gen := &countingGenerator{}
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	exp := New(gen, WithTTL(time.Hour), WithClock(clock.Now))
	ctx := context.Background()

	_, err := exp.Expand(ctx, "devops")
	require.NoError(t, err)
	assert.Equal(t, 1, exp.Size())

	clock.Advance(2 * time.Hour)
	_, ok := exp.lookup("devops")
	assert.False(t, ok)
	assert.Equal(t, 0, exp.Size())
}
