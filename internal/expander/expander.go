// Package expander enriches short developer-search queries into
// descriptive passages before embedding, amortizing the generative-text
// cost with a bounded TTL cache.
package expander

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultTTL is how long a cached expansion stays valid.
	DefaultTTL = 24 * time.Hour

	// DefaultCacheSize bounds the number of cached expansions; the
	// least recently used entry is evicted when full.
	DefaultCacheSize = 1000

	expansionPrompt = `A user is searching for a developer with this request: %q. Expand this request into a rich, descriptive paragraph detailing the ideal skills, roles, and technologies.`
)

// ErrExpansionFailed indicates the generative provider call failed.
var ErrExpansionFailed = errors.New("query expansion failed")

// Generator produces free text from a prompt. Implemented by the Gemini
// client; faked in tests.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// cacheEntry is a cached expansion with its expiration time
type cacheEntry struct {
	text      string
	expiresAt time.Time
}

// Expander expands raw search queries via a generative provider,
// memoizing results by normalized query in an LRU cache for the
// configured TTL. The clock is injected so expiry is deterministic in
// tests.
type Expander struct {
	generator Generator
	ttl       time.Duration
	now       func() time.Time
	cache     *lru.Cache[string, cacheEntry]
}

// Option configures an Expander.
type Option func(*Expander)

// WithTTL overrides the default cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(e *Expander) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(e *Expander) {
		if now != nil {
			e.now = now
		}
	}
}

// WithCacheSize overrides the default cache capacity.
func WithCacheSize(size int) Option {
	return func(e *Expander) {
		if size > 0 {
			cache, err := lru.New[string, cacheEntry](size)
			if err != nil {
				panic(fmt.Sprintf("failed to create LRU cache: %v", err))
			}
			e.cache = cache
		}
	}
}

// New creates an Expander backed by the given generator.
func New(generator Generator, opts ...Option) *Expander {
	cache, err := lru.New[string, cacheEntry](DefaultCacheSize)
	if err != nil {
		// Unreachable with a positive size
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	e := &Expander{
		generator: generator,
		ttl:       DefaultTTL,
		now:       time.Now,
		cache:     cache,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Normalize produces the cache key for a raw query.
func Normalize(rawQuery string) string {
	return strings.ToLower(strings.TrimSpace(rawQuery))
}

// Expand returns the expanded form of rawQuery, serving from cache when a
// non-expired entry exists. Concurrent misses for the same query may each
// call the provider; the last write wins and both callers get valid text.
func (e *Expander) Expand(ctx context.Context, rawQuery string) (string, error) {
	key := Normalize(rawQuery)
	if key == "" {
		return "", fmt.Errorf("%w: empty query", ErrExpansionFailed)
	}

	if text, ok := e.lookup(key); ok {
		return text, nil
	}

	text, err := e.generator.GenerateText(ctx, fmt.Sprintf(expansionPrompt, rawQuery))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExpansionFailed, err)
	}

	e.cache.Add(key, cacheEntry{
		text:      text,
		expiresAt: e.now().Add(e.ttl),
	})
	return text, nil
}

// lookup returns a cached expansion if present and not expired. An
// expired entry is removed so it stops occupying cache capacity.
func (e *Expander) lookup(key string) (string, bool) {
	entry, ok := e.cache.Get(key)
	if !ok {
		return "", false
	}

	if e.now().After(entry.expiresAt) {
		e.cache.Remove(key)
		return "", false
	}

	return entry.text, true
}

// Size returns the number of cached entries, expired or not.
func (e *Expander) Size() int {
	return e.cache.Len()
}
