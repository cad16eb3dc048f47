// Package enrich runs independent per-entity lookups concurrently. A failed
// lookup only affects its own entity; everything that succeeded is returned.
package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

const DefaultLimit = 4

// Lookup fetches the value for one key.
type Lookup[T any] func(ctx context.Context, key string) (T, error)

type Result[T any] struct {
	Key   string
	Value T
	Err   error
}

type config struct {
	limit  int
	logger *slog.Logger
	label  string
}

type Option func(*config)

// WithLimit caps the number of lookups in flight.
func WithLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.limit = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLabel names the lookup in log lines, e.g. "artist genres".
func WithLabel(label string) Option {
	return func(c *config) { c.label = label }
}

// Gather calls lookup once per key and returns one result per key, in key
// order. It never fails fast: errors and panics are recorded on the key's
// result and logged, and the other lookups carry on. Keys not yet started when
// ctx is cancelled get ctx.Err().
func Gather[T any](ctx context.Context, keys []string, lookup Lookup[T], opts ...Option) []Result[T] {
	cfg := config{limit: DefaultLimit, logger: slog.Default(), label: "lookup"}
	for _, opt := range opts {
		opt(&cfg)
	}

	results := make([]Result[T], len(keys))
	var g errgroup.Group
	g.SetLimit(cfg.limit)
	for i, key := range keys {
		results[i].Key = key
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			v, err := safeLookup(ctx, key, lookup)
			if err != nil {
				cfg.logger.Warn("enrichment failed", "lookup", cfg.label, "key", key, "error", err)
			}
			// Each goroutine owns its own slot.
			results[i].Value, results[i].Err = v, err
			return nil
		})
	}
	g.Wait()
	return results
}

func safeLookup[T any](ctx context.Context, key string, lookup Lookup[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lookup %q panicked: %v", key, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return v, err
	}
	return lookup(ctx, key)
}

// Succeeded returns the values of successful results keyed by key.
func Succeeded[T any](results []Result[T]) map[string]T {
	out := make(map[string]T, len(results))
	for _, r := range results {
		if r.Err == nil {
			out[r.Key] = r.Value
		}
	}
	return out
}

// Failed counts the results that carry an error.
func Failed[T any](results []Result[T]) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
