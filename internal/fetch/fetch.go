// Package fetch implements the cache-aside algorithm used by every
// screen-level data need: read the cache, else fetch remote, else fail. The
// logic is written once, generic over the value shape, and parameterized by
// explicit strategy functions so callers plug in a cache reader, a remote
// fetcher, an apply callback, and a cache writer.
//
// Contract:
//  1. Unless force-refreshed, a present cache value is applied and returned
//     with no remote call.
//  2. A failed remote fetch mutates nothing: the stale cache (if any) is left
//     untouched and the apply callback is not re-invoked.
//  3. A successful fetch — including a legitimately empty result — is applied
//     and then written through to the cache.
//
// A cancelled context suppresses both the apply and the write; the resulting
// error is domain.KindCancelled and must not be shown to the user.
package fetch

import (
	"context"

	"github.com/resonatefm/resonate/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Single describes a cache-aside fetch for one value.
type Single[T any] struct {
	// Read returns the cached value and whether it was present.
	Read func() (T, bool)

	// Fetch retrieves the value remotely. An error means failure; an
	// empty-but-valid result is a success and overwrites the cache.
	Fetch func(ctx context.Context) (T, error)

	// Apply receives whichever value is used (cached or fresh).
	Apply func(T)

	// Write stores a freshly fetched value back into the cache.
	Write func(T)

	// Key, when set together with Group, coalesces identical in-flight
	// fetches: concurrent calls for the same key share one remote call.
	Key   string
	Group *singleflight.Group
}

// Do runs the cache-aside algorithm for a single value.
func Do[T any](ctx context.Context, force bool, p Single[T]) error {
	if !force && p.Read != nil {
		if cached, ok := p.Read(); ok {
			if p.Apply != nil {
				p.Apply(cached)
			}
			return nil
		}
	}

	fresh, err := fetchOne(ctx, p.Key, p.Group, p.Fetch)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.Wrap(domain.KindCancelled, err)
	}

	if p.Apply != nil {
		p.Apply(fresh)
	}
	if p.Write != nil {
		p.Write(fresh)
	}
	return nil
}

// Pair describes a cache-aside fetch for two values that live or die
// together (e.g. a profile plus its pin set).
type Pair[A, B any] struct {
	Read  func() (A, B, bool)
	Fetch func(ctx context.Context) (A, B, error)
	Apply func(A, B)
	Write func(A, B)

	Key   string
	Group *singleflight.Group
}

type pair[A, B any] struct {
	a A
	b B
}

// DoPair runs the cache-aside algorithm for a paired value. The pair is a
// unit: both halves must be cached for a hit, and both are applied and
// written together.
func DoPair[A, B any](ctx context.Context, force bool, p Pair[A, B]) error {
	if !force && p.Read != nil {
		if a, b, ok := p.Read(); ok {
			if p.Apply != nil {
				p.Apply(a, b)
			}
			return nil
		}
	}

	fresh, err := fetchOne(ctx, p.Key, p.Group, func(ctx context.Context) (pair[A, B], error) {
		a, b, err := p.Fetch(ctx)
		return pair[A, B]{a, b}, err
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.Wrap(domain.KindCancelled, err)
	}

	if p.Apply != nil {
		p.Apply(fresh.a, fresh.b)
	}
	if p.Write != nil {
		p.Write(fresh.a, fresh.b)
	}
	return nil
}

// Slice describes a cache-aside fetch for a collection. Callers may supply a
// staleness predicate decoupled from the cache's own TTL, for screen-specific
// freshness rules.
type Slice[T any] struct {
	// Read returns the cached collection; an empty result is a miss.
	Read func() []T

	// Stale, if non-nil, can reject a non-empty cached collection and force
	// the remote fetch anyway.
	Stale func([]T) bool

	Fetch func(ctx context.Context) ([]T, error)
	Apply func([]T)
	Write func([]T)

	Key   string
	Group *singleflight.Group
}

// DoSlice runs the cache-aside algorithm for a collection. A remote fetch
// returning an empty slice with no error is a legitimate result: it is
// applied and written, distinguishing "zero results" from "fetch failed".
func DoSlice[T any](ctx context.Context, force bool, p Slice[T]) error {
	if !force && p.Read != nil {
		cached := p.Read()
		if len(cached) > 0 && (p.Stale == nil || !p.Stale(cached)) {
			if p.Apply != nil {
				p.Apply(cached)
			}
			return nil
		}
	}

	fresh, err := fetchOne(ctx, p.Key, p.Group, p.Fetch)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.Wrap(domain.KindCancelled, err)
	}

	if p.Apply != nil {
		p.Apply(fresh)
	}
	if p.Write != nil {
		p.Write(fresh)
	}
	return nil
}

// fetchOne executes the remote fetch, coalescing through the singleflight
// group when a key is provided. Without a key, concurrent identical misses
// each hit the network; last write wins.
func fetchOne[T any](ctx context.Context, key string, group *singleflight.Group, fetch func(ctx context.Context) (T, error)) (T, error) {
	if key == "" || group == nil {
		return fetch(ctx)
	}

	v, err, _ := group.Do(key, func() (interface{}, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
