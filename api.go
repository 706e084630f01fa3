package cacheseq

import (
	"context"
	"fmt"
	"iter"
	"time"

	c "github.com/unkn0wn-root/cacheseq/codec"
	gen "github.com/unkn0wn-root/cacheseq/genstore"
	pr "github.com/unkn0wn-root/cacheseq/provider"
)

// Sequence is a replayable view over a one-shot Producer.
// Items are pulled lazily, at most once each, and cached in production order.
// All methods are safe for concurrent use.
type Sequence[T any] interface {
	// Views
	View() *View[T]
	All(ctx context.Context) iter.Seq2[T, error]

	// Random access. Negative index => ErrInvalidIndex; past the end => ErrOutOfRange.
	At(ctx context.Context, index int) (T, error)

	// Observation (never advances the producer)
	Complete() bool
	Cached() int

	// Draining (expensive: advances until the producer is exhausted)
	Len(ctx context.Context) (int, error)
	Collect(ctx context.Context) ([]T, error)

	String() string
	Close(ctx context.Context) error
}

// Options tune a Sequence. The zero value is ready to use.
type Options struct {
	Name            string // label for logs/hooks; "" => "seq"
	Logger          Logger // if nil, NopLogger is used
	Hooks           Hooks  // if nil, NopHooks is used
	InitialCapacity int    // cache capacity hint; 0 => grow on demand
}

// New wraps p without pulling from it.
func New[T any](p Producer[T], opts Options) (Sequence[T], error) {
	if p == nil {
		return nil, fmt.Errorf("cacheseq: producer is required")
	}
	return newSequence[T](p, opts, nil), nil
}

// Of returns an already complete sequence over items.
func Of[T any](items ...T) Sequence[T] {
	return newComplete[T](items, Options{})
}

type SetCostFunc func(key string, raw []byte, items int) int64

// Store persists completed sequences so they can be replayed without
// re-running their producer. Writes are CAS-protected by per-key generations.
type Store[T any] interface {
	Enabled() bool
	Close(context.Context) error

	// Open replays a stored sequence for key, or wraps p and saves it on completion.
	Open(ctx context.Context, key string, p Producer[T]) (Sequence[T], error)

	Load(ctx context.Context, key string) (items []T, ok bool, err error)
	Save(ctx context.Context, key string, items []T, observedGen uint64, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error

	// Generation snapshot (for CAS)
	SnapshotGen(key string) uint64
}

// StoreOptions configure a Store.
// Only Namespace, Provider and Codec are required; others have sensible defaults.
type StoreOptions[T any] struct {
	// Required
	Namespace string // e.g. "find:users", "portal:orders"
	Provider  pr.Provider
	Codec     c.Codec[T]

	Logger          Logger        // if nil, NopLogger is used
	Hooks           Hooks         // if nil, NopHooks is used
	TTL             time.Duration // 0 => 10m
	CleanupInterval time.Duration // 0 => 1h
	GenRetention    time.Duration // 0 => 30d
	Disabled        bool          // default false (enabled)
	ComputeSetCost  SetCostFunc   // default: number of items
	GenStore        gen.GenStore  // nil => LocalGenStore (in-process)
}

func NewStore[T any](opts StoreOptions[T]) (Store[T], error) {
	return newStore[T](opts)
}
