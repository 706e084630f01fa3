package cacheseq

import (
	"context"
	"fmt"
	"io"
	"time"

	c "github.com/unkn0wn-root/cacheseq/codec"
	gen "github.com/unkn0wn-root/cacheseq/genstore"
	"github.com/unkn0wn-root/cacheseq/internal/util"
	"github.com/unkn0wn-root/cacheseq/internal/wire"
	pr "github.com/unkn0wn-root/cacheseq/provider"
)

// QueryKey derives a compact, deterministic Store key from the parts that
// identify a result set (layout, query, sort). Order matters.
func QueryKey(parts ...string) string {
	return util.QueryKey("q", parts)
}

type store[T any] struct {
	ns       string
	provider pr.Provider
	codec    c.Codec[T]
	log      Logger
	hooks    Hooks

	enabled bool

	ttl            time.Duration
	sweepInterval  time.Duration
	genRetention   time.Duration
	computeSetCost SetCostFunc
	gen            gen.GenStore
}

func newStore[T any](opts StoreOptions[T]) (*store[T], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("cacheseq: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("cacheseq: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("cacheseq: namespace is required")
	}

	s := &store[T]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
	}

	// defaults
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.ttl = coalesce(opts.TTL, defaultTTL)
	s.sweepInterval = coalesce(opts.CleanupInterval, defaultSweep)
	s.genRetention = coalesce(opts.GenRetention, defaultGenRetention)

	if opts.ComputeSetCost != nil {
		s.computeSetCost = opts.ComputeSetCost
	} else {
		s.computeSetCost = func(_ string, _ []byte, items int) int64 { return int64(max(items, 1)) }
	}

	if opts.GenStore != nil {
		s.gen = opts.GenStore
	} else {
		// default to in-process generations with periodic cleanup
		s.gen = gen.NewLocalGenStore(s.sweepInterval, s.genRetention)
	}

	return s, nil
}

func (s *store[T]) Enabled() bool { return s.enabled }

func (s *store[T]) Close(ctx context.Context) error {
	// Close gen store first (best effort)
	if s.gen != nil {
		_ = s.gen.Close(ctx)
	}
	if s.provider != nil {
		return s.provider.Close(ctx)
	}
	return nil
}

func (s *store[T]) Open(ctx context.Context, key string, p Producer[T]) (Sequence[T], error) {
	if p == nil {
		return nil, fmt.Errorf("cacheseq: producer is required")
	}
	opts := Options{Name: s.ns + ":" + key, Logger: s.log, Hooks: s.hooks}
	if !s.enabled {
		return newSequence[T](p, opts, nil), nil
	}

	k := s.storageKey(key)
	obs := s.snapshotGen(k)
	items, ok, err := s.load(ctx, k, obs)
	if err != nil {
		// provider outage: serve from the producer, do not persist
		s.log.Warn("snapshot load failed; running producer", Fields{"key": key, "err": err})
		return newSequence[T](p, opts, nil), nil
	}
	if ok {
		if cl, isCloser := p.(io.Closer); isCloser {
			_ = cl.Close()
		}
		s.hooks.SnapshotRestored(key, len(items))
		s.log.Debug("sequence restored from snapshot", Fields{"key": key, "items": len(items)})
		return newComplete[T](items, opts), nil
	}

	save := func(ctx context.Context, items []T) {
		if err := s.Save(ctx, key, items, obs, 0); err != nil {
			s.log.Warn("snapshot save failed", Fields{"key": key, "err": err})
		}
	}
	return newSequence[T](p, opts, save), nil
}

func (s *store[T]) Load(ctx context.Context, key string) ([]T, bool, error) {
	if !s.enabled {
		return nil, false, nil
	}
	k := s.storageKey(key)
	return s.load(ctx, k, s.snapshotGen(k))
}

func (s *store[T]) load(ctx context.Context, k string, currentGen uint64) ([]T, bool, error) {
	raw, ok, err := s.provider.Get(ctx, k)
	if err != nil || !ok {
		return nil, false, err
	}
	g, payloads, err := wire.DecodeSnapshot(raw)
	if err != nil {
		s.selfHeal(ctx, k, "corrupt")
		return nil, false, nil
	}
	// validate generation
	if g != currentGen {
		s.selfHeal(ctx, k, "gen_mismatch")
		return nil, false, nil
	}
	items := make([]T, 0, len(payloads))
	for _, p := range payloads {
		v, err := s.codec.Decode(p)
		if err != nil {
			s.selfHeal(ctx, k, "value_decode")
			return nil, false, nil
		}
		items = append(items, v)
	}
	return items, true, nil
}

func (s *store[T]) Save(ctx context.Context, key string, items []T, observedGen uint64, ttl time.Duration) error {
	if !s.enabled {
		return nil
	}
	if ttl == 0 {
		ttl = s.ttl
	}
	k := s.storageKey(key)
	if s.snapshotGen(k) != observedGen {
		// generation moved; skip stale write
		s.log.Debug("Save skipped (gen mismatch)", Fields{"key": key, "obs": observedGen})
		return nil
	}
	payloads := make([][]byte, 0, len(items))
	for _, it := range items {
		p, err := s.codec.Encode(it)
		if err != nil {
			return err
		}
		payloads = append(payloads, p)
	}
	wireb, err := wire.EncodeSnapshot(observedGen, payloads)
	if err != nil {
		return err
	}
	ok, err := s.provider.Set(ctx, k, wireb, s.computeSetCost(k, wireb, len(items)), ttl)
	if err != nil {
		return err
	}
	if !ok {
		s.hooks.ProviderSetRejected(k)
		s.log.Debug("Save rejected by provider (pressure)", Fields{"key": key})
	}
	return nil
}

// Invalidate bumps the key's generation and deletes its snapshot. Either half
// alone is enough to stop a replay, so an error is returned only when both fail.
func (s *store[T]) Invalidate(ctx context.Context, key string) error {
	if !s.enabled {
		return nil
	}
	k := s.storageKey(key)
	newGen, bumpErr := s.bumpGen(ctx, k)
	delErr := s.provider.Del(ctx, k)
	if bumpErr != nil && delErr != nil {
		s.hooks.InvalidateOutage(key, bumpErr, delErr)
		return &InvalidateError{Key: key, BumpErr: bumpErr, DelErr: delErr}
	}
	s.log.Debug("invalidated key (bumped gen + cleared snapshot)", Fields{"key": key, "newGen": newGen})
	return nil
}

func (s *store[T]) SnapshotGen(key string) uint64 {
	return s.snapshotGen(s.storageKey(key))
}

func (s *store[T]) snapshotGen(storageKey string) uint64 {
	g, err := s.gen.Snapshot(context.Background(), storageKey)
	if err != nil {
		// Conservative: treat as 0; snapshots written under a real gen then fail validation and self-heal
		s.hooks.GenSnapshotError(1, err)
		s.log.Warn("gen snapshot error", Fields{"key": storageKey, "err": err})
		return 0
	}
	return g
}

func (s *store[T]) bumpGen(ctx context.Context, storageKey string) (uint64, error) {
	g, err := s.gen.Bump(ctx, storageKey)
	if err != nil {
		s.hooks.GenBumpError(storageKey, err)
		s.log.Error("gen bump error", Fields{"key": storageKey, "err": err})
		return 0, err
	}
	return g, nil
}

func (s *store[T]) selfHeal(ctx context.Context, storageKey, reason string) {
	_ = s.provider.Del(ctx, storageKey)
	s.hooks.SelfHealSnapshot(storageKey, reason)
	s.log.Debug("snapshot self-healed", Fields{"key": storageKey, "reason": reason})
}

func (s *store[T]) storageKey(userKey string) string {
	// isolate by namespace
	return "seq:" + s.ns + ":" + userKey
}
