// Package cacheseq turns a single-pass producer of records into a replayable,
// randomly indexable sequence. Every item is pulled from the producer at most
// once; views, indexed reads and later iterations are served from an
// append-only in-memory cache.
//
// Components:
//   - Producer[T]: one-shot source of items (remote pages, SQL rows, iterators).
//   - Sequence[T]: owns the producer and its cache; safe for concurrent use.
//   - View[T]: an independent cursor over the sequence.
//   - Store[T]: optional persistence of completed sequences in a byte store
//     (Ristretto, BigCache, Redis) with CAS safety via per-key generations.
//
// Usage:
//
//	seq, _ := cacheseq.New[Record](producer, cacheseq.Options{Name: "find:users"})
//	r, err := seq.At(ctx, 10)       // pulls items 0..10 once
//	for r, err := range seq.All(ctx) { ... } // replays 0..10, then continues
//
// Persistence pattern:
//
//	seq, _ := store.Open(ctx, cacheseq.QueryKey("users", "age>30"), producer)
//	items, _ := seq.Collect(ctx)    // saved on completion, replayed on next Open
package cacheseq
