package cacheseq

import (
	"context"
	"iter"
)

// View is an independent cursor over a Sequence. Views share the sequence's
// cache and producer; each tracks only its own position.
// A View is not safe for concurrent use; create one per goroutine.
type View[T any] struct {
	seq *sequence[T]
	pos int
}

// Next returns the item at the cursor and moves past it.
// At the end of the sequence it returns ok=false with a nil error.
// On error the cursor does not move, so Next may be retried.
func (v *View[T]) Next(ctx context.Context) (item T, ok bool, err error) {
	item, ok, err = v.seq.next(ctx, v.pos)
	if ok {
		v.pos++
	}
	return item, ok, err
}

// Pos is the index of the item the next call to Next returns.
func (v *View[T]) Pos() int { return v.pos }

// Reset rewinds the cursor. Replayed items come from the cache.
func (v *View[T]) Reset() { v.pos = 0 }

// All yields the remaining items from the cursor onwards. Iteration stops
// after yielding the first error.
func (v *View[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, ok, err := v.Next(ctx)
			if err != nil {
				yield(item, err)
				return
			}
			if !ok || !yield(item, nil) {
				return
			}
		}
	}
}
