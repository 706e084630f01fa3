package cacheseq

import (
	"context"
	"fmt"
	"io"
	"iter"
	"slices"
	"sync"
	"sync/atomic"
)

// state is the published cache: the consumed prefix plus the completeness flag.
// A published state is never mutated; the writer swaps in a new one.
type state[T any] struct {
	items    []T
	complete bool
}

type sequence[T any] struct {
	name  string
	log   Logger
	hooks Hooks

	producer Producer[T]

	// advance token: at most one producer call in flight
	sem chan struct{}
	st  atomic.Pointer[state[T]]

	closed     atomic.Bool
	closeOnce  sync.Once
	onComplete func(ctx context.Context, items []T)
}

func newSequence[T any](p Producer[T], opts Options, onComplete func(context.Context, []T)) *sequence[T] {
	s := &sequence[T]{
		name:       coalesce(opts.Name, defaultName),
		log:        coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:      coalesce[Hooks](opts.Hooks, NopHooks{}),
		producer:   p,
		sem:        make(chan struct{}, 1),
		onComplete: onComplete,
	}
	var items []T
	if opts.InitialCapacity > 0 {
		items = make([]T, 0, opts.InitialCapacity)
	}
	s.st.Store(&state[T]{items: items})
	return s
}

func newComplete[T any](items []T, opts Options) *sequence[T] {
	s := &sequence[T]{
		name:  coalesce(opts.Name, defaultName),
		log:   coalesce[Logger](opts.Logger, NopLogger{}),
		hooks: coalesce[Hooks](opts.Hooks, NopHooks{}),
		sem:   make(chan struct{}, 1),
	}
	s.st.Store(&state[T]{items: slices.Clip(slices.Clone(items)), complete: true})
	return s
}

func (s *sequence[T]) View() *View[T] { return &View[T]{seq: s} }

func (s *sequence[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return s.View().All(ctx)
}

func (s *sequence[T]) At(ctx context.Context, index int) (T, error) {
	var zero T
	if index < 0 {
		return zero, &IndexError{Index: index, Len: s.Cached(), Err: ErrInvalidIndex}
	}
	st, err := s.fill(ctx, index+1)
	if err != nil {
		return zero, err
	}
	if index >= len(st.items) {
		// fill only stops short when exhaustion was observed
		return zero, &IndexError{Index: index, Len: len(st.items), Err: ErrOutOfRange}
	}
	return st.items[index], nil
}

func (s *sequence[T]) Complete() bool { return s.st.Load().complete }

func (s *sequence[T]) Cached() int { return len(s.st.Load().items) }

func (s *sequence[T]) Len(ctx context.Context) (int, error) {
	st, err := s.drain(ctx)
	if err != nil {
		return 0, err
	}
	return len(st.items), nil
}

func (s *sequence[T]) Collect(ctx context.Context) ([]T, error) {
	st, err := s.drain(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(st.items), nil
}

func (s *sequence[T]) String() string {
	st := s.st.Load()
	return fmt.Sprintf("cacheseq.Sequence[%s] cached=%d complete=%t", s.name, len(st.items), st.complete)
}

// Close abandons the producer. Cached items stay readable; advancing fails
// with ErrClosed. Close waits for an in-flight advance to return before
// releasing the producer; if ctx ends first it returns ctx.Err() and a later
// Close waits again.
func (s *sequence[T]) Close(ctx context.Context) error {
	if s.Complete() {
		return nil
	}
	first := s.closed.CompareAndSwap(false, true)
	select {
	case s.sem <- struct{}{}:
	default:
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	func() {
		defer func() { <-s.sem }()
		s.releaseProducer()
	}()
	if first {
		s.log.Debug("sequence closed", Fields{"seq": s.name, "cached": s.Cached()})
	}
	return nil
}

// next returns the item at pos, advancing the producer at most once.
func (s *sequence[T]) next(ctx context.Context, pos int) (T, bool, error) {
	var zero T
	st, err := s.fill(ctx, pos+1)
	if err != nil {
		return zero, false, err
	}
	if pos < len(st.items) {
		return st.items[pos], true, nil
	}
	return zero, false, nil
}

func (s *sequence[T]) drain(ctx context.Context) (*state[T], error) {
	return s.fill(ctx, -1)
}

// fill advances the producer until at least want items are cached or the
// producer is exhausted. want < 0 means "until exhausted". Already cached
// positions are served without taking the advance token.
func (s *sequence[T]) fill(ctx context.Context, want int) (*state[T], error) {
	st := s.st.Load()
	if st.complete || (want >= 0 && len(st.items) >= want) {
		return st, nil
	}

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return st, ctx.Err()
	}
	st, finished, err := s.advanceUntil(ctx, want)

	if finished {
		n := len(st.items)
		s.log.Debug("sequence complete", Fields{"seq": s.name, "items": n})
		s.hooks.Exhausted(s.name, n)
		if s.onComplete != nil {
			s.onComplete(context.WithoutCancel(ctx), st.items)
		}
	}
	if err != nil {
		return s.st.Load(), err
	}
	return st, nil
}

// advanceUntil runs the advance loop for fill. The caller has taken the token;
// it is given back on return, including when the producer panics.
func (s *sequence[T]) advanceUntil(ctx context.Context, want int) (st *state[T], finished bool, err error) {
	defer func() { <-s.sem }()
	defer func() {
		if finished || s.closed.Load() {
			s.releaseProducer()
		}
	}()

	for {
		// another holder may have advanced while we waited
		st = s.st.Load()
		if st.complete || (want >= 0 && len(st.items) >= want) {
			return st, false, nil
		}
		if s.closed.Load() {
			return st, false, ErrClosed
		}
		if err = ctx.Err(); err != nil {
			return st, false, err
		}
		st, finished, err = s.advance(ctx, st)
		if err != nil || finished {
			return st, finished, err
		}
	}
}

// advance performs exactly one producer call. Caller holds the token.
func (s *sequence[T]) advance(ctx context.Context, st *state[T]) (*state[T], bool, error) {
	item, ok, err := s.producer.Next(ctx)
	if err != nil {
		idx := len(st.items)
		s.log.Warn("producer failed", Fields{"seq": s.name, "index": idx, "err": err})
		s.hooks.ProducerFailed(s.name, idx, err)
		return st, false, &ProducerError{Seq: s.name, Index: idx, Err: err}
	}
	if !ok {
		next := &state[T]{items: slices.Clip(st.items), complete: true}
		s.st.Store(next)
		return next, true, nil
	}
	// appends past every published length; earlier snapshots stay valid
	next := &state[T]{items: append(st.items, item)}
	s.st.Store(next)
	return next, false, nil
}

func (s *sequence[T]) releaseProducer() {
	s.closeOnce.Do(func() {
		if cl, ok := s.producer.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				s.log.Warn("producer close failed", Fields{"seq": s.name, "err": err})
			}
		}
		s.producer = nil
	})
}
