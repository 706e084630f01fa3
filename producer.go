package cacheseq

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// Producer is a stateful, single-pass source of items.
//
// Next returns (item, true, nil) for the next item and (zero, false, nil) once
// exhausted; an exhausted producer must stay exhausted. A non-nil error means
// the item could not be produced; the caller may call Next again to retry.
// Producers need not be safe for concurrent use: a Sequence serializes calls.
// A Producer that also implements io.Closer is closed by its Sequence after
// exhaustion or on Sequence.Close.
type Producer[T any] interface {
	Next(ctx context.Context) (item T, ok bool, err error)
}

// ProducerFunc adapts a function to Producer.
type ProducerFunc[T any] func(ctx context.Context) (T, bool, error)

func (f ProducerFunc[T]) Next(ctx context.Context) (T, bool, error) { return f(ctx) }

// FromSlice yields items in order. The slice is not copied.
func FromSlice[T any](items []T) Producer[T] {
	i := 0
	return ProducerFunc[T](func(context.Context) (T, bool, error) {
		if i >= len(items) {
			var zero T
			return zero, false, nil
		}
		v := items[i]
		i++
		return v, true, nil
	})
}

// pullProducer adapts iter.Pull/iter.Pull2. Close stops the underlying iterator.
type pullProducer[T any] struct {
	next func() (T, error, bool)
	stop func()
}

func (p *pullProducer[T]) Next(context.Context) (T, bool, error) {
	v, err, ok := p.next()
	if !ok {
		var zero T
		return zero, false, nil
	}
	return v, true, err
}

func (p *pullProducer[T]) Close() error {
	p.stop()
	return nil
}

// FromSeq pulls items from seq on demand.
func FromSeq[T any](seq iter.Seq[T]) Producer[T] {
	next, stop := iter.Pull(seq)
	return &pullProducer[T]{
		next: func() (T, error, bool) {
			v, ok := next()
			return v, nil, ok
		},
		stop: stop,
	}
}

// FromSeq2 pulls (item, error) pairs from seq on demand. A pair with a
// non-nil error is reported as a failed advance; the iterator decides whether
// a following pull continues or ends.
func FromSeq2[T any](seq iter.Seq2[T, error]) Producer[T] {
	next, stop := iter.Pull2(seq)
	return &pullProducer[T]{next: next, stop: stop}
}

// PageFunc fetches up to limit records starting at offset.
// Returning fewer than limit records marks the last page.
type PageFunc[T any] func(ctx context.Context, offset, limit int) ([]T, error)

var errPageOverflow = errors.New("page larger than requested limit")

type paged[T any] struct {
	fetch PageFunc[T]
	size  int

	buf    []T
	offset int // records fetched so far
	last   bool
}

// Paged yields records one by one from pages of pageSize fetched lazily.
// pageSize <= 0 selects DefaultPageSize.
// A failed fetch is returned from Next and retried at the same offset.
func Paged[T any](fetch PageFunc[T], pageSize int) Producer[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &paged[T]{fetch: fetch, size: pageSize}
}

func (p *paged[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for len(p.buf) == 0 {
		if p.last {
			return zero, false, nil
		}
		page, err := p.fetch(ctx, p.offset, p.size)
		if err != nil {
			return zero, false, fmt.Errorf("fetch page at offset %d: %w", p.offset, err)
		}
		if len(page) > p.size {
			return zero, false, fmt.Errorf("fetch page at offset %d: %w (%d > %d)", p.offset, errPageOverflow, len(page), p.size)
		}
		p.offset += len(page)
		p.last = len(page) < p.size
		p.buf = page
	}
	v := p.buf[0]
	p.buf = p.buf[1:]
	return v, true, nil
}
