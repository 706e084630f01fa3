package cacheseq

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"
)

func TestFromSliceExhaustsAndStays(t *testing.T) {
	ctx := context.Background()
	p := FromSlice([]string{"a"})

	if v, ok, err := p.Next(ctx); !ok || err != nil || v != "a" {
		t.Fatalf("Next = %q, %v, %v", v, ok, err)
	}
	for i := 0; i < 2; i++ {
		if _, ok, err := p.Next(ctx); ok || err != nil {
			t.Fatalf("exhausted producer yielded again: ok=%v err=%v", ok, err)
		}
	}
}

func TestFromSeqStopsIteratorOnClose(t *testing.T) {
	ctx := context.Background()
	stopped := false
	seq := func(yield func(int) bool) {
		defer func() { stopped = true }()
		for i := 0; ; i++ {
			if !yield(i) {
				return
			}
		}
	}

	s := newTestSeq[int](t, FromSeq[int](seq))
	if v, err := s.At(ctx, 3); err != nil || v != 3 {
		t.Fatalf("At(3) = %d, %v", v, err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if !stopped {
		t.Fatalf("Close did not stop the pulled iterator")
	}
}

func TestFromSeq2ReportsErrorsAndCompletes(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	var seq iter.Seq2[int, error] = func(yield func(int, error) bool) {
		if !yield(1, nil) {
			return
		}
		if !yield(0, boom) {
			return
		}
		yield(2, nil)
	}

	s := newTestSeq[int](t, FromSeq2(seq))
	_, err := s.Collect(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("Collect err = %v, want boom", err)
	}
	// the iterator continues after the error pair
	got, err := s.Collect(ctx)
	if err != nil || !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("Collect after error = %v, %v", got, err)
	}
}

type pageCall struct{ offset, limit int }

func TestPagedFetchesLazily(t *testing.T) {
	ctx := context.Background()
	data := []int{0, 1, 2, 3, 4, 5, 6}
	var calls []pageCall
	fetch := func(_ context.Context, offset, limit int) ([]int, error) {
		calls = append(calls, pageCall{offset, limit})
		end := min(offset+limit, len(data))
		if offset >= end {
			return nil, nil
		}
		return data[offset:end], nil
	}

	s := newTestSeq[int](t, Paged(fetch, 3))
	if v, err := s.At(ctx, 0); err != nil || v != 0 {
		t.Fatalf("At(0) = %d, %v", v, err)
	}
	if len(calls) != 1 {
		t.Fatalf("At(0) fetched %d pages, want 1", len(calls))
	}
	if v, err := s.At(ctx, 4); err != nil || v != 4 {
		t.Fatalf("At(4) = %d, %v", v, err)
	}
	got, err := s.Collect(ctx)
	if err != nil || !slices.Equal(got, data) {
		t.Fatalf("Collect = %v, %v", got, err)
	}
	want := []pageCall{{0, 3}, {3, 3}, {6, 3}}
	if !slices.Equal(calls, want) {
		t.Fatalf("page calls = %v, want %v", calls, want)
	}
}

func TestPagedExactMultipleNeedsEmptyPage(t *testing.T) {
	ctx := context.Background()
	pages := 0
	fetch := func(_ context.Context, offset, _ int) ([]int, error) {
		pages++
		if offset == 0 {
			return []int{1, 2}, nil
		}
		return nil, nil
	}
	n, err := newTestSeq[int](t, Paged(fetch, 2)).Len(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Len = %d, %v", n, err)
	}
	if pages != 2 {
		t.Fatalf("fetched %d pages, want 2", pages)
	}
}

func TestPagedRetriesSameOffset(t *testing.T) {
	ctx := context.Background()
	var offsets []int
	failed := false
	fetch := func(_ context.Context, offset, limit int) ([]int, error) {
		offsets = append(offsets, offset)
		if offset == 2 && !failed {
			failed = true
			return nil, errTransient
		}
		if offset >= 4 {
			return []int{offset}, nil
		}
		return []int{offset, offset + 1}, nil
	}

	s := newTestSeq[int](t, Paged(fetch, 2))
	if _, err := s.Collect(ctx); !errors.Is(err, errTransient) {
		t.Fatalf("first Collect err = %v", err)
	}
	got, err := s.Collect(ctx)
	if err != nil || !slices.Equal(got, []int{0, 1, 2, 3, 4}) {
		t.Fatalf("retry Collect = %v, %v", got, err)
	}
	if !slices.Equal(offsets, []int{0, 2, 2, 4}) {
		t.Fatalf("offsets = %v", offsets)
	}
}

func TestPagedRejectsOversizedPage(t *testing.T) {
	fetch := func(context.Context, int, int) ([]int, error) { return []int{1, 2, 3}, nil }
	_, _, err := Paged(fetch, 2).Next(context.Background())
	if !errors.Is(err, errPageOverflow) {
		t.Fatalf("err = %v, want errPageOverflow", err)
	}
}

func TestPagedNonPositiveSizeUsesDefault(t *testing.T) {
	var limits []int
	fetch := func(_ context.Context, _, limit int) ([]int, error) {
		limits = append(limits, limit)
		return []int{1}, nil
	}
	if _, _, err := Paged(fetch, 0).Next(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(limits, []int{DefaultPageSize}) {
		t.Fatalf("limits = %v, want [%d]", limits, DefaultPageSize)
	}
}
