package cacheseq

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIndex = errors.New("cacheseq: invalid index")
	ErrOutOfRange   = errors.New("cacheseq: index out of range")
	ErrClosed       = errors.New("cacheseq: sequence closed")
)

// IndexError reports a failed At call. Len is the number of cached items
// when the error was produced; for ErrOutOfRange it is the final length.
type IndexError struct {
	Index int
	Len   int
	Err   error
}

func (e *IndexError) Error() string {
	if errors.Is(e.Err, ErrOutOfRange) {
		return fmt.Sprintf("%v: index %d, length %d", e.Err, e.Index, e.Len)
	}
	return fmt.Sprintf("%v: %d", e.Err, e.Index)
}

func (e *IndexError) Unwrap() error { return e.Err }

// ProducerError wraps a failure returned by the producer while advancing to Index.
// The item was not cached; a later advance retries the same position.
type ProducerError struct {
	Seq   string
	Index int
	Err   error
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf("cacheseq: %s: producer failed at index %d: %v", e.Seq, e.Index, e.Err)
}

func (e *ProducerError) Unwrap() error { return e.Err }

type InvalidateError struct {
	Key     string
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("invalidate %q failed: gen bump and delete failed: bump=%v; delete=%v",
			e.Key, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("invalidate %q: gen bump failed: %v", e.Key, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("invalidate %q: delete failed: %v", e.Key, e.DelErr)
	default:
		return fmt.Sprintf("invalidate %q: unknown error", e.Key)
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
