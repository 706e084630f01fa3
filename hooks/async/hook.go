// Package asynchook moves cacheseq hook calls off the advance path.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SelfHealEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	seq, _ := cacheseq.New[Record](producer, cacheseq.Options{Hooks: hooks})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/cacheseq"
)

// Hooks queues calls to inner on a bounded channel served by worker goroutines.
// When the queue is full the event is dropped and counted.
type Hooks struct {
	inner   cacheseq.Hooks
	q       chan func()
	wg      sync.WaitGroup
	mu      sync.RWMutex // guards closed vs. sends on q
	closed  bool
	once    sync.Once
	dropped atomic.Uint64
}

var _ cacheseq.Hooks = (*Hooks)(nil)

func New(inner cacheseq.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Later events are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped is the number of events discarded because the queue was full or closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) ProducerFailed(seq string, i int, err error) {
	h.try(func() { h.inner.ProducerFailed(seq, i, err) })
}

func (h *Hooks) Exhausted(seq string, n int) {
	h.try(func() { h.inner.Exhausted(seq, n) })
}

func (h *Hooks) SnapshotRestored(k string, n int) {
	h.try(func() { h.inner.SnapshotRestored(k, n) })
}

func (h *Hooks) SelfHealSnapshot(k, r string) {
	h.try(func() { h.inner.SelfHealSnapshot(k, r) })
}

func (h *Hooks) ProviderSetRejected(k string) {
	h.try(func() { h.inner.ProviderSetRejected(k) })
}

func (h *Hooks) GenSnapshotError(n int, err error) {
	h.try(func() { h.inner.GenSnapshotError(n, err) })
}

func (h *Hooks) GenBumpError(k string, err error) {
	h.try(func() { h.inner.GenBumpError(k, err) })
}

func (h *Hooks) InvalidateOutage(k string, be, de error) {
	h.try(func() { h.inner.InvalidateOutage(k, be, de) })
}
