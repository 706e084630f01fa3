// Package sloghooks reports cacheseq hook events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/cacheseq"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery  uint64
	ExhaustedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr  atomic.Uint64
	exhaustedCtr atomic.Uint64
}

var _ cacheseq.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

// keys and sequence names carry query parameters; never log them raw
func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) ProducerFailed(seq string, index int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("cacheseq.producer_failed",
		"seq", h.redact(seq),
		"index", index,
		"err", err)
}

func (h *Hooks) Exhausted(seq string, items int) {
	if h.l == nil || !sample(h.opts.ExhaustedEvery, &h.exhaustedCtr) {
		return
	}
	h.l.Debug("cacheseq.exhausted",
		"seq", h.redact(seq),
		"items", items)
}

func (h *Hooks) SnapshotRestored(key string, items int) {
	if h.l == nil {
		return
	}
	h.l.Debug("cacheseq.snapshot_restored",
		"key", h.redact(key),
		"items", items)
}

func (h *Hooks) SelfHealSnapshot(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Info("cacheseq.self_heal_snapshot",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("cacheseq.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) GenSnapshotError(count int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("cacheseq.gen_snapshot_error",
		"count", count,
		"err", err)
}

func (h *Hooks) GenBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("cacheseq.gen_bump_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) InvalidateOutage(key string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("cacheseq.invalidate_outage",
		"key", h.redact(key),
		"bump_err", bumpErr,
		"del_err", delErr)
}
