package cacheseq

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// Sequences call them from the advance path.
type Hooks interface {
	// The producer returned an error while advancing to index.
	ProducerFailed(seq string, index int, err error)

	// The producer signaled exhaustion; the sequence holds items entries.
	Exhausted(seq string, items int)

	// Store.Open replayed a stored sequence instead of running the producer.
	SnapshotRestored(key string, items int)

	// A stored snapshot was deleted on read.
	// reason ∈ {"corrupt", "gen_mismatch", "value_decode"}
	SelfHealSnapshot(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// GenStore errors (snapshot or bump).
	GenSnapshotError(count int, err error)
	GenBumpError(storageKey string, err error)

	// Both gen bump and delete failed during Invalidate (likely backend outage).
	InvalidateOutage(key string, bumpErr, delErr error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) ProducerFailed(string, int, error)     {}
func (NopHooks) Exhausted(string, int)                 {}
func (NopHooks) SnapshotRestored(string, int)          {}
func (NopHooks) SelfHealSnapshot(string, string)       {}
func (NopHooks) ProviderSetRejected(string)            {}
func (NopHooks) GenSnapshotError(int, error)           {}
func (NopHooks) GenBumpError(string, error)            {}
func (NopHooks) InvalidateOutage(string, error, error) {}
