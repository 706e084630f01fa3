package cacheseq

import "time"

// DefaultPageSize is the page size Paged uses when given pageSize <= 0.
const DefaultPageSize = 100

const (
	defaultName         = "seq"
	defaultTTL          = 10 * time.Minute
	defaultGenRetention = 30 * 24 * time.Hour
	defaultSweep        = time.Hour
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
