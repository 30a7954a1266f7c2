// Package cache provides the shared key-value store the pipeline uses to
// memoize transcripts and summaries. Backends only expire by TTL; there is
// no size bound or LRU — bounded eviction belongs to the external store.
package cache

import (
	"context"
	"time"
)

// Namespaces keep stage results independent: a transcript hit for a video
// must never short-circuit summarization, and either entry can be
// invalidated without touching the other.
const (
	transcriptNamespace = "transcript"
	summaryNamespace    = "summary"
)

// Store is a key-value store with per-entry TTL. A zero TTL means the
// entry never expires. Set overwrites silently.
type Store interface {
	// Get returns the value for key, or ok=false when absent or expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// TranscriptKey builds the cache key for a video's transcript.
func TranscriptKey(videoID string) string {
	return transcriptNamespace + ":" + videoID
}

// SummaryKey builds the cache key for a video's summary.
func SummaryKey(videoID string) string {
	return summaryNamespace + ":" + videoID
}
