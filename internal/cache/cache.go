// Package cache memoizes synthesized segment audio within a single script
// session, keyed by content, to avoid repeat provider billing and latency.
package cache

import (
	"strconv"
	"sync"

	"github.com/book-expert/logger"

	"github.com/jash90/podcast-generator/internal/core"
)

const (
	keySeparator   = "|"
	hashMultiplier = 31

	logFmtCorruptEntry = "Evicting corrupt cache entry %s: empty payload"
)

// Key derives the cache key for a segment: a cheap rolling hash over the role,
// the text length, the model ID, and the text itself, hex-encoded. Not
// cryptographic; the key space is a single-session working set, not an
// adversarial or persisted store.
func Key(role core.Role, text, modelID string) string {
	composite := string(role) + keySeparator +
		strconv.Itoa(len(text)) + keySeparator +
		modelID + keySeparator +
		text

	var hash uint64
	for _, r := range composite {
		hash = hash*hashMultiplier + uint64(r)
	}

	return strconv.FormatUint(hash, 16)
}

// Stats reports the cache size at a point in time.
type Stats struct {
	EntryCount int
	TotalBytes int
}

// SegmentCache stores synthesized audio per segment key. Payloads are copied on
// both read and write, so callers can never mutate a stored buffer and the
// cache never retains an alias a caller might hand to a decoder. No eviction
// within a session; Clear drops everything when a new script begins.
type SegmentCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	log     *logger.Logger
}

// New returns an empty cache. The logger records corruption evictions.
func New(log *logger.Logger) *SegmentCache {
	return &SegmentCache{
		mu:      sync.Mutex{},
		entries: make(map[string][]byte),
		log:     log,
	}
}

// Get returns a copy of the payload stored under key, or a miss. An empty
// stored payload is treated as corruption: the entry is evicted, logged, and
// reported as a miss so the caller re-synthesizes.
func (c *SegmentCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if len(payload) == 0 {
		delete(c.entries, key)
		c.log.Warn(logFmtCorruptEntry, key)

		return nil, false
	}

	return copyOf(payload), true
}

// Put stores a copy of payload under key. Empty payloads are refused.
func (c *SegmentCache) Put(key string, payload []byte) {
	if len(payload) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = copyOf(payload)
}

// Clear drops every entry. Audio cached for a previous script must never bleed
// into the next one.
func (c *SegmentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string][]byte)
}

// Stats returns the current entry count and total payload bytes.
func (c *SegmentCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{EntryCount: len(c.entries), TotalBytes: 0}
	for _, payload := range c.entries {
		stats.TotalBytes += len(payload)
	}

	return stats
}

func copyOf(payload []byte) []byte {
	duplicate := make([]byte, len(payload))
	copy(duplicate, payload)

	return duplicate
}
