package terminology

import "sync/atomic"

// CacheMetrics tracks cache effectiveness using lock-free atomic counters.
// All methods are safe for concurrent use.
type CacheMetrics struct {
	hits   atomic.Uint64
	misses atomic.Uint64
}

// RecordHit records a cache hit.
func (m *CacheMetrics) RecordHit() {
	m.hits.Add(1)
}

// RecordMiss records a cache miss.
func (m *CacheMetrics) RecordMiss() {
	m.misses.Add(1)
}

// Hits returns the total cache hits.
func (m *CacheMetrics) Hits() uint64 {
	return m.hits.Load()
}

// Misses returns the total cache misses.
func (m *CacheMetrics) Misses() uint64 {
	return m.misses.Load()
}

// HitRate returns the hit rate (0.0 to 1.0). It is 0 before any lookup.
func (m *CacheMetrics) HitRate() float64 {
	hits := m.hits.Load()
	total := hits + m.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Snapshot returns hits, misses, and hit rate in one call.
func (m *CacheMetrics) Snapshot() (hits, misses uint64, hitRate float64) {
	return m.Hits(), m.Misses(), m.HitRate()
}

// Reset clears the counters.
func (m *CacheMetrics) Reset() {
	m.hits.Store(0)
	m.misses.Store(0)
}
