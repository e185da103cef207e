// Package metrics tracks render-cache hit and miss counters.
package metrics

import "sync/atomic"

// CacheStats counts cache hits and misses. All methods are safe for
// concurrent use; counters only move under explicit Reset.
type CacheStats struct {
	hits    atomic.Uint64
	misses  atomic.Uint64
	enabled bool
}

// StatsSnapshot is a point-in-time copy of the counters plus the derived rate.
type StatsSnapshot struct {
	HitCount  uint64  `json:"hit_count"`
	MissCount uint64  `json:"miss_count"`
	HitRate   float64 `json:"hit_rate"`
}

// NewCacheStats creates a recorder. When enabled is false, Hit and Miss are
// no-ops and the counters stay at zero.
func NewCacheStats(enabled bool) *CacheStats {
	return &CacheStats{enabled: enabled}
}

// Hit increments the hit counter.
func (s *CacheStats) Hit() {
	if s.enabled {
		s.hits.Add(1)
	}
}

// Miss increments the miss counter.
func (s *CacheStats) Miss() {
	if s.enabled {
		s.misses.Add(1)
	}
}

// HitRate returns the hit percentage, 0 when nothing has been recorded.
func (s *CacheStats) HitRate() float64 {
	hits := s.hits.Load()
	total := hits + s.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Snapshot returns a consistent-enough view of the counters for reporting.
// A concurrent increment may or may not be included; none is ever lost.
func (s *CacheStats) Snapshot() StatsSnapshot {
	hits := s.hits.Load()
	misses := s.misses.Load()
	snap := StatsSnapshot{HitCount: hits, MissCount: misses}
	if total := hits + misses; total > 0 {
		snap.HitRate = float64(hits) / float64(total) * 100
	}
	return snap
}

// Reset returns both counters to zero.
func (s *CacheStats) Reset() {
	s.hits.Store(0)
	s.misses.Store(0)
}
