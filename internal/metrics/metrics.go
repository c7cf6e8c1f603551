package metrics

import (
	"sync/atomic"
	"time"
)

// System holds the process-wide observability counters: how many
// calculations ran, how long they took on average, and how the rating
// cache is doing. Updated by the batch applier and read by the HTTP
// surface; dashboards live elsewhere.
type System struct {
	totalCalculations atomic.Uint64
	totalCalcNanos    atomic.Uint64
}

func NewSystem() *System {
	return &System{}
}

// RecordCalculation accounts one scoring pass and its wall time.
func (s *System) RecordCalculation(elapsed time.Duration) {
	s.totalCalculations.Add(1)
	s.totalCalcNanos.Add(uint64(elapsed.Nanoseconds()))
}

// Snapshot is a point-in-time read of the counters.
type Snapshot struct {
	TotalCalculations  uint64        `json:"total_calculations"`
	AvgCalculationTime time.Duration `json:"avg_calculation_time_ns"`
	CacheHits          uint64        `json:"cache_hits"`
	CacheMisses        uint64        `json:"cache_misses"`
	CacheHitRate       float64       `json:"cache_hit_rate"`
}

// Read assembles a snapshot from the internal counters plus the cache's
// raw hit/miss counts.
func (s *System) Read(cacheHits, cacheMisses uint64) Snapshot {
	total := s.totalCalculations.Load()
	snap := Snapshot{
		TotalCalculations: total,
		CacheHits:         cacheHits,
		CacheMisses:       cacheMisses,
	}
	if total > 0 {
		snap.AvgCalculationTime = time.Duration(s.totalCalcNanos.Load() / total)
	}
	if lookups := cacheHits + cacheMisses; lookups > 0 {
		snap.CacheHitRate = float64(cacheHits) / float64(lookups)
	}
	return snap
}
