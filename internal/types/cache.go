package types

import (
	"fmt"
	"strings"
	"time"
)

type CacheEntry[T any] struct {
	Value     T
	ExpiresAt time.Time
}

// Expired reports whether the entry is stale at now.
func (e CacheEntry[T]) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

type CacheKey struct {
	Kind           CacheKind
	PackageID      string
	TargetPlatform string
	Prerelease     *bool
}

func (k CacheKey) String() string {
	var builder strings.Builder
	builder.WriteString(string(k.Kind))
	builder.WriteString("|")
	builder.WriteString(strings.ToLower(strings.TrimSpace(k.PackageID)))
	builder.WriteString("|")
	builder.WriteString(strings.ToLower(strings.TrimSpace(k.TargetPlatform)))
	builder.WriteString("|")
	if k.Prerelease != nil {
		builder.WriteString(fmt.Sprintf("%t", *k.Prerelease))
	}
	return builder.String()
}

type CacheStatistics struct {
	Hits         map[CacheKind]int64
	Misses       map[CacheKind]int64
	SharedHits   int64
	TotalEntries int
	Uptime       time.Duration
}

func (s CacheStatistics) TotalHits() int64 {
	var total int64
	for _, hits := range s.Hits {
		total += hits
	}
	return total
}

func (s CacheStatistics) TotalMisses() int64 {
	var total int64
	for _, misses := range s.Misses {
		total += misses
	}
	return total
}

// HitRate returns hits / lookups in the range [0, 1], or 0 when nothing was
// looked up yet.
func (s CacheStatistics) HitRate() float64 {
	hits := s.TotalHits()
	lookups := hits + s.TotalMisses()
	if lookups == 0 {
		return 0
	}
	return float64(hits) / float64(lookups)
}
