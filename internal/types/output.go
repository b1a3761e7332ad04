package types

import "time"

type CacheReport struct {
	Hits         map[string]int64 `yaml:"hits" json:"hits" toml:"hits"`
	Misses       map[string]int64 `yaml:"misses" json:"misses" toml:"misses"`
	SharedHits   int64            `yaml:"shared_hits" json:"shared_hits" toml:"shared_hits"`
	TotalEntries int              `yaml:"total_entries" json:"total_entries" toml:"total_entries"`
	HitRate      float64          `yaml:"hit_rate" json:"hit_rate" toml:"hit_rate"`
}

type ReconcileReport struct {
	RunID       string                   `yaml:"run_id" json:"run_id" toml:"run_id"`
	Strategy    ConflictStrategy         `yaml:"strategy" json:"strategy" toml:"strategy"`
	GeneratedAt time.Time                `yaml:"generated_at" json:"generated_at" toml:"generated_at"`
	Transitive  []string                 `yaml:"transitive" json:"transitive" toml:"transitive"`
	Conflicts   []PackageVersionConflict `yaml:"conflicts" json:"conflicts" toml:"conflicts"`
	Resolution  PackageVersionResolution `yaml:"resolution" json:"resolution" toml:"resolution"`
	Cache       CacheReport              `yaml:"cache" json:"cache" toml:"cache"`
}

// NewCacheReport flattens statistics into the serializable report shape.
func NewCacheReport(stats CacheStatistics) CacheReport {
	report := CacheReport{
		Hits:         map[string]int64{},
		Misses:       map[string]int64{},
		SharedHits:   stats.SharedHits,
		TotalEntries: stats.TotalEntries,
		HitRate:      stats.HitRate(),
	}
	for kind, hits := range stats.Hits {
		report.Hits[string(kind)] = hits
	}
	for kind, misses := range stats.Misses {
		report.Misses[string(kind)] = misses
	}
	return report
}
