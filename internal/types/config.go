package types

// DefaultSourceURL is queried when no registry source is enabled.
const DefaultSourceURL = "https://api.nuget.org/v3/index.json"

type RegistrySource struct {
	Name       string     `mapstructure:"name" yaml:"name"`
	Kind       SourceKind `mapstructure:"kind" yaml:"kind"`
	URL        string     `mapstructure:"url" yaml:"url"`
	Enabled    bool       `mapstructure:"enabled" yaml:"enabled"`
	Username   string     `mapstructure:"username" yaml:"username,omitempty"`
	Password   string     `mapstructure:"password" yaml:"password,omitempty"`
	TimeoutSec int        `mapstructure:"timeout_sec" yaml:"timeout_sec,omitempty"`
	Retries    int        `mapstructure:"retries" yaml:"retries,omitempty"`
}

// CacheConfig leaves the cache on unless Enabled is explicitly false.
type CacheConfig struct {
	Enabled              *bool  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	TTLMinutes           int    `mapstructure:"ttl_minutes" yaml:"ttl_minutes"`
	SweepIntervalMinutes int    `mapstructure:"sweep_interval_minutes" yaml:"sweep_interval_minutes"`
	RedisAddr            string `mapstructure:"redis_addr" yaml:"redis_addr,omitempty"`
	RedisPrefix          string `mapstructure:"redis_prefix" yaml:"redis_prefix,omitempty"`
}

func (c CacheConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

type ReconcileConfig struct {
	MaxConcurrency    int  `mapstructure:"max_concurrency" yaml:"max_concurrency"`
	FetchDependencies bool `mapstructure:"fetch_dependencies" yaml:"fetch_dependencies"`
	MemoSize          int  `mapstructure:"memo_size" yaml:"memo_size"`
}

type Config struct {
	Sources        []RegistrySource `mapstructure:"sources" yaml:"sources"`
	Cache          CacheConfig      `mapstructure:"cache" yaml:"cache"`
	PackagesFolder string           `mapstructure:"packages_folder" yaml:"packages_folder,omitempty"`
	Reconcile      ReconcileConfig  `mapstructure:"reconcile" yaml:"reconcile"`
}
