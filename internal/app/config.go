package app

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/viper"

	"sdkmigrate/internal/types"
)

const (
	defaultCacheTTLMinutes      = 60
	defaultSweepIntervalMinutes = 5
	defaultRedisPrefix          = "sdkmigrate:"
	defaultMemoSize             = 512
)

// SetConfigDefaults registers the default value of every config key.
func SetConfigDefaults(v *viper.Viper) {
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_minutes", defaultCacheTTLMinutes)
	v.SetDefault("cache.sweep_interval_minutes", defaultSweepIntervalMinutes)
	v.SetDefault("cache.redis_prefix", defaultRedisPrefix)
	v.SetDefault("reconcile.max_concurrency", runtime.NumCPU())
	v.SetDefault("reconcile.fetch_dependencies", false)
	v.SetDefault("reconcile.memo_size", defaultMemoSize)
}

// LoadConfig decodes the viper state into a Config. Sources without a kind
// are treated as NuGet feeds; when no source is enabled the public feed is
// used.
func LoadConfig(v *viper.Viper) (types.Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetConfigDefaults(v)
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid configuration").
			WithCause(err)
	}
	return normalizeConfig(cfg)
}

func normalizeConfig(cfg types.Config) (types.Config, error) {
	var enabled []types.RegistrySource
	for idx, source := range cfg.Sources {
		if !source.Enabled {
			continue
		}
		source.Kind = types.SourceKind(strings.ToLower(strings.TrimSpace(string(source.Kind))))
		if source.Kind == "" {
			source.Kind = types.SourceKindNuGet
		}
		if source.Kind != types.SourceKindNuGet && source.Kind != types.SourceKindFile {
			return types.Config{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unknown source kind: " + string(source.Kind))
		}
		if strings.TrimSpace(source.URL) == "" {
			return types.Config{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("source url is required: " + sourceLabel(source, idx))
		}
		enabled = append(enabled, source)
	}
	if len(enabled) == 0 {
		enabled = []types.RegistrySource{{
			Name:    "nuget.org",
			Kind:    types.SourceKindNuGet,
			URL:     types.DefaultSourceURL,
			Enabled: true,
		}}
	}
	cfg.Sources = enabled

	if cfg.Cache.TTLMinutes <= 0 {
		cfg.Cache.TTLMinutes = defaultCacheTTLMinutes
	}
	if cfg.Cache.SweepIntervalMinutes <= 0 {
		cfg.Cache.SweepIntervalMinutes = defaultSweepIntervalMinutes
	}
	if strings.TrimSpace(cfg.Cache.RedisPrefix) == "" {
		cfg.Cache.RedisPrefix = defaultRedisPrefix
	}
	if cfg.Reconcile.MaxConcurrency <= 0 {
		cfg.Reconcile.MaxConcurrency = runtime.NumCPU()
	}
	if cfg.Reconcile.MemoSize <= 0 {
		cfg.Reconcile.MemoSize = defaultMemoSize
	}
	return cfg, nil
}

func sourceLabel(source types.RegistrySource, idx int) string {
	if strings.TrimSpace(source.Name) != "" {
		return source.Name
	}
	return fmt.Sprintf("sources[%d]", idx)
}
