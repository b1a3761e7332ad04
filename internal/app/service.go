package app

import (
	"context"
	"sync"
	"time"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"sdkmigrate/internal/adapters"
	"sdkmigrate/internal/core"
	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/types"
)

// Service wires the resolver stack for one run. Callers must Close it.
type Service struct {
	Config     types.Config
	Resolver   ports.PackageResolver
	Registry   *core.RegistryClient
	Cache      *core.VersionCache
	Classifier *core.TransitiveClassifier
	Conflicts  *core.ConflictResolver
	Projects   ports.ProjectMapPort
	Workspace  ports.WorkspacePort
	Files      ports.ProjectFilePort
	Reports    func(dir string) ports.ReportWriterPort
	Clock      clockwork.Clock

	assemblies *core.AssemblyProvider
	memo       *expirable.LRU[string, []string]
	shared     ports.SharedCacheStore
	closeOnce  sync.Once
}

// ServiceOption adjusts a Service before its collaborators are built.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	sources  []ports.RegistrySource
	shared   ports.SharedCacheStore
	prompter ports.ConflictPrompter
	clock    clockwork.Clock
}

// WithSources replaces the configured registry sources.
func WithSources(sources ...ports.RegistrySource) ServiceOption {
	return func(o *serviceOptions) { o.sources = sources }
}

// WithSharedCache replaces the Redis tier built from configuration.
func WithSharedCache(store ports.SharedCacheStore) ServiceOption {
	return func(o *serviceOptions) { o.shared = store }
}

func WithPrompter(prompter ports.ConflictPrompter) ServiceOption {
	return func(o *serviceOptions) { o.prompter = prompter }
}

func WithClock(clock clockwork.Clock) ServiceOption {
	return func(o *serviceOptions) { o.clock = clock }
}

func NewService(ctx context.Context, cfg types.Config, opts ...ServiceOption) (*Service, error) {
	options := serviceOptions{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&options)
	}
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	sources := options.sources
	if len(sources) == 0 {
		sources, err = buildSources(ctx, cfg.Sources)
		if err != nil {
			return nil, err
		}
	}
	registry := core.NewRegistryClient(sources...)

	svc := &Service{
		Config:     cfg,
		Registry:   registry,
		Resolver:   registry,
		Classifier: core.NewTransitiveClassifier(core.DefaultClassifierTables()),
		Projects:   adapters.NewProjectMapFileAdapter(),
		Workspace:  adapters.NewWorkspaceAdapter(),
		Files:      adapters.NewProjectFileAdapter(),
		Reports: func(dir string) ports.ReportWriterPort {
			return adapters.NewReportFileAdapter(dir)
		},
		Clock: options.clock,
	}

	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	if cfg.Cache.IsEnabled() {
		svc.Cache = core.NewVersionCache(core.VersionCacheOptions{
			TTL:           ttl,
			SweepInterval: time.Duration(cfg.Cache.SweepIntervalMinutes) * time.Minute,
			Clock:         options.clock,
		})
		svc.shared = options.shared
		if svc.shared == nil && cfg.Cache.RedisAddr != "" {
			store, err := adapters.NewRedisCacheAdapter(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPrefix)
			if err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("shared cache disabled")
			} else {
				svc.shared = store
			}
		}
		svc.Resolver = core.NewCachedResolver(registry, svc.Cache, svc.shared)
	}

	svc.Conflicts = core.NewConflictResolver(svc.Resolver, options.prompter)
	svc.assemblies = core.NewAssemblyProvider(nil, adapters.NewLocalPackagesAdapter(cfg.PackagesFolder), svc.Resolver)
	svc.memo = expirable.NewLRU[string, []string](cfg.Reconcile.MemoSize, nil, ttl)

	log.Ctx(ctx).Debug().
		Int("sources", len(sources)).
		Bool("cache", cfg.Cache.IsEnabled()).
		Bool("shared_cache", svc.shared != nil).
		Msg("service initialized")
	return svc, nil
}

func buildSources(ctx context.Context, configured []types.RegistrySource) ([]ports.RegistrySource, error) {
	sources := make([]ports.RegistrySource, 0, len(configured))
	for _, source := range configured {
		assert.NotEmpty(ctx, source.URL, "source url must be set after normalization")
		switch source.Kind {
		case types.SourceKindNuGet:
			sources = append(sources, adapters.NewNuGetSourceAdapter(
				source.Name, source.URL, source.Username, source.Password, source.TimeoutSec, source.Retries,
			))
		case types.SourceKindFile:
			sources = append(sources, adapters.NewFileSourceAdapter(source.Name, source.URL))
		default:
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unknown source kind: " + string(source.Kind))
		}
	}
	return sources, nil
}

// CacheStats returns a snapshot of the version cache, empty when caching is
// disabled.
func (s *Service) CacheStats() types.CacheStatistics {
	if s.Cache == nil {
		return types.CacheStatistics{Hits: map[types.CacheKind]int64{}, Misses: map[types.CacheKind]int64{}}
	}
	return s.Cache.Stats()
}

// Close stops the cache sweep, which logs the final cache statistics, and
// releases the shared tier. It is safe to call more than once.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.Cache != nil {
			s.Cache.Close()
		}
		if s.memo != nil {
			s.memo.Purge()
		}
		if s.shared != nil {
			err = s.shared.Close()
		}
	})
	return err
}
