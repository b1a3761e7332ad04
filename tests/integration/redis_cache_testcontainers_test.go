//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"sdkmigrate/internal/adapters"
	"sdkmigrate/internal/app"
	"sdkmigrate/internal/types"
	"sdkmigrate/tests/testutil"
)

func TestRedisCacheAdapterWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers test in short mode")
	}

	ctx := t.Context()
	addr, cleanup := startRedis(ctx, t)
	t.Cleanup(cleanup)

	store, err := adapters.NewRedisCacheAdapter(ctx, addr, "it:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "versions|nunit", []byte(`["3.14.0"]`), time.Minute))
	data, ok, err := store.Get(ctx, "versions|nunit")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `["3.14.0"]`, string(data))

	require.NoError(t, store.Set(ctx, "short", []byte(`"1.0.0"`), 500*time.Millisecond))
	require.Eventually(t, func() bool {
		_, ok, err := store.Get(ctx, "short")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}

func TestReconcileSharesRedisTierAcrossServices(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers test in short mode")
	}

	ctx := t.Context()
	addr, cleanup := startRedis(ctx, t)
	t.Cleanup(cleanup)

	dir := t.TempDir()
	registry := testutil.WriteFile(t, dir, "registry.yaml", testutil.RegistryIndex)
	projects := testutil.WriteFile(t, dir, "projects.yaml", testutil.ProjectMap)
	cfg := types.Config{
		Sources: []types.RegistrySource{{Name: "offline", Kind: types.SourceKindFile, URL: registry, Enabled: true}},
		Cache: types.CacheConfig{
			TTLMinutes:  10,
			RedisAddr:   addr,
			RedisPrefix: fmt.Sprintf("it-%d:", time.Now().UnixNano()),
		},
	}
	req := app.ReconcileRequest{InputPath: projects, Strategy: string(types.StrategyUseHighest)}

	first, err := app.NewService(ctx, cfg)
	require.NoError(t, err)
	firstResult, err := first.Reconcile(ctx, req)
	require.NoError(t, err)
	require.NoError(t, first.Close())
	assert.Zero(t, firstResult.Report.Cache.SharedHits)

	second, err := app.NewService(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	secondResult, err := second.Reconcile(ctx, req)
	require.NoError(t, err)

	assert.Positive(t, secondResult.Report.Cache.SharedHits)
	if diff := cmp.Diff(firstResult.Report.Resolution.ResolvedVersions, secondResult.Report.Resolution.ResolvedVersions); diff != "" {
		t.Fatalf("resolution differs between runs (-first +second):\n%s", diff)
	}
	assert.Equal(t, "13.0.1", secondResult.Report.Resolution.ResolvedVersions["Newtonsoft.Json"])
}

func TestServiceFallsBackWhenRedisIsDown(t *testing.T) {
	dir := t.TempDir()
	registry := testutil.WriteFile(t, dir, "registry.yaml", testutil.RegistryIndex)
	cfg := types.Config{
		Sources: []types.RegistrySource{{Name: "offline", Kind: types.SourceKindFile, URL: registry, Enabled: true}},
		Cache:   types.CacheConfig{RedisAddr: "127.0.0.1:1"},
	}

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	svc, err := app.NewService(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	result, err := svc.Versions(ctx, app.VersionsRequest{PackageID: "Newtonsoft.Json"})
	require.NoError(t, err)
	assert.Equal(t, "13.0.3", result.LatestStable)
}

func startRedis(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	cleanup := func() {
		_ = container.Terminate(context.Background())
	}
	return fmt.Sprintf("%s:%s", host, port.Port()), cleanup
}
