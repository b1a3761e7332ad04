package ports

import "context"

//go:generate mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks

// RegistrySource is a single package feed. A package the feed does not know
// is reported as an empty list with a nil error; errors are reserved for
// transport and decoding failures.
type RegistrySource interface {
	Name() string
	ListVersions(ctx context.Context, packageID string) ([]string, error)
	Dependencies(ctx context.Context, packageID string, version string) ([]string, bool, error)
}
