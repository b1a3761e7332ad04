package ports

import (
	"context"

	"sdkmigrate/internal/types"
)

// ConflictPrompter lets a human pick the winning version of a conflict.
// Returning ok=false defers to the default strategy.
type ConflictPrompter interface {
	ChooseVersion(ctx context.Context, conflict types.PackageVersionConflict, candidates []string) (string, bool, error)
}
