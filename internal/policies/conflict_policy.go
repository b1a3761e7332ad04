package policies

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/types"
)

// VersionOrder compares version strings. Highest and Lowest report false
// when no value parses.
type VersionOrder interface {
	Compare(a string, b string) (int, bool)
	Highest(values []string) (string, bool)
	Lowest(values []string) (string, bool)
}

// LatestStableFunc looks up the newest stable version of a package.
type LatestStableFunc func(ctx context.Context, packageID string) (string, bool)

// StrategyInputs carries what a strategy may consult besides the conflict.
// Latest and Prompter may be nil.
type StrategyInputs struct {
	Order    VersionOrder
	Latest   LatestStableFunc
	Prompter ports.ConflictPrompter
}

func ParseConflictStrategy(value string) (types.ConflictStrategy, error) {
	switch strategy := types.ConflictStrategy(strings.ToLower(strings.TrimSpace(value))); strategy {
	case types.StrategyUseHighest, types.StrategyUseLowest, types.StrategyUseLatestStable,
		types.StrategyUseMostCommon, types.StrategyInteractive:
		return strategy, nil
	case "":
		return types.StrategyUseHighest, nil
	default:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown conflict strategy: %s", value))
	}
}

// SelectVersion picks the winning version of one conflict. Notes explain any
// fallback that was taken.
func SelectVersion(ctx context.Context, strategy types.ConflictStrategy, conflict types.PackageVersionConflict, in StrategyInputs) (string, []string) {
	switch strategy {
	case types.StrategyUseHighest:
		return selectExtreme(ctx, conflict, in, true)
	case types.StrategyUseLowest:
		return selectExtreme(ctx, conflict, in, false)
	case types.StrategyUseLatestStable:
		if version, ok := latestStable(ctx, conflict.PackageID, in); ok {
			return version, nil
		}
		version, notes := selectExtreme(ctx, conflict, in, true)
		return version, append([]string{noteFor(conflict, "registry has no stable version; used highest requested")}, notes...)
	case types.StrategyUseMostCommon:
		return selectMostCommon(ctx, conflict, in)
	case types.StrategyInteractive:
		return selectInteractive(ctx, conflict, in)
	default:
		version, notes := selectExtreme(ctx, conflict, in, true)
		return version, append([]string{noteFor(conflict, fmt.Sprintf("unknown strategy %q; used highest", strategy))}, notes...)
	}
}

func selectExtreme(ctx context.Context, conflict types.PackageVersionConflict, in StrategyInputs, highest bool) (string, []string) {
	concrete := concreteVersions(conflict)
	if len(concrete) == 0 {
		if version, ok := latestStable(ctx, conflict.PackageID, in); ok {
			return version, nil
		}
		return types.WildcardVersion, []string{noteFor(conflict, "all requests are wildcards and the registry has no stable version; kept *")}
	}
	pick := in.Order.Lowest
	if highest {
		pick = in.Order.Highest
	}
	if version, ok := pick(concrete); ok {
		return version, nil
	}
	sort.Strings(concrete)
	if highest {
		return concrete[len(concrete)-1], []string{noteFor(conflict, "no requested version parses; compared as text")}
	}
	return concrete[0], []string{noteFor(conflict, "no requested version parses; compared as text")}
}

func selectMostCommon(ctx context.Context, conflict types.PackageVersionConflict, in StrategyInputs) (string, []string) {
	counts := map[string]int{}
	for _, version := range concreteVersions(conflict) {
		counts[version]++
	}
	if len(counts) == 0 {
		return selectExtreme(ctx, conflict, in, true)
	}
	best := ""
	for version, count := range counts {
		if best == "" || count > counts[best] || (count == counts[best] && higherVersion(in.Order, version, best)) {
			best = version
		}
	}
	return best, nil
}

func selectInteractive(ctx context.Context, conflict types.PackageVersionConflict, in StrategyInputs) (string, []string) {
	if in.Prompter == nil {
		version, notes := selectExtreme(ctx, conflict, in, true)
		return version, append([]string{noteFor(conflict, "no interactive prompt available; used highest")}, notes...)
	}
	candidates := distinctVersions(conflict)
	sort.SliceStable(candidates, func(i, j int) bool {
		return higherVersion(in.Order, candidates[i], candidates[j])
	})
	choice, ok, err := in.Prompter.ChooseVersion(ctx, conflict, candidates)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("package", conflict.PackageID).Msg("interactive prompt failed")
		version, notes := selectExtreme(ctx, conflict, in, true)
		return version, append([]string{noteFor(conflict, "interactive prompt failed; used highest")}, notes...)
	}
	if !ok || strings.TrimSpace(choice) == "" {
		version, notes := selectExtreme(ctx, conflict, in, true)
		return version, append([]string{noteFor(conflict, "no choice made; used highest")}, notes...)
	}
	return strings.TrimSpace(choice), nil
}

func latestStable(ctx context.Context, packageID string, in StrategyInputs) (string, bool) {
	if in.Latest == nil {
		return "", false
	}
	return in.Latest(ctx, packageID)
}

// higherVersion orders by version where both parse and as text otherwise.
func higherVersion(order VersionOrder, a string, b string) bool {
	if cmp, ok := order.Compare(a, b); ok && cmp != 0 {
		return cmp > 0
	}
	return a > b
}

func concreteVersions(conflict types.PackageVersionConflict) []string {
	var out []string
	for _, requested := range conflict.RequestedVersions {
		version := strings.TrimSpace(requested.Version)
		if types.IsWildcardVersion(version) {
			continue
		}
		out = append(out, version)
	}
	return out
}

func distinctVersions(conflict types.PackageVersionConflict) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, requested := range conflict.RequestedVersions {
		version := strings.TrimSpace(requested.Version)
		if _, ok := seen[version]; ok {
			continue
		}
		seen[version] = struct{}{}
		out = append(out, version)
	}
	return out
}

func noteFor(conflict types.PackageVersionConflict, message string) string {
	return conflict.PackageID + ": " + message
}
