package core

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"sdkmigrate/internal/types"
)

// TransitiveReason says which rule classified a declaration.
type TransitiveReason string

const (
	ReasonNone             TransitiveReason = ""
	ReasonEssential        TransitiveReason = "essential"
	ReasonCommonTransitive TransitiveReason = "common-transitive"
	ReasonChildOfDeclared  TransitiveReason = "child-of-declared"
	ReasonNamespace        TransitiveReason = "namespace"
)

// TransitiveClassifier flags declarations that are probably pulled in by
// another declaration of the same project. The result is a hint; nothing is
// removed on its strength alone.
type TransitiveClassifier struct {
	tables ClassifierTables
}

func NewTransitiveClassifier(tables ClassifierTables) *TransitiveClassifier {
	children := make(map[string][]string, len(tables.Children))
	for parent, kids := range tables.Children {
		children[strings.ToLower(parent)] = append([]string(nil), kids...)
	}
	tables.Children = children
	return &TransitiveClassifier{tables: tables}
}

// WithDependencies returns a classifier whose parent table also contains the
// given dependency sets, keyed by parent package id.
func (c *TransitiveClassifier) WithDependencies(deps map[string][]string) *TransitiveClassifier {
	tables := c.tables
	merged := make(map[string][]string, len(tables.Children)+len(deps))
	for parent, kids := range tables.Children {
		merged[parent] = append([]string(nil), kids...)
	}
	for parent, kids := range deps {
		key := strings.ToLower(parent)
		merged[key] = dedupeIDs(append(merged[key], kids...))
	}
	tables.Children = merged
	return &TransitiveClassifier{tables: tables}
}

// Classify returns a copy of refs with IsTransitive set.
func (c *TransitiveClassifier) Classify(refs []types.ProjectPackageReference) []types.ProjectPackageReference {
	declared := map[string][]string{}
	for _, ref := range refs {
		declared[ref.ProjectPath] = append(declared[ref.ProjectPath], ref.PackageID)
	}
	out := make([]types.ProjectPackageReference, len(refs))
	for idx, ref := range refs {
		reason := c.Reason(ref.PackageID, declared[ref.ProjectPath])
		ref.IsTransitive = reason != ReasonNone && reason != ReasonEssential
		if ref.IsTransitive {
			log.Debug().
				Str("project", ref.ProjectPath).
				Str("package", ref.PackageID).
				Str("reason", string(reason)).
				Msg("declaration classified as transitive")
		}
		out[idx] = ref
	}
	return out
}

// ClassifyMap classifies every project of a project map.
func (c *TransitiveClassifier) ClassifyMap(projects types.ProjectPackageMap) types.ProjectPackageMap {
	var flat []types.ProjectPackageReference
	for _, path := range sortedProjectPaths(projects) {
		for _, ref := range projects[path] {
			ref.ProjectPath = path
			flat = append(flat, ref)
		}
	}
	out := types.ProjectPackageMap{}
	for _, ref := range c.Classify(flat) {
		out[ref.ProjectPath] = append(out[ref.ProjectPath], ref)
	}
	return out
}

// Reason applies the rules in priority order to one package id declared in a
// project alongside siblings.
func (c *TransitiveClassifier) Reason(packageID string, siblings []string) TransitiveReason {
	if c.tables.Essential.Matches(packageID) {
		return ReasonEssential
	}
	if c.tables.CommonTransitive.Matches(packageID) {
		return ReasonCommonTransitive
	}
	for _, sibling := range siblings {
		if strings.EqualFold(sibling, packageID) {
			continue
		}
		for _, child := range c.tables.Children[strings.ToLower(sibling)] {
			if strings.EqualFold(child, packageID) {
				return ReasonChildOfDeclared
			}
		}
	}
	for _, rule := range c.tables.Namespaces {
		if !rule.Lower.Matches(packageID) {
			continue
		}
		for _, sibling := range siblings {
			if strings.EqualFold(sibling, packageID) {
				continue
			}
			if rule.Higher.Matches(sibling) && !rule.Lower.Matches(sibling) {
				return ReasonNamespace
			}
		}
	}
	return ReasonNone
}

// TransitiveIDs returns the ids marked transitive in at least one project,
// sorted case-insensitively.
func (c *TransitiveClassifier) TransitiveIDs(refs []types.ProjectPackageReference) []string {
	var ids []string
	for _, ref := range c.Classify(refs) {
		if ref.IsTransitive {
			ids = append(ids, ref.PackageID)
		}
	}
	ids = dedupeIDs(ids)
	sort.Slice(ids, func(i, j int) bool {
		return strings.ToLower(ids[i]) < strings.ToLower(ids[j])
	})
	return ids
}

func sortedProjectPaths(projects types.ProjectPackageMap) []string {
	paths := make([]string, 0, len(projects))
	for path := range projects {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
