package types

type SourceKind string

const (
	SourceKindNuGet SourceKind = "nuget"
	SourceKindFile  SourceKind = "file"
)

type CacheKind string

const (
	CacheKindVersion      CacheKind = "version"
	CacheKindVersionList  CacheKind = "version-list"
	CacheKindAssembly     CacheKind = "assembly"
	CacheKindDependencies CacheKind = "dependencies"
)

// CacheKinds lists every fact type the version cache stores, in report order.
var CacheKinds = []CacheKind{
	CacheKindVersion,
	CacheKindVersionList,
	CacheKindAssembly,
	CacheKindDependencies,
}

type ConflictStrategy string

const (
	StrategyUseHighest      ConflictStrategy = "highest"
	StrategyUseLowest       ConflictStrategy = "lowest"
	StrategyUseLatestStable ConflictStrategy = "latest-stable"
	StrategyUseMostCommon   ConflictStrategy = "most-common"
	StrategyInteractive     ConflictStrategy = "interactive"
)

type FrameworkFamily string

const (
	FamilyLegacyFramework FrameworkFamily = "legacy-framework"
	FamilyCoreApp         FrameworkFamily = "core-app"
	FamilyModern          FrameworkFamily = "modern"
	FamilyStandard        FrameworkFamily = "standard"
	FamilyPortable        FrameworkFamily = "portable"
	FamilyUnknown         FrameworkFamily = ""
)

// FamilyUniversal is the framework table pattern that applies to every target.
const FamilyUniversal = "*"

// FrameworkCompatibilityTable maps a package id to family patterns and the
// modules the package ships for targets matching each pattern.
type FrameworkCompatibilityTable map[string]map[string][]string
