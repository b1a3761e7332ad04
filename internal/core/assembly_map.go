package core

import (
	"regexp"
	"strings"

	"sdkmigrate/internal/types"
)

// WellKnownAssembly maps a module name whose package id differs from it.
type WellKnownAssembly struct {
	PackageID          string
	AdditionalPackages []string
	Notes              string
}

// WellKnownAssemblies is keyed by lower-cased module name.
var WellKnownAssemblies = map[string]WellKnownAssembly{
	"nunit.framework": {
		PackageID:          "NUnit",
		AdditionalPackages: []string{"NUnit3TestAdapter", "Microsoft.NET.Test.Sdk"},
	},
	"microsoft.visualstudio.qualitytools.unittestframework": {
		PackageID:          "MSTest.TestFramework",
		AdditionalPackages: []string{"MSTest.TestAdapter", "Microsoft.NET.Test.Sdk"},
		Notes:              "in-box MSTest v1 replaced by MSTest v2 packages",
	},
	"microsoft.visualstudio.testplatform.testframework": {
		PackageID:          "MSTest.TestFramework",
		AdditionalPackages: []string{"MSTest.TestAdapter", "Microsoft.NET.Test.Sdk"},
	},
	"xunit.core": {
		PackageID:          "xunit",
		AdditionalPackages: []string{"xunit.runner.visualstudio", "Microsoft.NET.Test.Sdk"},
	},
	"xunit.assert": {
		PackageID:          "xunit",
		AdditionalPackages: []string{"xunit.runner.visualstudio", "Microsoft.NET.Test.Sdk"},
	},
	"system.web.mvc":             {PackageID: "Microsoft.AspNet.Mvc"},
	"system.web.razor":           {PackageID: "Microsoft.AspNet.Razor"},
	"system.web.webpages":        {PackageID: "Microsoft.AspNet.WebPages"},
	"system.web.helpers":         {PackageID: "Microsoft.AspNet.WebPages"},
	"system.web.http":            {PackageID: "Microsoft.AspNet.WebApi.Core"},
	"system.web.http.webhost":    {PackageID: "Microsoft.AspNet.WebApi.WebHost"},
	"system.net.http.formatting": {PackageID: "Microsoft.AspNet.WebApi.Client"},
	"system.web.optimization":    {PackageID: "Microsoft.AspNet.Web.Optimization"},
	"system.data.sqlite":         {PackageID: "System.Data.SQLite.Core"},
	"icsharpcode.sharpziplib":    {PackageID: "SharpZipLib"},
	"microsoft.practices.unity":  {PackageID: "Unity"},
	"microsoft.practices.enterpriselibrary.common": {
		PackageID: "EnterpriseLibrary.Common",
	},
	"microsoft.windowsazure.storage": {PackageID: "WindowsAzure.Storage"},
	"system.windows.interactivity": {
		PackageID: "Microsoft.Xaml.Behaviors.Wpf",
		Notes:     "namespace changes to Microsoft.Xaml.Behaviors",
	},
	"entityframework.sqlserver": {PackageID: "EntityFramework"},
	"microsoft.owin.host.systemweb": {
		PackageID:          "Microsoft.Owin.Host.SystemWeb",
		AdditionalPackages: []string{"Owin"},
	},
	"log4net": {PackageID: "log4net"},
}

var (
	// "Contoso.Data.3.1", "Contoso.Data.v4", "Contoso.Data2"
	numericSuffix = regexp.MustCompile(`(?i)(\.v?[0-9]+)+$|[0-9]+$`)
	vendorPrefixes = []string{"Microsoft."}
	companionSuffixes = []string{".Core", ".Abstractions"}
)

// wellKnownAssembly looks up the static mapping for a module name.
func wellKnownAssembly(name string) (WellKnownAssembly, bool) {
	entry, ok := WellKnownAssemblies[strings.ToLower(strings.TrimSpace(name))]
	return entry, ok
}

// AssemblyCandidates returns the ordered package ids tried for a module name
// without a static mapping. The order is fixed so resolution is repeatable.
func AssemblyCandidates(name string) []string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}
	bases := []string{trimmed}
	if stripped := stripNumericSuffix(trimmed); stripped != "" && stripped != trimmed {
		bases = append(bases, stripped)
	}

	var candidates []string
	candidates = append(candidates, bases...)
	for _, base := range bases {
		candidates = append(candidates, vendorVariants(base)...)
	}
	for _, base := range bases {
		candidates = append(candidates, suffixVariants(base)...)
	}
	return dedupeIDs(candidates)
}

func stripNumericSuffix(name string) string {
	stripped := numericSuffix.ReplaceAllString(name, "")
	return strings.TrimRight(stripped, ".")
}

func vendorVariants(base string) []string {
	var out []string
	for _, prefix := range vendorPrefixes {
		if len(base) > len(prefix) && strings.EqualFold(base[:len(prefix)], prefix) {
			out = append(out, base[len(prefix):])
			continue
		}
		out = append(out, prefix+base)
	}
	return out
}

func suffixVariants(base string) []string {
	var out []string
	for _, suffix := range companionSuffixes {
		if len(base) > len(suffix) && strings.EqualFold(base[len(base)-len(suffix):], suffix) {
			out = append(out, base[:len(base)-len(suffix)])
			continue
		}
		out = append(out, base+suffix)
	}
	return out
}

func dedupeIDs(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, value := range values {
		key := strings.ToLower(value)
		if value == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}

func resolutionFromWellKnown(entry WellKnownAssembly, version string) types.PackageResolutionResult {
	return types.PackageResolutionResult{
		PackageID:          entry.PackageID,
		Version:            version,
		AdditionalPackages: append([]string(nil), entry.AdditionalPackages...),
		Notes:              entry.Notes,
	}
}
