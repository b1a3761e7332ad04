package core

import (
	"strings"

	"sdkmigrate/internal/types"
)

var defaultFrameworkTable = types.FrameworkCompatibilityTable{
	"microsoft.aspnet.mvc": {
		string(types.FamilyLegacyFramework): {"System.Web.Mvc"},
	},
	"microsoft.aspnet.razor": {
		string(types.FamilyLegacyFramework): {"System.Web.Razor"},
	},
	"microsoft.aspnet.webpages": {
		string(types.FamilyLegacyFramework): {
			"System.Web.Helpers",
			"System.Web.WebPages",
			"System.Web.WebPages.Deployment",
			"System.Web.WebPages.Razor",
		},
	},
	"microsoft.aspnet.webapi.core": {
		string(types.FamilyLegacyFramework): {"System.Web.Http"},
	},
	"microsoft.aspnet.webapi.webhost": {
		string(types.FamilyLegacyFramework): {"System.Web.Http.WebHost"},
	},
	"microsoft.aspnet.webapi.client": {
		types.FamilyUniversal: {"System.Net.Http.Formatting"},
	},
	"system.net.http": {
		"net45":                             {"System.Net.Http"},
		"net46":                             {"System.Net.Http"},
		string(types.FamilyStandard):        {"System.Net.Http"},
		string(types.FamilyLegacyFramework): {"System.Net.Http.WebRequest"},
	},
	"system.valuetuple": {
		string(types.FamilyLegacyFramework): {"System.ValueTuple"},
		string(types.FamilyStandard):        {"System.ValueTuple"},
	},
	"entityframework": {
		string(types.FamilyLegacyFramework): {"EntityFramework", "EntityFramework.SqlServer"},
		string(types.FamilyCoreApp):         {"EntityFramework", "EntityFramework.SqlServer"},
		string(types.FamilyModern):          {"EntityFramework", "EntityFramework.SqlServer"},
		string(types.FamilyStandard):        {"EntityFramework", "EntityFramework.SqlServer"},
	},
	"unity": {
		string(types.FamilyLegacyFramework): {"Microsoft.Practices.Unity", "Microsoft.Practices.Unity.Configuration"},
		string(types.FamilyCoreApp):         {"Unity.Abstractions", "Unity.Container"},
		string(types.FamilyModern):          {"Unity.Abstractions", "Unity.Container"},
		string(types.FamilyStandard):        {"Unity.Abstractions", "Unity.Container"},
	},
	"system.data.sqlite.core": {
		types.FamilyUniversal: {"System.Data.SQLite"},
	},
	"mstest.testframework": {
		types.FamilyUniversal: {
			"Microsoft.VisualStudio.TestPlatform.TestFramework",
			"Microsoft.VisualStudio.TestPlatform.TestFramework.Extensions",
		},
	},
	"nunit": {
		types.FamilyUniversal: {"nunit.framework"},
	},
	"xunit.assert": {
		types.FamilyUniversal: {"xunit.assert"},
	},
	"xunit.extensibility.core": {
		types.FamilyUniversal: {"xunit.core"},
	},
	"newtonsoft.json": {
		types.FamilyUniversal: {"Newtonsoft.Json"},
	},
	"sharpziplib": {
		types.FamilyUniversal: {"ICSharpCode.SharpZipLib"},
	},
	"windowsazure.storage": {
		types.FamilyUniversal: {"Microsoft.WindowsAzure.Storage"},
	},
	"microsoft.xaml.behaviors.wpf": {
		types.FamilyUniversal: {"Microsoft.Xaml.Behaviors"},
	},
	"log4net": {
		types.FamilyUniversal: {"log4net"},
	},
}

// DefaultFrameworkTable returns a copy of the built-in compatibility table.
func DefaultFrameworkTable() types.FrameworkCompatibilityTable {
	out := make(types.FrameworkCompatibilityTable, len(defaultFrameworkTable))
	for id, patterns := range defaultFrameworkTable {
		copied := make(map[string][]string, len(patterns))
		for pattern, modules := range patterns {
			copied[pattern] = append([]string(nil), modules...)
		}
		out[id] = copied
	}
	return out
}

// tableModules unions every entry of the package whose pattern matches target
// exactly, by family or as a prefix of target, or is universal.
func tableModules(table types.FrameworkCompatibilityTable, packageID string, target string) []string {
	patterns, ok := table[strings.ToLower(strings.TrimSpace(packageID))]
	if !ok {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(target))
	family := string(FrameworkFamilyOf(normalized))
	var modules []string
	for pattern, entries := range patterns {
		if patternMatchesTarget(strings.ToLower(pattern), normalized, family) {
			modules = append(modules, entries...)
		}
	}
	return modules
}

func patternMatchesTarget(pattern string, target string, family string) bool {
	switch {
	case pattern == types.FamilyUniversal:
		return true
	case target == "":
		return false
	case pattern == target:
		return true
	case family != "" && pattern == family:
		return true
	default:
		return strings.HasPrefix(target, pattern)
	}
}
