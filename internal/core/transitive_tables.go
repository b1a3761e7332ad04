package core

import "sdkmigrate/internal/policies"

// NamespaceRule marks a package in Lower as likely transitive when the same
// project also declares a package in Higher.
type NamespaceRule struct {
	Name   string
	Lower  policies.PackageRuleSet
	Higher policies.PackageRuleSet
}

// ClassifierTables is the data behind TransitiveClassifier. Children is keyed
// by lower-cased parent id.
type ClassifierTables struct {
	Essential        policies.PackageRuleSet
	CommonTransitive policies.PackageRuleSet
	Children         map[string][]string
	Namespaces       []NamespaceRule
}

// DefaultClassifierTables returns fresh copies of the built-in tables.
func DefaultClassifierTables() ClassifierTables {
	return ClassifierTables{
		Essential: policies.NewPackageRuleSet(
			policies.PackageRule{Name: "test-tooling", Patterns: []string{
				"Microsoft.NET.Test.Sdk",
				"xunit.runner.visualstudio",
				"xunit.runner.console",
				"NUnit3TestAdapter",
				"NUnit.ConsoleRunner",
				"MSTest.TestAdapter",
				"coverlet.collector",
				"coverlet.msbuild",
			}},
			policies.PackageRule{Name: "analyzers", Patterns: []string{
				"Microsoft.CodeAnalysis.NetAnalyzers",
				"Microsoft.CodeAnalysis.FxCopAnalyzers",
				"StyleCop.Analyzers",
				"SonarAnalyzer.CSharp",
				"Roslynator.*",
			}},
			policies.PackageRule{Name: "build-tooling", Patterns: []string{
				"Microsoft.SourceLink.*",
				"Microsoft.Build.*",
				"MSBuild.*",
				"Nerdbank.GitVersioning",
				"GitVersion.MsBuild",
				"Microsoft.NETFramework.ReferenceAssemblies",
			}},
			policies.PackageRule{Name: "platform", Patterns: []string{
				"NETStandard.Library",
				"Microsoft.NETCore.App",
				"Microsoft.AspNetCore.App",
				"Microsoft.WindowsDesktop.App",
			}},
		),
		CommonTransitive: policies.NewPackageList("common-transitive",
			"NETStandard.Library",
			"Microsoft.NETCore.Platforms",
			"Microsoft.NETCore.Targets",
			"Microsoft.CSharp",
			"Microsoft.Win32.Primitives",
			"System.Buffers",
			"System.Collections",
			"System.Collections.Concurrent",
			"System.Diagnostics.Debug",
			"System.Diagnostics.DiagnosticSource",
			"System.Globalization",
			"System.IO",
			"System.Linq",
			"System.Memory",
			"System.Numerics.Vectors",
			"System.Reflection",
			"System.Resources.ResourceManager",
			"System.Runtime",
			"System.Runtime.CompilerServices.Unsafe",
			"System.Runtime.Extensions",
			"System.Text.Encoding",
			"System.Threading",
			"System.Threading.Tasks",
			"System.Threading.Tasks.Extensions",
			"System.ValueTuple",
			"runtime.*",
		),
		Children: map[string][]string{
			"microsoft.entityframeworkcore.sqlserver": {
				"Microsoft.EntityFrameworkCore.Relational",
				"Microsoft.Data.SqlClient",
			},
			"microsoft.entityframeworkcore.relational": {
				"Microsoft.EntityFrameworkCore",
			},
			"microsoft.entityframeworkcore": {
				"Microsoft.EntityFrameworkCore.Abstractions",
				"Microsoft.EntityFrameworkCore.Analyzers",
				"Microsoft.Extensions.Caching.Memory",
				"Microsoft.Extensions.Logging",
			},
			"microsoft.extensions.hosting": {
				"Microsoft.Extensions.Configuration",
				"Microsoft.Extensions.DependencyInjection",
				"Microsoft.Extensions.Hosting.Abstractions",
				"Microsoft.Extensions.Logging",
			},
			"microsoft.extensions.logging": {
				"Microsoft.Extensions.Logging.Abstractions",
				"Microsoft.Extensions.DependencyInjection.Abstractions",
				"Microsoft.Extensions.Options",
			},
			"microsoft.extensions.dependencyinjection": {
				"Microsoft.Extensions.DependencyInjection.Abstractions",
			},
			"microsoft.aspnet.mvc": {
				"Microsoft.AspNet.Razor",
				"Microsoft.AspNet.WebPages",
			},
			"microsoft.aspnet.webpages": {
				"Microsoft.AspNet.Razor",
				"Microsoft.Web.Infrastructure",
			},
			"microsoft.aspnet.webapi.webhost": {
				"Microsoft.AspNet.WebApi.Core",
			},
			"microsoft.aspnet.webapi.core": {
				"Microsoft.AspNet.WebApi.Client",
			},
			"microsoft.aspnet.webapi.client": {
				"Newtonsoft.Json",
			},
			"microsoft.owin.host.systemweb": {
				"Microsoft.Owin",
				"Owin",
			},
			"microsoft.owin": {
				"Owin",
			},
			"moq": {
				"Castle.Core",
			},
			"xunit": {
				"xunit.core",
				"xunit.assert",
				"xunit.abstractions",
				"xunit.analyzers",
			},
			"xunit.core": {
				"xunit.extensibility.core",
				"xunit.extensibility.execution",
			},
			"serilog.aspnetcore": {
				"Serilog",
				"Serilog.Extensions.Hosting",
				"Serilog.Sinks.Console",
			},
			"serilog.extensions.hosting": {
				"Serilog",
				"Serilog.Extensions.Logging",
			},
			"automapper.extensions.microsoft.dependencyinjection": {
				"AutoMapper",
			},
			"entityframework": {
				"EntityFramework.SqlServer",
			},
		},
		Namespaces: []NamespaceRule{
			{
				Name:  "platform-under-framework",
				Lower: policies.NewPackageList("core-platform", "System.*"),
				Higher: policies.NewPackageList("application-frameworks",
					"Microsoft.AspNetCore.*",
					"Microsoft.EntityFrameworkCore*",
					"Microsoft.Extensions.*",
				),
			},
			{
				Name: "abstractions-under-implementation",
				Lower: policies.NewPackageList("extension-abstractions",
					"Microsoft.Extensions.Configuration.Abstractions",
					"Microsoft.Extensions.DependencyInjection.Abstractions",
					"Microsoft.Extensions.Logging.Abstractions",
					"Microsoft.Extensions.Options",
				),
				Higher: policies.NewPackageList("hosting", "Microsoft.Extensions.Hosting", "Microsoft.AspNetCore.*"),
			},
		},
	}
}
