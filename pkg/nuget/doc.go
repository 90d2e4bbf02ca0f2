// Package nuget holds the NuGet vocabulary shared by the registry client,
// the resolver and the CLI: versions, package identities, package sources,
// package source mapping and nuget.config loading.
//
// # Versions
//
// [Version] follows NuGet's rules: SemVer 2.0 plus an optional fourth
// "revision" part, with case-insensitive prerelease labels:
//
//	v, _ := nuget.ParseVersion("4.3.0")
//	v.Compare(nuget.MustParseVersion("4.3.0-dev-02364")) // 1
//
// # Identities
//
// A [PackageIdentity] is written "Id" or "Id/Version" on the command line:
//
//	id, _ := nuget.ParsePackageIdentity("Newtonsoft.Json/12.0.3")
//
// # Settings
//
// [LoadSettings] reads the nuget.config hierarchy the way the NuGet client
// does and exposes the enabled sources and the package source mapping.
package nuget
