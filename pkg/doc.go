// Package pkg provides the libraries behind nugraph, a tool that draws the
// dependency graph of a NuGet package or .NET project.
//
// # Overview
//
// nugraph asks the .NET SDK to restore a project and reads the resulting
// project.assets.json. For a bare package identity it first resolves the
// package against the configured feeds, picks a target framework and writes
// a throwaway project that references it. The libraries are organized into
// four areas:
//
//  1. Model: [framework], [nuget] identities, versions and configuration
//  2. Acquisition: [integrations/nuget], [resolve], [project], [dotnet]
//  3. Graph: [assets], [dag], [render], [export], [io]
//  4. Orchestration: [pipeline], [config]
//
// # Architecture
//
// The typical data flow:
//
//	"Serilog/4.3.0" or App.csproj
//	         ↓
//	    [resolve] (feeds, source mapping, framework selection)
//	         ↓
//	    [project] + [dotnet] (throwaway project, dotnet restore)
//	         ↓
//	    [assets] (project.assets.json → [dag.DAG])
//	         ↓
//	    [render] + [export] (Mermaid or Graphviz text → viewer URL)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(resolver, selector, dotnet.NewCLI(nil), logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Source: "Serilog"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.URL)
//
// # Supporting Packages
//
// [cache] stores registry responses on disk or in redis. [httputil] provides
// retries and HTTP range reads used to read package archives partially.
// [errors] defines the error codes and exit codes shared by every package.
// [observability] exposes hooks around resolution, restores, cache and HTTP
// traffic. [buildinfo] carries the version set at build time.
//
// [framework]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/framework
// [nuget]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/nuget
// [integrations/nuget]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/integrations/nuget
// [resolve]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/resolve
// [project]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/project
// [dotnet]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/dotnet
// [assets]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/assets
// [dag]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/dag
// [render]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/render
// [export]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/export
// [io]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/nugraph/pkg/buildinfo
package pkg
