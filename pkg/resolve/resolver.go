package resolve

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nugraph/pkg/integrations/nuget"
	ng "github.com/matzehuels/nugraph/pkg/nuget"
)

// Finder looks a package up in an ordered list of sources.
type Finder interface {
	FindPackage(ctx context.Context, pkg ng.PackageIdentity, sources []ng.PackageSource) (*nuget.Package, error)
}

// Resolver restricts sources per package id before delegating to a Finder.
type Resolver struct {
	finder  Finder
	sources []ng.PackageSource
	mapping *ng.SourceMapping
	logger  *log.Logger
}

// NewResolver creates a Resolver over sources. A nil or empty mapping makes
// every enabled source eligible.
func NewResolver(finder Finder, sources []ng.PackageSource, mapping *ng.SourceMapping, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{finder: finder, sources: sources, mapping: mapping, logger: logger}
}

// Sources returns the sources eligible for id, in search order.
func (r *Resolver) Sources(id string) []ng.PackageSource {
	return ng.EligibleSources(r.sources, r.mapping, id)
}

// Resolve finds pkg in its eligible sources.
func (r *Resolver) Resolve(ctx context.Context, pkg ng.PackageIdentity) (*nuget.Package, error) {
	sources := r.Sources(pkg.ID)
	if r.mapping != nil && r.mapping.Enabled() {
		r.logger.Debug("source mapping applied", "id", pkg.ID, "sources", len(sources))
	}
	return r.finder.FindPackage(ctx, pkg, sources)
}
