package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nugraph/pkg/assets"
	"github.com/matzehuels/nugraph/pkg/dotnet"
	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/framework"
	"github.com/matzehuels/nugraph/pkg/integrations/nuget"
	ng "github.com/matzehuels/nugraph/pkg/nuget"
	"github.com/matzehuels/nugraph/pkg/project"
	"github.com/matzehuels/nugraph/pkg/resolve"
)

// Runner wires the resolver, the framework selector and the restorer into
// the pipeline.
//
// The Runner is stateless: it doesn't store pipeline results. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Resolver *resolve.Resolver
	Selector *resolve.Selector
	Restorer dotnet.Restorer
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil selector uses the declared and default
// tiers only.
func NewRunner(resolver *resolve.Resolver, selector *resolve.Selector, restorer dotnet.Restorer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if selector == nil {
		selector = resolve.NewSelector(nil, nil, logger)
	}
	return &Runner{Resolver: resolver, Selector: selector, Restorer: restorer, Logger: logger}
}

// Execute runs the complete pipeline: graph, diagram text, then a viewer URL
// or the output file.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result, err := r.Graph(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := Render(result, opts); err != nil {
		return nil, err
	}

	r.Logger.Info("rendered graph",
		"format", result.Format,
		"service", opts.service,
		"output", result.Output,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// runtimeRestorer is implemented by restorers that can target a runtime
// identifier per call.
type runtimeRestorer interface {
	ForRuntime(rid string) dotnet.Restorer
}

// Graph resolves and restores the source and reads its dependency graph.
// Nodes matching opts.Ignore are marked, not removed.
func (r *Runner) Graph(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if r.Restorer == nil {
		return nil, nerrors.New(nerrors.ErrCodeInternal, "pipeline runner has no restorer")
	}
	src, err := opts.source()
	if err != nil {
		return nil, err
	}
	result := &Result{Source: src}

	restoreSource := src.Path
	fw := opts.framework
	if src.IsPackage() {
		opts.Progress(fmt.Sprintf("Resolving %s", src.Name()))
		resolveStart := time.Now()
		pkg, sel, err := r.ResolvePackage(ctx, src.Package, opts.framework)
		if err != nil {
			return nil, err
		}
		result.Stats.ResolveTime = time.Since(resolveStart)
		result.Package = pkg
		result.Selection = &sel
		result.Warnings = append(result.Warnings, sel.Warnings...)
		fw = sel.Framework

		p, err := project.New(project.Options{Framework: fw, Package: &pkg.Identity, Root: opts.TempRoot})
		if err != nil {
			return nil, nerrors.Wrap(nerrors.ErrCodeInternal, err, "create project for %s", pkg.Identity)
		}
		defer func() {
			if err := p.Close(); err != nil {
				r.Logger.Warn("could not remove temporary project", "dir", p.Dir(), "err", err)
			}
		}()
		restoreSource = p.Path()
		result.Title = fmt.Sprintf("Dependency graph of %s %s (%s)", pkg.Identity.ID, pkg.Identity.Version, targetName(fw, opts.Runtime))
		opts.Progress(fmt.Sprintf("Generating dependency graph for %s %s (%s)", pkg.Identity.ID, pkg.Identity.Version, targetName(fw, opts.Runtime)))
	} else {
		result.Title = "Dependency graph of " + src.Name()
		opts.Progress("Generating dependency graph for " + src.Name())
	}
	if opts.Title != "" {
		result.Title = opts.Title
	}

	restoreStart := time.Now()
	restorer := r.Restorer
	if rr, ok := restorer.(runtimeRestorer); ok && opts.Runtime != "" {
		restorer = rr.ForRuntime(opts.Runtime)
	}
	restored, err := restorer.Restore(ctx, restoreSource)
	if err != nil {
		return nil, err
	}
	result.Stats.RestoreTime = time.Since(restoreStart)
	r.Logger.Debug("restored",
		"assets", restored.ProjectAssetsFile,
		"frameworks", restored.TargetFrameworks,
		"copy_local", len(restored.CopyLocalPackages),
		"duration", result.Stats.RestoreTime)

	if fw.IsZero() {
		fw, err = newestCandidate(restored.TargetFrameworks)
		if err != nil {
			return nil, err
		}
	}
	result.Framework = fw

	file, err := assets.Read(restored.ProjectAssetsFile)
	if err != nil {
		return nil, err
	}
	g, err := file.Graph(assets.Options{Framework: fw, Runtime: opts.Runtime, CopyLocal: restored.CopyLocalPackages})
	if err != nil {
		return nil, err
	}
	result.Target, _ = g.Meta()["target"].(string)
	result.Stats.Ignored = g.Ignore(opts.Ignore)
	result.Graph = g
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	r.Logger.Info("read dependency graph",
		"target", result.Target,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"ignored", result.Stats.Ignored)
	return result, nil
}

// ResolvePackage finds pkg in its eligible sources and selects the framework
// to restore it for. A non-zero requested framework always wins.
func (r *Runner) ResolvePackage(ctx context.Context, pkg ng.PackageIdentity, requested framework.Framework) (*nuget.Package, resolve.Selection, error) {
	if r.Resolver == nil {
		return nil, resolve.Selection{}, nerrors.New(nerrors.ErrCodeInternal, "pipeline runner has no resolver")
	}
	found, err := r.Resolver.Resolve(ctx, pkg)
	if err != nil {
		return nil, resolve.Selection{}, err
	}
	sel, err := r.Selector.Select(ctx, found.Identity.ID, requested, found.Frameworks)
	if err != nil {
		if ctx.Err() != nil {
			return nil, resolve.Selection{}, nerrors.Cancelled(ctx.Err())
		}
		return nil, resolve.Selection{}, err
	}
	r.Logger.Debug("selected framework",
		"package", found.Identity,
		"framework", sel.Framework,
		"tier", sel.Tier,
		"source", found.Source.Name)
	return found, sel, nil
}

// newestCandidate picks the most recent of the restore's frameworks.
func newestCandidate(names []string) (framework.Framework, error) {
	var fws []framework.Framework
	for _, name := range names {
		fw, err := framework.Parse(name)
		if err != nil {
			return framework.Framework{}, nerrors.Wrap(nerrors.ErrCodeInvalidManifest, err, "restore reported an invalid target framework %q", name)
		}
		fws = append(fws, fw)
	}
	fw, ok := framework.Newest(fws)
	if !ok {
		return framework.Framework{}, nerrors.New(nerrors.ErrCodeInvalidManifest, "restore reported no target framework")
	}
	return fw, nil
}

func targetName(fw framework.Framework, runtime string) string {
	name := fw.ShortFolderName()
	if runtime != "" {
		name += "/" + runtime
	}
	return name
}
