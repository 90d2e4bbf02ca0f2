// Package nuget resolves packages against NuGet feeds.
//
// [Client.FindPackage] walks the given sources in order and stops at the
// first one offering a matching version. Remote V3 feeds are queried through
// their registration resource; supported frameworks are read from the
// package archive with HTTP range requests, never a full download. Sources
// whose address is a directory are read as local folder feeds.
package nuget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nugraph/pkg/cache"
	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/framework"
	"github.com/matzehuels/nugraph/pkg/integrations"
	ng "github.com/matzehuels/nugraph/pkg/nuget"
	"github.com/matzehuels/nugraph/pkg/observability"
)

// DefaultTTL is how long registry metadata stays cached.
const DefaultTTL = 30 * time.Minute

// Package is a resolved package and the frameworks it declares.
type Package struct {
	Identity   ng.PackageIdentity
	Frameworks []framework.Framework // specific frameworks, newest first
	Source     ng.PackageSource
	ContentURL string
}

// Options configures a Client. The zero value is usable: no cache, default
// TTL and no retries.
type Options struct {
	Cache     cache.Cache
	TTL       time.Duration
	Refresh   bool // skip cache reads, still store fresh responses
	UserAgent string
	Timeout   time.Duration
	Attempts  int
	Logger    *log.Logger
}

// Client queries NuGet feeds.
type Client struct {
	http    *integrations.Client
	refresh bool
	logger  *log.Logger
}

// NewClient creates a feed client.
func NewClient(opts Options) *Client {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	var headers map[string]string
	if opts.UserAgent != "" {
		headers = map[string]string{"User-Agent": opts.UserAgent}
	}
	h := integrations.NewClient(opts.Cache, "nuget:", opts.TTL, headers)
	if opts.Timeout > 0 {
		h.HTTPClient().Timeout = opts.Timeout
	}
	h.SetAttempts(opts.Attempts)
	return &Client{http: h, refresh: opts.Refresh, logger: opts.Logger}
}

// HTTP returns the underlying HTTP client.
func (c *Client) HTTP() *integrations.Client { return c.http }

// FindPackage resolves pkg against sources, in order. The first source with
// a matching version wins. When no source matches, the error is a
// *errors.NotFoundError listing every searched source.
func (c *Client) FindPackage(ctx context.Context, pkg ng.PackageIdentity, sources []ng.PackageSource) (*Package, error) {
	start := time.Now()
	observability.Resolve().OnResolveStart(ctx, pkg.ID, len(sources))

	p, err := c.findPackage(ctx, pkg, sources)
	version, count := "", 0
	if p != nil {
		version, count = p.Identity.Version.String(), len(p.Frameworks)
	}
	observability.Resolve().OnResolveComplete(ctx, pkg.ID, version, count, time.Since(start), err)
	return p, err
}

func (c *Client) findPackage(ctx context.Context, pkg ng.PackageIdentity, sources []ng.PackageSource) (*Package, error) {
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.logger.Debug("searching source", "id", pkg.ID, "source", src.Name)

		var (
			p   *Package
			err error
		)
		if src.IsHTTP() {
			p, err = c.findRemote(ctx, pkg, src)
		} else {
			p, err = c.findLocal(pkg, src)
		}
		switch {
		case errors.Is(err, integrations.ErrNotFound):
			c.logger.Debug("not found", "id", pkg.String(), "source", src.Name)
			continue
		case err != nil:
			return nil, err
		}
		c.logger.Debug("resolved", "id", p.Identity.String(), "source", src.Name, "frameworks", framework.Names(p.Frameworks))
		return p, nil
	}

	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.String()
	}
	return nil, &nerrors.NotFoundError{Package: pkg.String(), Sources: names}
}

func (c *Client) findRemote(ctx context.Context, pkg ng.PackageIdentity, src ng.PackageSource) (*Package, error) {
	ep, err := c.serviceEndpoints(ctx, src.Address)
	if err != nil {
		return nil, err
	}
	entries, err := c.versions(ctx, ep, pkg.ID)
	if err != nil {
		return nil, err
	}
	e, ok := selectEntry(entries, pkg.Version)
	if !ok {
		return nil, integrations.ErrNotFound
	}
	if e.ContentURL == "" {
		return nil, fmt.Errorf("%s: no content URL for %s/%s", src.Name, pkg.ID, e.Version)
	}

	c.logger.Debug("reading supported frameworks", "url", e.ContentURL)
	r, err := c.http.OpenRange(ctx, e.ContentURL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", e.ContentURL, err)
	}
	a, err := ReadArchive(r, r.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.ContentURL, err)
	}
	c.logger.Debug("range reads", "url", e.ContentURL, "requests", r.Requests(), "size", r.Size())

	return &Package{
		Identity:   ng.PackageIdentity{ID: firstNonEmpty(e.ID, a.ID, pkg.ID), Version: e.Version},
		Frameworks: a.Frameworks,
		Source:     src,
		ContentURL: e.ContentURL,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
