package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/export"
	"github.com/matzehuels/nugraph/pkg/framework"
	ng "github.com/matzehuels/nugraph/pkg/nuget"
	"github.com/matzehuels/nugraph/pkg/pipeline"
)

type encodeResponse struct {
	URL     string `json:"url"`
	Service string `json:"service"`
}

type packageResponse struct {
	ID         string   `json:"id"`
	Version    string   `json:"version"`
	Source     string   `json:"source"`
	Frameworks []string `json:"frameworks"`
	Framework  string   `json:"framework"`
	Tier       string   `json:"tier"`
	Warnings   []string `json:"warnings,omitempty"`
}

type graphResponse struct {
	URL       string   `json:"url"`
	Service   string   `json:"service"`
	Package   string   `json:"package"`
	Framework string   `json:"framework"`
	Target    string   `json:"target"`
	Title     string   `json:"title"`
	Nodes     int      `json:"nodes"`
	Edges     int      `json:"edges"`
	Warnings  []string `json:"warnings,omitempty"`
}

// requestService reads the service from ?service=<name> or ?format=<format>.
func requestService(r *http.Request) (export.Service, error) {
	q := r.URL.Query()
	if name := q.Get("service"); name != "" {
		return export.ParseService(name)
	}
	if format := q.Get("format"); format != "" {
		return export.ParseFormat(format)
	}
	return export.MermaidLiveView, nil
}

// requestIdentity builds the package identity from the {id} path segment and
// ?version=.
func requestIdentity(r *http.Request) (ng.PackageIdentity, error) {
	id := chi.URLParam(r, "id")
	if v := strings.TrimSpace(r.URL.Query().Get("version")); v != "" {
		id += "/" + v
	}
	return ng.ParsePackageIdentity(id)
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	service, err := requestService(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, nerrors.New(nerrors.ErrCodeInvalidInput, "diagram larger than %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, r, nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	url, err := export.Encode(body, service)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeResponse{URL: url, Service: service.String()})
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := requestIdentity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var requested framework.Framework
	if name := r.URL.Query().Get("framework"); name != "" {
		if requested, err = framework.Parse(name); err != nil {
			s.writeError(w, r, nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "invalid framework %q", name))
			return
		}
	}

	found, sel, err := s.runner.ResolvePackage(r.Context(), pkg, requested)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, packageResponse{
		ID:         found.Identity.ID,
		Version:    found.Identity.Version.String(),
		Source:     found.Source.Name,
		Frameworks: framework.Names(found.Frameworks),
		Framework:  sel.Framework.ShortFolderName(),
		Tier:       sel.Tier.String(),
		Warnings:   sel.Warnings,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	pkg, err := requestIdentity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	d := s.defaults
	opts := pipeline.Options{
		Package:         &pkg,
		Format:          d.Format,
		Direction:       d.Direction,
		IncludeVersions: d.IncludeVersions,
		Ignore:          d.Ignore,
		WriteIgnored:    d.WriteIgnored,
		NoLinks:         d.NoLinks,
		TempRoot:        d.TempRoot,
		Logger:          d.Logger,
	}
	if v := q.Get("framework"); v != "" {
		opts.Framework = v
	}
	if v := q.Get("runtime"); v != "" {
		opts.Runtime = v
	}
	if v := q.Get("format"); v != "" {
		opts.Format = v
	}
	if v := q.Get("direction"); v != "" {
		opts.Direction = v
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if result.Package == nil {
		s.writeError(w, r, nerrors.New(nerrors.ErrCodeInternal, "%s was not resolved as a package", pkg))
		return
	}
	writeJSON(w, http.StatusOK, graphResponse{
		URL:       result.URL,
		Service:   opts.Service().String(),
		Package:   result.Package.Identity.String(),
		Framework: result.Framework.ShortFolderName(),
		Target:    result.Target,
		Title:     result.Title,
		Nodes:     result.Stats.NodeCount,
		Edges:     result.Stats.EdgeCount,
		Warnings:  result.Warnings,
	})
}
