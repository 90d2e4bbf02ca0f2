package nuget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

// fakeVersion is one version a fake feed serves.
type fakeVersion struct {
	Version   string
	Listed    *bool
	Published string
	NoContent bool // omit packageContent so clients fall back to the flat container
	nuspecTFM []string
	files     []string
}

func listed(b bool) *bool { return &b }

// fakeFeed is an in-memory NuGet V3 feed.
type fakeFeed struct {
	t        *testing.T
	server   *httptest.Server
	id       string
	versions []fakeVersion
	paged    bool // registration pages are not inlined

	mu       sync.Mutex
	requests []string
}

func newFakeFeed(t *testing.T, id string, versions ...fakeVersion) *fakeFeed {
	t.Helper()
	f := &fakeFeed{t: t, id: id, versions: versions}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeFeed) URL() string { return f.server.URL + "/v3/index.json" }

func (f *fakeFeed) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeFeed) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	lower := strings.ToLower(f.id)
	base := f.server.URL
	switch {
	case r.URL.Path == "/v3/index.json":
		writeJSON(w, map[string]any{
			"version": "3.0.0",
			"resources": []map[string]string{
				{"@id": base + "/flat/", "@type": "PackageBaseAddress/3.0.0"},
				{"@id": base + "/registration", "@type": "RegistrationsBaseUrl/3.6.0"},
				{"@id": base + "/old-registration/", "@type": "RegistrationsBaseUrl"},
			},
		})
	case r.URL.Path == "/registration/"+lower+"/index.json":
		page := map[string]any{"@id": base + "/registration/" + lower + "/page.json", "count": len(f.versions)}
		if !f.paged {
			page["items"] = f.leaves()
		}
		writeJSON(w, map[string]any{"count": 1, "items": []any{page}})
	case r.URL.Path == "/registration/"+lower+"/page.json":
		writeJSON(w, map[string]any{"count": len(f.versions), "items": f.leaves()})
	case strings.HasPrefix(r.URL.Path, "/flat/"+lower+"/"):
		if r.Method == http.MethodGet && r.Header.Get("Range") == "" {
			f.t.Errorf("full download of %s", r.URL.Path)
		}
		for _, v := range f.versions {
			name := fmt.Sprintf("/flat/%s/%s/%s.%s.nupkg", lower, strings.ToLower(v.Version), lower, strings.ToLower(v.Version))
			if r.URL.Path == name {
				data := buildNupkg(f.t, f.id, v.Version, v.nuspecTFM, v.files...)
				http.ServeContent(w, r, "package.nupkg", time.Time{}, bytes.NewReader(data))
				return
			}
		}
		http.NotFound(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeFeed) leaves() []map[string]any {
	lower := strings.ToLower(f.id)
	var leaves []map[string]any
	for _, v := range f.versions {
		entry := map[string]any{"id": f.id, "version": v.Version}
		if v.Listed != nil {
			entry["listed"] = *v.Listed
		}
		if v.Published != "" {
			entry["published"] = v.Published
		}
		leaf := map[string]any{"catalogEntry": entry}
		if !v.NoContent {
			ver := strings.ToLower(v.Version)
			leaf["packageContent"] = fmt.Sprintf("%s/flat/%s/%s/%s.%s.nupkg", f.server.URL, lower, ver, lower, ver)
		}
		leaves = append(leaves, leaf)
	}
	return leaves
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// buildNupkg writes a package archive with a nuspec declaring dependency
// groups for tfms, plus one placeholder entry per file.
func buildNupkg(t *testing.T, id, version string, tfms []string, files ...string) []byte {
	t.Helper()
	var groups strings.Builder
	for _, tfm := range tfms {
		fmt.Fprintf(&groups, `<group targetFramework="%s" />`, tfm)
	}
	nuspec := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://schemas.microsoft.com/packaging/2013/05/nuspec.xsd">
  <metadata>
    <id>%s</id>
    <version>%s</version>
    <dependencies>%s</dependencies>
  </metadata>
</package>`, id, version, groups.String())

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		w.Write([]byte(content))
	}
	write("_rels/.rels", "<Relationships />")
	write(id+".nuspec", nuspec)
	for _, name := range files {
		write(name, "placeholder")
	}
	// Stored padding so the archive spans several range blocks.
	pad, err := zw.CreateHeader(&zip.FileHeader{Name: "docs/padding.bin", Method: zip.Store})
	if err != nil {
		t.Fatalf("zip create padding: %v", err)
	}
	pad.Write(bytes.Repeat([]byte("x"), 300<<10))
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}
