package nuget

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/nugraph/pkg/integrations"
	ng "github.com/matzehuels/nugraph/pkg/nuget"
)

// findLocal resolves pkg in a folder feed. Both the hierarchical layout
// (<dir>/<id>/<version>/<id>.<version>.nupkg) and a flat directory of
// .nupkg files are supported. Every local package counts as listed.
func (c *Client) findLocal(pkg ng.PackageIdentity, src ng.PackageSource) (*Package, error) {
	dir := src.Address
	if u, ok := strings.CutPrefix(dir, "file://"); ok {
		dir = u
	}
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Warn("local source does not exist", "source", src.Name, "path", dir)
			return nil, integrations.ErrNotFound
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local source %s is not a directory", dir)
	}

	entries, err := localEntries(dir, pkg.ID)
	if err != nil {
		return nil, err
	}
	e, ok := selectEntry(entries, pkg.Version)
	if !ok {
		return nil, integrations.ErrNotFound
	}

	f, err := os.Open(e.ContentURL)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	a, err := ReadArchive(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.ContentURL, err)
	}
	return &Package{
		Identity:   ng.PackageIdentity{ID: firstNonEmpty(a.ID, pkg.ID), Version: e.Version},
		Frameworks: a.Frameworks,
		Source:     src,
		ContentURL: e.ContentURL,
	}, nil
}

func localEntries(dir, id string) ([]entry, error) {
	lower := integrations.NormalizeID(id)
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var entries []entry
	for _, item := range items {
		name := item.Name()
		switch {
		case item.IsDir() && strings.EqualFold(name, id):
			versions, err := os.ReadDir(filepath.Join(dir, name))
			if err != nil {
				return nil, err
			}
			for _, vd := range versions {
				if !vd.IsDir() {
					continue
				}
				v, err := ng.ParseVersion(vd.Name())
				if err != nil {
					continue
				}
				if path, ok := findNupkg(filepath.Join(dir, name, vd.Name())); ok {
					entries = append(entries, entry{Version: v, Listed: true, ContentURL: path})
				}
			}
		case !item.IsDir() && strings.HasSuffix(strings.ToLower(name), ".nupkg"):
			base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
			rest, ok := strings.CutPrefix(base, lower+".")
			if !ok || strings.HasSuffix(rest, ".symbols") {
				continue
			}
			v, err := ng.ParseVersion(rest)
			if err != nil {
				continue
			}
			entries = append(entries, entry{Version: v, Listed: true, ContentURL: filepath.Join(dir, name)})
		}
	}
	return entries, nil
}

func findNupkg(dir string) (string, bool) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, item := range items {
		name := strings.ToLower(item.Name())
		if !item.IsDir() && strings.HasSuffix(name, ".nupkg") && !strings.HasSuffix(name, ".symbols.nupkg") {
			return filepath.Join(dir, item.Name()), true
		}
	}
	return "", false
}
