// Package assets reads project.assets.json, the lock file written by a
// restore, and turns the target matching a framework into a package graph.
package assets

import (
	"encoding/json"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/nugraph/pkg/dag"
	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/framework"
)

// File is the subset of project.assets.json needed to build a graph.
type File struct {
	Version int                           `json:"version"`
	Targets map[string]map[string]Library `json:"targets"`
	Project Project                       `json:"project"`
}

// Library is one "Id/Version" entry of a target.
type Library struct {
	Type         string            `json:"type"` // "package" or "project"
	Dependencies map[string]string `json:"dependencies"`
}

// Project describes the restored project itself.
type Project struct {
	Restore struct {
		ProjectName string                      `json:"projectName"`
		ProjectPath string                      `json:"projectPath"`
		Frameworks  map[string]RestoreFramework `json:"frameworks"`
	} `json:"restore"`
	Frameworks map[string]ProjectFramework `json:"frameworks"`
}

// RestoreFramework lists the project references of one framework.
type RestoreFramework struct {
	TargetAlias       string                     `json:"targetAlias"`
	ProjectReferences map[string]json.RawMessage `json:"projectReferences"`
}

// ProjectFramework lists the package references of one framework.
type ProjectFramework struct {
	TargetAlias  string                     `json:"targetAlias"`
	Dependencies map[string]json.RawMessage `json:"dependencies"`
}

// Read parses the file at path.
func Read(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nerrors.Wrap(nerrors.ErrCodeInvalidManifest, err, "open %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a project.assets.json document.
func Parse(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, nerrors.Wrap(nerrors.ErrCodeInvalidManifest, err, "decode project assets")
	}
	return &f, nil
}

// Options select the target and filter its libraries.
type Options struct {
	Framework framework.Framework
	Runtime   string // runtime identifier, empty for the RID-less target
	// CopyLocal restricts packages to those IDs. Empty means no restriction.
	CopyLocal []string
}

// TargetNames returns the target keys, sorted.
func (f *File) TargetNames() []string {
	return slices.Sorted(maps.Keys(f.Targets))
}

// target finds the target whose framework equals fw, whatever form its key
// uses, for the given runtime.
func (f *File) target(fw framework.Framework, runtime string) (string, map[string]Library, bool) {
	for _, name := range f.TargetNames() {
		tfm, rid, _ := strings.Cut(name, "/")
		if !strings.EqualFold(rid, runtime) {
			continue
		}
		parsed, err := framework.Parse(tfm)
		if err != nil || !parsed.Equal(fw) {
			continue
		}
		return name, f.Targets[name], true
	}
	return "", nil, false
}

// projectFramework finds the project section entry for fw. Keys are target
// aliases, usually short folder names.
func projectFramework[T any](m map[string]T, fw framework.Framework) (T, bool) {
	for _, name := range slices.Sorted(maps.Keys(m)) {
		if parsed, err := framework.Parse(name); err == nil && parsed.Equal(fw) {
			return m[name], true
		}
	}
	var zero T
	return zero, false
}

// Graph builds the dependency graph of the target matching opts.
//
// Roots are the package references of the project for that framework plus
// its project references. With a non-empty CopyLocal set, packages outside it
// are dropped; projects are always kept.
func (f *File) Graph(opts Options) (*dag.DAG, error) {
	name, libs, ok := f.target(opts.Framework, opts.Runtime)
	if !ok {
		want := opts.Framework.ShortFolderName()
		if opts.Runtime != "" {
			want += "/" + opts.Runtime
		}
		return nil, nerrors.New(nerrors.ErrCodeInvalidManifest,
			"the assets file has no target for %s (available targets: %s)", want, strings.Join(f.TargetNames(), ", "))
	}

	keep := func(string) bool { return true }
	if len(opts.CopyLocal) > 0 {
		set := make(map[string]bool, len(opts.CopyLocal))
		for _, id := range opts.CopyLocal {
			set[strings.ToLower(id)] = true
		}
		keep = func(id string) bool { return set[strings.ToLower(id)] }
	}

	g := dag.New(dag.Metadata{"target": name})
	for _, key := range slices.Sorted(maps.Keys(libs)) {
		id, version, _ := strings.Cut(key, "/")
		lib := libs[key]
		kind := dag.NodeKindPackage
		if strings.EqualFold(lib.Type, "project") {
			kind = dag.NodeKindProject
		} else if !keep(id) {
			continue
		}
		if err := g.AddNode(dag.Node{ID: id, Version: version, Kind: kind}); err != nil {
			return nil, nerrors.Wrap(nerrors.ErrCodeInvalidManifest, err, "target %s: library %s", name, key)
		}
	}

	for _, key := range slices.Sorted(maps.Keys(libs)) {
		id, _, _ := strings.Cut(key, "/")
		if _, ok := g.Node(id); !ok {
			continue
		}
		for _, dep := range slices.Sorted(maps.Keys(libs[key].Dependencies)) {
			if _, ok := g.Node(dep); !ok {
				continue
			}
			if err := g.AddEdge(dag.Edge{From: id, To: dep}); err != nil {
				return nil, nerrors.Wrap(nerrors.ErrCodeInvalidManifest, err, "target %s: %s -> %s", name, id, dep)
			}
		}
	}

	for _, id := range f.rootIDs(opts.Framework) {
		if n, ok := g.Node(id); ok {
			n.Root = true
		}
	}
	return g, nil
}

// rootIDs returns the direct package and project references for fw.
func (f *File) rootIDs(fw framework.Framework) []string {
	var ids []string
	if pf, ok := projectFramework(f.Project.Frameworks, fw); ok {
		ids = append(ids, slices.Sorted(maps.Keys(pf.Dependencies))...)
	}
	if rf, ok := projectFramework(f.Project.Restore.Frameworks, fw); ok {
		for _, path := range slices.Sorted(maps.Keys(rf.ProjectReferences)) {
			base := filepath.Base(filepath.FromSlash(strings.ReplaceAll(path, `\`, "/")))
			ids = append(ids, strings.TrimSuffix(base, filepath.Ext(base)))
		}
	}
	return ids
}
