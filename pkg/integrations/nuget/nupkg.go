package nuget

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/nugraph/pkg/framework"
)

// frameworkFolders hold "<folder>/<tfm>/<file>" entries.
var frameworkFolders = map[string]bool{
	"lib":             true,
	"ref":             true,
	"build":           true,
	"buildtransitive": true,
	"tools":           true,
	"content":         true,
}

type nuspec struct {
	Metadata struct {
		ID           string `xml:"id"`
		Version      string `xml:"version"`
		Dependencies struct {
			Groups []targetGroup `xml:"group"`
		} `xml:"dependencies"`
		FrameworkAssemblies struct {
			Items []targetGroup `xml:"frameworkAssembly"`
		} `xml:"frameworkAssemblies"`
		FrameworkReferences struct {
			Groups []targetGroup `xml:"group"`
		} `xml:"frameworkReferences"`
	} `xml:"metadata"`
}

type targetGroup struct {
	TargetFramework string `xml:"targetFramework,attr"`
}

// Archive is what resolution needs from a .nupkg.
type Archive struct {
	ID         string // from the nuspec
	Version    string
	Frameworks []framework.Framework // specific frameworks, newest first
}

// ReadFrameworks lists the specific frameworks a .nupkg supports, newest
// first.
func ReadFrameworks(r io.ReaderAt, size int64) ([]framework.Framework, error) {
	a, err := ReadArchive(r, size)
	if err != nil {
		return nil, err
	}
	return a.Frameworks, nil
}

// ReadArchive reads the nuspec and entry names of a .nupkg. Only the zip
// central directory and the nuspec are read, so a ReaderAt backed by range
// requests fetches a small part of the archive.
func ReadArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	a := &Archive{}
	var names []string
	for _, f := range zr.File {
		name := f.Name
		if u, err := url.PathUnescape(name); err == nil {
			name = u
		}
		if !strings.Contains(name, "/") && strings.HasSuffix(strings.ToLower(name), ".nuspec") {
			spec, err := readNuspec(f)
			if err != nil {
				return nil, err
			}
			a.ID, a.Version = strings.TrimSpace(spec.Metadata.ID), strings.TrimSpace(spec.Metadata.Version)
			names = append(names, spec.targetFrameworks()...)
			continue
		}
		if tfm := folderFramework(name); tfm != "" {
			names = append(names, tfm)
		}
	}

	var fws []framework.Framework
	for _, n := range names {
		fw, err := framework.Parse(n)
		if err != nil || !fw.IsSpecific() {
			continue
		}
		fws = append(fws, fw)
	}
	fws = framework.Dedupe(fws)
	framework.SortNewestFirst(fws)
	a.Frameworks = fws
	return a, nil
}

func readNuspec(f *zip.File) (*nuspec, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	var spec nuspec
	if err := xml.NewDecoder(rc).Decode(&spec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Name, err)
	}
	return &spec, nil
}

// targetFrameworks returns every framework the metadata declares.
func (spec *nuspec) targetFrameworks() []string {
	var names []string
	for _, g := range spec.Metadata.Dependencies.Groups {
		names = append(names, g.TargetFramework)
	}
	for _, a := range spec.Metadata.FrameworkAssemblies.Items {
		for _, tfm := range strings.Split(a.TargetFramework, ",") {
			names = append(names, tfm)
		}
	}
	for _, g := range spec.Metadata.FrameworkReferences.Groups {
		names = append(names, g.TargetFramework)
	}
	return names
}

// folderFramework returns the framework folder of a package entry, or ""
// when the entry is not framework specific.
func folderFramework(name string) string {
	parts := strings.Split(name, "/")
	folder := strings.ToLower(parts[0])
	switch {
	case folder == "contentfiles":
		// contentFiles/<language>/<tfm>/<file>
		if len(parts) >= 4 {
			return parts[2]
		}
	case frameworkFolders[folder]:
		if len(parts) >= 3 {
			return parts[1]
		}
	}
	return ""
}
