// Package project writes throwaway SDK-style projects for restore and SDK
// evaluation.
//
// A Project owns its directory exclusively; Close removes it and must run
// on every exit path:
//
//	p, err := project.New(project.Options{Framework: fw, Package: &pkg})
//	if err != nil { ... }
//	defer p.Close()
package project

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/matzehuels/nugraph/pkg/framework"
	ng "github.com/matzehuels/nugraph/pkg/nuget"
)

// DefaultSDK is the project SDK every generated project declares.
const DefaultSDK = "Microsoft.NET.Sdk"

// FileName is the project file name inside the project directory.
const FileName = "project.csproj"

// Options describes the project to write.
type Options struct {
	// Framework is declared as TargetFramework when non-zero.
	Framework framework.Framework
	// Package is referenced when non-nil; a missing version becomes "*".
	Package *ng.PackageIdentity
	// Root is the parent of the nugraph temp directory; os.TempDir() when empty.
	Root string
}

// Project is an SDK-style project in a uniquely named temporary directory.
type Project struct {
	dir       string
	path      string
	pkg       *ng.PackageIdentity
	framework framework.Framework
}

type xmlProject struct {
	XMLName       xml.Name          `xml:"Project"`
	SDK           string            `xml:"Sdk,attr"`
	PropertyGroup *xmlPropertyGroup `xml:"PropertyGroup,omitempty"`
	ItemGroup     *xmlItemGroup     `xml:"ItemGroup,omitempty"`
}

type xmlPropertyGroup struct {
	TargetFramework string `xml:"TargetFramework"`
}

type xmlItemGroup struct {
	PackageReference xmlPackageReference `xml:"PackageReference"`
}

type xmlPackageReference struct {
	Include string `xml:"Include,attr"`
	Version string `xml:"Version,attr"`
}

// New creates the directory <root>/nugraph/<uuid> and writes the project
// file into it. On failure nothing is left behind.
func New(opts Options) (*Project, error) {
	root := opts.Root
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, "nugraph", uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create project directory: %w", err)
	}

	p := &Project{dir: dir, path: filepath.Join(dir, FileName), pkg: opts.Package, framework: opts.Framework}
	data, err := Render(opts.Framework, opts.Package)
	if err == nil {
		err = os.WriteFile(p.path, data, 0o644)
	}
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("write project: %w", err)
	}
	return p, nil
}

// Render returns the project file contents: UTF-8 without a byte order mark
// or XML declaration, indented by two spaces.
func Render(fw framework.Framework, pkg *ng.PackageIdentity) ([]byte, error) {
	doc := xmlProject{SDK: DefaultSDK}
	if !fw.IsZero() {
		doc.PropertyGroup = &xmlPropertyGroup{TargetFramework: fw.ShortFolderName()}
	}
	if pkg != nil {
		version := "*"
		if pkg.HasVersion() {
			version = pkg.Version.String()
		}
		doc.ItemGroup = &xmlItemGroup{PackageReference: xmlPackageReference{Include: pkg.ID, Version: version}}
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Path returns the project file path.
func (p *Project) Path() string { return p.path }

// Dir returns the project directory.
func (p *Project) Dir() string { return p.dir }

// Package returns the referenced package, or nil.
func (p *Project) Package() *ng.PackageIdentity { return p.pkg }

// Framework returns the declared target framework, or the zero framework.
func (p *Project) Framework() framework.Framework { return p.framework }

// Close removes the project directory and everything restore wrote into it.
func (p *Project) Close() error {
	return os.RemoveAll(p.dir)
}
