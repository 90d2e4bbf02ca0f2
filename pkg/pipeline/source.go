package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	ng "github.com/matzehuels/nugraph/pkg/nuget"
)

// SourceKind tells project sources from package sources.
type SourceKind int

const (
	SourceFile SourceKind = iota + 1
	SourceDirectory
	SourcePackage
)

// Source is a classified pipeline input.
type Source struct {
	Kind SourceKind
	// Path is the absolute project file or directory.
	Path    string
	Package ng.PackageIdentity
}

// ParseSource classifies input. An existing file or directory wins over a
// package identity; empty input is workDir.
func ParseSource(input, workDir string) (Source, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		input = workDir
	}
	if input == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Source{}, nerrors.Wrap(nerrors.ErrCodeInternal, err, "get working directory")
		}
		input = wd
	}

	path := input
	if !filepath.IsAbs(path) && workDir != "" {
		path = filepath.Join(workDir, path)
	}
	if info, err := os.Stat(path); err == nil {
		abs, err := filepath.Abs(path)
		if err != nil {
			return Source{}, nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "resolve %s", input)
		}
		if info.IsDir() {
			return Source{Kind: SourceDirectory, Path: abs}, nil
		}
		return Source{Kind: SourceFile, Path: abs}, nil
	}

	id, _, _ := strings.Cut(input, "/")
	if err := nerrors.ValidatePackageID(id); err != nil {
		return Source{}, nerrors.Wrap(nerrors.ErrCodeInvalidInput, err,
			"%s is neither an existing file or directory nor a package id", input)
	}
	pkg, err := ng.ParsePackageIdentity(input)
	if err != nil {
		return Source{}, err
	}
	return Source{Kind: SourcePackage, Package: pkg}, nil
}

// source classifies the run's input. Package wins over Source.
func (o *Options) source() (Source, error) {
	if o.Package != nil {
		if err := nerrors.ValidatePackageID(o.Package.ID); err != nil {
			return Source{}, err
		}
		return Source{Kind: SourcePackage, Package: *o.Package}, nil
	}
	return ParseSource(o.Source, o.WorkDir)
}

// IsPackage reports whether the source names a package.
func (s Source) IsPackage() bool { return s.Kind == SourcePackage }

// Name is the file or directory name without extension, or the package id
// followed by its version.
func (s Source) Name() string {
	if s.IsPackage() {
		if s.Package.HasVersion() {
			return fmt.Sprintf("%s %s", s.Package.ID, s.Package.Version)
		}
		return s.Package.ID
	}
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s Source) String() string {
	if s.IsPackage() {
		return s.Package.String()
	}
	return s.Path
}
