package nuget

import (
	"fmt"
	"strings"

	"github.com/matzehuels/nugraph/pkg/errors"
)

// PackageIdentity names a package and, optionally, one of its versions.
type PackageIdentity struct {
	ID      string
	Version Version // zero when unspecified
}

// ParsePackageIdentity parses "Id" or "Id/Version".
func ParsePackageIdentity(s string) (PackageIdentity, error) {
	id, ver, hasVersion := strings.Cut(strings.TrimSpace(s), "/")
	if err := errors.ValidatePackageID(id); err != nil {
		return PackageIdentity{}, err
	}
	p := PackageIdentity{ID: id}
	if hasVersion {
		v, err := ParseVersion(ver)
		if err != nil {
			return PackageIdentity{}, errors.Wrap(errors.ErrCodeInvalidPackage, err, "invalid version for %s", id)
		}
		p.Version = v
	}
	return p, nil
}

// HasVersion reports whether a version was specified.
func (p PackageIdentity) HasVersion() bool { return !p.Version.IsZero() }

// Equal reports whether ids match case-insensitively and versions match exactly.
func (p PackageIdentity) Equal(o PackageIdentity) bool {
	return strings.EqualFold(p.ID, o.ID) && p.Version.Compare(o.Version) == 0
}

// String returns "Id" or "Id/Version".
func (p PackageIdentity) String() string {
	if p.Version.IsZero() {
		return p.ID
	}
	return fmt.Sprintf("%s/%s", p.ID, p.Version)
}
