package nuget

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a NuGet package version. The zero value means "unspecified".
type Version struct {
	sv       *semver.Version
	revision uint64
	pre      string // prerelease label as written
	meta     string
}

// ParseVersion parses a NuGet version such as "4.3.0", "1.0.0.1" or
// "2.0.0-Beta.2+sha.abc".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version")
	}
	if s[0] == 'v' || s[0] == 'V' {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}

	rest := s
	var meta, pre string
	if i := strings.IndexByte(rest, '+'); i >= 0 {
		rest, meta = rest[:i], rest[i+1:]
	}
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		rest, pre = rest[:i], rest[i+1:]
	}

	var revision uint64
	parts := strings.Split(rest, ".")
	switch {
	case len(parts) == 4:
		r, err := strconv.ParseUint(parts[3], 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		revision = r
		rest = strings.Join(parts[:3], ".")
	case len(parts) > 4:
		return Version{}, fmt.Errorf("invalid version %q: too many parts", s)
	}

	text := rest
	if pre != "" {
		text += "-" + strings.ToLower(pre)
	}
	sv, err := semver.NewVersion(text)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return Version{sv: sv, revision: revision, pre: pre, meta: meta}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v is the unspecified version.
func (v Version) IsZero() bool { return v.sv == nil }

// IsPrerelease reports whether v carries a prerelease label.
func (v Version) IsPrerelease() bool { return v.pre != "" }

// Compare returns -1, 0 or 1. Build metadata is ignored and prerelease labels
// compare case-insensitively. The zero version sorts before every other.
func (v Version) Compare(o Version) int {
	switch {
	case v.sv == nil && o.sv == nil:
		return 0
	case v.sv == nil:
		return -1
	case o.sv == nil:
		return 1
	}
	for _, d := range [][2]uint64{
		{v.sv.Major(), o.sv.Major()},
		{v.sv.Minor(), o.sv.Minor()},
		{v.sv.Patch(), o.sv.Patch()},
		{v.revision, o.revision},
	} {
		if d[0] != d[1] {
			if d[0] < d[1] {
				return -1
			}
			return 1
		}
	}
	// Core parts are equal; let semver order the prerelease labels.
	return v.sv.Compare(o.sv)
}

// String returns the normalized form without build metadata.
func (v Version) String() string {
	if v.sv == nil {
		return ""
	}
	s := fmt.Sprintf("%d.%d.%d", v.sv.Major(), v.sv.Minor(), v.sv.Patch())
	if v.revision > 0 {
		s += fmt.Sprintf(".%d", v.revision)
	}
	if v.pre != "" {
		s += "-" + v.pre
	}
	return s
}

// Metadata returns the build metadata, if any.
func (v Version) Metadata() string { return v.meta }
