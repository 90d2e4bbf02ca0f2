package framework

import "strings"

// Compatibility decides whether a package built for candidate can be
// consumed by a project targeting requested.
type Compatibility interface {
	IsCompatible(requested, candidate Framework) bool
}

// CompatibilityFunc adapts a function to Compatibility.
type CompatibilityFunc func(requested, candidate Framework) bool

// IsCompatible calls f.
func (f CompatibilityFunc) IsCompatible(requested, candidate Framework) bool {
	return f(requested, candidate)
}

// DefaultCompatibility covers the common NuGet rules: same family at a lower
// or equal version, .NET Standard consumed by .NET (Core) and .NET
// Framework, and the any framework.
var DefaultCompatibility Compatibility = CompatibilityFunc(defaultCompatible)

func defaultCompatible(requested, candidate Framework) bool {
	if candidate.Is(Any) {
		return true
	}
	if !requested.IsSpecific() || !candidate.IsSpecific() {
		return false
	}

	if requested.Is(candidate.Identifier) {
		if candidate.Version.Compare(requested.Version) > 0 {
			return false
		}
		if candidate.Platform == "" {
			return true
		}
		return strings.EqualFold(requested.Platform, candidate.Platform) &&
			candidate.PlatformVersion.Compare(requested.PlatformVersion) <= 0
	}

	if candidate.Is(NETStandard) {
		limit, ok := netStandardFor(requested)
		return ok && candidate.Version.Compare(limit) <= 0
	}
	return false
}

// netStandardFor returns the highest .NET Standard version a framework implements.
func netStandardFor(f Framework) (Version, bool) {
	v := f.Version
	switch {
	case f.Is(NETCoreApp):
		switch {
		case v.Compare(Version{Major: 2, Minor: 1}) >= 0:
			return Version{Major: 2, Minor: 1}, true
		case v.Compare(Version{Major: 2}) >= 0:
			return Version{Major: 2}, true
		default:
			return Version{Major: 1, Minor: 6}, true
		}
	case f.Is(NETFramework):
		switch {
		case v.Compare(Version{Major: 4, Minor: 6, Build: 1}) >= 0:
			return Version{Major: 2}, true
		case v.Compare(Version{Major: 4, Minor: 6}) >= 0:
			return Version{Major: 1, Minor: 3}, true
		case v.Compare(Version{Major: 4, Minor: 5, Build: 1}) >= 0:
			return Version{Major: 1, Minor: 2}, true
		case v.Compare(Version{Major: 4, Minor: 5}) >= 0:
			return Version{Major: 1, Minor: 1}, true
		}
	case f.Is(UAP):
		return Version{Major: 2}, true
	case f.Is(MonoAndroid), f.Is(XamariniOS), f.Is(XamarinMac), f.Is(Tizen):
		return Version{Major: 2, Minor: 1}, true
	}
	return Version{}, false
}
