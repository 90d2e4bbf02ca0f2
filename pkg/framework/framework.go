// Package framework models NuGet target frameworks (target platform monikers).
//
// A [Framework] is parsed from either its short folder name ("net8.0",
// "netstandard2.0", "net472") or its full name (".NETCoreApp,Version=v8.0")
// and always formats back canonically:
//
//	fw, _ := framework.Parse(".NETCoreApp,Version=v8.0")
//	fw.ShortFolderName() // "net8.0"
//
// Frameworks are ordered by release recency with [Compare], and
// compatibility between a requested framework and a candidate is an
// injected [Compatibility] predicate.
package framework

import (
	"fmt"
	"strings"
)

// Framework identifiers.
const (
	NETCoreApp    = ".NETCoreApp"
	NETStandard   = ".NETStandard"
	NETFramework  = ".NETFramework"
	NETPortable   = ".NETPortable"
	NETCore       = ".NETCore"
	UAP           = "UAP"
	MonoAndroid   = "MonoAndroid"
	MonoTouch     = "MonoTouch"
	MonoMac       = "MonoMac"
	XamariniOS    = "Xamarin.iOS"
	XamarinMac    = "Xamarin.Mac"
	XamarinTVOS   = "Xamarin.TVOS"
	XamarinWatch  = "Xamarin.WatchOS"
	Tizen         = "Tizen"
	NETMicro      = ".NETMicroFramework"
	Silverlight   = "Silverlight"
	WindowsPhone  = "WindowsPhone"
	WindowsPhoneA = "WindowsPhoneApp"
	Windows       = "Windows"
	DNXCore       = "DNXCore"
	DNX           = "DNX"
	Native        = "native"

	Any         = "Any"
	Agnostic    = "Agnostic"
	Unsupported = "Unsupported"
)

// Version is a framework version: up to four numeric parts.
type Version struct {
	Major, Minor, Build, Revision int
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	for _, d := range [][2]int{{v.Major, o.Major}, {v.Minor, o.Minor}, {v.Build, o.Build}, {v.Revision, o.Revision}} {
		if d[0] < d[1] {
			return -1
		}
		if d[0] > d[1] {
			return 1
		}
	}
	return 0
}

// String returns "Major.Minor" plus Build and Revision when non-zero.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d", v.Major, v.Minor)
	if v.Build > 0 || v.Revision > 0 {
		s += fmt.Sprintf(".%d", v.Build)
	}
	if v.Revision > 0 {
		s += fmt.Sprintf(".%d", v.Revision)
	}
	return s
}

// digits returns the dotless form used by folder names such as net472.
func (v Version) digits() string {
	s := fmt.Sprintf("%d%d", v.Major, v.Minor)
	if v.Build > 0 || v.Revision > 0 {
		s += fmt.Sprintf("%d", v.Build)
	}
	if v.Revision > 0 {
		s += fmt.Sprintf("%d", v.Revision)
	}
	return s
}

// Framework is a target framework. The zero value is the null framework.
type Framework struct {
	Identifier      string
	Version         Version
	Profile         string
	Platform        string // OS platform of net5.0+ frameworks, e.g. "windows"
	PlatformVersion Version
}

// Common frameworks.
var (
	NetStandard10 = Framework{Identifier: NETStandard, Version: Version{Major: 1}}
	NetStandard20 = Framework{Identifier: NETStandard, Version: Version{Major: 2}}
)

// Default is the minimum-compatibility framework used when nothing better is known.
var Default = NetStandard10

// IsZero reports whether f is the null framework.
func (f Framework) IsZero() bool { return f.Identifier == "" }

// IsSpecific reports whether f names a concrete framework rather than a
// placeholder such as any, agnostic or unsupported.
func (f Framework) IsSpecific() bool {
	switch f.Identifier {
	case "", Any, Agnostic, Unsupported:
		return false
	}
	return true
}

// Is reports whether f has the given identifier.
func (f Framework) Is(identifier string) bool {
	return strings.EqualFold(f.Identifier, identifier)
}

// Equal compares every part case-insensitively.
func (f Framework) Equal(o Framework) bool {
	return strings.EqualFold(f.Identifier, o.Identifier) &&
		f.Version == o.Version &&
		strings.EqualFold(f.Profile, o.Profile) &&
		strings.EqualFold(f.Platform, o.Platform) &&
		f.PlatformVersion == o.PlatformVersion
}

// Key returns a string usable as a map key; equal frameworks share a key.
func (f Framework) Key() string {
	return strings.ToLower(f.ShortFolderName())
}

// DotNetFrameworkName returns the full name, e.g. ".NETCoreApp,Version=v8.0".
func (f Framework) DotNetFrameworkName() string {
	if !f.IsSpecific() {
		return f.Identifier
	}
	s := f.Identifier + ",Version=v" + f.Version.String()
	if f.Profile != "" {
		s += ",Profile=" + f.Profile
	}
	return s
}

// ShortFolderName returns the folder name, e.g. "net8.0", "netstandard2.0" or "net472".
func (f Framework) ShortFolderName() string {
	switch f.Identifier {
	case "":
		return ""
	case Any:
		return "any"
	case Agnostic:
		return "agnostic"
	case Unsupported:
		return "unsupported"
	}

	switch {
	case f.Is(NETCoreApp) && f.Version.Major >= 5:
		s := "net" + f.Version.String()
		if f.Platform != "" {
			s += "-" + strings.ToLower(f.Platform)
			if f.PlatformVersion != (Version{}) {
				s += f.PlatformVersion.String()
			}
		}
		return s
	case f.Is(NETPortable):
		return "portable-" + f.Profile
	}

	short, dotted := shortName(f.Identifier)
	if dotted {
		return short + f.Version.String()
	}
	if f.Version == (Version{}) {
		return short
	}
	return short + f.Version.digits()
}

// String returns the short folder name.
func (f Framework) String() string { return f.ShortFolderName() }
