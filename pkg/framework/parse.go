package framework

import (
	"fmt"
	"strconv"
	"strings"
)

// shortNames maps folder-name prefixes to identifiers. dotted families
// write their version with dots (netstandard2.0) and the others without
// (net472).
var shortNames = []struct {
	short      string
	identifier string
	dotted     bool
}{
	{"netcoreapp", NETCoreApp, true},
	{"netstandard", NETStandard, true},
	{"netcore", NETCore, false},
	{"netmf", NETMicro, false},
	{"net", NETFramework, false},
	{"uap", UAP, true},
	{"monoandroid", MonoAndroid, false},
	{"monotouch", MonoTouch, false},
	{"monomac", MonoMac, false},
	{"xamarinios", XamariniOS, false},
	{"xamarinmac", XamarinMac, false},
	{"xamarintvos", XamarinTVOS, false},
	{"xamarinwatchos", XamarinWatch, false},
	{"tizen", Tizen, false},
	{"sl", Silverlight, false},
	{"wpa", WindowsPhoneA, false},
	{"wp", WindowsPhone, false},
	{"win", Windows, false},
	{"dnxcore", DNXCore, false},
	{"dnx", DNX, false},
	{"native", Native, false},
}

func shortName(identifier string) (string, bool) {
	for _, s := range shortNames {
		if strings.EqualFold(s.identifier, identifier) {
			return s.short, s.dotted
		}
	}
	return strings.ToLower(identifier), false
}

func identifierFor(short string) (string, bool, bool) {
	for _, s := range shortNames {
		if s.short == short {
			return s.identifier, s.dotted, true
		}
	}
	return "", false, false
}

// Parse parses a short folder name or a full framework name.
func Parse(s string) (Framework, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Framework{}, fmt.Errorf("empty framework")
	}
	if strings.Contains(s, ",") {
		return parseFull(s)
	}
	if strings.HasPrefix(s, ".") {
		return parseIdentifierVersion(s)
	}
	return parseShort(s)
}

// parseIdentifierVersion parses the nuspec form ".NETStandard2.0", an
// identifier immediately followed by a dotted version.
func parseIdentifierVersion(s string) (Framework, error) {
	lower := strings.ToLower(s)
	best := ""
	for _, n := range shortNames {
		id := strings.ToLower(n.identifier)
		if strings.HasPrefix(id, ".") && strings.HasPrefix(lower, id) && len(id) > len(best) {
			best = n.identifier
		}
	}
	if best == "" {
		return Framework{}, fmt.Errorf("invalid framework %q", s)
	}
	f := Framework{Identifier: best}
	if rest := strings.TrimPrefix(strings.TrimPrefix(s[len(best):], "v"), "V"); rest != "" {
		v, err := parseDotted(rest)
		if err != nil {
			return Framework{}, fmt.Errorf("invalid framework %q: %w", s, err)
		}
		f.Version = v
	}
	return f, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Framework {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}

func parseFull(s string) (Framework, error) {
	parts := strings.Split(s, ",")
	f := Framework{Identifier: canonicalIdentifier(strings.TrimSpace(parts[0]))}
	for _, p := range parts[1:] {
		key, value, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok {
			return Framework{}, fmt.Errorf("invalid framework %q", s)
		}
		switch strings.ToLower(key) {
		case "version":
			v, err := parseDotted(strings.TrimPrefix(strings.TrimPrefix(value, "v"), "V"))
			if err != nil {
				return Framework{}, fmt.Errorf("invalid framework %q: %w", s, err)
			}
			f.Version = v
		case "profile":
			f.Profile = value
		}
	}
	if f.Identifier == "" {
		return Framework{}, fmt.Errorf("invalid framework %q", s)
	}
	return f, nil
}

func canonicalIdentifier(id string) string {
	for _, s := range shortNames {
		if strings.EqualFold(s.identifier, id) {
			return s.identifier
		}
	}
	for _, special := range []string{Any, Agnostic, Unsupported} {
		if strings.EqualFold(special, id) {
			return special
		}
	}
	return id
}

func parseShort(s string) (Framework, error) {
	lower := strings.ToLower(s)
	switch lower {
	case "any":
		return Framework{Identifier: Any}, nil
	case "agnostic":
		return Framework{Identifier: Agnostic}, nil
	case "unsupported":
		return Framework{Identifier: Unsupported}, nil
	}
	if profile, ok := strings.CutPrefix(lower, "portable-"); ok {
		return Framework{Identifier: NETPortable, Profile: profile}, nil
	}

	name, platform, _ := strings.Cut(lower, "-")
	i := 0
	for i < len(name) && name[i] >= 'a' && name[i] <= 'z' {
		i++
	}
	short, ver := name[:i], name[i:]
	if short == "" {
		return Framework{}, fmt.Errorf("invalid framework %q", s)
	}

	identifier, _, known := identifierFor(short)
	if !known {
		identifier = short
	}

	var v Version
	var err error
	switch {
	case ver == "":
	case strings.Contains(ver, "."):
		v, err = parseDotted(ver)
	default:
		v, err = parseDigits(ver)
	}
	if err != nil {
		return Framework{}, fmt.Errorf("invalid framework %q: %w", s, err)
	}

	f := Framework{Identifier: identifier, Version: v}
	if short == "net" && strings.Contains(ver, ".") && v.Major >= 5 {
		f.Identifier = NETCoreApp
	}
	if platform != "" {
		if !f.Is(NETCoreApp) || f.Version.Major < 5 {
			return Framework{}, fmt.Errorf("invalid framework %q: platform suffix requires net5.0 or later", s)
		}
		j := 0
		for j < len(platform) && platform[j] >= 'a' && platform[j] <= 'z' {
			j++
		}
		f.Platform = platform[:j]
		if rest := platform[j:]; rest != "" {
			pv, err := parseDotted(rest)
			if err != nil {
				return Framework{}, fmt.Errorf("invalid framework %q: %w", s, err)
			}
			f.PlatformVersion = pv
		}
	}
	return f, nil
}

func parseDotted(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return Version{}, fmt.Errorf("too many version parts in %q", s)
	}
	var n [4]int
	for i, p := range parts {
		x, err := strconv.Atoi(p)
		if err != nil || x < 0 {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		n[i] = x
	}
	return Version{n[0], n[1], n[2], n[3]}, nil
}

func parseDigits(s string) (Version, error) {
	if len(s) > 4 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	var n [4]int
	for i, c := range s {
		if c < '0' || c > '9' {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		n[i] = int(c - '0')
	}
	return Version{n[0], n[1], n[2], n[3]}, nil
}
