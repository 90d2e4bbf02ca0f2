package framework

import (
	"slices"
	"strings"
)

// Compare orders frameworks by release recency, newest first. Only versions
// are compared. Null frameworks sort after every concrete one.
func Compare(a, b Framework) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	}
	return b.Version.Compare(a.Version)
}

// SortNewestFirst sorts frameworks with Compare. Frameworks of equal version
// keep a deterministic order by short folder name.
func SortNewestFirst(fws []Framework) {
	slices.SortFunc(fws, func(a, b Framework) int {
		if c := Compare(a, b); c != 0 {
			return c
		}
		return strings.Compare(a.Key(), b.Key())
	})
}

// Newest returns the most recent framework, if any.
func Newest(fws []Framework) (Framework, bool) {
	if len(fws) == 0 {
		return Framework{}, false
	}
	sorted := slices.Clone(fws)
	SortNewestFirst(sorted)
	if sorted[0].IsZero() {
		return Framework{}, false
	}
	return sorted[0], true
}

// Intersect returns the frameworks of a that also appear in b.
func Intersect(a, b []Framework) []Framework {
	keys := make(map[string]bool, len(b))
	for _, f := range b {
		keys[f.Key()] = true
	}
	var out []Framework
	for _, f := range a {
		if keys[f.Key()] {
			out = append(out, f)
		}
	}
	return out
}

// Dedupe removes repeated frameworks, keeping the first occurrence.
func Dedupe(fws []Framework) []Framework {
	seen := make(map[string]bool, len(fws))
	out := fws[:0:0]
	for _, f := range fws {
		if k := f.Key(); !seen[k] {
			seen[k] = true
			out = append(out, f)
		}
	}
	return out
}

// Names returns the short folder names.
func Names(fws []Framework) []string {
	names := make([]string, len(fws))
	for i, f := range fws {
		names[i] = f.ShortFolderName()
	}
	return names
}
