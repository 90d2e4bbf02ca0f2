package nuget

import (
	"fmt"
	"strings"
)

// Official nuget.org V3 feed.
const (
	NuGetOrgName = "nuget.org"
	NuGetOrgURL  = "https://api.nuget.org/v3/index.json"
)

// PackageSource is a configured package feed.
type PackageSource struct {
	Name    string
	Address string
	Enabled bool
}

// NuGetOrg returns the official nuget.org source.
func NuGetOrg() PackageSource {
	return PackageSource{Name: NuGetOrgName, Address: NuGetOrgURL, Enabled: true}
}

// String renders the source as "name [address]".
func (s PackageSource) String() string {
	return fmt.Sprintf("%s [%s]", s.Name, s.Address)
}

// IsHTTP reports whether the source is a remote feed rather than a local folder.
func (s PackageSource) IsHTTP() bool {
	a := strings.ToLower(s.Address)
	return strings.HasPrefix(a, "http://") || strings.HasPrefix(a, "https://")
}

// SourceMapping restricts which sources may serve which package ids.
// The zero value is a disabled mapping.
type SourceMapping struct {
	patterns map[string][]string // source name -> patterns
	order    []string            // source names in declaration order
}

// Add maps pattern to the named source. Patterns are an exact id or a prefix
// ending in '*'.
func (m *SourceMapping) Add(source, pattern string) {
	if m.patterns == nil {
		m.patterns = make(map[string][]string)
	}
	if _, ok := m.patterns[source]; !ok {
		m.order = append(m.order, source)
	}
	m.patterns[source] = append(m.patterns[source], strings.TrimSpace(pattern))
}

// Enabled reports whether any mapping is configured.
func (m *SourceMapping) Enabled() bool { return len(m.patterns) > 0 }

// SourcesFor returns the names of the sources allowed to serve id. The most
// specific pattern wins: an exact id beats any prefix, and a longer prefix
// beats a shorter one. Every source declaring the winning pattern is returned.
func (m *SourceMapping) SourcesFor(id string) []string {
	best, bestScore := "", -1
	for _, name := range m.order {
		for _, p := range m.patterns[name] {
			if s := matchScore(p, id); s > bestScore {
				best, bestScore = strings.ToLower(p), s
			}
		}
	}
	if bestScore < 0 {
		return nil
	}
	var names []string
	for _, name := range m.order {
		for _, p := range m.patterns[name] {
			if strings.ToLower(p) == best {
				names = append(names, name)
				break
			}
		}
	}
	return names
}

// matchScore returns -1 when pattern does not match id, otherwise a score
// where higher means more specific.
func matchScore(pattern, id string) int {
	p, i := strings.ToLower(pattern), strings.ToLower(id)
	if prefix, ok := strings.CutSuffix(p, "*"); ok {
		if strings.HasPrefix(i, prefix) {
			return len(prefix)
		}
		return -1
	}
	if p == i {
		return 1 << 16
	}
	return -1
}

// EligibleSources filters sources for id: with mapping enabled only mapped
// sources are kept, otherwise every enabled source is, in listed order.
func EligibleSources(sources []PackageSource, m *SourceMapping, id string) []PackageSource {
	var names map[string]bool
	if m != nil && m.Enabled() {
		names = make(map[string]bool)
		for _, n := range m.SourcesFor(id) {
			names[strings.ToLower(n)] = true
		}
	}
	var out []PackageSource
	for _, s := range sources {
		if !s.Enabled {
			continue
		}
		if names != nil && !names[strings.ToLower(s.Name)] {
			continue
		}
		out = append(out, s)
	}
	return out
}
