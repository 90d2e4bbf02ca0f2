package dag

import (
	"regexp"
	"strings"
)

// Ignore marks the nodes whose ID matches one of the patterns, and every node
// that can only be reached from the roots through marked nodes. Patterns are
// case-insensitive and support the * wildcard. Returns the number of nodes
// marked.
func (d *DAG) Ignore(patterns []string) int {
	match := Matcher(patterns)
	if match == nil {
		return 0
	}

	// Walk from the roots without entering matched nodes; everything not
	// visited is ignored.
	seen := make(map[string]bool, len(d.nodes))
	var visit func(id string)
	visit = func(id string) {
		k := key(id)
		if seen[k] || match(id) {
			return
		}
		seen[k] = true
		for _, c := range d.outgoing[k] {
			visit(c)
		}
	}
	for _, r := range d.Roots() {
		visit(r.ID)
	}

	count := 0
	for k, n := range d.nodes {
		n.Ignored = !seen[k]
		if n.Ignored {
			count++
		}
	}
	return count
}

// RemoveIgnored deletes every node marked by [DAG.Ignore].
func (d *DAG) RemoveIgnored() {
	for _, n := range d.Nodes() {
		if n.Ignored {
			d.RemoveNode(n.ID)
		}
	}
}

// Matcher compiles wildcard patterns into a case-insensitive predicate.
// It returns nil when there are no patterns.
func Matcher(patterns []string) func(id string) bool {
	var res []*regexp.Regexp
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		expr := "(?i)^" + strings.ReplaceAll(regexp.QuoteMeta(p), `\*`, ".*") + "$"
		res = append(res, regexp.MustCompile(expr))
	}
	if len(res) == 0 {
		return nil
	}
	return func(id string) bool {
		for _, re := range res {
			if re.MatchString(id) {
				return true
			}
		}
		return false
	}
}
