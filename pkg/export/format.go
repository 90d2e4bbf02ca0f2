package export

import (
	"strings"

	nerrors "github.com/matzehuels/nugraph/pkg/errors"
)

// ValidFormats lists the short format names accepted by ParseFormat.
var ValidFormats = []string{"mmd", "mermaid", "dot", "gv", "graphviz"}

// ParseFormat maps a --format value to a service. Mermaid formats start with
// mermaid or mmd, Graphviz formats with dot, gv or graphviz; an image suffix
// (.svg, .png, .jpg, .jpeg, .webp, .pdf) picks a rendering service and
// "kroki" anywhere selects Kroki for Mermaid images.
func ParseFormat(format string) (Service, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	switch {
	case hasAnyPrefix(f, "mermaid", "mmd"):
		kroki := strings.Contains(f, "kroki")
		switch {
		case strings.HasSuffix(f, ".svg"):
			if kroki {
				return MermaidKrokiSvg, nil
			}
			return MermaidInkSvg, nil
		case strings.HasSuffix(f, ".png"):
			if kroki {
				return MermaidKrokiPng, nil
			}
			return MermaidInkPng, nil
		case hasAnySuffix(f, ".jpg", ".jpeg"):
			return MermaidInkJpg, nil
		case strings.HasSuffix(f, ".webp"):
			return MermaidInkWebp, nil
		case strings.HasSuffix(f, "-edit"):
			return MermaidLiveEdit, nil
		}
		return MermaidLiveView, nil

	case hasAnyPrefix(f, "dot", "gv", "graphviz"):
		switch {
		case strings.HasSuffix(f, ".png"):
			return GraphvizKrokiPng, nil
		case strings.HasSuffix(f, ".svg"):
			return GraphvizKrokiSvg, nil
		case hasAnySuffix(f, ".jpg", ".jpeg"):
			return GraphvizKrokiJpg, nil
		case strings.HasSuffix(f, ".pdf"):
			return GraphvizKrokiPdf, nil
		}
		return GraphvizEdotor, nil
	}
	return 0, nerrors.New(nerrors.ErrCodeInvalidFormat,
		"%s is not a supported format. Valid values are %s.", format, strings.Join(ValidFormats, ", "))
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, p := range suffixes {
		if strings.HasSuffix(s, p) {
			return true
		}
	}
	return false
}
