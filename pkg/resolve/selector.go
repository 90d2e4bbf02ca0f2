package resolve

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nugraph/pkg/framework"
)

// Tier records which rule picked a framework.
type Tier int

const (
	TierExplicit Tier = iota + 1
	TierSDK
	TierDeclared
	TierDefault
)

func (t Tier) String() string {
	switch t {
	case TierExplicit:
		return "explicit"
	case TierSDK:
		return "sdk"
	case TierDeclared:
		return "declared"
	case TierDefault:
		return "default"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// SDKFrameworks reports the frameworks the local SDK can build.
type SDKFrameworks interface {
	SupportedFrameworks(ctx context.Context) ([]framework.Framework, error)
}

// Selection is the outcome of Select.
type Selection struct {
	Framework framework.Framework
	Tier      Tier
	Warnings  []string
}

// Selector picks the target framework for a package.
type Selector struct {
	sdk    SDKFrameworks
	compat framework.Compatibility
	logger *log.Logger
}

// NewSelector creates a Selector. A nil sdk skips the SDK tier; a nil compat
// uses framework.DefaultCompatibility.
func NewSelector(sdk SDKFrameworks, compat framework.Compatibility, logger *log.Logger) *Selector {
	if compat == nil {
		compat = framework.DefaultCompatibility
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Selector{sdk: sdk, compat: compat, logger: logger}
}

// Select picks a framework for a package declaring the given frameworks.
// A non-zero requested framework always wins. Only cancellation is an error;
// SDK discovery failures fall through to the next tier.
func (s *Selector) Select(ctx context.Context, pkg string, requested framework.Framework, declared []framework.Framework) (Selection, error) {
	if !requested.IsZero() {
		sel := Selection{Framework: requested, Tier: TierExplicit}
		if len(declared) > 0 && !s.anyCompatible(requested, declared) {
			msg := fmt.Sprintf("%s does not declare a framework compatible with %s (declared: %s)",
				pkg, requested, strings.Join(framework.Names(declared), ", "))
			s.logger.Warn(msg)
			sel.Warnings = append(sel.Warnings, msg)
		}
		return sel, nil
	}

	if s.sdk != nil && len(declared) > 0 {
		supported, err := s.sdk.SupportedFrameworks(ctx)
		switch {
		case ctx.Err() != nil:
			return Selection{}, ctx.Err()
		case err != nil:
			s.logger.Warn("could not discover SDK frameworks", "err", err)
		default:
			if fw, ok := framework.Newest(framework.Intersect(declared, supported)); ok {
				return Selection{Framework: fw, Tier: TierSDK}, nil
			}
			s.logger.Debug("no framework shared with the SDK", "package", pkg, "sdk", len(supported))
		}
	}

	if fw, ok := framework.Newest(declared); ok {
		return Selection{Framework: fw, Tier: TierDeclared}, nil
	}
	return Selection{Framework: framework.Default, Tier: TierDefault}, nil
}

func (s *Selector) anyCompatible(requested framework.Framework, declared []framework.Framework) bool {
	for _, c := range declared {
		if s.compat.IsCompatible(requested, c) {
			return true
		}
	}
	return false
}
