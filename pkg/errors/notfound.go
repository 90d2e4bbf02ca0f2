package errors

import (
	"fmt"
	"strings"
)

// NotFoundError reports a package that no eligible source could serve.
// Sources holds the searched sources in search order, already rendered as
// "name [address]".
type NotFoundError struct {
	Package string
	Sources []string
}

func (e *NotFoundError) Error() string {
	if len(e.Sources) == 1 {
		return fmt.Sprintf("Package %s was not found in %s", e.Package, e.Sources[0])
	}
	return fmt.Sprintf("Package %s was not found. The following sources were searched %s", e.Package, strings.Join(e.Sources, ", "))
}

// ErrorCode returns ErrCodePackageNotFound.
func (e *NotFoundError) ErrorCode() Code { return ErrCodePackageNotFound }
