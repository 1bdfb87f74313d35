package selector

import (
	"strings"

	scerrors "github.com/toyz/scaffold/internal/errors"
)

const ambiguousMessage = "Multiple actions matched. The following actions matched route data and had all constraints satisfied:"

// AmbiguousActionError is returned when more than one action survives selection
type AmbiguousActionError struct {
	*scerrors.BaseError
	Actions []string
}

func newAmbiguousActionError(candidates []*ActionDescriptor) *AmbiguousActionError {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.String()
	}

	var b strings.Builder
	b.WriteString(ambiguousMessage)
	for _, name := range names {
		b.WriteString("\n")
		b.WriteString(name)
	}

	return &AmbiguousActionError{
		BaseError: scerrors.New(scerrors.AmbiguousActionErrorCode, b.String()).
			WithContext("actions", names).
			WithSuggestion("give each controller distinct route values or add a constraint"),
		Actions: names,
	}
}
