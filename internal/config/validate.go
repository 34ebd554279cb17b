package config

import (
	"fmt"
	"strings"
)

// ValidationError aggregates every configuration problem found during Load
// so a misconfigured invocation fails once with the full list.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration error: %s", e.Errors[0])
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(e.Errors, "\n  - "))
}
