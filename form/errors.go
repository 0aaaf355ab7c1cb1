package form

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrSubmitInProgress is returned when Submit is called while a previous submit is pending
var ErrSubmitInProgress = errors.New("a submission is already in progress")

// SubmitError is a failure reported by the order API
type SubmitError struct {
	Status  int
	Code    string
	Message string
}

func (e *SubmitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order submission failed: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("order submission failed (%d): %s", e.Status, e.Message)
}

// ValidationError lists the fields that must be fixed before the form can be sent
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + e.Fields[name]
	}
	return "invalid order: " + strings.Join(parts, "; ")
}
