package domain

import (
	"fmt"
	"sort"
	"strings"
)

const (
	MsgOwnersOnly       = "Sorry, only store owners can do that"
	MsgNoSearchCriteria = "You didn't enter any search criteria!"
)

// ErrEmptySearch is returned for a search parameter that is present but
// empty. Callers redirect to the unfiltered listing. Never mutate it.
var ErrEmptySearch = &ValidationError{Message: MsgNoSearchCriteria}

// ValidationError reports rejected input. Fields maps form field names to
// their messages and is empty for non-form failures such as an empty search.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message, Fields: map[string][]string{}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], "; ")))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, ", "))
}

type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Resource, e.ID)
}
