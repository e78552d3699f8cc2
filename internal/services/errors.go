package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user_not_found")
	ErrRecipeNotFound     = errors.New("recipe_not_found")
	ErrTagNotFound        = errors.New("tag_not_found")
	ErrIngredientNotFound = errors.New("ingredient_not_found")
	ErrClientNotFound     = errors.New("client_not_found")

	// ErrAlreadyExists is returned when a favorite, cart entry or
	// subscription is added twice
	ErrAlreadyExists = errors.New("already_exists")
	// ErrRelationNotFound is returned when removing a relation that was never added
	ErrRelationNotFound = errors.New("relation_not_found")
	ErrSelfSubscription = errors.New("self_subscription")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidPassword  = errors.New("invalid_password")
)

// ValidationError collects field level problems with an input. Field "" holds
// errors that are not tied to a single field.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		msg := strings.Join(e.Fields[k], "; ")
		if k == "" {
			parts = append(parts, msg)
			continue
		}
		parts = append(parts, k+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a problem with field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// OrNil returns e when it holds at least one problem.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func newValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}
