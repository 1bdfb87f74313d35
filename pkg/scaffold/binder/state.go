package binder

import (
	"sort"
	"strings"
)

// ModelState collects binding and validation errors by property name
type ModelState struct {
	errors map[string][]string
}

// NewModelState creates an empty, valid state
func NewModelState() *ModelState {
	return &ModelState{errors: make(map[string][]string)}
}

// AddError records an error for key. The empty key holds errors about the whole payload.
func (s *ModelState) AddError(key, message string) {
	s.errors[key] = append(s.errors[key], message)
}

// IsValid reports whether no errors were recorded
func (s *ModelState) IsValid() bool {
	return s == nil || len(s.errors) == 0
}

// Errors returns the recorded errors
func (s *ModelState) Errors() map[string][]string {
	if s == nil {
		return nil
	}
	out := make(map[string][]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// For returns the errors of one key (case-insensitive)
func (s *ModelState) For(key string) []string {
	if s == nil {
		return nil
	}
	if v, ok := s.errors[key]; ok {
		return v
	}
	for k, v := range s.errors {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

// Keys returns the keys with errors, sorted
func (s *ModelState) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.errors))
	for k := range s.errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
