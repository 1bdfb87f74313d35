package scaffold

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryMap represents URL query parameters with convenient access methods
type QueryMap struct {
	values url.Values
}

// NewQueryMap creates a QueryMap from a request context
func NewQueryMap(rc RequestContext) QueryMap {
	return QueryMap{values: url.Values(rc.QueryParams())}
}

// QueryMapOf wraps already parsed values
func QueryMapOf(values map[string][]string) QueryMap {
	return QueryMap{values: url.Values(values)}
}

// Get returns the first value for the given key, or empty string if not found.
// Keys are matched exactly first, then case-insensitively.
func (q QueryMap) Get(key string) string {
	if v := q.values.Get(key); v != "" {
		return v
	}
	for k, vs := range q.values {
		if strings.EqualFold(k, key) && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

// GetDefault returns the first value for the given key, or the default value if not found
func (q QueryMap) GetDefault(key, defaultValue string) string {
	if value := q.Get(key); value != "" {
		return value
	}
	return defaultValue
}

// GetIntDefault returns the first value for the given key as an integer, or the default if not found/invalid
func (q QueryMap) GetIntDefault(key string, defaultValue int) int {
	if value := q.Get(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// GetBool returns the first value for the given key as a boolean
// Accepts: "true", "1", "yes", "on" (case insensitive) as true
func (q QueryMap) GetBool(key string) bool {
	value := strings.ToLower(q.Get(key))
	return value == "true" || value == "1" || value == "yes" || value == "on"
}
