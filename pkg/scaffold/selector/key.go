package selector

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// routeKey encodes a tuple of route values, one per route key, into a map key.
// Each value is length-prefixed so that distinct tuples never collide.
// A missing value and an empty value encode the same way.
func routeKey(values []string) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

// foldedRouteKey is routeKey over case-folded values
func foldedRouteKey(values []string) string {
	// cases.Caser keeps state and is not safe for concurrent use
	fold := cases.Fold()
	folded := make([]string, len(values))
	for i, v := range values {
		folded[i] = fold.String(v)
	}
	return routeKey(folded)
}

// tuple extracts the values of keys from values, in key order
func tuple(keys []string, values map[string]string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = lookupValue(values, k)
	}
	return out
}

func lookupValue(values map[string]string, key string) string {
	if v, ok := values[key]; ok {
		return v
	}
	for k, v := range values {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
