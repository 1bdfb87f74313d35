package scaffold

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryMap(t *testing.T) {
	q := QueryMapOf(map[string][]string{
		"highlight": {"5"},
		"Message":   {"Saved"},
		"json":      {"yes"},
		"page":      {"two"},
	})

	assert.Equal(t, "5", q.Get("highlight"))
	assert.Equal(t, "Saved", q.Get("message"), "falls back to case-insensitive keys")
	assert.Equal(t, "fallback", q.GetDefault("missing", "fallback"))
	assert.Equal(t, 5, q.GetIntDefault("highlight", 0))
	assert.Equal(t, 1, q.GetIntDefault("page", 1))
	assert.True(t, q.GetBool("json"))
	assert.False(t, q.GetBool("missing"))
}
