package selector

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conventional(id, controller, action string) *ActionDescriptor {
	return &ActionDescriptor{
		ID:          id,
		DisplayName: id,
		RouteValues: map[string]string{"controller": controller, "action": action},
	}
}

func TestRouteKey_NoCollisions(t *testing.T) {
	assert.NotEqual(t, routeKey([]string{"ab", "c"}), routeKey([]string{"a", "bc"}))
	assert.NotEqual(t, routeKey([]string{"1:a"}), routeKey([]string{"1", "a"}))
	assert.Equal(t, routeKey([]string{"", "x"}), routeKey(tuple([]string{"area", "action"}, map[string]string{"action": "x"})))
}

func TestFoldedRouteKey(t *testing.T) {
	assert.Equal(t, foldedRouteKey([]string{"Crud", "Details"}), foldedRouteKey([]string{"CRUD", "details"}))
	assert.Equal(t, foldedRouteKey([]string{"École"}), foldedRouteKey([]string{"éCOLE"}))
	assert.NotEqual(t, foldedRouteKey([]string{"Crud", "Details"}), foldedRouteKey([]string{"Crud", "Edit"}))
}

func TestBuildCache_SharedCandidateLists(t *testing.T) {
	upper := conventional("a", "Crud", "Details")
	lower := conventional("b", "crud", "details")
	other := conventional("c", "Crud", "Edit")

	c := buildCache(&Collection{Items: []*ActionDescriptor{upper, other, lower}, Version: 1})
	assert.Equal(t, []string{"action", "controller"}, c.routeKeys)

	upperList := c.exact[routeKey([]string{"Details", "Crud"})]
	lowerList := c.exact[routeKey([]string{"details", "crud"})]
	require.NotNil(t, upperList)
	require.NotNil(t, lowerList)

	assert.Same(t, upperList, lowerList, "insensitively equal tuples share one list")
	assert.ElementsMatch(t, []*ActionDescriptor{upper, lower}, upperList.actions)
	assert.Same(t, upperList, c.folded[foldedRouteKey([]string{"DETAILS", "CRUD"})])

	for key, list := range c.exact {
		found := false
		for _, folded := range c.folded {
			if folded == list {
				found = true
			}
		}
		assert.True(t, found, "exact entry %q is also reachable through the folded map", key)
	}
}

func TestBuildCache_Lookup(t *testing.T) {
	details := conventional("details", "Crud", "Details")
	c := buildCache(&Collection{Items: []*ActionDescriptor{details}})

	assert.Equal(t, []*ActionDescriptor{details}, c.lookup(map[string]string{"controller": "Crud", "action": "Details", "id": "5"}))
	assert.Equal(t, []*ActionDescriptor{details}, c.lookup(map[string]string{"controller": "crud", "action": "DETAILS"}))
	assert.Empty(t, c.lookup(map[string]string{"controller": "Crud", "action": "Edit"}))
	assert.Empty(t, c.lookup(nil))
}

func TestBuildCache_AbsentValues(t *testing.T) {
	index := &ActionDescriptor{ID: "home", RouteValues: map[string]string{"controller": "Home"}}
	scoped := &ActionDescriptor{ID: "area", RouteValues: map[string]string{"controller": "Home", "area": "Admin"}}

	c := buildCache(&Collection{Items: []*ActionDescriptor{index, scoped}})

	assert.Equal(t, []*ActionDescriptor{index}, c.lookup(map[string]string{"controller": "Home"}))
	assert.Equal(t, []*ActionDescriptor{index}, c.lookup(map[string]string{"controller": "Home", "area": ""}))
	assert.Equal(t, []*ActionDescriptor{scoped}, c.lookup(map[string]string{"controller": "Home", "area": "admin"}))
}

func TestBuildCache_IgnoresAttributeRoutes(t *testing.T) {
	attr := &ActionDescriptor{ID: "export", AttributeRoute: "Books.export", RouteValues: map[string]string{"page": "1"}}
	c := buildCache(&Collection{Items: []*ActionDescriptor{attr, conventional("a", "Crud", "Index")}})

	assert.Equal(t, []string{"action", "controller"}, c.routeKeys)
	assert.Empty(t, c.lookup(map[string]string{"page": "1"}))
}

func TestBuildCache_RebuildIsIdempotent(t *testing.T) {
	col := &Collection{Version: 3, Items: []*ActionDescriptor{
		conventional("a", "Crud", "Details"),
		conventional("b", "crud", "details"),
		conventional("c", "Crud", "Edit"),
		conventional("d", "Books", "Edit"),
	}}

	fixtures := []map[string]string{
		{"controller": "Crud", "action": "Details"},
		{"controller": "CRUD", "action": "details"},
		{"controller": "Crud", "action": "Edit"},
		{"controller": "books", "action": "edit"},
		{"controller": "Crud", "action": "Delete"},
		{},
	}

	once := buildCache(col)
	_ = buildCache(col)
	twice := buildCache(col)

	for _, values := range fixtures {
		assert.Equal(t, once.lookup(values), twice.lookup(values), "lookup %v", values)
	}
	assert.Equal(t, once.version, twice.version)
}

func TestSelector_RebuildsOnVersionChange(t *testing.T) {
	actions := NewActionCollection()
	actions.Add(conventional("a", "Crud", "Index"))
	s := New(actions)

	assert.Len(t, s.Candidates(rdFor("Crud", "Index")), 1)
	first := s.cache.Load()
	assert.Len(t, s.Candidates(rdFor("Crud", "Index")), 1)
	assert.Same(t, first, s.cache.Load(), "same version reuses the cache")

	actions.Add(conventional("b", "Crud", "Index"))
	assert.Len(t, s.Candidates(rdFor("Crud", "Index")), 2)
	assert.NotSame(t, first, s.cache.Load())
	assert.Equal(t, 2, s.cache.Load().version)
}

func TestSelector_ConcurrentLookupsDuringChanges(t *testing.T) {
	actions := NewActionCollection()
	actions.Add(conventional("seed", "Crud", "Index"))
	s := New(actions)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got := s.Candidates(rdFor("crud", "index"))
				assert.NotEmpty(t, got)
				for _, a := range got {
					assert.NotNil(t, a)
				}
			}
		}()
	}
	for i := 0; i < 20; i++ {
		actions.Add(conventional("late", "CRUD", "INDEX"))
	}
	wg.Wait()

	assert.Len(t, s.Candidates(rdFor("Crud", "Index")), 21)
}
