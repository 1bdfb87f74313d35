package selector

import (
	"sort"
	"strings"
)

// candidateList is shared by every exact-casing key of one folded key
type candidateList struct {
	actions []*ActionDescriptor
}

// candidateCache maps route-value tuples to conventionally routed actions.
// It is built whole and never mutated after publication.
type candidateCache struct {
	version   int
	routeKeys []string
	exact     map[string]*candidateList
	folded    map[string]*candidateList
}

func buildCache(col *Collection) *candidateCache {
	c := &candidateCache{
		version: col.Version,
		exact:   make(map[string]*candidateList),
		folded:  make(map[string]*candidateList),
	}

	seen := make(map[string]bool)
	for _, action := range col.Items {
		if action.IsAttributeRouted() {
			continue
		}
		for k := range action.RouteValues {
			lk := strings.ToLower(k)
			if !seen[lk] {
				seen[lk] = true
				c.routeKeys = append(c.routeKeys, k)
			}
		}
	}
	sort.Strings(c.routeKeys)

	for _, action := range col.Items {
		if action.IsAttributeRouted() {
			continue
		}
		values := tuple(c.routeKeys, action.RouteValues)

		fk := foldedRouteKey(values)
		list, ok := c.folded[fk]
		if !ok {
			list = &candidateList{}
			c.folded[fk] = list
		}
		list.actions = append(list.actions, action)

		c.exact[routeKey(values)] = list
	}
	return c
}

// lookup returns the actions whose route values equal values, exact casing
// first, then case-insensitively. No match is an empty result.
func (c *candidateCache) lookup(values map[string]string) []*ActionDescriptor {
	t := tuple(c.routeKeys, values)
	if list, ok := c.exact[routeKey(t)]; ok {
		return list.actions
	}
	if list, ok := c.folded[foldedRouteKey(t)]; ok {
		return list.actions
	}
	return nil
}
