package scaffold

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryRouteRegistry_RegisterRoute(t *testing.T) {
	registry := NewInMemoryRouteRegistry()

	route := RouteInfo{
		Name:           "Movie.details",
		Template:       "/Movie/{id}/{action}",
		ControllerName: "Crud",
		Action:         "Details",
		ModelType:      "Movie",
	}

	registry.RegisterRoute(route)

	routes := registry.GetAllRoutes()
	assert.Len(t, routes, 1)
	assert.Equal(t, route, routes[0])
}

func TestInMemoryRouteRegistry_GetAllRoutesReturnsCopy(t *testing.T) {
	registry := NewInMemoryRouteRegistry()
	registry.RegisterRoute(RouteInfo{Name: "Movie.index"})

	routes := registry.GetAllRoutes()
	routes[0].Name = "changed"

	assert.Equal(t, "Movie.index", registry.GetAllRoutes()[0].Name)
}

func TestInMemoryRouteRegistry_GetRoutesByModel(t *testing.T) {
	registry := NewInMemoryRouteRegistry()
	registry.RegisterRoute(RouteInfo{Name: "Movie.index", ControllerName: "Crud", ModelType: "Movie"})
	registry.RegisterRoute(RouteInfo{Name: "Movie.edit", ControllerName: "Crud", ModelType: "Movie"})
	registry.RegisterRoute(RouteInfo{Name: "Book.index", ControllerName: "Books", ModelType: "Book"})
	registry.RegisterRoute(RouteInfo{Name: "health", ControllerName: "Health"})

	assert.Len(t, registry.GetRoutesByModel("movie"), 2)
	assert.Len(t, registry.GetRoutesByModel("BOOK"), 1)
	assert.Empty(t, registry.GetRoutesByModel("Missing"))
}
