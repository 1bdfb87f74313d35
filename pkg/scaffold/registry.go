package scaffold

import (
	"strings"
	"sync"
)

// RouteInfo contains metadata about a registered CRUD route
type RouteInfo struct {
	// Name is the unique route name, e.g. "Movie.details"
	Name string

	// Template is the route template, e.g. "/Movie/{id}/{action}"
	Template string

	// ControllerName is the controller route value
	ControllerName string

	// Action is the default action route value
	Action string

	// ModelType is the simple model name the route serves
	ModelType string

	// Attribute marks routes owned by a single attribute-routed action
	Attribute bool
}

// RouteRegistry provides read access to the routes an application serves
type RouteRegistry interface {
	// GetAllRoutes returns all registered routes in registration order
	GetAllRoutes() []RouteInfo


	// GetRoutesByModel returns routes filtered by model name (case-insensitive)
	GetRoutesByModel(modelType string) []RouteInfo

	// RegisterRoute adds a route to the registry
	RegisterRoute(route RouteInfo)
}

// InMemoryRouteRegistry implements RouteRegistry using an in-memory slice
type InMemoryRouteRegistry struct {
	mu     sync.RWMutex
	routes []RouteInfo
}

// NewInMemoryRouteRegistry creates a new in-memory route registry
func NewInMemoryRouteRegistry() *InMemoryRouteRegistry {
	return &InMemoryRouteRegistry{
		routes: make([]RouteInfo, 0),
	}
}

// GetAllRoutes returns all registered routes
func (r *InMemoryRouteRegistry) GetAllRoutes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RouteInfo(nil), r.routes...) // Return a copy
}

// GetRoutesByModel returns routes filtered by model name
func (r *InMemoryRouteRegistry) GetRoutesByModel(modelType string) []RouteInfo {
	return r.filter(func(route RouteInfo) bool {
		return strings.EqualFold(route.ModelType, modelType)
	})
}

// RegisterRoute adds a route to the registry
func (r *InMemoryRouteRegistry) RegisterRoute(route RouteInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *InMemoryRouteRegistry) filter(keep func(RouteInfo) bool) []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []RouteInfo
	for _, route := range r.routes {
		if keep(route) {
			filtered = append(filtered, route)
		}
	}
	return filtered
}
