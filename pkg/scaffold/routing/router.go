package routing

import (
	"fmt"
	"strings"
	"sync"

	scerrors "github.com/toyz/scaffold/internal/errors"
)

// Well-known route value and data token keys
const (
	ControllerKey = "controller"
	ActionKey     = "action"

	// ModelTypeToken carries the simple name of the model a route serves
	ModelTypeToken = "modelType"
	// CrudTypeToken carries the resolved CRUD type descriptor of a route
	CrudTypeToken = "crudType"
)

// Route is a named template with default route values and data tokens
type Route struct {
	// Name is unique within a Router, e.g. "Movie.details"
	Name string

	Template *Template

	// Defaults are route values used when the template does not capture them
	Defaults map[string]string

	// DataTokens are attached to the matched RouteData as-is
	DataTokens map[string]any

	// Attribute marks a route that belongs to a single attribute-routed action;
	// such routes bypass the conventional candidate cache.
	Attribute bool
}

// NewRoute parses template and builds a route
func NewRoute(name, template string, defaults map[string]string, tokens map[string]any) (*Route, error) {
	t, err := Parse(template)
	if err != nil {
		return nil, err
	}
	return &Route{Name: name, Template: t, Defaults: defaults, DataTokens: tokens}, nil
}

// RouteData is the result of matching a request path
type RouteData struct {
	Values     map[string]string
	DataTokens map[string]any
	Route      *Route
}

// Value returns a route value, or the empty string
func (rd RouteData) Value(key string) string {
	if rd.Values == nil {
		return ""
	}
	return rd.Values[key]
}

// Token returns a data token
func (rd RouteData) Token(key string) (any, bool) {
	if rd.DataTokens == nil {
		return nil, false
	}
	v, ok := rd.DataTokens[key]
	return v, ok && v != nil
}

// TokenString returns a data token when it is a string
func (rd RouteData) TokenString(key string) (string, bool) {
	v, ok := rd.Token(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// Router holds routes in registration order. The first matching route wins.
type Router struct {
	mu     sync.RWMutex
	routes []*Route
	byName map[string]*Route
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{byName: make(map[string]*Route)}
}

// Add appends routes. A duplicate name is a registration error and no route
// from the batch is added.
func (r *Router) Add(routes ...*Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]bool, len(routes))
	for _, route := range routes {
		key := strings.ToLower(route.Name)
		if _, exists := r.byName[key]; exists || batch[key] {
			return scerrors.New(scerrors.RegistrationErrorCode, fmt.Sprintf("route '%s' is already registered", route.Name)).
				WithSubject(route.Template.String())
		}
		batch[key] = true
	}

	for _, route := range routes {
		r.routes = append(r.routes, route)
		r.byName[strings.ToLower(route.Name)] = route
	}
	return nil
}

// Match returns the route data of the first route matching path. Captured
// parameters override defaults.
func (r *Router) Match(path string) (RouteData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, route := range r.routes {
		captured, ok := route.Template.Match(path)
		if !ok {
			continue
		}

		values := make(map[string]string, len(route.Defaults)+len(captured))
		for k, v := range route.Defaults {
			values[k] = v
		}
		for k, v := range captured {
			values[k] = v
		}

		tokens := make(map[string]any, len(route.DataTokens))
		for k, v := range route.DataTokens {
			tokens[k] = v
		}

		return RouteData{Values: values, DataTokens: tokens, Route: route}, true
	}
	return RouteData{}, false
}

// Get returns a route by name (case-insensitive)
func (r *Router) Get(name string) (*Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	route, ok := r.byName[strings.ToLower(name)]
	return route, ok
}

// Routes returns a snapshot of all routes in registration order
func (r *Router) Routes() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*Route(nil), r.routes...)
}

// URL generates a path for the named route
func (r *Router) URL(name string, values map[string]string) (string, error) {
	route, ok := r.Get(name)
	if !ok {
		return "", scerrors.New(scerrors.ConfigurationErrorCode, fmt.Sprintf("no route named '%s'", name))
	}
	return route.Template.Expand(values)
}
