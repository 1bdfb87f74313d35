package model

import (
	"fmt"
	"strings"

	"github.com/toyz/scaffold/pkg/scaffold/routing"
)

// Route names of a CRUD type, relative to the model name
const (
	RouteList           = "list"
	RouteDetails        = "details"
	RouteDelete         = "delete"
	RouteDeleteConfirm  = "delete-confirm"
	RouteCreate         = "create"
	RouteSave           = "save"
	RouteEdit           = "edit"
	RouteSaveChanges    = "save-changes"
	RouteScript         = "script"
	RouteIndex          = "index"
	RouteIndexHighlight = "index-highlight"
)

// Action names served by a CRUD controller
const (
	ActionIndex           = "Index"
	ActionList            = "List"
	ActionDetails         = "Details"
	ActionCreate          = "Create"
	ActionSave            = "Save"
	ActionEdit            = "Edit"
	ActionSaveChanges     = "SaveChanges"
	ActionDelete          = "Delete"
	ActionDeleteConfirmed = "DeleteConfirmed"
	ActionScript          = "Script"
)

type routeSpec struct {
	name     string
	template string
	action   string
}

// Registration order is match order: specific shapes first.
var routeSpecs = []routeSpec{
	{RouteScript, "{modelType}/{filename}.js", ActionScript},
	{RouteSaveChanges, "{modelType}/{id}/SaveChanges", ActionSaveChanges},
	{RouteDetails, "{modelType}/{id}/{action}", ActionDetails},
	{RouteEdit, "{modelType}/{id}/{action}", ActionEdit},
	{RouteDelete, "{modelType}/{id}/{action}", ActionDelete},
	{RouteDeleteConfirm, "{modelType}/{id}/{action}", ActionDeleteConfirmed},
	{RouteList, "{modelType}/{action}", ActionList},
	{RouteCreate, "{modelType}/{action}", ActionCreate},
	{RouteSave, "{modelType}/{action}", ActionSave},
	{RouteIndex, "{modelType}", ActionIndex},
	// Never matched since index comes first. It only generates redirect URLs;
	// id and message become query values.
	{RouteIndexHighlight, "{modelType}", ActionIndex},
}

// RouteSet is the fixed list of named routes of one CRUD type
type RouteSet struct {
	model  string
	routes []*routing.Route
	byName map[string]*routing.Route
}

func newRouteSet(d *Descriptor) *RouteSet {
	rs := &RouteSet{
		model:  d.Name(),
		byName: make(map[string]*routing.Route, len(routeSpecs)),
	}
	for _, spec := range routeSpecs {
		template := strings.ReplaceAll(spec.template, "{modelType}", d.Name())
		route, err := routing.NewRoute(
			RouteName(d.Name(), spec.name),
			template,
			map[string]string{
				routing.ControllerKey: d.Controller().Name,
				routing.ActionKey:     spec.action,
			},
			map[string]any{
				routing.ModelTypeToken: d.Name(),
				routing.CrudTypeToken:  d,
			},
		)
		if err != nil {
			// model names are validated as identifiers by NewDescriptor
			panic(fmt.Sprintf("route %s: %v", spec.name, err))
		}
		rs.routes = append(rs.routes, route)
		rs.byName[spec.name] = route
	}
	return rs
}

// RouteName returns the full route name, e.g. "Movie.details"
func RouteName(modelName, name string) string {
	return modelName + "." + name
}

// All returns the routes in match order
func (rs *RouteSet) All() []*routing.Route {
	return append([]*routing.Route(nil), rs.routes...)
}

// Get returns a route by its short name, e.g. "details"
func (rs *RouteSet) Get(name string) (*routing.Route, bool) {
	route, ok := rs.byName[name]
	return route, ok
}

// URL expands the named route. For routes with an {action} placeholder the
// route's default action is used unless values name one.
func (rs *RouteSet) URL(name string, values map[string]string) (string, error) {
	route, ok := rs.byName[name]
	if !ok {
		return "", fmt.Errorf("%s has no route named %q", rs.model, name)
	}

	merged := make(map[string]string, len(values)+1)
	if route.Template.HasParameter(routing.ActionKey) {
		merged[routing.ActionKey] = route.Defaults[routing.ActionKey]
	}
	for k, v := range values {
		merged[k] = v
	}
	return route.Template.Expand(merged)
}
