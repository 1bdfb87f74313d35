package mvc

import (
	"net/http"

	"github.com/toyz/scaffold/pkg/scaffold/model"
	"github.com/toyz/scaffold/pkg/scaffold/routing"
	"github.com/toyz/scaffold/pkg/scaffold/selector"
	"github.com/toyz/scaffold/pkg/scaffold/store"
)

// Actions is the capability set of a CRUD controller. *Controller[T] implements
// it; custom controllers usually embed *Controller[T] and override some actions.
type Actions interface {
	Index(*ActionContext) error
	List(*ActionContext) error
	Details(*ActionContext) error
	Create(*ActionContext) error
	Save(*ActionContext) error
	Edit(*ActionContext) error
	SaveChanges(*ActionContext) error
	Delete(*ActionContext) error
	DeleteConfirmed(*ActionContext) error
	Script(*ActionContext) error
}

var (
	readMethods  = []string{http.MethodGet, http.MethodHead}
	writeMethods = []string{http.MethodPost}
)

type actionSpec struct {
	name    string
	methods []string
	binds   bool
	call    func(Actions, *ActionContext) error
}

var actionSpecs = []actionSpec{
	{model.ActionIndex, readMethods, false, Actions.Index},
	{model.ActionList, readMethods, false, Actions.List},
	{model.ActionDetails, readMethods, false, Actions.Details},
	{model.ActionCreate, readMethods, false, Actions.Create},
	{model.ActionSave, writeMethods, true, Actions.Save},
	{model.ActionEdit, readMethods, false, Actions.Edit},
	{model.ActionSaveChanges, writeMethods, true, Actions.SaveChanges},
	{model.ActionDelete, readMethods, false, Actions.Delete},
	{model.ActionDeleteConfirmed, writeMethods, false, Actions.DeleteConfirmed},
	{model.ActionScript, readMethods, false, Actions.Script},
}

type invoker struct {
	action     *selector.ActionDescriptor
	fn         ActionFunc
	bindsModel bool
}

type attributeRoute struct {
	name     string
	template string
	methods  []string
	binds    bool
	fn       ActionFunc
}

type registration[T any] struct {
	repo            func(*model.Descriptor) store.Repository[T]
	controller      model.ControllerInfo
	build           func(*Controller[T]) Actions
	modelConstraint bool
	attributes      []attributeRoute
}

// RegisterOption configures the registration of one CRUD type
type RegisterOption[T any] func(*registration[T])

// WithRepository stores entities in repo instead of an in-memory store
func WithRepository[T any](repo store.Repository[T]) RegisterOption[T] {
	return func(r *registration[T]) {
		r.repo = func(*model.Descriptor) store.Repository[T] { return repo }
	}
}

// WithRepositoryFactory builds the repository from the CRUD type's descriptor
func WithRepositoryFactory[T any](factory func(*model.Descriptor) store.Repository[T]) RegisterOption[T] {
	return func(r *registration[T]) { r.repo = factory }
}

// WithController serves the CRUD type with a user controller. name is its
// "controller" route value; build receives the default controller to embed.
func WithController[T any](name string, build func(base *Controller[T]) Actions) RegisterOption[T] {
	return func(r *registration[T]) {
		r.controller = model.ControllerInfo{Name: name, TypeName: name + "Controller"}
		r.build = build
	}
}

// WithModelConstraint adds a constraint accepting only requests for this model
func WithModelConstraint[T any]() RegisterOption[T] {
	return func(r *registration[T]) { r.modelConstraint = true }
}

// WithAttributeRoute adds an action served by its own route template, e.g.
// "Book/export". bindsModel binds the "model" argument before fn runs.
func WithAttributeRoute[T any](name, template string, methods []string, bindsModel bool, fn ActionFunc) RegisterOption[T] {
	return func(r *registration[T]) {
		r.attributes = append(r.attributes, attributeRoute{name: name, template: template, methods: methods, binds: bindsModel, fn: fn})
	}
}

// Register configures a CRUD type for schema keyed by the key property and
// publishes its routes and actions on app.
func Register[T any](app *App, schema *model.Schema[T], key string, opts ...RegisterOption[T]) (*model.Descriptor, error) {
	reg := &registration[T]{}
	for _, opt := range opts {
		opt(reg)
	}

	d, err := model.NewDescriptor(schema, key, reg.controller)
	if err != nil {
		return nil, err
	}

	var repo store.Repository[T]
	if reg.repo != nil {
		repo = reg.repo(d)
	} else {
		repo = store.NewMemory[T](d)
	}

	base := &Controller[T]{app: app, d: d, repo: repo}
	var actions Actions = base
	if reg.build != nil {
		actions = reg.build(base)
	}

	info := d.Controller()
	invokers := make([]*invoker, 0, len(actionSpecs)+len(reg.attributes))
	for _, spec := range actionSpecs {
		constraints := []selector.Constraint{selector.Methods(spec.methods...)}
		if reg.modelConstraint {
			constraints = append(constraints, &selector.ModelTypeConstraint{Model: d.Name()})
		}
		call := spec.call
		invokers = append(invokers, &invoker{
			action: &selector.ActionDescriptor{
				ID:          info.TypeName + "." + spec.name,
				DisplayName: info.TypeName + "." + spec.name,
				RouteValues: map[string]string{
					routing.ControllerKey: info.Name,
					routing.ActionKey:     spec.name,
				},
				Constraints: constraints,
				Controller:  &info,
			},
			fn:         func(ac *ActionContext) error { return call(actions, ac) },
			bindsModel: spec.binds,
		})
	}

	// attribute routes match before the conventional ones
	var routes []*routing.Route
	for _, attr := range reg.attributes {
		name := model.RouteName(d.Name(), attr.name)
		route, err := routing.NewRoute(name, attr.template,
			map[string]string{routing.ControllerKey: info.Name, routing.ActionKey: attr.name},
			map[string]any{routing.ModelTypeToken: d.Name(), routing.CrudTypeToken: d})
		if err != nil {
			return nil, err
		}
		route.Attribute = true
		routes = append(routes, route)

		invokers = append(invokers, &invoker{
			action: &selector.ActionDescriptor{
				ID:             info.TypeName + "." + attr.name,
				DisplayName:    info.TypeName + "." + attr.name,
				AttributeRoute: name,
				Constraints:    []selector.Constraint{selector.Methods(attr.methods...)},
				Controller:     &info,
			},
			fn:         attr.fn,
			bindsModel: attr.binds,
		})
	}
	routes = append(routes, d.Routes().All()...)

	if err := app.add(d, routes, invokers); err != nil {
		return nil, err
	}
	return d, nil
}
