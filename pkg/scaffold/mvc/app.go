package mvc

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"

	scerrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/internal/metrics"
	"github.com/toyz/scaffold/pkg/scaffold"
	"github.com/toyz/scaffold/pkg/scaffold/binder"
	"github.com/toyz/scaffold/pkg/scaffold/localize"
	"github.com/toyz/scaffold/pkg/scaffold/model"
	"github.com/toyz/scaffold/pkg/scaffold/routing"
	"github.com/toyz/scaffold/pkg/scaffold/selector"
)

// App owns the registered CRUD types and dispatches requests to their actions
type App struct {
	registry  *model.Registry
	actions   *selector.ActionCollection
	selector  *selector.Selector
	router    *routing.Router
	binder    *binder.EntityBinder
	routes    *scaffold.InMemoryRouteRegistry
	views     *Views
	localizer *localize.Localizer
	logger    *slog.Logger
	metrics   *metrics.Metrics
	prefix    string

	mu       sync.RWMutex
	invokers map[string]*invoker
}

// Option configures an App
type Option func(*App)

// WithLogger sets the application logger
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithMetrics records selection, binding and request metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithLocalizer sets the localizer used for captions and messages
func WithLocalizer(l *localize.Localizer) Option {
	return func(a *App) { a.localizer = l }
}

// WithPrefix sets the path prefix the app is mounted under, e.g. "/crud"
func WithPrefix(prefix string) Option {
	return func(a *App) { a.prefix = "/" + strings.Trim(prefix, "/") }
}

// NewApp creates an application with no CRUD types
func NewApp(opts ...Option) *App {
	a := &App{
		registry: model.NewRegistry(),
		actions:  selector.NewActionCollection(),
		router:   routing.NewRouter(),
		routes:   scaffold.NewInMemoryRouteRegistry(),
		logger:   slog.Default(),
		invokers: make(map[string]*invoker),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.prefix == "/" {
		a.prefix = ""
	}
	if a.localizer == nil {
		a.localizer = localize.New(language.English)
	}
	a.selector = selector.New(a.actions, selector.WithMetrics(a.metrics), selector.WithLogger(a.logger))
	a.binder = binder.New(a.registry, binder.WithMetrics(a.metrics), binder.WithLogger(a.logger))
	a.views = newViews(a)
	return a
}

// Registry returns the registered CRUD types
func (a *App) Registry() *model.Registry { return a.registry }

// Routes returns the route table for diagnostics
func (a *App) Routes() scaffold.RouteRegistry { return a.routes }

// Views returns the view renderer, e.g. to register custom property views
func (a *App) Views() *Views { return a.views }

// Localizer returns the localizer
func (a *App) Localizer() *localize.Localizer { return a.localizer }

// Selector returns the action selector
func (a *App) Selector() *selector.Selector { return a.selector }

// Prefix returns the mount prefix
func (a *App) Prefix() string { return a.prefix }

// URL generates the prefixed URL of a named route of a CRUD type
func (a *App) URL(d *model.Descriptor, route string, values map[string]string) (string, error) {
	u, err := d.Routes().URL(route, values)
	if err != nil {
		return "", err
	}
	return a.prefix + u, nil
}

// add publishes a CRUD type: its descriptor, routes and actions. Nothing is
// published when any part conflicts with what is already registered.
func (a *App) add(d *model.Descriptor, routes []*routing.Route, invokers []*invoker) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, inv := range invokers {
		if _, exists := a.invokers[inv.action.ID]; exists {
			return scerrors.New(scerrors.RegistrationErrorCode, fmt.Sprintf("action '%s' is already registered", inv.action.ID)).
				WithSubject(d.Name()).
				WithSuggestion("give custom controllers distinct type names")
		}
	}
	if _, exists := a.registry.ByName(d.Name()); exists {
		return scerrors.DuplicateRegistration(d.Name(), d.Key().Name)
	}
	if err := a.router.Add(routes...); err != nil {
		return err
	}
	if err := a.registry.Add(d); err != nil {
		return err
	}

	actions := make([]*selector.ActionDescriptor, len(invokers))
	for i, inv := range invokers {
		a.invokers[inv.action.ID] = inv
		actions[i] = inv.action
	}
	a.actions.Add(actions...)

	for _, r := range routes {
		a.routes.RegisterRoute(scaffold.RouteInfo{
			Name:           r.Name,
			Template:       r.Template.String(),
			ControllerName: r.Defaults[routing.ControllerKey],
			Action:         r.Defaults[routing.ActionKey],
			ModelType:      d.Name(),
			Attribute:      r.Attribute,
		})
	}

	a.logger.Debug("registered CRUD type",
		slog.String("model", d.Name()),
		slog.String("key", d.Key().Name),
		slog.String("controller", d.Controller().TypeName),
		slog.Int("routes", len(routes)))
	return nil
}

func (a *App) invoker(id string) (*invoker, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	inv, ok := a.invokers[id]
	return inv, ok
}
