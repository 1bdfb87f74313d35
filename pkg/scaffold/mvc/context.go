package mvc

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/toyz/scaffold/internal/logger"
	"github.com/toyz/scaffold/pkg/scaffold"
	"github.com/toyz/scaffold/pkg/scaffold/binder"
	"github.com/toyz/scaffold/pkg/scaffold/localize"
	"github.com/toyz/scaffold/pkg/scaffold/model"
	"github.com/toyz/scaffold/pkg/scaffold/routing"
)

// ActionFunc serves one selected action
type ActionFunc func(*ActionContext) error

// ActionContext is what an action sees of the request it serves
type ActionContext struct {
	Request    scaffold.RequestContext
	Route      routing.RouteData
	Descriptor *model.Descriptor
	// Entity is the bound "model" argument, nil when nothing was bound
	Entity  any
	State   *binder.ModelState
	Printer *localize.Printer
	Logger  *slog.Logger

	app *App
}

func (a *App) newActionContext(rc scaffold.RequestContext, rd routing.RouteData, d *model.Descriptor) *ActionContext {
	log := logger.With(rc.Context(), a.logger)
	if rd.Route != nil {
		log = log.With(slog.String("route", rd.Route.Name))
	}
	return &ActionContext{
		Request:    rc,
		Route:      rd,
		Descriptor: d,
		State:      binder.NewModelState(),
		Printer:    a.localizer.Printer(rc.Request().Header("Accept-Language")),
		Logger:     log,
		app:        a,
	}
}

// Ctx returns the request context
func (c *ActionContext) Ctx() context.Context {
	return c.Request.Context()
}

// App returns the application serving the request
func (c *ActionContext) App() *App {
	return c.app
}

// ID returns the raw "id" route value
func (c *ActionContext) ID() string {
	return c.Route.Value("id")
}

// Query returns the query string values
func (c *ActionContext) Query() scaffold.QueryMap {
	return scaffold.NewQueryMap(c.Request)
}

// WantsJSON reports whether the client asked for JSON instead of HTML
func (c *ActionContext) WantsJSON() bool {
	if strings.Contains(c.Request.Request().Header("Accept"), "application/json") {
		return true
	}
	return c.Query().Get("format") == "json"
}

// URL generates the prefixed URL of a named route of the current CRUD type
func (c *ActionContext) URL(route string, values map[string]string) (string, error) {
	return c.app.URL(c.Descriptor, route, values)
}

// JSON writes r with its status code
func (c *ActionContext) JSON(r *scaffold.Response) error {
	return c.Request.Response().JSON(r.StatusCode, r)
}

// RedirectTo sends a 303 to a named route of the current CRUD type
func (c *ActionContext) RedirectTo(route string, values map[string]string) error {
	u, err := c.URL(route, values)
	if err != nil {
		return err
	}
	return c.Request.Response().Redirect(http.StatusSeeOther, u)
}
