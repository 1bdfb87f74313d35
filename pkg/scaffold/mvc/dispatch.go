package mvc

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	scerrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/pkg/scaffold"
	"github.com/toyz/scaffold/pkg/scaffold/binder"
	"github.com/toyz/scaffold/pkg/scaffold/model"
	"github.com/toyz/scaffold/pkg/scaffold/selector"
)

var mountMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// Mount registers the app behind a catch-all route on server
func (a *App) Mount(server scaffold.WebServerInterface, middlewares ...scaffold.MiddlewareFunc) {
	path := scaffold.MountPath(a.prefix)
	for _, method := range mountMethods {
		server.RegisterRoute(method, path, a.Handle, middlewares...)
	}
	a.logger.Info("mounted CRUD routes",
		slog.String("server", server.Name()),
		slog.String("path", path.Raw()),
		slog.Int("models", len(a.registry.All())))
}

// Handle dispatches one request: route match, action selection, model
// binding and action invocation.
func (a *App) Handle(rc scaffold.RequestContext) error {
	start := time.Now()
	routeName := ""
	err := a.dispatch(rc, &routeName)

	status := rc.Response().Status()
	if err != nil {
		status = scaffold.StatusOf(err)
	}
	a.metrics.ObserveRequest(routeName, rc.Method(), status, time.Since(start))
	return err
}

func (a *App) dispatch(rc scaffold.RequestContext, routeName *string) error {
	path, ok := a.relativePath(rc.Path())
	if !ok {
		return scaffold.ErrNotFound(fmt.Sprintf("%s is not below %s", rc.Path(), a.prefix))
	}

	rd, ok := a.router.Match(path)
	if !ok {
		return scaffold.ErrNotFound(fmt.Sprintf("no route matches %s", path))
	}
	*routeName = rd.Route.Name

	res := a.selector.Resolve(selector.Request{Method: rc.Method(), Route: rd})
	switch res.Outcome {
	case selector.NotFound:
		return scaffold.ErrNotFound(fmt.Sprintf("no action serves %s %s", rc.Method(), path))
	case selector.Ambiguous:
		return res.Err()
	}

	inv, ok := a.invoker(res.Action.ID)
	if !ok {
		return scerrors.New(scerrors.ConfigurationErrorCode, fmt.Sprintf("action '%s' has no handler", res.Action.ID))
	}
	d, ok := a.registry.FromRoute(rd)
	if !ok {
		return scerrors.New(scerrors.ConfigurationErrorCode, fmt.Sprintf("route '%s' names no CRUD type", rd.Route.Name))
	}

	ac := a.newActionContext(rc, rd, d)
	if inv.bindsModel {
		if err := a.bindModel(ac, d); err != nil {
			return err
		}
	}

	ac.Logger.Debug("invoking action", slog.String("action", res.Action.DisplayName))
	return inv.fn(ac)
}

func (a *App) bindModel(ac *ActionContext, d *model.Descriptor) error {
	rc := ac.Request
	bc := &binder.Context{
		Ctx:       rc.Context(),
		FieldName: binder.ModelField,
		Route:     ac.Route,
		ModelName: d.Name(),
		KeyValue:  ac.ID(),
		State:     ac.State,
	}

	switch {
	case isForm(rc.Request().ContentType()):
		values, err := rc.FormParams()
		if err != nil {
			return scaffold.ErrBadRequest(fmt.Sprintf("invalid form: %v", err))
		}
		bc.Source = binder.SourceForm
		bc.Values = values
	case rc.Method() == http.MethodGet || rc.Method() == http.MethodHead:
		bc.Source = binder.SourceQuery
		bc.Values = rc.QueryParams()
	default:
		bc.Source = binder.SourceBody
		bc.ContentType = rc.Request().ContentType()
		bc.Body = rc.Request().BodyReader()
	}

	res, err := a.binder.Bind(bc)
	if err != nil {
		return err
	}
	if res.Set {
		ac.Entity = res.Value
	}
	return nil
}

func isForm(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// relativePath strips the mount prefix from path
func (a *App) relativePath(path string) (string, bool) {
	if a.prefix == "" {
		return path, true
	}
	if len(path) < len(a.prefix) || !strings.EqualFold(path[:len(a.prefix)], a.prefix) {
		return "", false
	}
	rest := path[len(a.prefix):]
	if rest != "" && rest[0] != '/' {
		return "", false
	}
	return rest, true
}
