package mvc

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	scerrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/pkg/scaffold"
	"github.com/toyz/scaffold/pkg/scaffold/localize"
	"github.com/toyz/scaffold/pkg/scaffold/model"
	"github.com/toyz/scaffold/pkg/scaffold/store"
)

// Controller is the generic CRUD controller, one instance per CRUD type.
// HTML is rendered through the app views; requests accepting JSON get the
// same data as a scaffold.Response.
type Controller[T any] struct {
	app  *App
	d    *model.Descriptor
	repo store.Repository[T]
}

var _ Actions = (*Controller[struct{}])(nil)

// Descriptor returns the CRUD type served by the controller
func (c *Controller[T]) Descriptor() *model.Descriptor { return c.d }

// Repository returns the entity store
func (c *Controller[T]) Repository() store.Repository[T] { return c.repo }

// Index lists all entities. "id" and "message" query values highlight a row
// and show a status message after a redirect.
func (c *Controller[T]) Index(ac *ActionContext) error {
	return c.list(ac, viewIndex)
}

// List renders the entity table without the layout
func (c *Controller[T]) List(ac *ActionContext) error {
	return c.list(ac, viewList)
}

func (c *Controller[T]) list(ac *ActionContext, view string) error {
	entities, err := c.repo.List(ac.Ctx())
	if err != nil {
		return scerrors.WrapPersistenceError(c.d.Name(), "list", err)
	}
	if ac.WantsJSON() {
		return ac.JSON(scaffold.OK(entities))
	}

	rows := make([]any, len(entities))
	for i, e := range entities {
		rows[i] = e
	}
	q := ac.Query()
	pg := c.app.views.newPage(ac, c.d.Name())
	pg.Columns = c.d.Columns(ac.Printer.Caption)
	pg.Rows = c.d.ProjectAll(rows, ac.Printer.Caption)
	pg.Highlight = q.Get("id")
	if msg := q.Get("message"); msg != "" {
		pg.Message = ac.Printer.Text(msg, msg)
	}
	return c.app.views.render(ac, http.StatusOK, view, pg)
}

// Details shows one entity
func (c *Controller[T]) Details(ac *ActionContext) error {
	entity, err := c.find(ac)
	if err != nil {
		return err
	}
	if ac.WantsJSON() {
		return ac.JSON(scaffold.OK(entity))
	}
	pg := c.app.views.newPage(ac, ac.Printer.T(localize.MsgDetails))
	pg.Entity = c.d.Project(entity, ac.Printer.Caption)
	return c.app.views.render(ac, http.StatusOK, viewDetails, pg)
}

// Create shows an empty form posting to Save
func (c *Controller[T]) Create(ac *ActionContext) error {
	return c.form(ac, http.StatusOK, new(T), model.RouteSave, "")
}

// Save inserts the bound entity and redirects to the highlighted index
func (c *Controller[T]) Save(ac *ActionContext) error {
	entity, err := c.bound(ac)
	if err != nil {
		return err
	}
	if !ac.State.IsValid() {
		return c.invalid(ac, entity, model.RouteSave)
	}

	if err := c.repo.Insert(ac.Ctx(), entity); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return c.conflict(ac, entity, model.RouteSave, err)
		}
		return scerrors.WrapPersistenceError(c.d.Name(), "insert", err)
	}
	return c.saved(ac, entity, localize.MsgSaved, http.StatusCreated)
}

// Edit shows the form of an existing entity posting to SaveChanges
func (c *Controller[T]) Edit(ac *ActionContext) error {
	entity, err := c.find(ac)
	if err != nil {
		return err
	}
	return c.form(ac, http.StatusOK, entity, model.RouteSaveChanges, "")
}

// SaveChanges updates the bound entity. A concurrent modification or removal
// is logged and reported with a generic message.
func (c *Controller[T]) SaveChanges(ac *ActionContext) error {
	entity, err := c.bound(ac)
	if err != nil {
		return err
	}
	if !ac.State.IsValid() {
		return c.invalid(ac, entity, model.RouteSaveChanges)
	}

	if err := c.repo.Update(ac.Ctx(), entity); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return c.conflict(ac, entity, model.RouteSaveChanges, err)
		}
		return scerrors.WrapPersistenceError(c.d.Name(), "update", err)
	}
	return c.saved(ac, entity, localize.MsgSaved, http.StatusOK)
}

// Delete shows the delete confirmation
func (c *Controller[T]) Delete(ac *ActionContext) error {
	entity, err := c.find(ac)
	if err != nil {
		return err
	}
	pg := c.app.views.newPage(ac, ac.Printer.T(localize.MsgDelete))
	pg.Entity = c.d.Project(entity, ac.Printer.Caption)
	pg.Message = ac.Printer.T(localize.MsgConfirmDelete)
	return c.app.views.render(ac, http.StatusOK, viewDelete, pg)
}

// DeleteConfirmed removes the entity and redirects to the index
func (c *Controller[T]) DeleteConfirmed(ac *ActionContext) error {
	key, err := c.key(ac)
	if err != nil {
		return err
	}

	if err := c.repo.Delete(ac.Ctx(), key); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return scaffold.ErrNotFound(ac.Printer.T(localize.MsgNotFound))
		case errors.Is(err, store.ErrConflict):
			ac.Logger.Warn("concurrent delete", slog.String("model", c.d.Name()), slog.Any("key", key), slog.String("error", err.Error()))
			return scaffold.ErrConflict(ac.Printer.T(localize.MsgConflict))
		default:
			return scerrors.WrapPersistenceError(c.d.Name(), "delete", err)
		}
	}

	if ac.WantsJSON() {
		return ac.JSON(scaffold.OK(nil).WithMessage(ac.Printer.T(localize.MsgDeleted)))
	}
	return ac.RedirectTo(model.RouteIndex, map[string]string{"message": localize.MsgDeleted})
}

// Script serves the client script of the CRUD pages
func (c *Controller[T]) Script(ac *ActionContext) error {
	if !strings.EqualFold(ac.Route.Value("filename"), scriptName) {
		return scaffold.ErrNotFound(fmt.Sprintf("no script %s.js", ac.Route.Value("filename")))
	}
	return ac.Request.Response().Blob(http.StatusOK, "application/javascript; charset=utf-8", crudScript)
}

func (c *Controller[T]) key(ac *ActionContext) (any, error) {
	key, err := c.d.ParseKey(ac.ID())
	if err != nil {
		return nil, scaffold.ErrBadRequest(fmt.Sprintf("'%s' is not a valid %s key", ac.ID(), c.d.Name()))
	}
	return key, nil
}

func (c *Controller[T]) find(ac *ActionContext) (*T, error) {
	key, err := c.key(ac)
	if err != nil {
		return nil, err
	}
	entity, err := c.repo.Find(ac.Ctx(), key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, scaffold.ErrNotFound(ac.Printer.T(localize.MsgNotFound))
	}
	if err != nil {
		return nil, scerrors.WrapPersistenceError(c.d.Name(), "find", err)
	}
	return entity, nil
}

// bound returns the entity bound from the request, or a 400 when the request
// carried nothing to bind
func (c *Controller[T]) bound(ac *ActionContext) (*T, error) {
	entity, ok := ac.Entity.(*T)
	if !ok || entity == nil {
		details := ac.State.Errors()
		if len(details) == 0 {
			return nil, scaffold.ErrBadRequest(fmt.Sprintf("no %s in request", c.d.Name()))
		}
		return nil, scaffold.NewHttpErrorWithDetails(http.StatusBadRequest, fmt.Sprintf("no %s in request", c.d.Name()), details)
	}
	return entity, nil
}

func (c *Controller[T]) invalid(ac *ActionContext, entity *T, target string) error {
	if ac.WantsJSON() {
		return ac.JSON(scaffold.Invalid(entity, ac.State.Errors()))
	}
	return c.form(ac, http.StatusUnprocessableEntity, entity, target, "")
}

func (c *Controller[T]) conflict(ac *ActionContext, entity *T, target string, err error) error {
	key, _ := c.d.KeyOf(entity)
	ac.Logger.Warn("concurrent modification", slog.String("model", c.d.Name()), slog.Any("key", key), slog.String("error", err.Error()))

	msg := ac.Printer.T(localize.MsgConflict)
	if ac.WantsJSON() {
		return scaffold.ErrConflict(msg)
	}
	return c.form(ac, http.StatusConflict, entity, target, msg)
}

func (c *Controller[T]) saved(ac *ActionContext, entity *T, msg string, status int) error {
	key, _ := c.d.KeyOf(entity)
	if ac.WantsJSON() {
		return ac.JSON(scaffold.NewResponse(status, entity).WithMessage(ac.Printer.T(msg)))
	}
	return ac.RedirectTo(model.RouteIndexHighlight, map[string]string{
		"id":      fmt.Sprint(key),
		"message": msg,
	})
}

func (c *Controller[T]) form(ac *ActionContext, status int, entity *T, target, message string) error {
	title := localize.MsgCreate
	if target == model.RouteSaveChanges {
		title = localize.MsgEdit
	}
	pg := c.app.views.newPage(ac, ac.Printer.T(title))
	pg.Entity = c.d.Project(entity, ac.Printer.Caption)
	pg.Target = target
	pg.Errors = ac.State.Errors()
	pg.Message = message
	return c.app.views.render(ac, status, viewEdit, pg)
}
