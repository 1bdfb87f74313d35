package mvc

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	scerrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/pkg/scaffold/model"
)

//go:embed templates/*.html templates/crud.js
var templateFS embed.FS

const (
	viewIndex   = "index"
	viewList    = "list"
	viewDetails = "details"
	viewEdit    = "edit"
	viewDelete  = "delete"

	scriptName = "crud"
)

var crudScript = mustReadScript()

func mustReadScript() []byte {
	b, err := templateFS.ReadFile("templates/crud.js")
	if err != nil {
		panic(err)
	}
	return b
}

// Views renders the CRUD pages. Each page is its own template set built from
// the shared layout and table partials.
type Views struct {
	app   *App
	pages map[string]*template.Template

	mu         sync.RWMutex
	properties map[string]*template.Template
}

func newViews(app *App) *Views {
	v := &Views{
		app:        app,
		pages:      make(map[string]*template.Template),
		properties: make(map[string]*template.Template),
	}
	for _, name := range []string{viewIndex, viewList, viewDetails, viewEdit, viewDelete} {
		v.pages[name] = template.Must(template.New(name).ParseFS(templateFS,
			"templates/layout.html",
			"templates/table.html",
			"templates/"+name+".html",
		))
	}
	return v
}

// RegisterPropertyView sets the template used to display one property of a
// model. The template receives the model.PropertyData.
func (v *Views) RegisterPropertyView(modelName, property, text string) error {
	name := modelName + "." + property
	t, err := template.New(name).Parse(text)
	if err != nil {
		return scerrors.Wrap(scerrors.TemplateErrorCode, "invalid property view", err).WithSubject(name)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.properties[strings.ToLower(name)] = t
	return nil
}

func (v *Views) propertyView(modelName, property string) (*template.Template, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	t, ok := v.properties[strings.ToLower(modelName+"."+property)]
	return t, ok
}

func (v *Views) newPage(ac *ActionContext, title string) *page {
	return &page{
		Title: title,
		Lang:  ac.Printer.Language().String(),
		Model: ac.Descriptor.Name(),
		ac:    ac,
		views: v,
	}
}

// render executes a page. Partial views skip the layout.
func (v *Views) render(ac *ActionContext, status int, name string, pg *page) error {
	t, ok := v.pages[name]
	if !ok {
		return scerrors.TemplateError(name, "no such view")
	}

	entry := "layout"
	if name == viewList {
		entry = "table"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, entry, pg); err != nil {
		return scerrors.Wrap(scerrors.TemplateErrorCode, "failed to render view", err).WithSubject(name)
	}
	return ac.Request.Response().HTML(status, buf.String())
}

// page is the data of every CRUD view
type page struct {
	Title     string
	Lang      string
	Model     string
	Columns   []model.PropertyData
	Rows      []model.EntityData
	Entity    model.EntityData
	Highlight string
	Message   string
	Errors    map[string][]string
	// Target is the route the edit form posts to
	Target string

	ac    *ActionContext
	views *Views
}

// T translates a message key
func (p *page) T(key string) string {
	return p.ac.Printer.T(key)
}

// URL links a route of the current CRUD type; an empty id is omitted
func (p *page) URL(route string, id any) (string, error) {
	var values map[string]string
	if s := fmt.Sprint(id); id != nil && s != "" {
		values = map[string]string{"id": s}
	}
	return p.ac.URL(route, values)
}

// ScriptURL links the client script
func (p *page) ScriptURL() (string, error) {
	return p.ac.URL(model.RouteScript, map[string]string{"filename": scriptName})
}

// IsHighlighted reports whether row is the one named by the "id" query value
func (p *page) IsHighlighted(row model.EntityData) bool {
	return p.Highlight != "" && fmt.Sprint(row.Key) == p.Highlight
}

// IsNew reports whether the form creates an entity
func (p *page) IsNew() bool {
	return p.Target == model.RouteSave
}

// ErrorsFor returns the validation messages of one property
func (p *page) ErrorsFor(name string) []string {
	for k, msgs := range p.Errors {
		if strings.EqualFold(k, name) {
			return msgs
		}
	}
	return nil
}

// FormErrors returns messages not tied to a property
func (p *page) FormErrors() []string {
	return p.Errors[""]
}

// InputValue formats a property for an input element
func (p *page) InputValue(prop model.PropertyData) string {
	switch v := prop.Value.(type) {
	case nil:
		return ""
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Render displays a property through its custom view when one is registered
func (p *page) Render(prop model.PropertyData) (template.HTML, error) {
	if prop.CustomView {
		if t, ok := p.views.propertyView(p.Model, prop.Name); ok {
			var buf bytes.Buffer
			if err := t.Execute(&buf, prop); err != nil {
				return "", scerrors.Wrap(scerrors.TemplateErrorCode, "failed to render property view", err).WithSubject(t.Name())
			}
			return template.HTML(buf.String()), nil
		}
	}
	return template.HTML(template.HTMLEscapeString(p.InputValue(prop))), nil
}
