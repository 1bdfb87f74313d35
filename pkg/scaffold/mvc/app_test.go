package mvc

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/internal/metrics"
	"github.com/toyz/scaffold/pkg/scaffold"
	"github.com/toyz/scaffold/pkg/scaffold/model"
	"github.com/toyz/scaffold/pkg/scaffold/selector"
	"github.com/toyz/scaffold/pkg/scaffold/store"
)

type country struct {
	ID   int
	Name string `validate:"required"`
}

type movie struct {
	ID    int
	Title string `validate:"required"`
	Year  int
}

type book struct {
	ID    int
	Title string
}

var (
	countrySchema = model.Define("Country",
		model.Prop("ID", func(c *country) *int { return &c.ID }),
		model.Prop("Name", func(c *country) *string { return &c.Name }),
	)
	movieSchema = model.Define("Movie",
		model.Prop("ID", func(m *movie) *int { return &m.ID }, model.Hidden()),
		model.Prop("Title", func(m *movie) *string { return &m.Title }, model.Order(1)),
		model.Prop("Year", func(m *movie) *int { return &m.Year }, model.Order(2), model.CustomView()),
	)
	bookSchema = model.Define("Book",
		model.Prop("ID", func(b *book) *int { return &b.ID }),
		model.Prop("Title", func(b *book) *string { return &b.Title }),
	)
)

type booksController struct {
	*Controller[book]
}

func (c booksController) Edit(ac *ActionContext) error {
	return ac.Request.Response().String(http.StatusOK, "custom edit "+ac.ID())
}

type fixture struct {
	app       *App
	metrics   *metrics.Metrics
	countries *store.Memory[country]
	movies    *store.Memory[movie]
	books     *store.Memory[book]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{metrics: metrics.New()}
	f.app = NewApp(
		WithPrefix("/crud/"),
		WithMetrics(f.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	_, err := Register(f.app, countrySchema, "ID", WithRepositoryFactory(func(d *model.Descriptor) store.Repository[country] {
		f.countries = store.NewMemory[country](d)
		return f.countries
	}))
	require.NoError(t, err)

	_, err = Register(f.app, movieSchema, "ID", WithRepositoryFactory(func(d *model.Descriptor) store.Repository[movie] {
		f.movies = store.NewMemory[movie](d)
		return f.movies
	}))
	require.NoError(t, err)

	_, err = Register(f.app, bookSchema, "ID",
		WithController("Books", func(base *Controller[book]) Actions { return booksController{base} }),
		WithRepositoryFactory(func(d *model.Descriptor) store.Repository[book] {
			f.books = store.NewMemory[book](d)
			return f.books
		}))
	require.NoError(t, err)

	ctx := newRequest(http.MethodGet, "/", "", "").Context()
	require.NoError(t, f.countries.Insert(ctx, &country{ID: 5, Name: "Norway"}))
	require.NoError(t, f.movies.Insert(ctx, &movie{ID: 5, Title: "Ran", Year: 1985}))
	require.NoError(t, f.books.Insert(ctx, &book{ID: 3, Title: "Dune"}))
	return f
}

func (f *fixture) serve(t *testing.T, c *testContext) (*testContext, error) {
	t.Helper()
	err := f.app.Handle(c)
	return c, err
}

func TestHandle_SameRouteValuesSelectByModel(t *testing.T) {
	f := newFixture(t)

	c, err := f.serve(t, newRequest(http.MethodGet, "/crud/Country/5/details", "", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, c.rec.Code)
	assert.Contains(t, c.rec.Body.String(), "Norway")

	c, err = f.serve(t, newRequest(http.MethodGet, "/crud/movie/5/DETAILS", "", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, c.rec.Code)
	assert.Contains(t, c.rec.Body.String(), "Ran")
	assert.NotContains(t, c.rec.Body.String(), "Norway")
}

func TestRegister_ModelConstraintNarrowsCandidates(t *testing.T) {
	var logs bytes.Buffer
	app := NewApp(WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	var countries *store.Memory[country]
	_, err := Register(app, countrySchema, "ID",
		WithModelConstraint[country](),
		WithRepositoryFactory(func(d *model.Descriptor) store.Repository[country] {
			countries = store.NewMemory[country](d)
			return countries
		}))
	require.NoError(t, err)
	_, err = Register(app, movieSchema, "ID", WithModelConstraint[movie]())
	require.NoError(t, err)

	rd, ok := app.router.Match("/Country/5/details")
	require.True(t, ok)

	candidates := app.Selector().Candidates(rd)
	require.Len(t, candidates, 2, "both generic controllers share the route values")

	matches := selector.EvaluateConstraints(selector.Request{Method: http.MethodGet, Route: rd}, candidates)
	require.Len(t, matches, 1, "the model constraint decides before any tie-break")
	assert.Equal(t, model.GenericController("Country", "int").TypeName+"."+model.ActionDetails, matches[0].ID)

	ctx := newRequest(http.MethodGet, "/", "", "").Context()
	require.NoError(t, countries.Insert(ctx, &country{ID: 5, Name: "Norway"}))

	c := newRequest(http.MethodGet, "/Country/5/details", "", "")
	require.NoError(t, app.Handle(c))
	assert.Equal(t, http.StatusOK, c.rec.Code)
	assert.Contains(t, c.rec.Body.String(), "Norway")
	assert.NotContains(t, logs.String(), "ambiguous action")
}

func TestHandle_CustomControllerNextToGeneric(t *testing.T) {
	f := newFixture(t)

	c, err := f.serve(t, newRequest(http.MethodGet, "/crud/Book/3/edit", "", ""))
	require.NoError(t, err)
	assert.Equal(t, "custom edit 3", c.rec.Body.String())

	c, err = f.serve(t, newRequest(http.MethodGet, "/crud/Movie/5/edit", "", ""))
	require.NoError(t, err)
	assert.Contains(t, c.rec.Body.String(), `<form method="post" action="/crud/Movie/5/SaveChanges">`)

	c, err = f.serve(t, newRequest(http.MethodGet, "/crud/Book/3/details", "", ""))
	require.NoError(t, err, "actions the custom controller does not override fall back to the embedded controller")
	assert.Contains(t, c.rec.Body.String(), "Dune")
}

func TestHandle_NotFound(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"outside prefix", http.MethodGet, "/other/Movie", http.StatusNotFound},
		{"prefix lookalike", http.MethodGet, "/crudx/Movie", http.StatusNotFound},
		{"unknown model", http.MethodGet, "/crud/Planet", http.StatusNotFound},
		{"unknown action", http.MethodGet, "/crud/Movie/5/Archive", http.StatusNotFound},
		{"wrong method", http.MethodPost, "/crud/Movie/5/Details", http.StatusNotFound},
		{"missing entity", http.MethodGet, "/crud/Movie/99/Details", http.StatusNotFound},
		{"malformed key", http.MethodGet, "/crud/Movie/abc/Details", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.serve(t, newRequest(tt.method, tt.path, "", ""))
			require.Error(t, err)
			assert.Equal(t, tt.status, scaffold.StatusOf(err))
		})
	}
}

func TestHandle_IndexHighlightsAfterSave(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"Title": {"Ikiru"}, "Year": {"1952"}}
	c, err := f.serve(t, newRequest(http.MethodPost, "/crud/Movie/Save", "application/x-www-form-urlencoded", form.Encode()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, c.rec.Code)
	assert.Equal(t, "/crud/Movie?id=6&message=Scaffold.Saved", c.rec.Header().Get("Location"))

	c, err = f.serve(t, newRequest(http.MethodGet, "/crud/Movie?id=6&message=Scaffold.Saved", "", ""))
	require.NoError(t, err)
	body := c.rec.Body.String()
	assert.Contains(t, body, `<tr data-key="6" class="highlight">`)
	assert.Contains(t, body, `<p class="message">Saved.</p>`)
	assert.Contains(t, body, "Ikiru")
	assert.NotContains(t, body, "<th>ID</th>", "hidden properties have no column")
}

func TestHandle_SaveInvalidRendersForm(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"Year": {"soon"}}
	c, err := f.serve(t, newRequest(http.MethodPost, "/crud/Movie/Save", "application/x-www-form-urlencoded", form.Encode()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, c.rec.Code)
	body := c.rec.Body.String()
	assert.Contains(t, body, "The Title field is required.")
	assert.Contains(t, body, "The value &#39;soon&#39; is not valid for Year.")

	list, err := f.movies.List(c.Context())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestHandle_JSON(t *testing.T) {
	f := newFixture(t)

	c, err := f.serve(t, newRequest(http.MethodPost, "/crud/Movie/Save", "application/json", `{"data":{"Title":"Rashomon","Year":1950}}`).
		header("Accept", "application/json"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, c.rec.Code)

	var created struct {
		Data    movie  `json:"data"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(c.rec.Body.Bytes(), &created))
	assert.Equal(t, movie{ID: 6, Title: "Rashomon", Year: 1950}, created.Data)
	assert.Equal(t, "Saved.", created.Message)

	c, err = f.serve(t, newRequest(http.MethodGet, "/crud/Movie?format=json", "", ""))
	require.NoError(t, err)
	var listed struct {
		Data []movie `json:"data"`
	}
	require.NoError(t, json.Unmarshal(c.rec.Body.Bytes(), &listed))
	assert.Len(t, listed.Data, 2)

	c, err = f.serve(t, newRequest(http.MethodPost, "/crud/Movie/Save", "application/json", `{"data":{"Year":1950}}`).
		header("Accept", "application/json"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, c.rec.Code)
	assert.Contains(t, c.rec.Body.String(), "The Title field is required.")
}

func TestHandle_SaveWithoutBody(t *testing.T) {
	f := newFixture(t)

	_, err := f.serve(t, newRequest(http.MethodPost, "/crud/Movie/Save", "application/json", ""))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, scaffold.StatusOf(err))

	_, err = f.serve(t, newRequest(http.MethodPost, "/crud/Movie/Save", "application/json", "{"))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, scaffold.StatusOf(err))
}

func TestHandle_SaveChanges(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"Title": {"Ran (restored)"}, "Year": {"1985"}}
	c, err := f.serve(t, newRequest(http.MethodPost, "/crud/Movie/5/SaveChanges", "application/x-www-form-urlencoded", form.Encode()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, c.rec.Code)

	stored, err := f.movies.Find(c.Context(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Ran (restored)", stored.Title)
}

func TestHandle_SaveChangesConflict(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"Title": {"Gone"}}
	c, err := f.serve(t, newRequest(http.MethodPost, "/crud/Movie/42/SaveChanges", "application/x-www-form-urlencoded", form.Encode()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, c.rec.Code)
	assert.Contains(t, c.rec.Body.String(), "changed or removed by someone else")

	_, err = f.serve(t, newRequest(http.MethodPost, "/crud/Movie/42/SaveChanges", "application/json", `{"Title":"Gone"}`).
		header("Accept", "application/json"))
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, scaffold.StatusOf(err))
}

func TestHandle_Delete(t *testing.T) {
	f := newFixture(t)

	c, err := f.serve(t, newRequest(http.MethodGet, "/crud/Movie/5/Delete", "", ""))
	require.NoError(t, err)
	assert.Contains(t, c.rec.Body.String(), `action="/crud/Movie/5/DeleteConfirmed"`)

	c, err = f.serve(t, newRequest(http.MethodPost, "/crud/Movie/5/DeleteConfirmed", "application/x-www-form-urlencoded", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, c.rec.Code)
	assert.Equal(t, "/crud/Movie?message=Scaffold.Deleted", c.rec.Header().Get("Location"))

	_, err = f.serve(t, newRequest(http.MethodPost, "/crud/Movie/5/DeleteConfirmed", "application/x-www-form-urlencoded", ""))
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, scaffold.StatusOf(err))
}

func TestHandle_Script(t *testing.T) {
	f := newFixture(t)

	c, err := f.serve(t, newRequest(http.MethodGet, "/crud/Movie/crud.js", "", ""))
	require.NoError(t, err)
	assert.Equal(t, "application/javascript; charset=utf-8", c.rec.Header().Get("Content-Type"))
	assert.Contains(t, c.rec.Body.String(), "data-confirm")

	_, err = f.serve(t, newRequest(http.MethodGet, "/crud/Movie/other.js", "", ""))
	assert.Equal(t, http.StatusNotFound, scaffold.StatusOf(err))
}

func TestHandle_LocalizedMessages(t *testing.T) {
	f := newFixture(t)

	c, err := f.serve(t, newRequest(http.MethodGet, "/crud/Movie?message=Scaffold.Deleted", "", "").
		header("Accept-Language", "de-DE,de;q=0.9"))
	require.NoError(t, err)
	assert.Contains(t, c.rec.Body.String(), `<html lang="de">`)
	assert.Contains(t, c.rec.Body.String(), "Gelöscht.")
	assert.Contains(t, c.rec.Body.String(), "Neu anlegen")
}

func TestHandle_CustomPropertyView(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.Views().RegisterPropertyView("Movie", "Year", `<time>{{.Value}}</time>`))

	c, err := f.serve(t, newRequest(http.MethodGet, "/crud/Movie/5/Details", "", ""))
	require.NoError(t, err)
	assert.Contains(t, c.rec.Body.String(), "<dd><time>1985</time></dd>")

	err = f.app.Views().RegisterPropertyView("Movie", "Title", "{{.Value")
	assert.True(t, scerrors.HasCode(err, scerrors.TemplateErrorCode))
}

func TestHandle_List(t *testing.T) {
	f := newFixture(t)

	c, err := f.serve(t, newRequest(http.MethodGet, "/crud/Country/List", "", ""))
	require.NoError(t, err)
	body := c.rec.Body.String()
	assert.True(t, strings.HasPrefix(body, `<table class="crud-table">`), "partial views have no layout")
	assert.Contains(t, body, `<a href="/crud/Country/5/Edit">`)
}

func TestHandle_Metrics(t *testing.T) {
	f := newFixture(t)

	_, err := f.serve(t, newRequest(http.MethodGet, "/crud/Country/5/Details", "", ""))
	require.NoError(t, err)
	_, _ = f.serve(t, newRequest(http.MethodGet, "/crud/Planet", "", ""))

	count, err := testutil.GatherAndCount(f.metrics.Registry(), "scaffold_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per route, method and status")

	count, err = testutil.GatherAndCount(f.metrics.Registry(), "scaffold_action_selections_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)

	_, err := Register(f.app, movieSchema, "ID")
	require.Error(t, err)
	assert.True(t, scerrors.HasCode(err, scerrors.RegistrationErrorCode))

	_, err = Register(f.app, countrySchema, "Code")
	require.Error(t, err)
	assert.True(t, scerrors.HasCode(err, scerrors.ConfigurationErrorCode))

	routes := f.app.Routes().GetRoutesByModel("Movie")
	assert.Len(t, routes, 11, "a failed registration leaves earlier routes untouched")
}

func TestRegister_AttributeRoute(t *testing.T) {
	app := NewApp(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err := Register(app, bookSchema, "ID",
		WithAttributeRoute[book]("export", "Book/export", []string{http.MethodGet}, false, func(ac *ActionContext) error {
			return ac.Request.Response().String(http.StatusOK, "exported "+ac.Descriptor.Name())
		}))
	require.NoError(t, err)

	c := newRequest(http.MethodGet, "/Book/export", "", "")
	require.NoError(t, app.Handle(c))
	assert.Equal(t, "exported Book", c.rec.Body.String())

	info := app.Routes().GetRoutesByModel("Book")
	var attribute []string
	for _, r := range info {
		if r.Attribute {
			attribute = append(attribute, r.Name)
		}
	}
	assert.Equal(t, []string{"Book.export"}, attribute)
}

func TestMount(t *testing.T) {
	f := newFixture(t)
	web := &recordingWeb{}

	f.app.Mount(web)

	require.Len(t, web.routes, len(mountMethods))
	for _, r := range web.routes {
		assert.Equal(t, scaffold.Path("/crud/{*}"), r.path)
	}
}
