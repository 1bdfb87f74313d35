package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/toyz/scaffold/internal/errors"
)

func mustRoute(t *testing.T, name, template string, defaults map[string]string, tokens map[string]any) *Route {
	t.Helper()
	route, err := NewRoute(name, template, defaults, tokens)
	require.NoError(t, err)
	return route
}

func TestRouter_MatchOverlaysCapturedValues(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.Add(
		mustRoute(t, "Movie.details", "Movie/{id}/{action}",
			map[string]string{ControllerKey: "Crud", ActionKey: "Details"},
			map[string]any{ModelTypeToken: "Movie"}),
	))

	rd, ok := router.Match("/movie/5/edit")
	require.True(t, ok)
	assert.Equal(t, "Crud", rd.Value(ControllerKey))
	assert.Equal(t, "edit", rd.Value(ActionKey))
	assert.Equal(t, "5", rd.Value("id"))

	model, ok := rd.TokenString(ModelTypeToken)
	assert.True(t, ok)
	assert.Equal(t, "Movie", model)
	assert.Equal(t, "Movie.details", rd.Route.Name)
}

func TestRouter_FirstMatchWins(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.Add(
		mustRoute(t, "Movie.script", "Movie/{filename}.js", map[string]string{ActionKey: "Script"}, nil),
		mustRoute(t, "Movie.create", "Movie/{action}", map[string]string{ActionKey: "Create"}, nil),
	))

	rd, ok := router.Match("/Movie/crud.js")
	require.True(t, ok)
	assert.Equal(t, "Script", rd.Value(ActionKey))
	assert.Equal(t, "crud", rd.Value("filename"))

	rd, ok = router.Match("/Movie/Create")
	require.True(t, ok)
	assert.Equal(t, "Create", rd.Value(ActionKey))
}

func TestRouter_NoMatch(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.Add(mustRoute(t, "Movie.index", "Movie", nil, nil)))

	_, ok := router.Match("/Country")
	assert.False(t, ok)
}

func TestRouter_DuplicateName(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.Add(mustRoute(t, "Movie.index", "Movie", nil, nil)))

	err := router.Add(
		mustRoute(t, "Country.index", "Country", nil, nil),
		mustRoute(t, "movie.INDEX", "Movie", nil, nil),
	)
	require.Error(t, err)
	assert.True(t, scerrors.HasCode(err, scerrors.RegistrationErrorCode))
	assert.Len(t, router.Routes(), 1, "a failed batch adds nothing")
}

func TestRouter_URL(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.Add(mustRoute(t, "Movie.edit", "Movie/{id}/{action}", nil, nil)))

	url, err := router.URL("Movie.edit", map[string]string{"id": "9", "action": "Edit"})
	require.NoError(t, err)
	assert.Equal(t, "/Movie/9/Edit", url)

	_, err = router.URL("Movie.missing", nil)
	assert.Error(t, err)
}

func TestRouteData_TokenAbsence(t *testing.T) {
	var rd RouteData
	_, ok := rd.Token(CrudTypeToken)
	assert.False(t, ok)
	assert.Equal(t, "", rd.Value(ActionKey))

	rd = RouteData{DataTokens: map[string]any{ModelTypeToken: nil, CrudTypeToken: 3}}
	_, ok = rd.Token(ModelTypeToken)
	assert.False(t, ok, "nil tokens count as absent")
	_, ok = rd.TokenString(CrudTypeToken)
	assert.False(t, ok, "non-string tokens are not strings")
}
