package binder

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/scaffold/internal/metrics"
	"github.com/toyz/scaffold/pkg/scaffold/model"
	"github.com/toyz/scaffold/pkg/scaffold/routing"
)

type film struct {
	ID     int
	Title  string `validate:"required"`
	Year   int    `validate:"omitempty,min=1888"`
	Rating float64
	Ref    uuid.UUID
}

func filmSchema() *model.Schema[film] {
	return model.Define("Film",
		model.Prop("ID", func(f *film) *int { return &f.ID }),
		model.Prop("Title", func(f *film) *string { return &f.Title }),
		model.Prop("Year", func(f *film) *int { return &f.Year }),
		model.Prop("Rating", func(f *film) *float64 { return &f.Rating }),
		model.Prop("Ref", func(f *film) *uuid.UUID { return &f.Ref }),
	)
}

func newTestBinder(t *testing.T, opts ...Option) (*EntityBinder, *model.Descriptor) {
	t.Helper()
	reg := model.NewRegistry()
	d, err := model.NewDescriptor(filmSchema(), "ID", model.ControllerInfo{})
	require.NoError(t, err)
	require.NoError(t, reg.Add(d))
	return New(reg, opts...), d
}

func filmRoute(d *model.Descriptor) routing.RouteData {
	return routing.RouteData{DataTokens: map[string]any{routing.ModelTypeToken: d.Name(), routing.CrudTypeToken: d}}
}

func bodyContext(d *model.Descriptor, contentType, body string) *Context {
	return &Context{
		Ctx:         context.Background(),
		FieldName:   ModelField,
		Source:      SourceBody,
		Route:       filmRoute(d),
		ContentType: contentType,
		Body:        strings.NewReader(body),
	}
}

func TestBind_XMLEnvelopeMatchesJSONEnvelope(t *testing.T) {
	b, d := newTestBinder(t)

	xmlRes, err := b.Bind(bodyContext(d, "application/xml", `<Root><data><Title>X</Title></data></Root>`))
	require.NoError(t, err)
	require.True(t, xmlRes.Set)
	assert.Equal(t, "X", xmlRes.Value.(*film).Title)

	jsonRes, err := b.Bind(bodyContext(d, "application/json", `{"data":{"Title":"X"}}`))
	require.NoError(t, err)
	require.True(t, jsonRes.Set)

	assert.Equal(t, xmlRes.Value, jsonRes.Value)
}

func TestBind_XMLVariants(t *testing.T) {
	b, d := newTestBinder(t)

	tests := []struct {
		name        string
		contentType string
		body        string
		want        film
	}{
		{"root named data", "text/xml", `<data><Title>Heat</Title><Year>1995</Year></data>`, film{Title: "Heat", Year: 1995}},
		{"case-insensitive envelope", "application/problem+xml; charset=utf-8", `<Envelope><DATA><title>Heat</title><rating>7.5</rating></DATA></Envelope>`, film{Title: "Heat", Rating: 7.5}},
		{"unknown elements ignored", "application/xml", `<Root><data><Title>Heat</Title><Studio>WB</Studio></data><meta>1</meta></Root>`, film{Title: "Heat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc := bodyContext(d, tt.contentType, tt.body)
			res, err := b.Bind(bc)
			require.NoError(t, err)
			require.True(t, res.Set)
			assert.Equal(t, &tt.want, res.Value)
			assert.True(t, bc.State.IsValid(), "errors: %v", bc.State.Errors())
		})
	}
}

func TestBind_JSONBody(t *testing.T) {
	b, d := newTestBinder(t)
	ref := uuid.New()

	bc := bodyContext(d, "application/json; charset=utf-8", `{"id":3,"title":"Heat","Year":"1995","Rating":8,"Ref":"`+ref.String()+`"}`)
	res, err := b.Bind(bc)
	require.NoError(t, err)
	require.True(t, res.Set)
	assert.Equal(t, &film{ID: 3, Title: "Heat", Year: 1995, Rating: 8, Ref: ref}, res.Value)
	assert.True(t, bc.State.IsValid())
}

func TestBind_JSONDataPropertyIsNotAlwaysEnvelope(t *testing.T) {
	b, d := newTestBinder(t)

	res, err := b.Bind(bodyContext(d, "", `{"data":{"Title":"inner"},"Title":"outer"}`))
	require.NoError(t, err)
	require.True(t, res.Set)
	assert.Equal(t, "outer", res.Value.(*film).Title)
}

func TestBind_EmptyBodyLeavesResultUnset(t *testing.T) {
	b, d := newTestBinder(t)

	for _, ct := range []string{"application/json", "application/xml", ""} {
		for _, body := range []string{"", "   \n"} {
			bc := bodyContext(d, ct, body)
			res, err := b.Bind(bc)
			require.NoError(t, err)
			assert.False(t, res.Set)
			assert.Nil(t, res.Value)
			assert.True(t, bc.State.IsValid())
		}
	}

	bc := bodyContext(d, "application/json", "")
	bc.Body = nil
	res, err := b.Bind(bc)
	require.NoError(t, err)
	assert.False(t, res.Set)
}

func TestBind_MalformedPayloads(t *testing.T) {
	b, d := newTestBinder(t)

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"broken json", "application/json", `{"Title":`},
		{"json array", "application/json", `[{"Title":"X"}]`},
		{"broken xml", "application/xml", `<Root><data>`},
		{"xml without data", "application/xml", `<Root><Title>X</Title></Root>`},
		{"unsupported format", "text/plain", `Title=X`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc := bodyContext(d, tt.contentType, tt.body)
			res, err := b.Bind(bc)
			require.NoError(t, err)
			assert.False(t, res.Set)
			assert.False(t, bc.State.IsValid())
			assert.NotEmpty(t, bc.State.For(""))
		})
	}
}

func TestBind_InvalidValueRecordsPropertyError(t *testing.T) {
	b, d := newTestBinder(t)

	bc := bodyContext(d, "application/json", `{"Title":"Heat","Year":"soon"}`)
	res, err := b.Bind(bc)
	require.NoError(t, err)
	require.True(t, res.Set)
	assert.Equal(t, "Heat", res.Value.(*film).Title)
	assert.Equal(t, []string{"Year"}, bc.State.Keys())
}

func TestBind_BodyTooLarge(t *testing.T) {
	b, d := newTestBinder(t, WithMaxBodyBytes(8))

	bc := bodyContext(d, "application/json", `{"Title":"a long title"}`)
	res, err := b.Bind(bc)
	require.NoError(t, err)
	assert.False(t, res.Set)
	assert.Contains(t, bc.State.For("")[0], "exceeds")
}

func TestBind_CancelledContext(t *testing.T) {
	b, d := newTestBinder(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bc := bodyContext(d, "application/json", `{"Title":"X"}`)
	bc.Ctx = ctx
	res, err := b.Bind(bc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, res.Set)
}

func TestBind_FormValues(t *testing.T) {
	m := metrics.New()
	b, d := newTestBinder(t, WithMetrics(m))

	form := url.Values{"ID": {"4"}, "title": {"Ran"}, "Year": {""}, "Rating": {"8.2"}, "csrf": {"x"}}
	bc := &Context{FieldName: "Model", Source: SourceForm, Route: filmRoute(d), Values: form}

	res, err := b.Bind(bc)
	require.NoError(t, err)
	require.True(t, res.Set)
	assert.Equal(t, &film{ID: 4, Title: "Ran", Rating: 8.2}, res.Value)
	assert.True(t, bc.State.IsValid())
}

func TestBind_RouteKeyOverridesPayloadKey(t *testing.T) {
	b, d := newTestBinder(t)

	bc := bodyContext(d, "application/json", `{"data":{"ID":1,"Title":"Ran"}}`)
	bc.KeyValue = "12"

	res, err := b.Bind(bc)
	require.NoError(t, err)
	require.True(t, res.Set)
	assert.Equal(t, 12, res.Value.(*film).ID)

	bc = &Context{FieldName: ModelField, Source: SourceForm, Route: filmRoute(d), Values: url.Values{"Title": {"Ran"}}, KeyValue: "x"}
	_, err = b.Bind(bc)
	require.NoError(t, err)
	assert.Equal(t, []string{"The value 'x' is not valid for ID."}, bc.State.For("ID"))
}

func TestBind_FormValidationState(t *testing.T) {
	b, d := newTestBinder(t)

	bc := &Context{
		FieldName: ModelField,
		Source:    SourceQuery,
		Route:     filmRoute(d),
		Values:    url.Values{"Year": {"1800"}},
	}

	res, err := b.Bind(bc)
	require.NoError(t, err)
	require.True(t, res.Set, "invalid entities are still bound")
	assert.Equal(t, []string{"Title", "Year"}, bc.State.Keys())
	assert.Equal(t, []string{"The Title field is required."}, bc.State.For("title"))
}

func TestBind_UnknownModelLeavesResultUnset(t *testing.T) {
	b, _ := newTestBinder(t)

	bc := &Context{
		FieldName: ModelField,
		Source:    SourceBody,
		Route:     routing.RouteData{DataTokens: map[string]any{routing.ModelTypeToken: "Country"}},
		Body:      strings.NewReader(`{"Title":"X"}`),
	}
	res, err := b.Bind(bc)
	require.NoError(t, err)
	assert.False(t, res.Set)
}

func TestBind_Settings(t *testing.T) {
	b, d := newTestBinder(t)

	res, err := b.Bind(&Context{FieldName: SettingsField, ModelName: "film"})
	require.NoError(t, err)
	require.True(t, res.Set)
	assert.Same(t, d, res.Value)

	res, err = b.Bind(&Context{FieldName: SettingsField, ModelName: "Country"})
	require.NoError(t, err)
	assert.False(t, res.Set)

	res, err = b.Bind(&Context{FieldName: SettingsField, Route: filmRoute(d)})
	require.NoError(t, err)
	assert.True(t, res.Set)

	res, err = b.Bind(&Context{FieldName: "other", ModelName: "Film"})
	require.NoError(t, err)
	assert.False(t, res.Set)
}

func TestBind_MetadataBuiltOnce(t *testing.T) {
	b, d := newTestBinder(t)

	first := b.metadataFor(d)
	second := b.metadataFor(d)
	assert.Same(t, first, second)
	assert.Equal(t, 1, b.cache.Size())
}

func TestModelState(t *testing.T) {
	s := NewModelState()
	assert.True(t, s.IsValid())

	s.AddError("Title", "required")
	s.AddError("Title", "too short")
	assert.False(t, s.IsValid())
	assert.Equal(t, []string{"required", "too short"}, s.For("TITLE"))

	errs := s.Errors()
	errs["Title"][0] = "changed"
	assert.Equal(t, "required", s.For("Title")[0])

	var nilState *ModelState
	assert.True(t, nilState.IsValid())
	assert.Nil(t, nilState.Errors())
}
