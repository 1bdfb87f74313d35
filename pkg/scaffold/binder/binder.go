package binder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/toyz/scaffold/internal/metrics"
	"github.com/toyz/scaffold/internal/utils"
	"github.com/toyz/scaffold/pkg/scaffold/model"
	"github.com/toyz/scaffold/pkg/scaffold/routing"
)

// Field names the binder serves
const (
	SettingsField = "settings"
	ModelField    = "model"
)

// DefaultMaxBodyBytes bounds request bodies read for binding
const DefaultMaxBodyBytes int64 = 4 << 20

// Source says where the values of a binding come from
type Source int

const (
	SourceBody Source = iota
	SourceForm
	SourceQuery
)

// Context describes one binding request
type Context struct {
	// Ctx is the request context; cancellation aborts the body read
	Ctx       context.Context
	FieldName string
	Source    Source
	Route     routing.RouteData

	// ContentType and Body are used for SourceBody
	ContentType string
	Body        io.Reader

	// Values holds form or query values for SourceForm and SourceQuery
	Values map[string][]string

	// ModelName is the supplied model name for the settings field
	ModelName string

	// KeyValue is the raw key from the route; when set it overrides the
	// key property of the bound entity
	KeyValue string

	// State receives binding and validation errors; created when nil
	State *ModelState
}

// Result is the outcome of a binding. Set is false when nothing was bound.
type Result struct {
	Set   bool
	Value any
}

// metadata is built once per model and reused
type metadata struct {
	descriptor *model.Descriptor
	properties map[string]model.PropertyMeta
}

// Option configures an EntityBinder
type Option func(*EntityBinder)

// WithMetrics records binding outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *EntityBinder) { b.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(b *EntityBinder) { b.logger = l }
}

// WithMaxBodyBytes bounds the request body size
func WithMaxBodyBytes(n int64) Option {
	return func(b *EntityBinder) { b.maxBody = n }
}

// WithValidator replaces the default validator
func WithValidator(v *validator.Validate) Option {
	return func(b *EntityBinder) { b.validate = v }
}

// EntityBinder materialises CRUD settings and entities from request data
type EntityBinder struct {
	registry *model.Registry
	cache    *utils.Cache[string, *metadata]
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *slog.Logger
	maxBody  int64
}

// New creates a binder resolving CRUD types from registry
func New(registry *model.Registry, opts ...Option) *EntityBinder {
	b := &EntityBinder{
		registry: registry,
		cache:    utils.NewCache[string, *metadata](),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   slog.Default(),
		maxBody:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bind binds the settings or model field. Unknown models, empty bodies and
// undecodable payloads leave the result unset; the latter also record a
// ModelState error. Only a failed body read is returned as an error.
func (b *EntityBinder) Bind(bc *Context) (Result, error) {
	if bc.State == nil {
		bc.State = NewModelState()
	}
	if bc.Ctx == nil {
		bc.Ctx = context.Background()
	}

	switch strings.ToLower(bc.FieldName) {
	case SettingsField:
		return b.bindSettings(bc), nil
	case ModelField:
		return b.bindModel(bc)
	default:
		return Result{}, nil
	}
}

func (b *EntityBinder) bindSettings(bc *Context) Result {
	name := bc.ModelName
	if name == "" {
		if d, ok := b.registry.FromRoute(bc.Route); ok {
			return Result{Set: true, Value: d}
		}
		return Result{}
	}
	d, ok := b.registry.ByName(name)
	if !ok {
		return Result{}
	}
	return Result{Set: true, Value: d}
}

func (b *EntityBinder) bindModel(bc *Context) (Result, error) {
	d, ok := b.registry.FromRoute(bc.Route)
	if !ok {
		return Result{}, nil
	}
	meta := b.metadataFor(d)

	var (
		res Result
		err error
	)
	if bc.Source == SourceBody {
		res, err = b.bindBody(bc, meta)
	} else {
		res = b.bindValues(bc, meta)
	}
	if err != nil {
		return Result{}, err
	}

	switch {
	case !res.Set:
		b.metrics.Bound(d.Name(), metrics.BindingUnset)
	case !bc.State.IsValid():
		b.metrics.Bound(d.Name(), metrics.BindingInvalid)
	default:
		b.metrics.Bound(d.Name(), metrics.BindingBound)
	}
	return res, nil
}

func (b *EntityBinder) metadataFor(d *model.Descriptor) *metadata {
	return b.cache.GetOrCreate(d.Name(), func() *metadata {
		m := &metadata{
			descriptor: d,
			properties: make(map[string]model.PropertyMeta),
		}
		for _, p := range d.Model().Properties() {
			m.properties[strings.ToLower(p.Name)] = p
		}
		return m
	})
}

func (b *EntityBinder) bindBody(bc *Context, meta *metadata) (Result, error) {
	body, err := readBody(bc.Ctx, bc.Body, b.maxBody)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{}, err
		}
		bc.State.AddError("", err.Error())
		return Result{}, nil
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return Result{}, nil
	}

	var payload map[string]any
	if isXML(bc.ContentType) {
		payload, err = xmlPayload(body)
	} else {
		payload, err = jsonPayload(body)
	}
	if err != nil {
		b.logger.Debug("payload not bound", slog.String("model", meta.descriptor.Name()), slog.String("error", err.Error()))
		bc.State.AddError("", err.Error())
		return Result{}, nil
	}

	entity := meta.descriptor.Model().New()
	for name, raw := range payload {
		b.assign(bc.State, meta, entity, name, raw)
	}
	if bc.KeyValue != "" {
		b.assign(bc.State, meta, entity, meta.descriptor.Key().Name, bc.KeyValue)
	}
	b.validateEntity(bc.State, entity)
	return Result{Set: true, Value: entity}, nil
}

func (b *EntityBinder) bindValues(bc *Context, meta *metadata) Result {
	entity := meta.descriptor.Model().New()
	for name, values := range bc.Values {
		if len(values) == 0 {
			continue
		}
		b.assign(bc.State, meta, entity, name, values[0])
	}
	if bc.KeyValue != "" {
		b.assign(bc.State, meta, entity, meta.descriptor.Key().Name, bc.KeyValue)
	}
	b.validateEntity(bc.State, entity)
	return Result{Set: true, Value: entity}
}

// assign decodes raw into the named property; unknown names are ignored
func (b *EntityBinder) assign(state *ModelState, meta *metadata, entity any, name string, raw any) {
	prop, ok := meta.properties[strings.ToLower(name)]
	if !ok {
		return
	}
	target, ok := meta.descriptor.Model().Pointer(entity, prop.Name)
	if !ok {
		return
	}
	if err := decodeValue(raw, target); err != nil {
		state.AddError(prop.Name, fmt.Sprintf("The value '%v' is not valid for %s.", raw, prop.Name))
	}
}

func decodeValue(raw, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			emptyStringToZeroHook,
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeHookFunc("2006-01-02T15:04:05Z07:00"),
		),
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           target,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// emptyStringToZeroHook treats an empty form or XML value as the zero value
func emptyStringToZeroHook(from, to reflect.Type, data any) (any, error) {
	if s, ok := data.(string); ok && s == "" && to.Kind() != reflect.String {
		return reflect.Zero(to).Interface(), nil
	}
	return data, nil
}

func (b *EntityBinder) validateEntity(state *ModelState, entity any) {
	err := b.validate.Struct(entity)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			state.AddError(fe.StructField(), validationMessage(fe))
		}
		return
	}
	var invalid *validator.InvalidValidationError
	if !errors.As(err, &invalid) {
		state.AddError("", err.Error())
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "max":
		return fmt.Sprintf("The field %s must be at most %s.", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("The field %s must be at least %s.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The field %s is invalid (%s).", fe.Field(), fe.Tag())
	}
}
