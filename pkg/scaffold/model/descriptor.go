package model

import (
	"fmt"
	"regexp"
	"sync/atomic"

	scerrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/pkg/scaffold"
)

// GenericControllerName is the controller route value of the library's default controller
const GenericControllerName = "Crud"

// ControllerInfo describes the controller serving a CRUD type
type ControllerInfo struct {
	// Name is the "controller" route value
	Name string
	// TypeName is a display name, e.g. "Crud[Movie, int]"
	TypeName string
	// TypeArguments are the model and key type names the controller was instantiated for
	TypeArguments []string
	// Generic is true for the library's default controller
	Generic bool
}

// GenericController returns the info of the default controller instantiated for model and key type
func GenericController(modelName, keyType string) ControllerInfo {
	return ControllerInfo{
		Name:          GenericControllerName,
		TypeName:      fmt.Sprintf("%s[%s, %s]", GenericControllerName, modelName, keyType),
		TypeArguments: []string{modelName, keyType},
		Generic:       true,
	}
}

// HasTypeArgument reports whether name is one of the controller's type arguments
func (c ControllerInfo) HasTypeArgument(name string) bool {
	for _, arg := range c.TypeArguments {
		if arg == name {
			return true
		}
	}
	return false
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Descriptor is one configured CRUD type. It is immutable once created.
type Descriptor struct {
	model      Model
	key        PropertyMeta
	keyParser  scaffold.KeyParser
	controller ControllerInfo

	routes atomic.Pointer[RouteSet]
}

// NewDescriptor validates the model and key and builds the descriptor.
// A key that is not a declared property, or whose type cannot be parsed
// from a route value, fails here rather than at request time.
func NewDescriptor(m Model, key string, controller ControllerInfo) (*Descriptor, error) {
	if m == nil {
		return nil, scerrors.ConfigurationError("", "model is required")
	}
	if !identifier.MatchString(m.Name()) {
		return nil, scerrors.ConfigurationError(m.Name(), "model name must be an identifier").
			WithSuggestion("use letters, digits and underscores only")
	}

	meta, ok := m.Property(key)
	if !ok {
		return nil, scerrors.MissingKeyProperty(m.Name(), key, Names(m))
	}

	parser, ok := scaffold.GetKeyParser(meta.Type)
	if !ok {
		return nil, scerrors.ConfigurationError(m.Name(), fmt.Sprintf("key property '%s' has unsupported type %s", meta.Name, meta.Type)).
			WithContext("key", meta.Name)
	}

	if controller.Name == "" {
		controller = GenericController(m.Name(), meta.Type)
	}

	return &Descriptor{
		model:      m,
		key:        meta,
		keyParser:  parser,
		controller: controller,
	}, nil
}

// Name returns the model name
func (d *Descriptor) Name() string { return d.model.Name() }

// Model returns the model schema
func (d *Descriptor) Model() Model { return d.model }

// Key returns the key property metadata
func (d *Descriptor) Key() PropertyMeta { return d.key }

// KeyType returns the key property's type name
func (d *Descriptor) KeyType() string { return d.key.Type }

// Controller returns the controller serving this CRUD type
func (d *Descriptor) Controller() ControllerInfo { return d.controller }

// IsGeneric reports whether the default controller serves this CRUD type
func (d *Descriptor) IsGeneric() bool { return d.controller.Generic }

// ParseKey converts a raw route value into a key value
func (d *Descriptor) ParseKey(raw string) (any, error) {
	v, err := d.keyParser(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s key %q: %w", d.Name(), raw, err)
	}
	return v, nil
}

// KeyOf returns the key value of entity
func (d *Descriptor) KeyOf(entity any) (any, bool) {
	return d.model.Value(entity, d.key.Name)
}

// Routes returns the descriptor's route set, generating it on first use.
// Concurrent first calls may both generate; the first stored set wins.
func (d *Descriptor) Routes() *RouteSet {
	if rs := d.routes.Load(); rs != nil {
		return rs
	}
	d.routes.CompareAndSwap(nil, newRouteSet(d))
	return d.routes.Load()
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s(%s %s)", d.Name(), d.key.Name, d.key.Type)
}
