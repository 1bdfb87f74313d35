package model

import (
	"fmt"
	"sort"
	"strings"
)

// PropertyMeta describes one declared model property
type PropertyMeta struct {
	// Name is the property name used in forms, payloads and route values
	Name string
	// Column is the storage column; defaults to the lower-cased name
	Column string
	// Caption is the fallback display caption; defaults to Name
	Caption string
	// Order is the display order (default 0); ties keep declaration order
	Order int
	// Visible is false for properties suppressed from generated views
	Visible bool
	// CustomView marks properties rendered through a per-property view
	CustomView bool
	// Type is the Go type name of the property value, e.g. "int" or "uuid.UUID"
	Type string
	// Index is the declaration index
	Index int
}

// FieldOption configures a declared property
type FieldOption func(*PropertyMeta)

// Order sets the display order
func Order(order int) FieldOption {
	return func(m *PropertyMeta) { m.Order = order }
}

// Hidden suppresses the property from generated views
func Hidden() FieldOption {
	return func(m *PropertyMeta) { m.Visible = false }
}

// CustomView renders the property through the "<Model>.<Property>" view
func CustomView() FieldOption {
	return func(m *PropertyMeta) { m.CustomView = true }
}

// Caption sets the fallback caption used when no translation exists
func Caption(caption string) FieldOption {
	return func(m *PropertyMeta) { m.Caption = caption }
}

// Column overrides the storage column name
func Column(column string) FieldOption {
	return func(m *PropertyMeta) { m.Column = column }
}

// Field is a typed property of T
type Field[T any] interface {
	Meta() PropertyMeta
	// Get returns the property value of entity
	Get(entity *T) any
	// Ptr returns a pointer to the property value of entity
	Ptr(entity *T) any

	withIndex(i int) Field[T]
}

type prop[T, V any] struct {
	meta     PropertyMeta
	accessor func(*T) *V
}

// Prop declares a property of T backed by accessor
func Prop[T, V any](name string, accessor func(*T) *V, opts ...FieldOption) Field[T] {
	var zero V
	meta := PropertyMeta{
		Name:    name,
		Column:  strings.ToLower(name),
		Caption: name,
		Visible: true,
		Type:    fmt.Sprintf("%T", zero),
	}
	for _, opt := range opts {
		opt(&meta)
	}
	return &prop[T, V]{meta: meta, accessor: accessor}
}

func (p *prop[T, V]) Meta() PropertyMeta { return p.meta }
func (p *prop[T, V]) Get(entity *T) any  { return *p.accessor(entity) }
func (p *prop[T, V]) Ptr(entity *T) any  { return p.accessor(entity) }

func (p *prop[T, V]) withIndex(i int) Field[T] {
	c := *p
	c.meta.Index = i
	return &c
}

// Model is the type-erased view of a Schema used by descriptors, binders and views.
// Entities passed in are always *T of the underlying schema.
type Model interface {
	Name() string
	// New returns a zero entity as *T
	New() any
	// Properties returns all properties ordered by (Order, declaration index)
	Properties() []PropertyMeta
	Property(name string) (PropertyMeta, bool)
	Value(entity any, property string) (any, bool)
	Pointer(entity any, property string) (any, bool)
}

// Schema is the statically declared metadata of model type T
type Schema[T any] struct {
	name    string
	fields  []Field[T]
	byName  map[string]int
	ordered []PropertyMeta
}

// Define declares the schema of T under the given model name.
// Duplicate property names (case-insensitive) panic: schemas are static declarations.
func Define[T any](name string, fields ...Field[T]) *Schema[T] {
	s := &Schema[T]{
		name:   name,
		byName: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		f = f.withIndex(i)
		key := strings.ToLower(f.Meta().Name)
		if _, dup := s.byName[key]; dup {
			panic(fmt.Sprintf("model %s: property %s declared twice", name, f.Meta().Name))
		}
		s.byName[key] = i
		s.fields = append(s.fields, f)
		s.ordered = append(s.ordered, f.Meta())
	}
	sort.SliceStable(s.ordered, func(i, j int) bool {
		return s.ordered[i].Order < s.ordered[j].Order
	})
	return s
}

// Name returns the model name
func (s *Schema[T]) Name() string { return s.name }

// New returns a new zero *T
func (s *Schema[T]) New() any { return new(T) }

// Fields returns the typed fields in declaration order
func (s *Schema[T]) Fields() []Field[T] { return s.fields }

// Field looks a field up by name (case-insensitive)
func (s *Schema[T]) Field(name string) (Field[T], bool) {
	i, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Properties returns the property metadata in display order
func (s *Schema[T]) Properties() []PropertyMeta {
	return append([]PropertyMeta(nil), s.ordered...)
}

// Property returns the metadata of one property
func (s *Schema[T]) Property(name string) (PropertyMeta, bool) {
	f, ok := s.Field(name)
	if !ok {
		return PropertyMeta{}, false
	}
	return f.Meta(), true
}

// Value returns a property value of entity
func (s *Schema[T]) Value(entity any, property string) (any, bool) {
	e, ok := entity.(*T)
	if !ok || e == nil {
		return nil, false
	}
	f, ok := s.Field(property)
	if !ok {
		return nil, false
	}
	return f.Get(e), true
}

// Pointer returns a pointer to a property value of entity
func (s *Schema[T]) Pointer(entity any, property string) (any, bool) {
	e, ok := entity.(*T)
	if !ok || e == nil {
		return nil, false
	}
	f, ok := s.Field(property)
	if !ok {
		return nil, false
	}
	return f.Ptr(e), true
}

// Names returns the declared property names in declaration order
func Names(m Model) []string {
	props := m.Properties()
	sort.SliceStable(props, func(i, j int) bool { return props[i].Index < props[j].Index })
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	return names
}
