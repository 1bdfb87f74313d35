package model

import (
	"sort"
	"strings"
	"sync"

	scerrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/pkg/scaffold/routing"
)

type registryKey struct {
	model string
	key   string
}

// Registry holds the configured CRUD types. It is filled at startup and read
// concurrently while serving.
type Registry struct {
	mu     sync.RWMutex
	byKey  map[registryKey]*Descriptor
	byName map[string]*Descriptor
	order  []*Descriptor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byKey:  make(map[registryKey]*Descriptor),
		byName: make(map[string]*Descriptor),
	}
}

// Add registers a descriptor. A second descriptor for the same model and key,
// or for a model name already registered under another key, is rejected.
func (r *Registry) Add(d *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := registryKey{model: d.Name(), key: d.Key().Name}
	if _, exists := r.byKey[k]; exists {
		return scerrors.DuplicateRegistration(d.Name(), d.Key().Name)
	}
	name := strings.ToLower(d.Name())
	if other, exists := r.byName[name]; exists {
		return scerrors.DuplicateRegistration(d.Name(), d.Key().Name).
			WithContext("registered_key", other.Key().Name)
	}

	r.byKey[k] = d
	r.byName[name] = d
	r.order = append(r.order, d)
	return nil
}

// Get returns the descriptor for a model and key property name
func (r *Registry) Get(modelName, key string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byKey[registryKey{model: modelName, key: key}]
	return d, ok
}

// ByName returns the descriptor for a model name (case-insensitive)
func (r *Registry) ByName(modelName string) (*Descriptor, bool) {
	if modelName == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byName[strings.ToLower(modelName)]
	return d, ok
}

// FromRoute resolves the descriptor a matched route refers to: the crudType
// token first, then the modelType token, then a "modelType" route value.
// Any of them may be missing.
func (r *Registry) FromRoute(rd routing.RouteData) (*Descriptor, bool) {
	if v, ok := rd.Token(routing.CrudTypeToken); ok {
		if d, ok := v.(*Descriptor); ok {
			return d, true
		}
	}
	if name, ok := rd.TokenString(routing.ModelTypeToken); ok {
		if d, ok := r.ByName(name); ok {
			return d, true
		}
	}
	return r.ByName(rd.Value(routing.ModelTypeToken))
}

// All returns the descriptors in registration order
func (r *Registry) All() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Descriptor(nil), r.order...)
}

// Names returns the registered model names, sorted
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.Name()
	}
	sort.Strings(names)
	return names
}
