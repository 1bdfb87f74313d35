package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/toyz/scaffold/pkg/scaffold/model"
)

// Memory is an in-process Repository. It stores copies, so callers never
// share entity memory with the store.
type Memory[T any] struct {
	mu     sync.RWMutex
	d      *model.Descriptor
	items  map[any]T
	order  []any
	nextID int64
}

// NewMemory creates an empty store for the CRUD type d. d must describe T.
func NewMemory[T any](d *model.Descriptor) *Memory[T] {
	return &Memory[T]{
		d:     d,
		items: make(map[any]T),
	}
}

func (m *Memory[T]) keyOf(entity *T) (any, error) {
	key, ok := m.d.KeyOf(entity)
	if !ok {
		return nil, fmt.Errorf("%s: entity has no key", m.d.Name())
	}
	return key, nil
}

// List returns all entities in insertion order
func (m *Memory[T]) List(ctx context.Context) ([]*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*T, 0, len(m.order))
	for _, key := range m.order {
		item := m.items[key]
		out = append(out, &item)
	}
	return out, nil
}

// Find returns the entity with key
func (m *Memory[T]) Find(ctx context.Context, key any) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

// Insert stores entity. Zero keys are generated; an existing key is a conflict.
func (m *Memory[T]) Insert(ctx context.Context, entity *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ptr, ok := m.d.Model().Pointer(entity, m.d.Key().Name)
	if !ok {
		return fmt.Errorf("%s: entity has no key", m.d.Name())
	}
	if _, err := assignKey(ptr, func() int64 { m.nextID++; return m.nextID }); err != nil {
		return err
	}

	key, err := m.keyOf(entity)
	if err != nil {
		return err
	}
	if _, exists := m.items[key]; exists {
		return ErrConflict
	}
	if n, ok := asInt64(key); ok && n > m.nextID {
		m.nextID = n
	}

	m.items[key] = *entity
	m.order = append(m.order, key)
	return nil
}

// Update replaces the stored entity. A missing entity is a conflict: it was
// removed after the caller read it.
func (m *Memory[T]) Update(ctx context.Context, entity *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, err := m.keyOf(entity)
	if err != nil {
		return err
	}
	if _, exists := m.items[key]; !exists {
		return ErrConflict
	}
	m.items[key] = *entity
	return nil
}

// Delete removes the entity with key
func (m *Memory[T]) Delete(ctx context.Context, key any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; !exists {
		return ErrNotFound
	}
	delete(m.items, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func asInt64(key any) (int64, bool) {
	switch k := key.(type) {
	case int:
		return int64(k), true
	case int32:
		return int64(k), true
	case int64:
		return k, true
	case uint:
		return int64(k), true
	case uint64:
		return int64(k), true
	}
	return 0, false
}
