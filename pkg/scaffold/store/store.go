package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no entity has the requested key
	ErrNotFound = errors.New("entity not found")
	// ErrConflict is returned when a write collides with another write
	ErrConflict = errors.New("entity was modified or removed concurrently")
)

// Repository persists entities of type T
type Repository[T any] interface {
	List(ctx context.Context) ([]*T, error)
	Find(ctx context.Context, key any) (*T, error)
	// Insert stores entity, assigning a key when its key is the zero value
	Insert(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, key any) error
}

// assignKey sets a generated key through ptr when it holds the zero value.
// next supplies integer keys. float64 keys must be supplied by the caller.
func assignKey(ptr any, next func() int64) (bool, error) {
	switch k := ptr.(type) {
	case *int:
		if *k == 0 {
			*k = int(next())
			return true, nil
		}
	case *int32:
		if *k == 0 {
			*k = int32(next())
			return true, nil
		}
	case *int64:
		if *k == 0 {
			*k = next()
			return true, nil
		}
	case *uint:
		if *k == 0 {
			*k = uint(next())
			return true, nil
		}
	case *uint64:
		if *k == 0 {
			*k = uint64(next())
			return true, nil
		}
	case *string:
		if *k == "" {
			*k = uuid.NewString()
			return true, nil
		}
	case *uuid.UUID:
		if *k == uuid.Nil {
			*k = uuid.New()
			return true, nil
		}
	case *float64:
		if *k == 0 {
			return false, fmt.Errorf("float64 keys are never generated and must be supplied")
		}
	default:
		return false, fmt.Errorf("cannot generate keys of type %T", ptr)
	}
	return false, nil
}

// isGeneratedInteger reports whether the database generates keys of this kind
func isGeneratedInteger(ptr any) bool {
	switch k := ptr.(type) {
	case *int:
		return *k == 0
	case *int32:
		return *k == 0
	case *int64:
		return *k == 0
	case *uint:
		return *k == 0
	case *uint64:
		return *k == 0
	}
	return false
}
