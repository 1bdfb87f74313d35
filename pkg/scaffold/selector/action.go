package selector

import (
	"sync"
	"sync/atomic"

	"github.com/toyz/scaffold/pkg/scaffold/model"
)

// ActionDescriptor is a statically known action that may serve a request
type ActionDescriptor struct {
	// ID is unique within a collection, e.g. "Crud[Movie, int].Edit"
	ID string
	// DisplayName is used in diagnostics and ambiguity errors
	DisplayName string
	// RouteValues are the values a conventional route must carry, e.g. controller and action
	RouteValues map[string]string
	// AttributeRoute is the route name of an attribute-routed action. Attribute-routed
	// actions are matched by their own route and never enter the candidate cache.
	AttributeRoute string
	// Constraints are evaluated in ascending order bands
	Constraints []Constraint
	// Controller is nil for actions that are not controller actions
	Controller *model.ControllerInfo
}

// IsAttributeRouted reports whether the action owns an attribute route
func (a *ActionDescriptor) IsAttributeRouted() bool {
	return a.AttributeRoute != ""
}

func (a *ActionDescriptor) String() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.ID
}

// Collection is an immutable snapshot of the known actions
type Collection struct {
	Items   []*ActionDescriptor
	Version int
}

// CollectionProvider supplies the current action collection
type CollectionProvider interface {
	Actions() *Collection
}

// ActionCollection is a CollectionProvider that bumps its version on every change
type ActionCollection struct {
	mu      sync.Mutex
	current atomic.Pointer[Collection]
}

// NewActionCollection creates an empty collection at version 0
func NewActionCollection() *ActionCollection {
	c := &ActionCollection{}
	c.current.Store(&Collection{})
	return c
}

// Actions returns the current snapshot
func (c *ActionCollection) Actions() *Collection {
	return c.current.Load()
}

// Add publishes a new snapshot containing actions
func (c *ActionCollection) Add(actions ...*ActionDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.current.Load()
	items := make([]*ActionDescriptor, 0, len(old.Items)+len(actions))
	items = append(items, old.Items...)
	items = append(items, actions...)
	c.current.Store(&Collection{Items: items, Version: old.Version + 1})
}
