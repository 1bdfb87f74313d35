package selector

import (
	"strings"

	"github.com/toyz/scaffold/pkg/scaffold/routing"
)

// Built-in constraint orders
const (
	HTTPMethodOrder = 100
	ModelTypeOrder  = 200
)

// Request is what the selector knows about the incoming request
type Request struct {
	Method string
	Route  routing.RouteData
}

// ConstraintContext is passed to every constraint evaluation
type ConstraintContext struct {
	Request    Request
	Candidates []*ActionDescriptor
	Current    *ActionDescriptor
}

// Constraint narrows the actions that may serve a request
type Constraint interface {
	Order() int
	Accept(ctx *ConstraintContext) bool
}

type funcConstraint struct {
	order  int
	accept func(*ConstraintContext) bool
}

func (c funcConstraint) Order() int                         { return c.order }
func (c funcConstraint) Accept(ctx *ConstraintContext) bool { return c.accept(ctx) }

// NewConstraint builds a constraint from a predicate
func NewConstraint(order int, accept func(*ConstraintContext) bool) Constraint {
	return funcConstraint{order: order, accept: accept}
}

// HTTPMethodConstraint accepts requests using one of Methods
type HTTPMethodConstraint struct {
	Methods []string
}

// Methods builds an HTTPMethodConstraint
func Methods(methods ...string) *HTTPMethodConstraint {
	return &HTTPMethodConstraint{Methods: methods}
}

func (c *HTTPMethodConstraint) Order() int { return HTTPMethodOrder }

func (c *HTTPMethodConstraint) Accept(ctx *ConstraintContext) bool {
	if len(c.Methods) == 0 {
		return true
	}
	for _, m := range c.Methods {
		if strings.EqualFold(m, ctx.Request.Method) {
			return true
		}
	}
	return false
}

// ModelTypeConstraint accepts requests whose requested model is Model
type ModelTypeConstraint struct {
	Model string
}

func (c *ModelTypeConstraint) Order() int { return ModelTypeOrder }

func (c *ModelTypeConstraint) Accept(ctx *ConstraintContext) bool {
	requested, ok := RequestedModel(ctx.Request.Route)
	return ok && requested == c.Model
}
