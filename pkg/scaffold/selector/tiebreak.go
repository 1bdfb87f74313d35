package selector

import (
	"github.com/toyz/scaffold/pkg/scaffold/model"
	"github.com/toyz/scaffold/pkg/scaffold/routing"
)

// RequestedModel returns the model name the matched route asks for: the
// modelType token, or the name of the crudType descriptor token.
func RequestedModel(rd routing.RouteData) (string, bool) {
	if name, ok := rd.TokenString(routing.ModelTypeToken); ok {
		return name, true
	}
	if v, ok := rd.Token(routing.CrudTypeToken); ok {
		if d, ok := v.(*model.Descriptor); ok {
			return d.Name(), true
		}
	}
	return "", false
}

// TieBreak narrows candidates that share a route shape to the controller
// instantiated for the requested model. Controllers that are not the generic
// default are kept as distinct user controllers. If nothing survives, the
// input is returned unchanged.
func TieBreak(rd routing.RouteData, candidates []*ActionDescriptor) []*ActionDescriptor {
	requested, hasRequested := RequestedModel(rd)

	var narrowed []*ActionDescriptor
	for _, candidate := range candidates {
		if candidate.Controller == nil {
			continue
		}
		if hasRequested && candidate.Controller.HasTypeArgument(requested) {
			narrowed = append(narrowed, candidate)
			continue
		}
		if !candidate.Controller.Generic {
			narrowed = append(narrowed, candidate)
		}
	}

	if len(narrowed) == 0 {
		return candidates
	}
	return narrowed
}
