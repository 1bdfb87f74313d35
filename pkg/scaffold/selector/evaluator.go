package selector

// EvaluateConstraints returns the candidates acceptable to every applicable
// constraint. Constraints are processed in ascending order bands. Candidates
// that carry a constraint in the current band and accept it are preferred;
// candidates without one are used only when none of the former survive the
// remaining bands.
func EvaluateConstraints(req Request, candidates []*ActionDescriptor) []*ActionDescriptor {
	return evaluateFrom(req, candidates, 0, false)
}

func evaluateFrom(req Request, candidates []*ActionDescriptor, floor int, hasFloor bool) []*ActionDescriptor {
	order, found := 0, false
	for _, candidate := range candidates {
		for _, c := range candidate.Constraints {
			o := c.Order()
			if hasFloor && o <= floor {
				continue
			}
			if !found || o < order {
				order, found = o, true
			}
		}
	}
	if !found {
		return candidates
	}

	ctx := &ConstraintContext{Request: req, Candidates: candidates}

	var with, without []*ActionDescriptor
	for _, candidate := range candidates {
		accepted, constrained := true, false
		ctx.Current = candidate
		for _, c := range candidate.Constraints {
			if c.Order() != order {
				continue
			}
			constrained = true
			if !c.Accept(ctx) {
				accepted = false
				break
			}
		}

		switch {
		case accepted && constrained:
			with = append(with, candidate)
		case accepted:
			without = append(without, candidate)
		}
	}

	if len(with) > 0 {
		if matches := evaluateFrom(req, with, order, true); len(matches) > 0 {
			return matches
		}
	}
	if len(without) == 0 {
		return nil
	}
	return evaluateFrom(req, without, order, true)
}
