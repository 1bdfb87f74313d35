package selector

import (
	"log/slog"
	"sync/atomic"

	"github.com/toyz/scaffold/internal/metrics"
	"github.com/toyz/scaffold/pkg/scaffold/routing"
)

// Outcome classifies a selection
type Outcome int

const (
	NotFound Outcome = iota
	Matched
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return metrics.OutcomeMatched
	case Ambiguous:
		return metrics.OutcomeAmbiguous
	default:
		return metrics.OutcomeNotFound
	}
}

// Result is the outcome of selecting an action for a request
type Result struct {
	Outcome Outcome
	// Action is set when Outcome is Matched
	Action *ActionDescriptor
	// Candidates holds the tied actions when Outcome is Ambiguous
	Candidates []*ActionDescriptor
}

// Err returns an *AmbiguousActionError for ambiguous results and nil otherwise
func (r Result) Err() error {
	if r.Outcome != Ambiguous {
		return nil
	}
	return newAmbiguousActionError(r.Candidates)
}

// Option configures a Selector
type Option func(*Selector)

// WithMetrics records cache rebuilds and outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Selector) { s.metrics = m }
}

// WithLogger sets the logger used for rebuild and ambiguity diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) { s.logger = l }
}

// Selector picks the single action that serves a request
type Selector struct {
	provider CollectionProvider
	cache    atomic.Pointer[candidateCache]
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a selector over the actions of provider
func New(provider CollectionProvider, opts ...Option) *Selector {
	s := &Selector{provider: provider, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// currentCache returns a cache matching the provider's version, rebuilding it
// when stale. Concurrent rebuilds are harmless; the last one published wins.
func (s *Selector) currentCache() *candidateCache {
	col := s.provider.Actions()
	if c := s.cache.Load(); c != nil && c.version == col.Version {
		return c
	}

	c := buildCache(col)
	s.cache.Store(c)
	s.metrics.CacheRebuilt()
	s.logger.Debug("rebuilt action candidate cache",
		slog.Int("version", c.version),
		slog.Int("actions", len(col.Items)),
		slog.Any("route_keys", c.routeKeys))
	return c
}

// Candidates returns the actions whose route values match rd. A route owned by
// an attribute-routed action yields that action only.
func (s *Selector) Candidates(rd routing.RouteData) []*ActionDescriptor {
	if rd.Route != nil && rd.Route.Attribute {
		var out []*ActionDescriptor
		for _, a := range s.provider.Actions().Items {
			if a.AttributeRoute == rd.Route.Name {
				out = append(out, a)
			}
		}
		return out
	}
	return s.currentCache().lookup(rd.Values)
}

// Select narrows candidates to one action through constraint evaluation and
// the CRUD tie-break
func (s *Selector) Select(req Request, candidates []*ActionDescriptor) Result {
	matches := EvaluateConstraints(req, candidates)
	if len(matches) > 1 {
		matches = TieBreak(req.Route, matches)
	}

	var r Result
	switch len(matches) {
	case 0:
		r = Result{Outcome: NotFound}
	case 1:
		r = Result{Outcome: Matched, Action: matches[0]}
	default:
		r = Result{Outcome: Ambiguous, Candidates: matches}
		s.logger.Error("ambiguous action", slog.Int("candidates", len(matches)), slog.String("route", routeName(req.Route)))
	}
	s.metrics.Selected(r.Outcome.String())
	return r
}

// Resolve runs candidate lookup and selection for a request
func (s *Selector) Resolve(req Request) Result {
	return s.Select(req, s.Candidates(req.Route))
}

func routeName(rd routing.RouteData) string {
	if rd.Route == nil {
		return ""
	}
	return rd.Route.Name
}
