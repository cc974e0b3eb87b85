package scorables

import (
	"context"
	"fmt"

	"github.com/KirbyMcKenzie/BotBuilder-V3/match"
	"github.com/KirbyMcKenzie/BotBuilder-V3/scope"
)

// MatchScorable wraps a compiled pattern around an inner Scorable.
//
// Preparation resolves the message text from the scope, runs the
// pattern, and -- on a match -- prepares the inner Scorable against a
// derived scope that exposes the match's captures.  A pattern match
// alone does not produce a usable candidate: the inner Scorable must
// also accept the derived scope.
type MatchScorable struct {
	pattern *match.Pattern
	inner   Scorable
}

// NewMatch makes a MatchScorable.
func NewMatch(p *match.Pattern, inner Scorable) *MatchScorable {
	return &MatchScorable{
		pattern: p,
		inner:   inner,
	}
}

// Pattern returns the wrapped pattern.
func (s *MatchScorable) Pattern() *match.Pattern {
	return s.pattern
}

type matchState struct {
	result *match.Result
	inner  interface{}
}

func (s *MatchScorable) Prepare(ctx context.Context, r scope.Resolver) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x, have := r.Resolve(scope.MessageText, "")
	if !have {
		// Normal outcome: nothing to match against.
		return nil, nil
	}
	text, is := x.(string)
	if !is || text == "" {
		return nil, nil
	}

	result, err := s.pattern.Match(text)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, nil
	}

	inner, err := s.inner.Prepare(ctx, &matchResolver{
		parent:  r,
		pattern: s.pattern,
		result:  result,
	})
	if err != nil {
		// Forwarded unmodified, cancellation included.
		return nil, err
	}
	if inner == nil {
		return nil, nil
	}

	return &matchState{
		result: result,
		inner:  inner,
	}, nil
}

// Score returns the stored *match.Result, not a scalar.  Callers
// that need a scalar apply match.NormalizedScore themselves.
func (s *MatchScorable) Score(state interface{}) (interface{}, error) {
	st, is := state.(*matchState)
	if !is {
		return nil, fmt.Errorf("match scorable: bad state: %T", state)
	}
	return st.result, nil
}

func (s *MatchScorable) Commit(ctx context.Context, state interface{}) error {
	st, is := state.(*matchState)
	if !is {
		return fmt.Errorf("match scorable: bad state: %T", state)
	}
	return s.inner.Commit(ctx, st.inner)
}

// matchResolver layers one match's bindings over an enclosing scope.
//
// Resolution order matters: a named capture is checked before the
// broader match-level bindings, so a capture group named (say)
// "pattern" can't be shadowed by the whole-pattern binding.  The
// resolver is immutable once built.
type matchResolver struct {
	parent  scope.Resolver
	pattern *match.Pattern
	result  *match.Result
}

func (r *matchResolver) Resolve(kind scope.Kind, tag string) (interface{}, bool) {
	if tag != "" {
		if g, have := r.result.Group(tag); have {
			switch kind {
			case scope.GroupValue:
				return g.Value, true
			case scope.GroupSpan:
				return g, true
			}
		}
		// An absent or unsuccessful capture falls through.
	}

	switch kind {
	case scope.Pattern:
		return r.pattern, true
	case scope.Match:
		return r.result, true
	case scope.Groups:
		return r.result.Groups, true
	}

	return r.parent.Resolve(kind, tag)
}
