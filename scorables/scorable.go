package scorables

import (
	"context"

	"github.com/KirbyMcKenzie/BotBuilder-V3/scope"
)

// Scorable is a two-phase candidate: Prepare (which may decline),
// Score (compare quality), and Commit (execute).
type Scorable interface {
	// Prepare attempts to ready this candidate against the given
	// scope.
	//
	// A nil state with a nil error means the candidate declines:
	// nothing matched, and that is not an error.  A context error
	// means the caller gave up.  Any other error is a hard
	// failure and is propagated unmodified.
	//
	// The returned state is owned by the attempt that produced it
	// until it is either discarded or handed to Commit.
	Prepare(ctx context.Context, r scope.Resolver) (interface{}, error)

	// Score reports a comparable quality value for a state
	// produced by a successful Prepare.
	Score(state interface{}) (interface{}, error)

	// Commit executes the candidate using prepared state.
	Commit(ctx context.Context, state interface{}) error
}

// accepted is the state for trivially-successful preparations.
var accepted = &struct{}{}

// Func is a Scorable built from optional Go functions.
//
// A nil PrepareFunc accepts unconditionally; a nil ScoreFunc scores
// zero; a nil CommitFunc does nothing.  Handy for handlers that are
// plain Go code and for tests.
type Func struct {
	PrepareFunc func(ctx context.Context, r scope.Resolver) (interface{}, error) `json:"-" yaml:"-"`
	ScoreFunc   func(state interface{}) (interface{}, error)                     `json:"-" yaml:"-"`
	CommitFunc  func(ctx context.Context, state interface{}) error               `json:"-" yaml:"-"`
}

func (f *Func) Prepare(ctx context.Context, r scope.Resolver) (interface{}, error) {
	if f.PrepareFunc == nil {
		return accepted, nil
	}
	return f.PrepareFunc(ctx, r)
}

func (f *Func) Score(state interface{}) (interface{}, error) {
	if f.ScoreFunc == nil {
		return 0, nil
	}
	return f.ScoreFunc(state)
}

func (f *Func) Commit(ctx context.Context, state interface{}) error {
	if f.CommitFunc == nil {
		return nil
	}
	return f.CommitFunc(ctx, state)
}
