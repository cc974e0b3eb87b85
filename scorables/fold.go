package scorables

import (
	"context"
	"errors"
	"fmt"

	"github.com/KirbyMcKenzie/BotBuilder-V3/scope"
)

// Comparator orders scores.  Negative means a is better than b
// ("less is better", matching CompareMatches).
type Comparator func(a, b interface{}) int

// FoldScorable reduces many Scorables to the best one.
//
// Preparation tries every child in input order and keeps the child
// whose score is strictly best under the comparator.  On an exact
// tie, the first child encountered in input order wins.  That
// tie-break is deterministic but otherwise arbitrary; don't rely on
// it for anything beyond determinism.
type FoldScorable struct {
	scorables []Scorable
	compare   Comparator
}

// Fold makes a FoldScorable.  The input slice is not copied; the
// caller must not modify it afterwards.
func Fold(scorables []Scorable, compare Comparator) *FoldScorable {
	return &FoldScorable{
		scorables: scorables,
		compare:   compare,
	}
}

type foldState struct {
	winner Scorable
	state  interface{}
	score  interface{}
}

// Prepare tries every child.
//
// A fold over zero children always declines.  A child that reports
// its own cancellation while this fold's context is still live is
// treated the same as a declining child: it does not win, and it
// does not count toward "at least one succeeded".  If this fold's
// own context is done, the context error is reported instead.
//
// Children are evaluated sequentially.  They read a common immutable
// scope and never share mutable state, so concurrent evaluation
// would produce the same winner; sequential is just simpler.
func (f *FoldScorable) Prepare(ctx context.Context, r scope.Resolver) (interface{}, error) {

	var best *foldState

	for _, s := range f.scorables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		st, err := s.Prepare(ctx, r)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				// The child gave up on its own.
				continue
			}
			// Hard failure: forwarded.
			return nil, err
		}
		if st == nil {
			continue
		}

		score, err := s.Score(st)
		if err != nil {
			return nil, err
		}

		if best == nil || f.compare(score, best.score) < 0 {
			// Losing state is discarded here.
			best = &foldState{
				winner: s,
				state:  st,
				score:  score,
			}
		}
	}

	if best == nil {
		return nil, nil
	}

	return best, nil
}

// Winner extracts the winning child from a state that a
// FoldScorable's Prepare produced.  Useful for reporting which
// candidate claimed a message.
func Winner(state interface{}) (Scorable, bool) {
	st, is := state.(*foldState)
	if !is {
		return nil, false
	}
	return st.winner, true
}

func (f *FoldScorable) Score(state interface{}) (interface{}, error) {
	st, is := state.(*foldState)
	if !is {
		return nil, fmt.Errorf("fold: bad state: %T", state)
	}
	return st.score, nil
}

func (f *FoldScorable) Commit(ctx context.Context, state interface{}) error {
	st, is := state.(*foldState)
	if !is {
		return fmt.Errorf("fold: bad state: %T", state)
	}
	return st.winner.Commit(ctx, st.state)
}
