package handlers

import (
	"context"

	"github.com/KirbyMcKenzie/BotBuilder-V3/match"
	"github.com/KirbyMcKenzie/BotBuilder-V3/scope"
)

// Emitter forwards a message a handler emitted.
type Emitter func(ctx context.Context, message interface{}) error

// HandlerScorable adapts a Handler into a two-phase candidate
// suitable for dispatch.
//
// Preparation gathers Bindings from the resolution scope: the
// message text (bound to "text") and the match's successful named
// captures.  An optional Guard can then veto: a guard execution that
// returns nil Bindings declines the candidate, which is a normal
// outcome, not an error.
type HandlerScorable struct {
	// Handler runs at Commit.
	Handler Handler `json:"-" yaml:"-"`

	// Guard optionally inspects the prepared bindings.  Nil
	// returned Bindings decline this candidate; non-nil Bindings
	// replace the prepared ones.
	Guard Handler `json:"-" yaml:"-"`

	// Priority is this candidate's score among handlers sharing
	// one pattern.  Higher wins under ByPriority.
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty"`

	// Emit receives messages the handler emits during Commit.
	// Nil discards them.
	Emit Emitter `json:"-" yaml:"-"`
}

type handlerState struct {
	bs Bindings
}

func (s *HandlerScorable) Prepare(ctx context.Context, r scope.Resolver) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bs := NewBindings()
	if x, have := r.Resolve(scope.MessageText, ""); have {
		bs.Extend("text", x)
	}
	if x, have := r.Resolve(scope.Groups, ""); have {
		if gs, is := x.([]match.Capture); is {
			for i := 1; i < len(gs); i++ {
				if g := &gs[i]; g.Success {
					if _, taken := bs[g.Name]; !taken {
						bs[g.Name] = g.Value
					}
				}
			}
		}
	}

	if s.Guard != nil {
		e, err := s.Guard.Exec(ctx, bs)
		if err != nil {
			return nil, err
		}
		if e == nil || e.Bs == nil {
			// The guard declined.
			return nil, nil
		}
		bs = e.Bs
	}

	return &handlerState{bs: bs}, nil
}

func (s *HandlerScorable) Score(state interface{}) (interface{}, error) {
	return s.Priority, nil
}

func (s *HandlerScorable) Commit(ctx context.Context, state interface{}) error {
	st, is := state.(*handlerState)
	if !is {
		return &BadState{state}
	}

	e, err := s.Handler.Exec(ctx, st.bs)
	if err != nil {
		return err
	}

	if s.Emit != nil && e != nil {
		for _, msg := range e.Emitted {
			if err := s.Emit(ctx, msg); err != nil {
				return err
			}
		}
	}

	return nil
}

// BadState occurs when a Commit (or Score) gets a state that the
// Scorable didn't produce.
type BadState struct {
	State interface{}
}

func (e *BadState) Error() string {
	return "bad handler state"
}

// ByPriority orders handler scores so that a higher Priority is
// better.  Non-int scores rank last.
func ByPriority(a, b interface{}) int {
	ap, aok := a.(int)
	bp, bok := b.(int)
	if !aok {
		ap = 0
	}
	if !bok {
		bp = 0
	}
	// Less is better, so negate.
	return bp - ap
}
