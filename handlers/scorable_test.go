package handlers

import (
	"context"
	"testing"

	"github.com/KirbyMcKenzie/BotBuilder-V3/match"
	"github.com/KirbyMcKenzie/BotBuilder-V3/scope"
)

func matchScope(text string) scope.Resolver {
	groups := []match.Capture{
		{Name: "0", Value: text, Length: len(text), Success: true},
		{Name: "device", Value: "light", Length: 5, Success: true},
		{Name: "room", Success: false},
	}
	return scope.NewValues(nil, map[scope.Kind]interface{}{
		scope.MessageText: text,
		scope.Groups:      groups,
	})
}

func TestHandlerScorablePrepare(t *testing.T) {
	ctx := context.Background()

	var got Bindings
	s := &HandlerScorable{
		Handler: &FuncHandler{
			F: func(ctx context.Context, bs Bindings) (*Execution, error) {
				got = bs
				return NewExecution(bs), nil
			},
		},
	}

	st, err := s.Prepare(ctx, matchScope("turn on the light"))
	if err != nil {
		t.Fatal(err)
	}
	if st == nil {
		t.Fatal("declined")
	}

	if err = s.Commit(ctx, st); err != nil {
		t.Fatal(err)
	}

	if got["text"] != "turn on the light" {
		t.Fatalf("got %#v", got)
	}
	if got["device"] != "light" {
		t.Fatalf("got %#v", got)
	}
	if _, have := got["room"]; have {
		t.Fatal("an unsuccessful capture shouldn't bind")
	}
	if _, have := got["0"]; have {
		t.Fatal("group 0 shouldn't bind")
	}
}

func TestHandlerScorableGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("veto", func(t *testing.T) {
		s := &HandlerScorable{
			Handler: &FuncHandler{},
			Guard: &FuncHandler{
				F: func(ctx context.Context, bs Bindings) (*Execution, error) {
					// Nil bindings decline.
					return NewExecution(nil), nil
				},
			},
		}
		st, err := s.Prepare(ctx, matchScope("hi"))
		if err != nil {
			t.Fatal(err)
		}
		if st != nil {
			t.Fatal("the guard should have vetoed")
		}
	})

	t.Run("rebind", func(t *testing.T) {
		var got Bindings
		s := &HandlerScorable{
			Handler: &FuncHandler{
				F: func(ctx context.Context, bs Bindings) (*Execution, error) {
					got = bs
					return NewExecution(bs), nil
				},
			},
			Guard: &FuncHandler{
				F: func(ctx context.Context, bs Bindings) (*Execution, error) {
					return NewExecution(bs.Copy().Extend("guarded", true)), nil
				},
			},
		}
		st, err := s.Prepare(ctx, matchScope("hi"))
		if err != nil {
			t.Fatal(err)
		}
		if st == nil {
			t.Fatal("declined")
		}
		if err = s.Commit(ctx, st); err != nil {
			t.Fatal(err)
		}
		if got["guarded"] != true {
			t.Fatalf("got %#v", got)
		}
	})
}

func TestHandlerScorableEmit(t *testing.T) {
	ctx := context.Background()

	emitted := make([]interface{}, 0, 4)
	s := &HandlerScorable{
		Handler: &FuncHandler{
			F: func(ctx context.Context, bs Bindings) (*Execution, error) {
				e := NewExecution(bs)
				e.AddEmitted("first")
				e.AddEmitted("second")
				return e, nil
			},
		},
		Emit: func(ctx context.Context, message interface{}) error {
			emitted = append(emitted, message)
			return nil
		},
	}

	st, err := s.Prepare(ctx, matchScope("hi"))
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Commit(ctx, st); err != nil {
		t.Fatal(err)
	}
	if len(emitted) != 2 || emitted[0] != "first" {
		t.Fatalf("emitted %#v", emitted)
	}
}

func TestByPriority(t *testing.T) {
	if !(ByPriority(2, 1) < 0) {
		t.Fatal("higher priority should sort first")
	}
	if ByPriority(1, 1) != 0 {
		t.Fatal("equal priorities should tie")
	}
	if !(0 < ByPriority("junk", 1)) {
		t.Fatal("junk should sort last")
	}
}
