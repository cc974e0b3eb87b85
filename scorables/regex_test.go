package scorables

import (
	"context"
	"errors"
	"testing"

	"github.com/KirbyMcKenzie/BotBuilder-V3/match"
	"github.com/KirbyMcKenzie/BotBuilder-V3/scope"
)

func compile(t *testing.T, source string) *match.Pattern {
	t.Helper()
	p, err := match.CompileDotNet(source)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// accept is an inner Scorable that accepts and remembers the scope
// it was prepared against.
type accept struct {
	prepared  bool
	r         scope.Resolver
	committed interface{}
}

func (a *accept) Prepare(ctx context.Context, r scope.Resolver) (interface{}, error) {
	a.prepared = true
	a.r = r
	return "inner state", nil
}

func (a *accept) Score(state interface{}) (interface{}, error) {
	return 0, nil
}

func (a *accept) Commit(ctx context.Context, state interface{}) error {
	a.committed = state
	return nil
}

func TestMatchScorableNoText(t *testing.T) {
	ctx := context.Background()

	inner := &accept{}
	s := NewMatch(compile(t, "^hi$"), inner)

	for name, r := range map[string]scope.Resolver{
		"absent": scope.Null,
		"empty":  scope.WithMessageText(nil, ""),
		"nonstring": scope.NewValues(nil, map[scope.Kind]interface{}{
			scope.MessageText: 42,
		}),
	} {
		st, err := s.Prepare(ctx, r)
		if err != nil {
			t.Fatal(err)
		}
		if st != nil {
			t.Fatalf("%s: should have declined", name)
		}
	}

	if inner.prepared {
		t.Fatal("inner prepared without a match")
	}
}

func TestMatchScorableNoMatch(t *testing.T) {
	ctx := context.Background()

	inner := &accept{}
	s := NewMatch(compile(t, "^hi$"), inner)

	st, err := s.Prepare(ctx, scope.WithMessageText(nil, "bye"))
	if err != nil {
		t.Fatal(err)
	}
	if st != nil {
		t.Fatal("should have declined")
	}
	if inner.prepared {
		// No match scope should even have been created.
		t.Fatal("inner prepared without a match")
	}
}

func TestMatchScorableMatch(t *testing.T) {
	ctx := context.Background()

	outer := scope.NewValues(scope.WithMessageText(nil, "turn on the light"),
		map[scope.Kind]interface{}{
			"tenant": "home",
		})

	inner := &accept{}
	p := compile(t, "^turn (?<state>on|off) (?<device>.+)$")
	s := NewMatch(p, inner)

	st, err := s.Prepare(ctx, outer)
	if err != nil {
		t.Fatal(err)
	}
	if st == nil {
		t.Fatal("declined")
	}
	if !inner.prepared {
		t.Fatal("inner never prepared")
	}

	t.Run("score", func(t *testing.T) {
		x, err := s.Score(st)
		if err != nil {
			t.Fatal(err)
		}
		r, is := x.(*match.Result)
		if !is {
			t.Fatalf("got %T", x)
		}
		if r.Value() != "turn on the light" {
			t.Fatalf("got %q", r.Value())
		}
	})

	t.Run("capturevalue", func(t *testing.T) {
		x, have := inner.r.Resolve(scope.GroupValue, "state")
		if !have {
			t.Fatal("no state")
		}
		if x != "on" {
			t.Fatalf("got %#v", x)
		}
	})

	t.Run("capturespan", func(t *testing.T) {
		x, have := inner.r.Resolve(scope.GroupSpan, "device")
		if !have {
			t.Fatal("no device")
		}
		g, is := x.(*match.Capture)
		if !is {
			t.Fatalf("got %T", x)
		}
		if g.Value != "the light" {
			t.Fatalf("got %q", g.Value)
		}
	})

	t.Run("pattern", func(t *testing.T) {
		x, have := inner.r.Resolve(scope.Pattern, "")
		if !have {
			t.Fatal("no pattern")
		}
		if x.(*match.Pattern) != p {
			t.Fatal("wrong pattern")
		}
	})

	t.Run("match", func(t *testing.T) {
		if _, have := inner.r.Resolve(scope.Match, ""); !have {
			t.Fatal("no match result")
		}
	})

	t.Run("groups", func(t *testing.T) {
		x, have := inner.r.Resolve(scope.Groups, "")
		if !have {
			t.Fatal("no groups")
		}
		gs, is := x.([]match.Capture)
		if !is {
			t.Fatalf("got %T", x)
		}
		if len(gs) != 3 {
			t.Fatalf("got %d groups", len(gs))
		}
	})

	t.Run("delegates", func(t *testing.T) {
		// The match layer shadows nothing it doesn't own.
		if x, have := inner.r.Resolve("tenant", ""); !have || x != "home" {
			t.Fatalf("got %#v (%v)", x, have)
		}
	})

	t.Run("missingcapture", func(t *testing.T) {
		// An absent capture falls through to the enclosing
		// scope (which doesn't have it either).
		if _, have := inner.r.Resolve(scope.GroupValue, "nope"); have {
			t.Fatal("resolved a capture that doesn't exist")
		}
	})

	t.Run("commit", func(t *testing.T) {
		if err := s.Commit(ctx, st); err != nil {
			t.Fatal(err)
		}
		if inner.committed != "inner state" {
			t.Fatalf("inner committed %#v", inner.committed)
		}
	})
}

func TestMatchScorableUnsuccessfulCapture(t *testing.T) {
	// A named group inside an alternation may be absent even when
	// the overall match succeeds; resolution then falls through.
	ctx := context.Background()

	parent := scope.NewValues(scope.WithMessageText(nil, "aaa"),
		map[scope.Kind]interface{}{
			scope.GroupValue: "from the parent",
		})

	inner := &accept{}
	s := NewMatch(compile(t, "^(?:(?<a>a+)|(?<b>b+))$"), inner)

	st, err := s.Prepare(ctx, parent)
	if err != nil {
		t.Fatal(err)
	}
	if st == nil {
		t.Fatal("declined")
	}

	if x, have := inner.r.Resolve(scope.GroupValue, "a"); !have || x != "aaa" {
		t.Fatalf("got %#v (%v)", x, have)
	}
	// "b" exists in the pattern but didn't participate.
	if x, _ := inner.r.Resolve(scope.GroupValue, "b"); x != "from the parent" {
		t.Fatalf("got %#v", x)
	}
}

func TestMatchScorableInnerDeclines(t *testing.T) {
	// A pattern match alone is not a usable candidate.
	ctx := context.Background()

	decline := &Func{
		PrepareFunc: func(ctx context.Context, r scope.Resolver) (interface{}, error) {
			return nil, nil
		},
	}
	s := NewMatch(compile(t, "^hi$"), decline)

	st, err := s.Prepare(ctx, scope.WithMessageText(nil, "hi"))
	if err != nil {
		t.Fatal(err)
	}
	if st != nil {
		t.Fatal("should have declined")
	}
}

func TestMatchScorableInnerError(t *testing.T) {
	ctx := context.Background()

	boom := errors.New("boom")
	bad := &Func{
		PrepareFunc: func(ctx context.Context, r scope.Resolver) (interface{}, error) {
			return nil, boom
		},
	}
	s := NewMatch(compile(t, "^hi$"), bad)

	// The error is forwarded unmodified.
	if _, err := s.Prepare(ctx, scope.WithMessageText(nil, "hi")); err != boom {
		t.Fatalf("got %v", err)
	}
}

func TestMatchScorableCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &accept{}
	s := NewMatch(compile(t, "^hi$"), inner)

	st, err := s.Prepare(ctx, scope.WithMessageText(nil, "hi"))
	if st != nil {
		t.Fatal("shouldn't have state")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
}
