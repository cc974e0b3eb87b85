// Package handlers gives message handlers an execution model.
//
// A Handler turns Bindings into an Execution: updated Bindings plus
// zero or more messages to emit.  Ideally a Handler does not block
// or perform any IO.  In order for a handler to influence the world,
// the package user must do something with the messages the handler
// emits.
//
// A Handler can be written in Go (FuncHandler) or compiled from a
// Source by an Interpreter.
package handlers

import (
	"context"
	"errors"
)

var (
	// InterpreterNotFound occurs when you try to Compile a
	// Source, and the required interpreter isn't in the given map
	// of interpreters.
	InterpreterNotFound = errors.New("interpreter not found")

	// DefaultInterpreters will be used by Source.Compile if given
	// nil interpreters.
	DefaultInterpreters = make(map[string]Interpreter)
)

// Bindings is a map from names to their values.
//
// For a handler fired by a pattern match, the bindings include the
// match's named captures.
type Bindings map[string]interface{}

func NewBindings() Bindings {
	return make(Bindings, 8)
}

// Extend adds the property; modifies and returns the Bindings.
func (bs Bindings) Extend(p string, v interface{}) Bindings {
	bs[p] = v
	return bs
}

// Copy makes a shallow copy of the Bindings.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for k, v := range bs {
		acc[k] = v
	}
	return acc
}

// Execution is what a Handler's Exec returns.
type Execution struct {
	// Bs holds the updated Bindings (nil means the handler
	// declined).
	Bs Bindings `json:"bs,omitempty"`

	// Emitted holds messages the handler wants sent.
	Emitted []interface{} `json:"emitted,omitempty"`
}

func NewExecution(bs Bindings) *Execution {
	return &Execution{
		Bs:      bs,
		Emitted: make([]interface{}, 0, 4),
	}
}

// AddEmitted adds the given thing to the list of emitted messages.
func (e *Execution) AddEmitted(x interface{}) {
	e.Emitted = append(e.Emitted, x)
}

// Handler responds to a dispatched message.
type Handler interface {
	Exec(ctx context.Context, bs Bindings) (*Execution, error)
}

// FuncHandler is a Handler wrapped around a Go function.
type FuncHandler struct {
	F func(context.Context, Bindings) (*Execution, error) `json:"-" yaml:"-"`
}

func (h *FuncHandler) Exec(ctx context.Context, bs Bindings) (*Execution, error) {
	if h == nil || h.F == nil {
		return NewExecution(bs), nil
	}
	return h.F(ctx, bs)
}

// Interpreter can compile and execute code for Handlers and guards.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec executes the code.  The result of a previous
	// Compile() might be provided.
	Exec(ctx context.Context, bs Bindings, code interface{}, compiled interface{}) (*Execution, error)
}

// Source is code for a Handler in some interpreted language.
type Source struct {
	// Interpreter names the interpreter for this code.
	Interpreter string `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`

	// Source is the code itself (in a representation the
	// interpreter understands).
	Source interface{} `json:"source,omitempty" yaml:"source,omitempty"`
}

func (s *Source) Copy() *Source {
	if s == nil {
		return nil
	}
	return &Source{
		Interpreter: s.Interpreter,
		Source:      s.Source,
	}
}

// Compile turns the Source into a Handler using the given
// interpreters (DefaultInterpreters if nil).
func (s *Source) Compile(ctx context.Context, interpreters map[string]Interpreter) (Handler, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}
	i, have := interpreters[s.Interpreter]
	if !have {
		return nil, InterpreterNotFound
	}

	compiled, err := i.Compile(ctx, s.Source)
	if err != nil {
		return nil, err
	}

	return &interpreted{
		i:        i,
		code:     s.Source,
		compiled: compiled,
	}, nil
}

type interpreted struct {
	i        Interpreter
	code     interface{}
	compiled interface{}
}

func (h *interpreted) Exec(ctx context.Context, bs Bindings) (*Execution, error) {
	return h.i.Exec(ctx, bs, h.code, h.compiled)
}
