package noop

import (
	"context"
	"log"

	"github.com/KirbyMcKenzie/BotBuilder-V3/handlers"
)

// Interpreter is a handlers.Interpreter which just returns the
// bindings without modification.
type Interpreter struct {
	// Silent, if false, will suppress warning log messages.
	Silent bool
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for compilation")
	}
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, bs handlers.Bindings, code interface{}, compiled interface{}) (*handlers.Execution, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for execution")
	}
	return handlers.NewExecution(bs), nil
}
