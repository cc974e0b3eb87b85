package interpreters

import (
	"github.com/KirbyMcKenzie/BotBuilder-V3/handlers"
	"github.com/KirbyMcKenzie/BotBuilder-V3/interpreters/ecmascript"
	"github.com/KirbyMcKenzie/BotBuilder-V3/interpreters/noop"
)

// Standard returns the interpreters a stock service should offer.
func Standard() map[string]handlers.Interpreter {
	is := make(map[string]handlers.Interpreter, 8)

	es := ecmascript.NewInterpreter()
	is["ecmascript"] = es
	is["ecmascript-5.1"] = es

	ext := ecmascript.NewInterpreter()
	ext.Extended = true
	is["ecmascript-ext"] = ext
	is["ecmascript-5.1-ext"] = ext

	is["noop"] = noop.NewInterpreter()

	return is
}
