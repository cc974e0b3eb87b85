/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ecmascript provides an ECMAScript-compatible handler
// interpreter.
package ecmascript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/KirbyMcKenzie/BotBuilder-V3/handlers"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// init adds an Interpreter as one of the DefaultInterpreters.
func init() {
	handlers.DefaultInterpreters["ecmascript"] = NewInterpreter()
}

// Interpreter implements handlers.Interpreter using Goja, which is a
// Go implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Interpreter struct {
	// Test is used to expose or hide some runtime capabilities.
	Test bool

	// Extended adds some additional properties.
	Extended bool
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

func AsSource(src interface{}) (code string, err error) {
	switch vv := src.(type) {
	case string:
		code = vv
		return
	default:
		err = fmt.Errorf("bad ECMAScript source (%T)", src)
		return
	}
}

// Compile calls goja.Compile.  This step is optional.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	code, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	code = wrapSrc(code)

	obj, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return obj, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// Exec implements the Interpreter method of the same name.
//
// The following properties are available from the runtime at _.
//
// These two things are most important:
//
//	bindings: the map of the current bindings.
//	out(obj): Add the given object as a message to emit.
//
// Extended properties (enabled by the interpreter's Extended
// property):
//
//	randstr(): generate a random string.
//	cronNext(s): Return a string representing (RFC3999Nano) the
//	  next time for the given crontab expression.
//	esc(s): URL query-escape the given string.
//
// Testing properties (enabled by the interpreter's Test property):
//
//	sleep(ms): sleep for the given number of milliseconds.
//	log(x): log the given thing as JSON.
//
// The code's return value becomes the execution's Bindings: a map
// for acceptance, null for a decline (which is how a guard vetoes a
// candidate).
func (i *Interpreter) Exec(ctx context.Context, bs handlers.Bindings, src interface{}, compiled interface{}) (*handlers.Execution, error) {
	exe := handlers.NewExecution(nil)

	var p *goja.Program
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return exe, err
		}
	}
	var is bool
	if p, is = compiled.(*goja.Program); !is {
		return exe, fmt.Errorf("ECMAScript bad compilation: %T %#v", compiled, compiled)
	}

	env := map[string]interface{}{
		"ctx": ctx,
	}

	if bs != nil {
		// This interpreter allows code to modify values, and
		// we don't want any side effects.  So:
		x, err := handlers.Canonicalize(bs)
		if err != nil {
			return nil, err
		}
		bsCopy, is := x.(map[string]interface{})
		if !is {
			return nil, fmt.Errorf("internal error: %#v copy failed", bs)
		}
		env["bindings"] = bsCopy
	}

	o := goja.New()

	o.Set("_", env)

	// "out" adds the given message to the list of messages to
	// emit.
	env["out"] = func(x interface{}) interface{} {
		var err error

		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}

		if x, err = handlers.Canonicalize(x); err != nil {
			// Will end up as a Javascript exception.
			panic(err)
		}

		exe.AddEmitted(x)

		return x
	}

	if i.Extended {
		env["randstr"] = func() interface{} {
			return handlers.Gensym(32)
		}

		// cronNext parses the given string as a crontab
		// expression using github.com/gorhill/cronexpr.
		// Returns the next time as a string formatted in
		// time.RFC3339Nano (UTC).
		env["cronNext"] = func(x interface{}) interface{} {
			switch vv := x.(type) {
			case goja.Value:
				x = vv.Export()
			}
			cronExpr, is := x.(string)
			if !is {
				protest(o, "not a string")
			}

			c, err := cronexpr.Parse(cronExpr)
			if err != nil {
				protest(o, err.Error())
			}
			return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
		}

		env["esc"] = func(x interface{}) interface{} {
			switch vv := x.(type) {
			case goja.Value:
				x = vv.Export()
			}
			s, is := x.(string)
			if !is {
				protest(o, "not a string")
			}
			return url.QueryEscape(s)
		}
	}

	if i.Test {
		env["sleep"] = func(n interface{}) interface{} {
			switch vv := n.(type) {
			case goja.Value:
				n = vv.Export()
			}
			ms, is := n.(int64)
			if !is {
				panic(fmt.Sprintf("a %T is not an %T", n, ms))
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return nil
		}

		env["log"] = func(x interface{}) interface{} {
			switch vv := x.(type) {
			case goja.Value:
				x = vv.Export()
			}
			js, err := json.Marshal(&x)
			if err != nil {
				log.Println("ecmascript.log (can't marshal: " + err.Error() + ")")
			} else {
				log.Println(string(js))
			}

			return x
		}
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If this Exec method calls cancel() after RunProgram
		// returns, then we'll never see this
		// InterruptedMessage, which is actually the behavior
		// we want.  In this case, we weren't actually
		// interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := RunProgram(o, p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	x := v.Export()

	var result handlers.Bindings
	switch vv := x.(type) {
	case *goja.InterruptedError:
		return nil, vv
	case map[string]interface{}:
		result = handlers.Bindings(vv)
	case handlers.Bindings:
		result = vv
	case nil:
	default:
		return nil, fmt.Errorf("%#v (%T) isn't Bindings", x, x)
	}
	exe.Bs = result

	return exe, nil
}

// RunProgram evaluates the program, converting a Goja panic into an
// error.
func RunProgram(o *goja.Runtime, p *goja.Program) (v goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	return o.RunProgram(p)
}
