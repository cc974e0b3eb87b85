/* Copyright 2018 Comcast Cable Communications Management, LLC
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

package ecmascript

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/KirbyMcKenzie/BotBuilder-V3/handlers"
)

func TestHandlerSimple(t *testing.T) {
	code := `return {likes:"chips"};`

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Test = true
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	exe, err := i.Exec(ctx, nil, code, compiled)
	if err != nil {
		t.Fatal(err)
	}
	x, have := exe.Bs["likes"]
	if !have {
		t.Fatalf("nothing liked in %#v", exe.Bs)
	}
	s, is := x.(string)
	if !is {
		t.Fatalf("liked %#v is a %T, not a %T", x, x, s)
	}
	if s != "chips" {
		t.Fatalf("didn't want \"%s\"", s)
	}
}

func TestHandlerBindings(t *testing.T) {
	code := `return {greeting:"hello, " + _.bindings.name};`

	bs := handlers.NewBindings()
	bs["name"] = "homer"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Test = true
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	exe, err := i.Exec(ctx, bs, code, compiled)
	if err != nil {
		t.Fatal(err)
	}
	x, have := exe.Bs["greeting"]
	if !have {
		t.Fatalf("no greeting in %#v", exe.Bs)
	}
	if x != "hello, homer" {
		t.Fatalf("surprised by %#v", x)
	}
}

func TestHandlerVeto(t *testing.T) {
	code := `if (_.bindings.name == "bart") { return null; } return _.bindings;`

	bs := handlers.NewBindings()
	bs["name"] = "bart"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	exe, err := i.Exec(ctx, bs, code, compiled)
	if err != nil {
		t.Fatal(err)
	}
	if exe.Bs != nil {
		t.Fatalf("expected nil bindings; got %#v", exe.Bs)
	}
}

func TestHandlerOut(t *testing.T) {
	code := `_.out({say:"hi, " + _.bindings.name}); return _.bindings;`

	bs := handlers.NewBindings()
	bs["name"] = "lisa"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	exe, err := i.Exec(ctx, bs, code, compiled)
	if err != nil {
		t.Fatal(err)
	}
	if len(exe.Emitted) != 1 {
		t.Fatalf("emitted %#v", exe.Emitted)
	}
	m, is := exe.Emitted[0].(map[string]interface{})
	if !is {
		t.Fatalf("emitted %#v is a %T", exe.Emitted[0], exe.Emitted[0])
	}
	if m["say"] != "hi, lisa" {
		t.Fatalf("surprised by %#v", m)
	}
}

func TestHandlerSideEffects(t *testing.T) {
	bs := handlers.NewBindings()
	bs["likes"] = map[string]interface{}{
		"weekdays": "tacos",
		"weekends": "chips",
	}

	code := `_.bindings.likes.weekends = "queso"; throw "a fit";`

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Test = true
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	exe, _ := i.Exec(ctx, bs, code, compiled)
	// Ignore the error.  We want to see if the handler had a side
	// effect.

	x, have := bs["likes"]
	if !have {
		t.Fatalf("nothing liked in %#v", exe)
	}
	m, is := x.(map[string]interface{})
	if !is {
		t.Fatalf("liked %#v is a %T, not a %T", x, x, m)
	}
	y, have := m["weekends"]
	if !have {
		t.Fatalf("nothing liked on weekends in %#v", exe)
	}
	s, is := y.(string)
	if !is {
		t.Fatalf("liked %#v is a %T, not a %T", y, y, s)
	}
	if s != "chips" {
		t.Fatalf("didn't want \"%s\"", s)
	}
}

func TestHandlerTimeout(t *testing.T) {
	code := `for (;;) { _.sleep(10); } null;`

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Test = true
	i.Extended = true

	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = i.Exec(ctx, nil, code, compiled); err == nil {
		t.Fatal("didn't timeout")
	}
	msg := err.Error()
	if msg != InterruptedMessage {
		t.Fatalf("surprised by \"%s\"", msg)
	}
}

func TestHandlerError(t *testing.T) {
	code := `likes + tacos; null;`

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = i.Exec(ctx, nil, code, compiled); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestHandlerCronNextGood(t *testing.T) {
	cronExpr := "* 0 * * *"
	code := fmt.Sprintf(`return {next: _.cronNext("%s")};`, cronExpr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Extended = true
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	exe, err := i.Exec(ctx, nil, code, compiled)
	if err != nil {
		t.Fatal(err)
	}
	x, have := exe.Bs["next"]
	if !have {
		t.Fatalf("no next in %#v", exe.Bs)
	}
	s, is := x.(string)
	if !is {
		t.Fatalf("next %#v is a %T, not a %T", x, x, s)
	}
	if _, err = time.Parse(time.RFC3339Nano, s); err != nil {
		t.Fatal(err)
	}
}

func TestHandlerCronNextBad(t *testing.T) {
	cronExpr := "bad"
	code := fmt.Sprintf(`return {next: _.cronNext("%s")};`, cronExpr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Extended = true
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := i.Exec(ctx, nil, code, compiled); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestHandlerOutNaN(t *testing.T) {
	code := `_.out(NaN); return {};`

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = i.Exec(ctx, nil, code, compiled); err == nil {
		t.Fatal("expected an error")
	}
}

func TestHandlerSource(t *testing.T) {
	src := &handlers.Source{
		Interpreter: "ecmascript",
		Source:      `var bs = _.bindings; bs.want = "tacos"; return bs;`,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	h, err := src.Compile(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	bs := handlers.NewBindings()
	bs["text"] = "i want tacos"

	exe, err := h.Exec(ctx, bs)
	if err != nil {
		t.Fatal(err)
	}
	if exe.Bs["want"] != "tacos" {
		t.Fatalf("surprised by %#v", exe.Bs)
	}
	if exe.Bs["text"] != "i want tacos" {
		t.Fatalf("lost text in %#v", exe.Bs)
	}
}

func benchmarkCompiling(b *testing.B, compiling bool) {

	// We have a lot of code, but we only use a little of it.

	code := `

function radians (num) {
  return num * Math.PI / 180;
}

function haversine (lon1,lat1,lon2,lat2) {
  var R = 6371;
  var dLat = radians(lat2-lat1);
  var dLon = radians(lon2-lon1);
  var lat1 = radians(lat1);
  var lat2 = radians(lat2);
  var a = Math.sin(dLat/2) * Math.sin(dLat/2) + Math.sin(dLon/2) * Math.sin(dLon/2) * Math.cos(lat1) * Math.cos(lat2);
  var c = 2 * Math.atan2(Math.sqrt(a), Math.sqrt(1-a));
  var d = R * c;
  return d;
}

function bar() { return "chips"; }

return {likes:bar()};
`

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Test = true

	var compiled interface{}
	if compiling {
		var err error
		if compiled, err = i.Compile(ctx, code); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()

	for n := 0; n < b.N; n++ {
		if _, err := i.Exec(context.Background(), nil, code, compiled); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPrecompile(b *testing.B) {
	benchmarkCompiling(b, true)
}

func BenchmarkNoPrecompile(b *testing.B) {
	benchmarkCompiling(b, false)
}
