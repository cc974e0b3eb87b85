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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	. "github.com/KirbyMcKenzie/BotBuilder-V3/util/testutil"
)

var Verbose = true

func Copy(x interface{}) interface{} { // Sorry
	js, err := json.Marshal(&x)
	if err != nil {
		panic(err)
	}
	var y interface{}
	if err = json.Unmarshal(js, &y); err != nil {
		panic(err)
	}
	return y
}

func Render(w io.Writer, tag string, t *Turn) {
	if t == nil {
		fmt.Fprintf(w, "Turn %s (none)\n", tag)
		return
	}
	fmt.Fprintf(w, "Turn %s %s\n", tag, t.Cid)
	fmt.Fprintf(w, "  text     %s\n", JS(t.Text))
	if !t.Claimed {
		fmt.Fprintf(w, "  claimed  false\n")
		return
	}
	fmt.Fprintf(w, "  pattern  %s\n", JS(t.Pattern))
	if t.Match != nil {
		fmt.Fprintf(w, "  match    %s\n", JS(t.Match))
	}
	for _, emitted := range t.Emitted {
		fmt.Fprintf(w, "  emitted  %s\n", JS(emitted))
	}
}

func Logf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	log.Printf(format, args...)
}

func Logln(args ...interface{}) {
	if !Verbose {
		return
	}
	log.Println(args...)
}
