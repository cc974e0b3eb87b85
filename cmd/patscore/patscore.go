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

// Package main is a little command-line utility to run a pattern
// against a text.
//
//	patscore -p '^\s*echo\s+(?<rest>.+)$' -t 'echo hello there'
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/KirbyMcKenzie/BotBuilder-V3/match"
)

func main() {
	var (
		patternSrc = flag.String("p", "", "pattern (regular expression)")
		text       = flag.String("t", "", "text to match against")

		useGo = flag.Bool("go", false, "compile with the Go engine instead of the .NET-style engine")
		score = flag.Bool("score", false, "also report the normalized score")

		bench = flag.Int("bench", 0, "number of times to run (and report time)")
	)

	flag.Parse()

	compile := match.CompileDotNet
	if *useGo {
		compile = match.CompileGo
	}

	p, err := compile(*patternSrc)
	if err != nil {
		panic(err)
	}

	if 0 < *bench {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		allocs := stats.TotalAlloc
		then := time.Now()
		for i := 0; i < *bench; i++ {
			if _, err := p.Match(*text); err != nil {
				panic(err)
			}
		}
		elapsed := time.Now().Sub(then)
		meanNanos := elapsed.Nanoseconds() / int64(*bench)

		runtime.ReadMemStats(&stats)
		allocated := (stats.TotalAlloc - allocs) / uint64(*bench)

		log.Printf("%d iterations, %d mean ns/Match, %d mean bytes allocated per Match", *bench, meanNanos, allocated)
	}

	r, err := p.Match(*text)
	if err != nil {
		panic(err)
	}

	js, err := json.Marshal(&r)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%s\n", js)

	if *score && r.Success && 0 < r.Length() {
		fmt.Printf("%f\n", match.NormalizedScore(r))
	}
}
