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

// Package tools has utilities for working with bot specs: static
// analysis and HTML rendering.
package tools

import (
	"fmt"
	"sort"

	"github.com/KirbyMcKenzie/BotBuilder-V3/dispatch"
	"github.com/KirbyMcKenzie/BotBuilder-V3/handlers"
	"github.com/KirbyMcKenzie/BotBuilder-V3/match"
)

// SpecAnalysis reports what a static look at a bot spec can find:
// structure counts and likely mistakes.
type SpecAnalysis struct {
	spec *dispatch.Spec

	Errors              []string
	CandidateCount      int
	PatternCount        int
	Guards              int
	DuplicatePatterns   []string
	BadPatterns         []string
	Interpreters        []string
	UnknownInterpreters []string
	Undocumented        []string
}

// Analyze examines the spec's candidates.
//
// Patterns are checked against the default compiler.  Interpreter
// names are checked against the given map (handlers.DefaultInterpreters
// if nil).
func Analyze(s *dispatch.Spec, known map[string]handlers.Interpreter) (*SpecAnalysis, error) {
	if known == nil {
		known = handlers.DefaultInterpreters
	}

	a := SpecAnalysis{
		spec:           s,
		CandidateCount: len(s.Candidates),
		Errors:         make([]string, 0, 8),
	}

	seen := make(map[string]int, len(s.Candidates))
	interpreters := make(map[string]bool)
	unknown := make(map[string]bool)
	undocumented := make(map[string]bool)
	bad := make(map[string]bool)

	for _, c := range s.Candidates {
		seen[c.Pattern]++

		if _, have := bad[c.Pattern]; !have {
			if _, err := match.DefaultCompiler(c.Pattern); err != nil {
				bad[c.Pattern] = true
				a.Errors = append(a.Errors, fmt.Sprintf("pattern %q: %s", c.Pattern, err))
			}
		}

		interpreters[c.Interpreter] = true
		if _, have := known[c.Interpreter]; !have {
			unknown[c.Interpreter] = true
			a.Errors = append(a.Errors, fmt.Sprintf("unknown interpreter %q", c.Interpreter))
		}

		if c.Guard != "" {
			a.Guards++
		}

		if c.Doc == "" {
			undocumented[c.Pattern] = true
		}
	}

	a.PatternCount = len(seen)

	duplicates := make(map[string]bool)
	for p, n := range seen {
		if 1 < n {
			duplicates[p] = true
		}
	}

	a.DuplicatePatterns = keysToStringSlice(duplicates)
	a.BadPatterns = keysToStringSlice(bad)
	a.Interpreters = keysToStringSlice(interpreters, "default")
	a.UnknownInterpreters = keysToStringSlice(unknown)
	a.Undocumented = keysToStringSlice(undocumented)

	return &a, nil
}

// keysToStringSlice converts the keys from a map into a sorted slice
// of strings.  Optionally, it can add a default value if the map is
// empty.
func keysToStringSlice(m map[string]bool, defaultValue ...string) []string {
	var list []string
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)

	if len(list) == 0 && len(defaultValue) > 0 {
		return []string{defaultValue[0]}
	}

	return list
}
