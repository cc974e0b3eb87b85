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

// Package dispatch turns a sequence of (pattern, handler) candidates
// into a single Scorable that picks exactly one winner per message.
//
// Candidates are grouped by identical pattern source string.  Each
// group's handlers become one fold (this is how "overload
// resolution" among handlers sharing a pattern is modeled), each
// distinct pattern becomes one match scorable, and all the match
// scorables become one top-level fold ordered by CompareMatches.
//
// How a candidate sequence gets produced -- registration tables,
// configuration files, whatever -- is none of this package's
// business.
package dispatch

import (
	"github.com/KirbyMcKenzie/BotBuilder-V3/match"
	"github.com/KirbyMcKenzie/BotBuilder-V3/scorables"
)

// Candidate pairs a pattern source string with a handler.
type Candidate struct {
	// Pattern is the pattern source string.  Grouping is by this
	// literal string: two differently-written but equivalent
	// patterns are distinct candidates.
	Pattern string `json:"pattern" yaml:"pattern"`

	// Doc optionally describes the candidate.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Handler prepares and commits when the pattern claims a
	// message.
	Handler scorables.Scorable `json:"-" yaml:"-"`
}

// BadPattern occurs when a candidate's pattern does not compile.
type BadPattern struct {
	Source string
	Err    error
}

func (e *BadPattern) Error() string {
	return `bad pattern "` + e.Source + `": ` + e.Err.Error()
}

func (e *BadPattern) Unwrap() error {
	return e.Err
}

// Registry accumulates candidates in order.
//
// A Registry is built once, before dispatch begins, and the Scorable
// it builds treats the candidate table as read-only from then on.
type Registry struct {
	candidates []Candidate
}

func NewRegistry() *Registry {
	return &Registry{
		candidates: make([]Candidate, 0, 8),
	}
}

// Add appends a candidate; returns the Registry for chaining.
func (r *Registry) Add(pattern string, handler scorables.Scorable) *Registry {
	return r.AddCandidate(Candidate{
		Pattern: pattern,
		Handler: handler,
	})
}

func (r *Registry) AddCandidate(c Candidate) *Registry {
	r.candidates = append(r.candidates, c)
	return r
}

// Candidates returns a copy of the registered candidates.
func (r *Registry) Candidates() []Candidate {
	acc := make([]Candidate, len(r.candidates))
	copy(acc, r.candidates)
	return acc
}

// Build compiles the candidates into the dispatch entry point: one
// Scorable whose Prepare/Score/Commit the surrounding pipeline can
// use like any other Scorable's.
//
// A nil compile means match.DefaultCompiler.  handlerCompare orders
// handlers that share one pattern; nil means "no preference", which
// leaves the fold's first-in-input-order tie-break to pick.
//
// A pattern that fails to compile is a hard error (*BadPattern), not
// a declined candidate.
func (r *Registry) Build(compile match.Compiler, handlerCompare scorables.Comparator) (scorables.Scorable, error) {
	if compile == nil {
		compile = match.DefaultCompiler
	}
	if handlerCompare == nil {
		handlerCompare = noPreference
	}

	// Group by literal pattern source, preserving first-seen
	// order.
	order := make([]string, 0, len(r.candidates))
	groups := make(map[string][]scorables.Scorable, len(r.candidates))
	for _, c := range r.candidates {
		if _, have := groups[c.Pattern]; !have {
			order = append(order, c.Pattern)
		}
		groups[c.Pattern] = append(groups[c.Pattern], c.Handler)
	}

	tops := make([]scorables.Scorable, 0, len(order))
	for _, source := range order {
		p, err := compile(source)
		if err != nil {
			return nil, &BadPattern{
				Source: source,
				Err:    err,
			}
		}

		handlers := groups[source]
		inner := handlers[0]
		if 1 < len(handlers) {
			inner = scorables.Fold(handlers, handlerCompare)
		}

		tops = append(tops, scorables.NewMatch(p, inner))
	}

	return scorables.Fold(tops, scorables.CompareMatches), nil
}

func noPreference(a, b interface{}) int {
	return 0
}
