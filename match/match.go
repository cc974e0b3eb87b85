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

// Package match provides compiled patterns and their match results.
//
// A Pattern is a compiled matcher together with its canonical source
// string.  The source string -- not the matcher -- is the pattern's
// identity: candidates that share a source string are grouped
// together, and two differently-written but equivalent patterns are
// treated as distinct.
//
// This package does not insist on any particular regular expression
// engine.  A Compiler turns a source string into a Pattern, and the
// caller picks the Compiler.
package match

import (
	"errors"
)

// A Capture is one group's outcome within a Result.
//
// A Capture can fail even when the overall match succeeded.  For
// example, a named group inside an alternation might not participate
// in the match.
type Capture struct {
	// Name is the group's name.  For unnamed groups, the name is
	// the group number as a string.
	Name string `json:"name,omitempty"`

	// Value is the captured text (when Success).
	Value string `json:"value,omitempty"`

	// Index is the offset of the captured span within the input.
	//
	// The unit (bytes or runes) is determined by the matcher that
	// produced this Capture.  Within one Result the unit is
	// consistent.
	Index int `json:"index"`

	// Length is the length of the captured span, in the same unit
	// as Index.
	Length int `json:"length"`

	// Success reports whether this group participated in the
	// match.
	Success bool `json:"success"`
}

// Result is the outcome of running a Pattern against a text.
type Result struct {
	// Success reports whether the pattern matched at all.
	Success bool `json:"success"`

	// Groups holds the numbered capture groups in order.  Group 0
	// is the whole match.  Empty when Success is false.
	Groups []Capture `json:"groups,omitempty"`
}

// Failure is the canonical unsuccessful Result.
var Failure = &Result{}

// Value returns the text of the whole match (group 0).
func (r *Result) Value() string {
	if !r.Success {
		return ""
	}
	return r.Groups[0].Value
}

// Length returns the length of the whole match (group 0).
func (r *Result) Length() int {
	if !r.Success {
		return 0
	}
	return r.Groups[0].Length
}

// Group returns the first successful capture with the given name.
//
// Group names need not be unique within a pattern.  An existing but
// unsuccessful group is not returned.
func (r *Result) Group(name string) (*Capture, bool) {
	if !r.Success {
		return nil, false
	}
	for i := 1; i < len(r.Groups); i++ {
		g := &r.Groups[i]
		if g.Name == name && g.Success {
			return g, true
		}
	}
	return nil, false
}

// Matcher runs a compiled pattern against a text.
//
// A failed match is a normal outcome: (Failure, nil).  An error is
// reserved for trouble in the engine itself (say a match timeout).
type Matcher interface {
	Match(text string) (*Result, error)
}

// Pattern is a compiled Matcher plus the source string it was
// compiled from.
//
// A Pattern is immutable.  Equality is by Source.
type Pattern struct {
	// Source is the canonical source string for this pattern.
	Source string `json:"source"`

	matcher Matcher
}

// NewPattern wraps an already-compiled Matcher.
func NewPattern(source string, m Matcher) (*Pattern, error) {
	if m == nil {
		return nil, errors.New("nil matcher")
	}
	return &Pattern{
		Source:  source,
		matcher: m,
	}, nil
}

// Match runs the pattern against the given text.
func (p *Pattern) Match(text string) (*Result, error) {
	return p.matcher.Match(text)
}

// Compiler compiles a pattern source string.
//
// The core dispatch machinery never compiles patterns itself; the
// caller supplies a Compiler.
type Compiler func(source string) (*Pattern, error)

// DefaultCompiler is used by utilities when no Compiler is given.
var DefaultCompiler = CompileDotNet
