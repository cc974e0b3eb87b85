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

package dispatch

// Spec is a declarative bot: a named, documented sequence of
// candidates.
//
// A Spec is the serialized form (usually YAML) of what a Registry
// holds at runtime.  Compiling the candidate sources into handlers is
// the caller's business, since that requires interpreters.
type Spec struct {
	// Name is the bot's name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Doc is (Markdown) documentation for this bot.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Candidates are considered in order.  Order matters: an exact
	// score tie goes to the earlier candidate.
	Candidates []*CandidateSpec `json:"candidates" yaml:"candidates"`
}

// CandidateSpec is the serialized form of one candidate.
type CandidateSpec struct {
	// Pattern is the pattern source string.
	Pattern string `json:"pattern" yaml:"pattern"`

	// Doc optionally describes this candidate.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Interpreter names the interpreter for Source (and Guard).
	Interpreter string `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`

	// Source is the handler code, which runs when this candidate
	// wins.
	Source string `json:"source" yaml:"source"`

	// Guard is optional code that runs during preparation.  A
	// guard that returns null declines the candidate.
	Guard string `json:"guard,omitempty" yaml:"guard,omitempty"`

	// Priority breaks ties among handlers that share one pattern.
	// Higher wins.
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Copy makes a deep copy of the Spec.
func (s *Spec) Copy() *Spec {
	acc := &Spec{
		Name:       s.Name,
		Doc:        s.Doc,
		Candidates: make([]*CandidateSpec, len(s.Candidates)),
	}
	for i, c := range s.Candidates {
		cp := *c
		acc.Candidates[i] = &cp
	}
	return acc
}
