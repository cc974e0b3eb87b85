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

// Package scope provides chained, immutable value resolution.
//
// A Resolver is a node in a singly-linked chain.  Each node can
// resolve some kinds of values locally; anything it cannot resolve is
// delegated to its parent.  Local bindings always shadow the parent.
//
// A Resolver's bindings never change after construction, so resolvers
// can safely be shared across concurrent preparation attempts.
package scope

// Kind names the semantic kind of a requested value.
type Kind string

const (
	// MessageText is the textual content of the message being
	// dispatched.
	MessageText Kind = "messageText"

	// Pattern is the compiled pattern that claimed the message.
	Pattern Kind = "pattern"

	// Match is the whole match result.
	Match Kind = "match"

	// Groups is the ordered sequence of capture groups.
	Groups Kind = "groups"

	// GroupValue is the text of a named capture group.  Requests
	// of this kind carry the group name as the tag.
	GroupValue Kind = "groupValue"

	// GroupSpan is the raw capture (text plus span) of a named
	// capture group.  Requests of this kind carry the group name
	// as the tag.
	GroupSpan Kind = "groupSpan"
)

// Resolver resolves a value by Kind and an optional tag.
//
// The second return value reports whether the value was found.
// Not-found is a normal outcome and carries no error.
type Resolver interface {
	Resolve(kind Kind, tag string) (interface{}, bool)
}

type null struct{}

func (null) Resolve(Kind, string) (interface{}, bool) {
	return nil, false
}

// Null is the end of every chain: it resolves nothing.
var Null Resolver = null{}

// Values is a Resolver backed by a map, layered over a parent.
type Values struct {
	parent   Resolver
	bindings map[Kind]interface{}
}

// NewValues makes a Values over the given parent.  A nil parent
// means Null.  The given map is not copied; the caller must not
// modify it afterwards.
func NewValues(parent Resolver, bindings map[Kind]interface{}) *Values {
	if parent == nil {
		parent = Null
	}
	return &Values{
		parent:   parent,
		bindings: bindings,
	}
}

func (v *Values) Resolve(kind Kind, tag string) (interface{}, bool) {
	if x, have := v.bindings[kind]; have {
		return x, true
	}
	return v.parent.Resolve(kind, tag)
}

// WithMessageText is a convenience that layers a message text over
// the given parent.
func WithMessageText(parent Resolver, text string) Resolver {
	return NewValues(parent, map[Kind]interface{}{
		MessageText: text,
	})
}
