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

// Package conversation tracks per-conversation state for a dispatch
// service.
package conversation

import (
	"sync"

	"github.com/KirbyMcKenzie/BotBuilder-V3/handlers"
	"github.com/KirbyMcKenzie/BotBuilder-V3/scope"
)

// Kind resolves the current *Conversation from a turn's scope.
const Kind scope.Kind = "conversation"

// Conversation is a pair: id and accumulated Bindings.
type Conversation struct {
	Id string `json:"id,omitempty"`

	// Bs holds bindings that handlers have accumulated across
	// turns.
	Bs handlers.Bindings `json:"bs"`
}

// Copy returns a new Conversation with the same id and a copy of the
// bindings.
func (c *Conversation) Copy() *Conversation {
	return &Conversation{
		Id: c.Id,
		Bs: c.Bs.Copy(),
	}
}

// Resolver layers this conversation over the given parent scope.
//
// The returned resolver reads a snapshot of the conversation's
// bindings, so a turn in flight never observes later mutation.
func (c *Conversation) Resolver(parent scope.Resolver) scope.Resolver {
	return scope.NewValues(parent, map[scope.Kind]interface{}{
		Kind: c.Copy(),
	})
}

// Roster is a locked set of Conversations.
type Roster struct {
	sync.RWMutex

	Id            string                   `json:"id"`
	Conversations map[string]*Conversation `json:"conversations"`
}

func NewRoster(id string) *Roster {
	return &Roster{
		Id:            id,
		Conversations: make(map[string]*Conversation, 32),
	}
}

// Ensure returns the conversation with the given id, creating it if
// needed.
func (r *Roster) Ensure(id string) *Conversation {
	r.Lock()
	c, have := r.Conversations[id]
	if !have {
		c = &Conversation{
			Id: id,
			Bs: handlers.NewBindings(),
		}
		r.Conversations[id] = c
	}
	r.Unlock()
	return c
}

// Copy gets a read lock and returns a copy of the roster.
func (r *Roster) Copy() *Roster {
	r.RLock()
	cs := make(map[string]*Conversation, len(r.Conversations))
	for id, c := range r.Conversations {
		cs[id] = c.Copy()
	}
	acc := &Roster{
		Id:            r.Id,
		Conversations: cs,
	}
	r.RUnlock()
	return acc
}
