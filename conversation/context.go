package conversation

import (
	"context"

	"github.com/KirbyMcKenzie/BotBuilder-V3/handlers"
)

type ctxKey struct{}

// NewContext returns a context carrying the given Conversation.
//
// A service puts the current turn's Conversation in the context so
// that handler plumbing deep in the dispatch pipeline can find it
// without knowing anything about the service.
func NewContext(ctx context.Context, c *Conversation) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// From extracts the Conversation (if any) from the context.
func From(ctx context.Context) (*Conversation, bool) {
	c, is := ctx.Value(ctxKey{}).(*Conversation)
	return c, is
}

// Update merges the given bindings into the identified conversation,
// creating the conversation if needed.
func (r *Roster) Update(id string, bs handlers.Bindings) *Conversation {
	r.Lock()
	c, have := r.Conversations[id]
	if !have {
		c = &Conversation{
			Id: id,
			Bs: handlers.NewBindings(),
		}
		r.Conversations[id] = c
	}
	for k, v := range bs {
		c.Bs[k] = v
	}
	r.Unlock()
	return c
}
