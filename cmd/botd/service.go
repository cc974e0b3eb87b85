package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/KirbyMcKenzie/BotBuilder-V3/conversation"
	"github.com/KirbyMcKenzie/BotBuilder-V3/dispatch"
	"github.com/KirbyMcKenzie/BotBuilder-V3/handlers"
	"github.com/KirbyMcKenzie/BotBuilder-V3/interpreters"
	"github.com/KirbyMcKenzie/BotBuilder-V3/match"
	"github.com/KirbyMcKenzie/BotBuilder-V3/scope"
	"github.com/KirbyMcKenzie/BotBuilder-V3/scorables"
	. "github.com/KirbyMcKenzie/BotBuilder-V3/util/testutil"

	"github.com/jsccast/yaml"
)

type Service struct {
	Emitted    chan interface{}
	Processing chan interface{}
	Errors     chan interface{} // Should be error
	Tracing    bool

	ops chan interface{}

	interpreters map[string]handlers.Interpreter
	spec         *dispatch.Spec
	dispatcher   scorables.Scorable
	roster       *conversation.Roster
	store        *Storage
	timers       *Timers
	mqtt         *MQTTCoupling

	wsClientC chan interface{}
}

// Turn is the result of processing one message for one conversation.
type Turn struct {
	Cid  string `json:"cid"`
	Text string `json:"text"`

	// Claimed reports whether any candidate claimed the message.
	Claimed bool `json:"claimed"`

	// Pattern is the winning candidate's pattern source.
	Pattern string `json:"pattern,omitempty"`

	// Match is the winning pattern's match result.
	Match *match.Result `json:"match,omitempty"`

	// Emitted holds the messages the winning handler emitted.
	Emitted []interface{} `json:"emitted,omitempty"`
}

func (s *Service) trf(format string, args ...interface{}) {
	if !s.Tracing {
		return
	}
	log.Printf("trace "+format, args...)
}

func NewService(ctx context.Context, specFile, dbFile string) (*Service, error) {

	var store *Storage
	if dbFile != "" {
		var err error

		if store, err = NewStorage(dbFile); err != nil {
			return nil, err
		}

		if err = store.Open(ctx); err != nil {
			return nil, err
		}

		go func() {
			<-ctx.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := store.Close(ctx); err != nil {
				log.Printf("Service.store.Close error %s", err)
				// Race if we try to use s.Errors.
			}
		}()
	}

	specSrc, err := os.ReadFile(specFile)
	if err != nil {
		return nil, err
	}
	var spec dispatch.Spec
	if err = yaml.Unmarshal(specSrc, &spec); err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = "bot"
	}

	s := Service{
		interpreters: interpreters.Standard(),
		spec:         &spec,
		roster:       conversation.NewRoster(spec.Name),
		store:        store,
	}

	if store != nil {
		if err := store.EnsureRoster(ctx, spec.Name); err != nil {
			return nil, err
		}
		cs, err := store.GetConversations(ctx, spec.Name)
		if err != nil {
			return nil, err
		}
		for _, c := range cs {
			s.roster.Update(c.Id, c.Bs)
		}
	}

	emitter := func(ctx context.Context, msg interface{}) error {
		_, err := s.Process(ctx, msg)
		return err
	}
	s.timers = NewTimers(emitter)
	s.timers.Errors = s.Errors

	if s.dispatcher, err = s.compile(ctx); err != nil {
		return nil, err
	}

	return &s, nil
}

// compile turns the bot spec's candidates into the dispatch entry
// point.
//
// Each candidate's handler (and guard) is wrapped so that the current
// turn's conversation, carried by the context, seeds the handler's
// bindings and accumulates the bindings the handler returns.
func (s *Service) compile(ctx context.Context) (scorables.Scorable, error) {
	r := dispatch.NewRegistry()

	for _, c := range s.spec.Candidates {
		src := &handlers.Source{
			Interpreter: c.Interpreter,
			Source:      c.Source,
		}
		h, err := src.Compile(ctx, s.interpreters)
		if err != nil {
			return nil, fmt.Errorf("candidate %s handler: %w", JS(c.Pattern), err)
		}

		var guard handlers.Handler
		if c.Guard != "" {
			gsrc := &handlers.Source{
				Interpreter: c.Interpreter,
				Source:      c.Guard,
			}
			if guard, err = gsrc.Compile(ctx, s.interpreters); err != nil {
				return nil, fmt.Errorf("candidate %s guard: %w", JS(c.Pattern), err)
			}
			guard = s.conversational(guard, false)
		}

		r.AddCandidate(dispatch.Candidate{
			Pattern: c.Pattern,
			Doc:     c.Doc,
			Handler: &handlers.HandlerScorable{
				Handler:  s.conversational(h, true),
				Guard:    guard,
				Priority: c.Priority,
				Emit:     s.emit,
			},
		})
	}

	return r.Build(nil, handlers.ByPriority)
}

// conversational layers conversation state under the turn's bindings
// and, if update is true, merges the handler's resulting bindings
// back into the conversation.
func (s *Service) conversational(h handlers.Handler, update bool) handlers.Handler {
	return &handlers.FuncHandler{
		F: func(ctx context.Context, bs handlers.Bindings) (*handlers.Execution, error) {
			c, have := conversation.From(ctx)
			if have {
				seeded := c.Copy().Bs
				for k, v := range bs {
					seeded[k] = v
				}
				bs = seeded
			}

			e, err := h.Exec(ctx, bs)
			if err != nil {
				return nil, err
			}

			if update && have && e != nil && e.Bs != nil {
				s.roster.Update(c.Id, e.Bs)
			}

			return e, nil
		},
	}
}

func (s *Service) op(ctx context.Context, x interface{}) {
	if s.ops != nil {
		select {
		case s.ops <- Copy(x):
		default:
			log.Printf("Service ops chan blocked")
		}
	}
}

// Process routes the message to a coupling ("to" addressing) or runs
// one dispatch turn for the message's conversation.
//
// A nil Turn with a nil error means the message wasn't a turn (it was
// routed, or it carried no text).
func (s *Service) Process(ctx context.Context, msg interface{}) (*Turn, error) {
	s.trf("Service.Process %s", JS(msg))

	if s.Processing != nil {
		select {
		case s.Processing <- msg:
		default:
			log.Printf("Service.Process Processing chan blocked")
		}
	}

	routed, err := s.Route(ctx, msg)
	if err != nil {
		return nil, err
	}
	if routed {
		return nil, nil
	}

	cid, text := turnParts(msg)
	if text == "" {
		return nil, nil
	}

	c := s.roster.Ensure(cid)
	ctx = conversation.NewContext(ctx, c)
	sc := c.Resolver(scope.WithMessageText(scope.Null, text))

	turn := &Turn{
		Cid:  cid,
		Text: text,
	}

	state, err := s.dispatcher.Prepare(ctx, sc)
	if err != nil {
		return nil, err
	}
	if state == nil {
		s.trf("Service.Process no claim for %s", JS(text))
		return turn, nil
	}
	turn.Claimed = true

	score, err := s.dispatcher.Score(state)
	if err != nil {
		return nil, err
	}
	if r, is := score.(*match.Result); is {
		turn.Match = r
	}
	if w, have := scorables.Winner(state); have {
		if m, is := w.(*scorables.MatchScorable); is {
			turn.Pattern = m.Pattern().Source
		}
	}

	if err = s.dispatcher.Commit(ctx, state); err != nil {
		return turn, err
	}

	if s.store != nil {
		cp := s.roster.Ensure(cid).Copy()
		cs := []*conversation.Conversation{cp}
		if err := s.store.WriteConversations(ctx, s.roster.Id, cs); err != nil {
			log.Printf("Service.Process warning for '%s' failed WriteConversations: %s", cid, err)
		}
	}

	return turn, nil
}

// emit forwards a handler-emitted message: out the Emitted channel
// and (asynchronously) back through Process, which routes messages
// addressed to couplings.
func (s *Service) emit(ctx context.Context, msg interface{}) error {
	if s.Emitted != nil {
		select {
		case s.Emitted <- msg:
		default:
			log.Printf("Service.emit Emitted chan blocked")
		}
	}

	go func() {
		if _, err := s.Process(ctx, msg); err != nil {
			s.err(err)
		}
	}()

	return nil
}

// turnParts extracts the conversation id and message text.  A missing
// cid gets the default conversation.
func turnParts(msg interface{}) (cid string, text string) {
	cid = "default"
	m, is := msg.(map[string]interface{})
	if !is {
		if s, is := msg.(string); is {
			return cid, s
		}
		return cid, ""
	}
	if x, have := m["cid"]; have {
		if s, is := x.(string); is {
			cid = s
		}
	}
	if x, have := m["text"]; have {
		if s, is := x.(string); is {
			text = s
		}
	}
	return cid, text
}

// Route sends addressed messages to their couplings.  Returns true
// when the message was consumed.
func (s *Service) Route(ctx context.Context, msg interface{}) (bool, error) {
	m, is := msg.(map[string]interface{})
	if !is {
		return false, nil
	}
	x, have := m["to"]
	if !have {
		return false, nil
	}
	to, is := x.(string)
	if !is {
		return false, nil
	}
	switch to {
	case "ws":
		if s.wsClientC == nil {
			return true, fmt.Errorf("no WebSocket client")
		}
		s.wsClientC <- msg
		return true, nil
	case "http":
		if err := s.toHTTP(ctx, msg); err != nil {
			// Not a "Route" problem.
			s.err(err)
		}
		return true, nil
	case "timers":
		if err := s.toTimers(ctx, msg); err != nil {
			// Not a "Route" problem.
			s.err(err)
		}
		return true, nil
	case "mqtt":
		if err := s.toMQTT(ctx, msg); err != nil {
			s.err(err)
		}
		return true, nil
	default:
		// Unknown address: let the dispatcher have it.
		return false, nil
	}
}

func (s *Service) err(err error) {
	// ToDo: Possibly send errors back to the service as messages.

	if s.Errors != nil {
		s.Errors <- err
	} else {
		log.Println(err)
	}
}
