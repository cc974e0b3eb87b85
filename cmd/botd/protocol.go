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
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/KirbyMcKenzie/BotBuilder-V3/conversation"
	"github.com/KirbyMcKenzie/BotBuilder-V3/dispatch"
	. "github.com/KirbyMcKenzie/BotBuilder-V3/util/testutil"
)

// SOp is a Service Operation.
//
// Only one of GetSpec, GetConversations, or BOp should have value.
type SOp struct {
	// GetSpec returns the bot spec the service loaded.
	GetSpec *GetSpecOp `json:"getSpec,omitempty" yaml:",omitempty"`

	// GetConversations gets (a copy of) the conversation roster.
	GetConversations *GetConversationsOp `json:"getConversations,omitempty" yaml:",omitempty"`

	// Error will hold an error (if any) that results from
	// processing this operation.
	Error error `json:"-" yaml:"-"`

	// Err will hold a string representation of an error (if any)
	// that results from processing this operation.
	Err string `json:"err,omitempty" yaml:",omitempty"`

	// BOp gives a bot operation.
	BOp *BOp `json:"bop,omitempty" yaml:"bop,omitempty"`
}

// erred is a utility function to return values to assign to operation
// Error and Err fields.
func erred(err error) (error, string) {
	if err == nil {
		return nil, ""
	}
	return err, err.Error()
}

func (o *SOp) Do(ctx context.Context, s *Service) error {

	s.op(ctx, map[string]interface{}{
		"do": o,
	})

	var err error
	if o.GetSpec != nil {
		err = o.GetSpec.Do(ctx, s)
	} else if o.GetConversations != nil {
		err = o.GetConversations.Do(ctx, s)
	} else if o.BOp != nil {
		err = o.BOp.Do(ctx, s)
	} else {
		err = fmt.Errorf("not implemented: %s", JS(o))
	}

	if err != nil && o.Error == nil {
		o.Error, o.Err = erred(err)
	}

	s.op(ctx, map[string]interface{}{
		"did": o,
	})

	return o.Error
}

type GetSpecOp struct {
	Spec *dispatch.Spec `json:"spec,omitempty" yaml:",omitempty"`
}

func (o *GetSpecOp) Do(ctx context.Context, s *Service) error {
	o.Spec = s.spec.Copy()
	return nil
}

type GetConversationsOp struct {
	Roster *conversation.Roster `json:"roster,omitempty" yaml:",omitempty"`
}

func (o *GetConversationsOp) Do(ctx context.Context, s *Service) error {
	o.Roster = s.roster.Copy()
	return nil
}

// BOp is a bot operation.
//
// In normal use, only one field should be given.
type BOp struct {
	// Process sends a message to the bot.
	Process *OpProcess `json:"process,omitempty" yaml:",omitempty"`

	// Rem removes a conversation.
	Rem *OpRem `json:"rem,omitempty" yaml:",omitempty"`

	Exercise *OpExercise `json:"exercise,omitempty" yaml:",omitempty"`
}

func (o *BOp) Do(ctx context.Context, s *Service) error {
	if o.Process != nil {
		return o.Process.Do(ctx, s)
	}
	if o.Rem != nil {
		return o.Rem.Do(ctx, s)
	}
	if o.Exercise != nil {
		return o.Exercise.Do(ctx)
	}
	panic("not implemented")
}

type OpProcess struct {
	// Oid is the optional operation id.  A "transaction" id.
	Oid string `json:"oid,omitempty" yaml:",omitempty"`

	// Message is the message to process.
	Message interface{} `json:"message,omitempty" yaml:",omitempty"`

	// Turn is the result of processing the message (if the message
	// was a turn).
	Turn *Turn `json:"turn,omitempty" yaml:",omitempty"`

	Render bool `json:"render,omitempty" yaml:",omitempty"`

	// Error will hold an error (if any) that results from
	// processing this operation.
	Error error `json:"-" yaml:"-"`

	// Err will hold a string representation of an error (if any)
	// that results from processing this operation.
	Err string `json:"err,omitempty" yaml:",omitempty"`
}

func (o *OpProcess) Do(ctx context.Context, s *Service) error {
	var err error
	o.Turn, err = s.Process(ctx, o.Message)
	o.Error, o.Err = erred(err)

	if o.Render && o.Turn != nil {
		Render(os.Stderr, "op", o.Turn)
	}
	return err
}

type OpRem struct {
	// Oid is the optional operation id.  A "transaction" id.
	Oid string `json:"oid,omitempty" yaml:",omitempty"`

	// Cid is the id of the conversation to remove.
	Cid string `json:"cid"`

	// Error will hold an error (if any) that results from
	// processing this operation.
	Error error `json:"-" yaml:"-"`

	// Err will hold a string representation of an error (if any)
	// that results from processing this operation.
	Err string `json:"err,omitempty" yaml:",omitempty"`
}

func (o *OpRem) Do(ctx context.Context, s *Service) error {
	o.Error, o.Err = erred(s.RemConversation(ctx, o.Cid))
	return nil
}

type OpExercise struct {
	Count      int    `json:"count,omitempty" yaml:",omitempty"`
	Port       string `json:"port,omitempty" yaml:",omitempty"`
	Error      error  `json:"-" yaml:"-"`
	Err        string `json:"err,omitempty" yaml:",omitempty"`
	Background bool   `json:"background,omitempty" yaml:",omitempty"`
}

func (o *OpExercise) Do(ctx context.Context) error {
	addr := o.Port
	port, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		o.Error, o.Err = erred(err)
		return err
	}

	c, err := net.DialTCP("tcp", nil, port)
	if err != nil {
		o.Error, o.Err = erred(err)
		return err
	}

	f := func(n int) {
		in := bufio.NewReader(c)
		out := bufio.NewWriter(c)

		for i := 0; i < n; i++ {
			msg := fmt.Sprintf(`{"bop":{"process":{"message":{"cid":"exercise","text":"hello %d"}}}}`+"\n", i)
			if _, err := out.Write([]byte(msg)); err != nil {
				log.Printf("OpExercise Writer error %v", err)
				break
			}
			if err = out.Flush(); err != nil {
				log.Printf("OpExercise Writer flush error %v", err)
				break
			}
			_, err := in.ReadBytes('\n')
			if err != nil {
				log.Printf("OpExercise read error %v at %d", err, i)
				break
			}
		}

		log.Printf("OpExercise wrote, read %d", n)
		c.Close()
	}

	if o.Background {
		log.Printf("OpExercise %d background", o.Count)
		go f(o.Count)
	} else {
		f(o.Count)
	}

	o.Error, o.Err = erred(err)
	return err
}
