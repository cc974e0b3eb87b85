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
	"context"
	"log"
	"os"
	"time"

	"testing"

	. "github.com/KirbyMcKenzie/BotBuilder-V3/util/testutil"
)

func TestServiceBasic(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := testServiceBasic(ctx, t)
	s.store.Close(ctx) // ToDo: Check error.
}

func testServiceBasic(ctx context.Context, t *testing.T) *Service {

	dbFile := "test.db"

	removeDBFile := func() {
		if _, err := os.Stat(dbFile); err == nil {
			log.Printf("removing dbFile %s", dbFile)
			if err := os.Remove(dbFile); err != nil {
				t.Fatal(err)
			}
		}
	}

	removeDBFile()

	defer removeDBFile()

	s, err := NewService(ctx, "../../specs/echo.yaml", dbFile)
	if err != nil {
		t.Fatal(err)
	}

	s.Emitted = make(chan interface{}, 8)
	s.Processing = make(chan interface{}, 8)

	op := SOp{
		BOp: &BOp{
			Process: &OpProcess{
				Message: Dwimjs(`{"cid":"home","text":"hi there"}`),
			},
		},
	}

	if err = op.Do(ctx, s); err != nil {
		t.Fatal(err)
	}

	if turn := op.BOp.Process.Turn; turn == nil {
		t.Fatal("no turn")
	} else if !turn.Claimed {
		t.Fatal("greeting wasn't claimed")
	} else if turn.Pattern == "" {
		t.Fatal("no winning pattern")
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-s.Processing:
				Logf("processing %s", JS(m))
			}
		}
	}()

	m := <-s.Emitted
	Logf("emitted %s", JS(m))

	if said, is := m.(map[string]interface{}); !is || said["say"] != "hello!" {
		t.Fatalf("surprised by %#v", m)
	}

	return s
}

func TestServiceMemory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := NewService(ctx, "../../specs/echo.yaml", "")
	if err != nil {
		t.Fatal(err)
	}

	s.Emitted = make(chan interface{}, 8)

	process := func(text string) string {
		op := SOp{
			BOp: &BOp{
				Process: &OpProcess{
					Message: Dwimjs(`{"cid":"home","text":"` + text + `"}`),
				},
			},
		}
		if err := op.Do(ctx, s); err != nil {
			t.Fatal(err)
		}
		select {
		case m := <-s.Emitted:
			said, is := m.(map[string]interface{})
			if !is {
				t.Fatalf("surprised by %#v", m)
			}
			reply, _ := said["say"].(string)
			return reply
		case <-time.NewTimer(time.Second).C:
			t.Fatalf("no reply to '%s'", text)
			return ""
		}
	}

	if say := process("what do you remember"); say != "nothing" {
		t.Fatal(say)
	}

	if say := process("remember tacos are good"); say != "okay" {
		t.Fatal(say)
	}

	if say := process("what do you remember"); say != "tacos are good" {
		t.Fatal(say)
	}
}

func TestServiceRemConversation(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := testServiceBasic(ctx, t)

	op := SOp{
		BOp: &BOp{
			Rem: &OpRem{
				Cid: "home",
			},
		},
	}

	if err := op.Do(ctx, s); err != nil {
		t.Fatal(err)
	}

	op = SOp{
		GetConversations: &GetConversationsOp{},
	}

	if err := op.Do(ctx, s); err != nil {
		t.Fatal(err)
	}

	for _, c := range op.GetConversations.Roster.Conversations {
		if c.Id == "home" {
			t.Fatal("'home' should be gone")
		}
	}

	s.store.Close(ctx) // ToDo: Check error.
}

func TestServiceUnclaimed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := NewService(ctx, "../../specs/echo.yaml", "")
	if err != nil {
		t.Fatal(err)
	}

	turn, err := s.Process(ctx, Dwimjs(`{"cid":"home","text":"qqqqq"}`))
	if err != nil {
		t.Fatal(err)
	}
	if turn == nil {
		t.Fatal("expected a turn")
	}
	if turn.Claimed {
		t.Fatal("nobody should have claimed that")
	}

	// No text at all: not a turn.
	turn, err = s.Process(ctx, Dwimjs(`{"likes":"tacos"}`))
	if err != nil {
		t.Fatal(err)
	}
	if turn != nil {
		t.Fatalf("surprised by %#v", turn)
	}
}
