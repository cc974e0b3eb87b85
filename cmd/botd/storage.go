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
	"encoding/json"
	"log"
	"time"

	"github.com/KirbyMcKenzie/BotBuilder-V3/conversation"
	. "github.com/KirbyMcKenzie/BotBuilder-V3/util/testutil"

	bolt "go.etcd.io/bbolt"
)

// Storage persists conversation state in a bbolt file.
//
// One bucket per roster, one record per conversation, JSON values.
type Storage struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s == nil {
		return
	}
	if s.Debug {
		log.Printf("bbolt "+format, args...)
	}
}

// EnsureRoster creates the bucket for the given roster id if it
// doesn't already exist.
func (s *Storage) EnsureRoster(ctx context.Context, rid string) error {
	if s == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rid))
		return err
	})
}

// RemRoster deletes the roster's bucket (and all of its
// conversations).
func (s *Storage) RemRoster(ctx context.Context, rid string) error {
	if s == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.DeleteBucket([]byte(rid))
	})
}

// GetConversations reads all of the roster's conversations.
func (s *Storage) GetConversations(ctx context.Context, rid string) ([]*conversation.Conversation, error) {
	if s == nil {
		return []*conversation.Conversation{}, nil
	}
	cs := make([]*conversation.Conversation, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(rid))
		if b == nil {
			return nil
		}
		cur := b.Cursor()
		for id, bs := cur.First(); id != nil; id, bs = cur.Next() {
			var c conversation.Conversation
			if err := json.Unmarshal(bs, &c); err != nil {
				return err
			}
			c.Id = string(id)
			s.logf("GetConversations %s conversation %s", rid, JS(c))
			cs = append(cs, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logf("GetConversations %s found %d conversations", rid, len(cs))

	if len(cs) == 0 {
		return nil, nil
	}

	return cs, nil
}

// WriteConversations writes the given conversations to the roster's
// bucket.  A conversation with nil Bs is deleted.
func (s *Storage) WriteConversations(ctx context.Context, rid string, cs []*conversation.Conversation) error {
	if s == nil {
		return nil
	}

	if 0 == len(cs) {
		return nil
	}

	vals := make(map[string][]byte, len(cs))

	for _, c := range cs {
		id := c.Id
		if c.Bs == nil {
			vals[id] = nil
		} else {
			// To save some space, remove the id.
			c = &conversation.Conversation{
				Bs: c.Bs,
			}
			js, err := json.Marshal(&c)
			if err != nil {
				return err
			}
			vals[id] = js
		}
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(rid))
		if err != nil {
			return err
		}
		for id, bs := range vals {
			var (
				key = []byte(id)
				err error
			)
			if bs == nil {
				err = b.Delete(key)
			} else {
				err = b.Put(key, bs)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// RemConversation removes the conversation from the roster and from
// storage.
func (s *Service) RemConversation(ctx context.Context, cid string) error {
	s.roster.Lock()
	delete(s.roster.Conversations, cid)
	s.roster.Unlock()

	gone := &conversation.Conversation{
		Id: cid,
	}

	return s.store.WriteConversations(ctx, s.roster.Id, []*conversation.Conversation{gone})
}
