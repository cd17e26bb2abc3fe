/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"venueplan/internal/domain"
)

func newDraftStore(t *testing.T, line string) (*DraftStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return NewDraftStore(c, "venue-1", line, time.Minute), mr
}

func TestDraftStoreKey(t *testing.T) {
	s, _ := newDraftStore(t, "friday")
	if got := s.Key(); got != "venueplan:draft:venue-1:friday" {
		t.Fatalf("key: got %q", got)
	}
	s, _ = newDraftStore(t, "")
	if got := s.Key(); got != "venueplan:draft:venue-1" {
		t.Fatalf("key without line: got %q", got)
	}
}

func TestDraftStorePersistLoadDiscard(t *testing.T) {
	ctx := context.Background()
	s, mr := newDraftStore(t, "friday")
	if _, err := s.Load(ctx); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("empty store: got %v want ErrNoDraft", err)
	}
	elems := testPlan().Elements
	if err := s.Persist(ctx, elems); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if ttl := mr.TTL(s.Key()); ttl != time.Minute {
		t.Fatalf("ttl: got %v want 1m", ttl)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !domain.Collection(got).Equal(elems) {
		t.Fatalf("loaded draft mismatch: %+v", got)
	}
	if err := s.Discard(ctx); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("after discard: got %v want ErrNoDraft", err)
	}
}

func TestDraftStoreExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newDraftStore(t, "")
	if err := s.Persist(ctx, nil); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("empty draft: got %v, %v", got, err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := s.Load(ctx); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("expired draft: got %v want ErrNoDraft", err)
	}
}

func TestDraftStoreReportsConnectionErrors(t *testing.T) {
	c := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer c.Close()
	s := NewDraftStore(c, "venue-1", "", 0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Persist(ctx, nil); err == nil {
		t.Fatalf("expected error with redis down")
	}
	if _, err := s.Load(ctx); err == nil || errors.Is(err, ErrNoDraft) {
		t.Fatalf("connection error must not look like a missing draft: %v", err)
	}
}

func TestNewRedisClientPings(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	_ = c.Close()
}
