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
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"venueplan/internal/domain"
)

// DefaultDraftTTL is how long an unsaved draft survives in Redis.
const DefaultDraftTTL = 24 * time.Hour

// ErrNoDraft is returned by DraftStore.Load when no draft exists.
var ErrNoDraft = errors.New("no draft stored")

// draft is the value stored under a draft key.
type draft struct {
	VenueID  string           `json:"venueId"`
	LineID   string           `json:"lineId,omitempty"`
	SavedAt  time.Time        `json:"savedAt"`
	Elements []domain.Element `json:"elements"`
}

// DraftStore keeps the latest element collection of one plan scope in Redis
// so an interrupted session can be resumed on another machine.
type DraftStore struct {
	c       *redis.Client
	ttl     time.Duration
	venueID string
	lineID  string
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return c, nil
}

// NewDraftStore returns a store for the venue/line scope. ttl <= 0 selects DefaultDraftTTL.
func NewDraftStore(c *redis.Client, venueID, lineID string, ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftStore{c: c, ttl: ttl, venueID: venueID, lineID: lineID}
}

// Key returns the Redis key of the scope's draft.
func (s *DraftStore) Key() string {
	parts := []string{"venueplan", "draft", s.venueID}
	if s.lineID != "" {
		parts = append(parts, s.lineID)
	}
	return strings.Join(parts, ":")
}

// Persist implements autosave.Persister. Each call replaces the draft and
// restarts its TTL.
func (s *DraftStore) Persist(ctx context.Context, elems []domain.Element) error {
	if elems == nil {
		elems = []domain.Element{}
	}
	b, err := json.Marshal(draft{VenueID: s.venueID, LineID: s.lineID, SavedAt: time.Now().UTC(), Elements: elems})
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.c.Set(ctx, s.Key(), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("store draft: %w", err)
	}
	return nil
}

// Load returns the stored draft elements or ErrNoDraft.
func (s *DraftStore) Load(ctx context.Context) ([]domain.Element, error) {
	b, err := s.c.Get(ctx, s.Key()).Bytes()
	if err == redis.Nil {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	var d draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return d.Elements, nil
}

// Discard removes the draft, typically after an explicit save.
func (s *DraftStore) Discard(ctx context.Context) error {
	if err := s.c.Del(ctx, s.Key()).Err(); err != nil {
		return fmt.Errorf("discard draft: %w", err)
	}
	return nil
}
