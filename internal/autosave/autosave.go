/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package autosave debounces persistence of the element collection.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"venueplan/internal/domain"
	"venueplan/internal/notify"
)

const (
	// DefaultDelay is the debounce window.
	DefaultDelay = 2000 * time.Millisecond
	// DefaultTimeout bounds a single persist call started by the timer.
	DefaultTimeout = 30 * time.Second
)

// ErrDestroyed is returned by Save and Flush after Destroy.
var ErrDestroyed = errors.New("autosave: scheduler destroyed")

// Persister stores the full element collection. It is told the new state and
// never asked to merge.
type Persister interface {
	Persist(ctx context.Context, elems []domain.Element) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, elems []domain.Element) error

func (f PersisterFunc) Persist(ctx context.Context, elems []domain.Element) error {
	return f(ctx, elems)
}

// Scheduler persists the most recently scheduled collection once no new
// schedule arrived for the debounce delay. Persist failures are reported via
// the notifier; local state is never rolled back. Safe for concurrent use.
type Scheduler struct {
	delay   time.Duration
	timeout time.Duration
	p       Persister
	n       notify.Notifier
	log     *slog.Logger

	mu        sync.Mutex
	timer     *time.Timer
	gen       uint64
	pending   domain.Collection
	has       bool
	destroyed bool

	// seq numbers claimed states; a persist whose seq is not newer than
	// landed is skipped so a later state never gets overwritten by an older one.
	seq      uint64
	saveMu   sync.Mutex
	landed   uint64
	inflight sync.WaitGroup
}

// New returns a scheduler. delay <= 0 selects DefaultDelay; a nil notifier or
// logger falls back to logging.
func New(delay time.Duration, p Persister, n notify.Notifier, logger *slog.Logger) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	if n == nil {
		n = notify.Log{L: logger}
	}
	return &Scheduler{delay: delay, timeout: DefaultTimeout, p: p, n: n, log: logger.With(slog.String("component", "autosave"))}
}

// Schedule records c as the latest state and restarts the debounce timer.
// It reports false after Destroy.
func (s *Scheduler) Schedule(c domain.Collection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return false
	}
	s.pending = c.Clone()
	s.has = true
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
	return true
}

// Pending reports whether a scheduled state has not been persisted yet.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.has
}

func (s *Scheduler) fire(gen uint64) {
	c, seq, ok := s.take(gen)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_ = s.persist(ctx, c, seq, "autosave")
}

// take claims the pending state for a timer of generation gen (0 matches any).
func (s *Scheduler) take(gen uint64) (domain.Collection, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || !s.has || (gen != 0 && gen != s.gen) {
		return nil, 0, false
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	c := s.pending
	s.pending, s.has = nil, false
	s.seq++
	s.inflight.Add(1)
	return c, s.seq, true
}

// Flush persists a pending state immediately. Without a pending state it is a no-op.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	destroyed := s.destroyed
	s.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}
	c, seq, ok := s.take(0)
	if !ok {
		return nil
	}
	return s.persist(ctx, c, seq, "flush")
}

// Save persists c right away, replacing any pending debounced state. It is the
// explicit "Save" action and returns the persist error, which is also notified.
func (s *Scheduler) Save(ctx context.Context, c domain.Collection) error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.pending, s.has = nil, false
	s.seq++
	seq := s.seq
	s.inflight.Add(1)
	s.mu.Unlock()
	return s.persist(ctx, c.Clone(), seq, "save")
}

func (s *Scheduler) persist(ctx context.Context, c domain.Collection, seq uint64, trigger string) error {
	defer s.inflight.Done()
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if seq <= s.landed {
		s.log.Debug("stale state skipped", slog.String("trigger", trigger), slog.Uint64("seq", seq))
		return nil
	}
	s.landed = seq
	start := time.Now()
	err := s.p.Persist(ctx, c)
	if err != nil {
		s.log.Error("persist failed", slog.String("trigger", trigger), slog.Int("elements", len(c)), slog.Any("err", err))
		s.n.Notify(notify.Error, fmt.Sprintf("Failed to save floor plan: %v", err))
		return fmt.Errorf("persist: %w", err)
	}
	s.log.Debug("persisted", slog.String("trigger", trigger), slog.Int("elements", len(c)), slog.Duration("took", time.Since(start)))
	s.n.Notify(notify.Success, "Floor plan saved")
	return nil
}

// Destroy cancels any pending timer and rejects later schedules. Persist calls
// already running are allowed to finish; use Wait to block on them.
func (s *Scheduler) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending, s.has = nil, false
}

// Wait blocks until in-flight persist calls have returned.
func (s *Scheduler) Wait() { s.inflight.Wait() }
