/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venueplan/internal/domain"
	"venueplan/internal/notify"
)

type recordingPersister struct {
	mu    sync.Mutex
	calls []domain.Collection
	err   error
}

func (r *recordingPersister) Persist(_ context.Context, elems []domain.Element) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, domain.Collection(elems).Clone())
	return r.err
}

func (r *recordingPersister) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordingPersister) last() domain.Collection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func coll(x float64) domain.Collection {
	return domain.Collection{{ID: "t1", Kind: domain.KindTable, X: x, Width: 40, Height: 40}}
}

func TestOnlyLatestScheduledStateIsPersisted(t *testing.T) {
	p := &recordingPersister{}
	var rec notify.Recorder
	s := New(30*time.Millisecond, p, &rec, nil)
	for i := 1; i <= 5; i++ {
		require.True(t, s.Schedule(coll(float64(i))))
	}
	assert.True(t, s.Pending())

	require.Eventually(t, func() bool { return p.count() == 1 }, time.Second, 5*time.Millisecond)
	s.Wait()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, p.count(), "intermediate schedules must not fire")
	assert.Equal(t, 5.0, p.last()[0].X)
	assert.False(t, s.Pending())
	last, _ := rec.Last()
	assert.Equal(t, notify.Success, last.Kind)
}

func TestScheduleTakesACopy(t *testing.T) {
	p := &recordingPersister{}
	s := New(10*time.Millisecond, p, &notify.Recorder{}, nil)
	c := coll(1)
	s.Schedule(c)
	c[0].X = 99
	require.Eventually(t, func() bool { return p.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1.0, p.last()[0].X)
}

func TestDestroyCancelsPendingTimer(t *testing.T) {
	p := &recordingPersister{}
	s := New(20*time.Millisecond, p, &notify.Recorder{}, nil)
	s.Schedule(coll(1))
	s.Destroy()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, p.count())
	assert.False(t, s.Schedule(coll(2)))
	assert.ErrorIs(t, s.Flush(context.Background()), ErrDestroyed)
	assert.ErrorIs(t, s.Save(context.Background(), coll(3)), ErrDestroyed)
}

func TestFailureIsNotifiedNotRolledBack(t *testing.T) {
	p := &recordingPersister{err: errors.New("db down")}
	var rec notify.Recorder
	s := New(time.Hour, p, &rec, nil)
	s.Schedule(coll(7))

	err := s.Flush(context.Background())
	require.Error(t, err)
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Error, last.Kind)
	assert.Contains(t, last.Message, "db down")
	assert.False(t, s.Pending())

	// a later schedule retries with the newest state
	p.err = nil
	s.Schedule(coll(8))
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 8.0, p.last()[0].X)
}

func TestSaveBypassesDebounce(t *testing.T) {
	p := &recordingPersister{}
	s := New(time.Hour, p, &notify.Recorder{}, nil)
	s.Schedule(coll(1))
	require.NoError(t, s.Save(context.Background(), coll(2)))
	assert.Equal(t, 1, p.count())
	assert.Equal(t, 2.0, p.last()[0].X)
	assert.False(t, s.Pending(), "explicit save supersedes the pending state")
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 1, p.count())
}

func TestOlderClaimedStateNeverOverwritesNewer(t *testing.T) {
	p := &recordingPersister{}
	var rec notify.Recorder
	s := New(time.Hour, p, &rec, nil)
	s.Schedule(coll(1))

	// a timer that claimed state 1 but has not persisted yet
	old, seq, ok := s.take(0)
	require.True(t, ok)

	require.NoError(t, s.Save(context.Background(), coll(2)))
	require.NoError(t, s.persist(context.Background(), old, seq, "autosave"))
	s.Wait()

	assert.Equal(t, 1, p.count())
	assert.Equal(t, 2.0, p.last()[0].X)
	assert.Len(t, rec.Messages(), 1)
}
