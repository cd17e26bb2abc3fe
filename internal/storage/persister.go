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
	"log/slog"
	"sync"
	"time"

	"venueplan/internal/domain"
	applog "venueplan/internal/log"
)

// Retention defaults for PlanPersister.
const (
	DefaultKeepRevisions = 100
	DefaultKeepBackups   = 20
)

// PlanPersister saves element collections into a plan directory: plan.json is
// rewritten and a revision is recorded. Revision failures are logged and do
// not fail the save, since plan.json is authoritative. Safe for concurrent use.
type PlanPersister struct {
	KeepRevisions int
	KeepBackups   int
	Trigger       string
	// SkipRevisions disables the sqlite revision log; only plan.json is written.
	SkipRevisions bool

	mu sync.Mutex
	h  *PlanHandle
}

// NewPlanPersister wraps h with the default retention.
func NewPlanPersister(h *PlanHandle) *PlanPersister {
	return &PlanPersister{
		KeepRevisions: DefaultKeepRevisions,
		KeepBackups:   DefaultKeepBackups,
		Trigger:       TriggerAutosave,
		h:             h,
	}
}

// Persist implements autosave.Persister.
func (p *PlanPersister) Persist(ctx context.Context, elems []domain.Element) error {
	if p == nil || p.h == nil {
		return errors.New("nil PlanPersister")
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "persist").With(
		slog.String("venue", p.h.Plan.VenueID),
		slog.Int("elements", len(elems)),
	)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	p.h.Plan.Elements = domain.Collection(elems).Clone()
	if err := Save(p.h); err != nil {
		return err
	}
	if !p.SkipRevisions {
		p.recordRevision(ctx, l)
	}
	if n, err := PruneBackups(p.h.Root, p.KeepBackups); err != nil {
		l.Warn("prune backups failed", slog.Any("err", err))
	} else if n > 0 {
		l.Debug("pruned backups", slog.Int("removed", n))
	}
	return nil
}

func (p *PlanPersister) recordRevision(ctx context.Context, l *slog.Logger) {
	if err := SaveRevision(ctx, p.h, p.Trigger, p.h.Plan.Elements, p.h.Plan.UpdatedAt); err != nil {
		l.Warn("record revision failed", slog.Any("err", err))
		return
	}
	if _, err := PruneRevisions(ctx, p.h, p.KeepRevisions); err != nil {
		l.Warn("prune revisions failed", slog.Any("err", err))
	}
}

// Load reopens plan.json and returns its elements.
func (p *PlanPersister) Load(ctx context.Context) ([]domain.Element, error) {
	if p == nil || p.h == nil {
		return nil, errors.New("nil PlanPersister")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	h, err := Open(p.h.Root)
	if err != nil {
		return nil, err
	}
	p.h.Plan = h.Plan
	return domain.Collection(h.Plan.Elements).Clone(), nil
}

// Plan returns a copy of the last saved or loaded plan.
func (p *PlanPersister) Plan() domain.Plan {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := p.h.Plan
	cp.Elements = domain.Collection(p.h.Plan.Elements).Clone()
	return cp
}

// CrashSnapshot writes elems, or the last saved plan when elems is nil, as a
// crash snapshot.
func (p *PlanPersister) CrashSnapshot(elems []domain.Element) (string, error) {
	if p == nil || p.h == nil {
		return "", errors.New("nil PlanPersister")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := &PlanHandle{Root: p.h.Root, PlanPath: p.h.PlanPath, Plan: p.h.Plan}
	if elems != nil {
		snap.Plan.Elements = elems
	}
	snap.Plan.UpdatedAt = time.Now().UTC()
	return AutosaveCrashSnapshot(snap)
}
