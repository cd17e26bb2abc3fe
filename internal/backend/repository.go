/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"venueplan/internal/domain"
)

// ErrNotFound is returned when no plan exists for a venue/line scope.
var ErrNotFound = errors.New("plan not found")

// PlanRecord is a stored plan scope.
type PlanRecord struct {
	VenueID   string           `json:"venueId"`
	LineID    string           `json:"lineId,omitempty"`
	Elements  []domain.Element `json:"elements"`
	Version   int64            `json:"version"`
	UpdatedBy string           `json:"updatedBy,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Store is the persistence the HTTP server needs.
type Store interface {
	GetPlan(ctx context.Context, venueID, lineID string) (*PlanRecord, error)
	PutPlan(ctx context.Context, venueID, lineID, subject string, elems []domain.Element) (*PlanRecord, error)
	Ping(ctx context.Context) error
}

// language=SQL
const selectPlanSQL = `SELECT elements, version, updated_by, updated_at FROM plans WHERE venue_id = $1 AND line_id = $2`

// language=SQL
const upsertPlanSQL = `INSERT INTO plans (venue_id, line_id, elements, updated_by)
VALUES ($1, $2, $3, $4)
ON CONFLICT (venue_id, line_id) DO UPDATE
SET elements = EXCLUDED.elements, version = plans.version + 1, updated_by = EXCLUDED.updated_by, updated_at = now()
RETURNING version, updated_at`

// language=SQL
const insertHistorySQL = `INSERT INTO plan_history (venue_id, line_id, version, elements) VALUES ($1, $2, $3, $4)`

// Repository stores plans in Postgres. Each write replaces the scope's
// elements, bumps its version and appends a history row.
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an open database.
func NewRepository(db *sql.DB) *Repository { return &Repository{db: db} }

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

// GetPlan returns the plan stored for the scope or ErrNotFound.
func (r *Repository) GetPlan(ctx context.Context, venueID, lineID string) (*PlanRecord, error) {
	var (
		raw []byte
		rec = PlanRecord{VenueID: venueID, LineID: lineID}
	)
	err := r.db.QueryRowContext(ctx, selectPlanSQL, venueID, lineID).Scan(&raw, &rec.Version, &rec.UpdatedBy, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select plan: %w", err)
	}
	if err := json.Unmarshal(raw, &rec.Elements); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}
	if rec.Elements == nil {
		rec.Elements = []domain.Element{}
	}
	return &rec, nil
}

// PutPlan replaces the scope's elements and returns the new record.
func (r *Repository) PutPlan(ctx context.Context, venueID, lineID, subject string, elems []domain.Element) (*PlanRecord, error) {
	if venueID == "" {
		return nil, errors.New("venue id is required")
	}
	if elems == nil {
		elems = []domain.Element{}
	}
	raw, err := json.Marshal(elems)
	if err != nil {
		return nil, fmt.Errorf("encode elements: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	rec := PlanRecord{VenueID: venueID, LineID: lineID, Elements: elems, UpdatedBy: subject}
	if err := tx.QueryRowContext(ctx, upsertPlanSQL, venueID, lineID, raw, subject).Scan(&rec.Version, &rec.UpdatedAt); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("upsert plan: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertHistorySQL, venueID, lineID, rec.Version, raw); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("insert history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &rec, nil
}

// Scope binds the repository to one venue/line so it can serve as an
// autosave persister for a desktop session talking to Postgres directly.
func (r *Repository) Scope(venueID, lineID, subject string) *ScopedRepository {
	return &ScopedRepository{r: r, venueID: venueID, lineID: lineID, subject: subject}
}

// ScopedRepository persists and loads one plan scope.
type ScopedRepository struct {
	r       *Repository
	venueID string
	lineID  string
	subject string
}

// Persist implements autosave.Persister.
func (s *ScopedRepository) Persist(ctx context.Context, elems []domain.Element) error {
	_, err := s.r.PutPlan(ctx, s.venueID, s.lineID, s.subject, elems)
	return err
}

// Load returns the stored elements; a missing plan yields an empty collection.
func (s *ScopedRepository) Load(ctx context.Context) ([]domain.Element, error) {
	rec, err := s.r.GetPlan(ctx, s.venueID, s.lineID)
	if errors.Is(err, ErrNotFound) {
		return []domain.Element{}, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.Elements, nil
}
