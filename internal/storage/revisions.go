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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"venueplan/internal/domain"
)

// Revision triggers recorded with each row.
const (
	TriggerSave     = "save"
	TriggerAutosave = "autosave"
	TriggerRebuild  = "rebuild"
)

// tsLayout has fixed width so timestamps sort as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// language=SQL
// dialect=SQLite
const insertRevisionSQL = `INSERT INTO revisions(venue_id, line_id, ts, trigger, element_count, elements) VALUES (?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const listRevisionsSQL = `SELECT id, ts, trigger, elements FROM revisions WHERE venue_id = ? AND line_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneRevisionsSQL = `DELETE FROM revisions WHERE venue_id = ? AND line_id = ? AND id NOT IN (
	SELECT id FROM revisions WHERE venue_id = ? AND line_id = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// Revision is one recorded state of a plan's element collection.
type Revision struct {
	ID       int64
	VenueID  string
	LineID   string
	TS       time.Time
	Trigger  string
	Elements []domain.Element
}

// SaveRevision records elems as a new revision of the plan scope held by h.
func SaveRevision(ctx context.Context, h *PlanHandle, trigger string, elems []domain.Element, ts time.Time) error {
	if h == nil {
		return errors.New("nil PlanHandle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return insertRevision(ctx, db, h.Plan.VenueID, h.Plan.LineID, trigger, elems, ts)
}

func insertRevision(ctx context.Context, db *sql.DB, venueID, lineID, trigger string, elems []domain.Element, ts time.Time) error {
	if elems == nil {
		elems = []domain.Element{}
	}
	blob, err := json.Marshal(elems)
	if err != nil {
		return fmt.Errorf("marshal revision: %w", err)
	}
	if _, err := db.ExecContext(ctx, insertRevisionSQL, venueID, lineID, ts.UTC().Format(tsLayout), trigger, len(elems), blob); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

// LatestRevision returns the newest revision for the plan scope, or nil if none.
func LatestRevision(ctx context.Context, h *PlanHandle) (*Revision, error) {
	revs, err := ListRevisions(ctx, h, 1)
	if err != nil || len(revs) == 0 {
		return nil, err
	}
	return &revs[0], nil
}

// ListRevisions returns up to limit revisions for the plan scope, newest first.
// limit <= 0 selects 50.
func ListRevisions(ctx context.Context, h *PlanHandle, limit int) ([]Revision, error) {
	if h == nil {
		return nil, errors.New("nil PlanHandle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listRevisionsSQL, h.Plan.VenueID, h.Plan.LineID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Revision
	for rows.Next() {
		var (
			r     Revision
			tsStr string
			blob  []byte
		)
		if err := rows.Scan(&r.ID, &tsStr, &r.Trigger, &blob); err != nil {
			return nil, err
		}
		r.VenueID, r.LineID = h.Plan.VenueID, h.Plan.LineID
		r.TS, _ = time.Parse(tsLayout, tsStr)
		if err := json.Unmarshal(blob, &r.Elements); err != nil {
			return nil, fmt.Errorf("decode revision %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneRevisions keeps the newest keepLast revisions of the plan scope and
// deletes the rest. It returns the number of rows removed.
func PruneRevisions(ctx context.Context, h *PlanHandle, keepLast int) (int64, error) {
	if h == nil {
		return 0, errors.New("nil PlanHandle")
	}
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	v, l := h.Plan.VenueID, h.Plan.LineID
	res, err := db.ExecContext(ctx, pruneRevisionsSQL, v, l, v, l, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
