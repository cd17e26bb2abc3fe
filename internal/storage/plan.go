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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"venueplan/internal/domain"
	applog "venueplan/internal/log"
)

const (
	PlanFileName   = "plan.json"
	BackupsDirName = "backups"
	ExportsDirName = "exports"

	// backupStamp sorts lexicographically; milliseconds keep rapid autosaves apart.
	backupStamp = "20060102-150405.000"
)

var standardSubDirs = []string{
	ExportsDirName,
	BackupsDirName,
}

// PlanHandle tracks a plan directory and the plan loaded from or saved to it.
type PlanHandle struct {
	Root     string
	PlanPath string
	Plan     domain.Plan
}

// InitPlan creates a plan directory at root, scaffolds its subfolders and
// writes plan.json transactionally.
func InitPlan(root string, plan domain.Plan) (*PlanHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if strings.TrimSpace(plan.VenueID) == "" {
		return nil, errors.New("venue id is required")
	}
	if err := scaffold(root); err != nil {
		return nil, err
	}
	h := &PlanHandle{
		Root:     root,
		PlanPath: filepath.Join(root, PlanFileName),
		Plan:     plan,
	}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads the plan in root. If plan.json is missing, unparsable or fails
// schema validation, the latest backup is used instead.
func Open(root string) (*PlanHandle, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("root", root))
	ppath := filepath.Join(root, PlanFileName)
	b, err := os.ReadFile(ppath)
	if err == nil {
		var p domain.Plan
		if err = decodePlan(b, &p); err == nil {
			return &PlanHandle{Root: root, PlanPath: ppath, Plan: p}, nil
		}
	}
	l.Warn("plan unreadable, trying latest backup", slog.Any("err", err))
	p, berr := openFromLatestBackup(root)
	if berr != nil {
		return nil, fmt.Errorf("open plan: %w; backup attempt: %v", err, berr)
	}
	return &PlanHandle{Root: root, PlanPath: ppath, Plan: *p}, nil
}

func decodePlan(b []byte, p *domain.Plan) error {
	if err := ValidatePlan(b); err != nil {
		return err
	}
	if err := json.Unmarshal(b, p); err != nil {
		return fmt.Errorf("parse plan: %w", err)
	}
	if p.Elements == nil {
		p.Elements = []domain.Element{}
	}
	return nil
}

// Save writes h.Plan to disk with transactional semantics and a timestamped
// backup of the previous plan.json. UpdatedAt is set to the current time.
func Save(h *PlanHandle) error {
	if h == nil {
		return errors.New("nil PlanHandle")
	}
	if h.Root == "" || h.PlanPath == "" {
		return errors.New("invalid PlanHandle: missing paths")
	}
	h.Plan.UpdatedAt = time.Now().UTC()
	if h.Plan.Elements == nil {
		h.Plan.Elements = []domain.Element{}
	}
	data, err := json.MarshalIndent(h.Plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(h.PlanPath); statErr == nil {
		bname := fmt.Sprintf("%s.%s.bak", PlanFileName, time.Now().Format(backupStamp))
		if cerr := copyFile(h.PlanPath, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current plan: %w", cerr)
		}
	}

	// Write to a temp file in the same directory, then rename over the target.
	dir := filepath.Dir(h.PlanPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", PlanFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp plan: %w", werr)
	}
	// Windows cannot rename over an existing file.
	if _, err := os.Stat(h.PlanPath); err == nil {
		_ = os.Remove(h.PlanPath)
	}
	if rerr := os.Rename(temp, h.PlanPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace plan: %w", rerr)
	}
	return nil
}

// SaveAs writes the plan into newRoot, scaffolding it if needed, and points the handle there.
func SaveAs(h *PlanHandle, newRoot string) error {
	if h == nil {
		return errors.New("nil PlanHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := scaffold(newRoot); err != nil {
		return err
	}
	h.Root = newRoot
	h.PlanPath = filepath.Join(newRoot, PlanFileName)
	return Save(h)
}

// PruneBackups keeps the newest keep plan backups and removes the rest.
// It returns the number of files removed.
func PruneBackups(root string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	backups, err := listBackups(root)
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}
	removed := 0
	for _, p := range backups[:len(backups)-keep] {
		if err := os.Remove(p); err != nil {
			return removed, fmt.Errorf("remove backup: %w", err)
		}
		removed++
	}
	return removed, nil
}

// AutosaveCrashSnapshot writes the plan held by h next to the backups without
// touching plan.json. It is used on panic, when the in-memory state may be newer
// than the last save.
func AutosaveCrashSnapshot(h *PlanHandle) (string, error) {
	if h == nil {
		return "", errors.New("nil PlanHandle")
	}
	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	data, err := json.MarshalIndent(h.Plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal plan: %w", err)
	}
	path := filepath.Join(bdir, fmt.Sprintf("crash-%s.%s", time.Now().Format(backupStamp), PlanFileName))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

func scaffold(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create plan root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// listBackups returns plan backups oldest first.
func listBackups(root string) ([]string, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, PlanFileName+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

// openFromLatestBackup returns the newest backup that still parses and validates.
func openFromLatestBackup(root string) (*domain.Plan, error) {
	candidates, err := listBackups(root)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	var lastErr error
	for i := len(candidates) - 1; i >= 0; i-- {
		b, err := os.ReadFile(candidates[i])
		if err != nil {
			lastErr = fmt.Errorf("read backup: %w", err)
			continue
		}
		var p domain.Plan
		if err := decodePlan(b, &p); err != nil {
			lastErr = err
			continue
		}
		return &p, nil
	}
	return nil, fmt.Errorf("no usable backup: %w", lastErr)
}
