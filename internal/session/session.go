/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package session wires an editing session for one plan directory: it opens
// the plan, picks the persistence backend from the configuration, connects the
// notifiers and hands back a ready controller.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"venueplan/internal/autosave"
	"venueplan/internal/backend"
	"venueplan/internal/config"
	"venueplan/internal/domain"
	"venueplan/internal/editor"
	applog "venueplan/internal/log"
	"venueplan/internal/notify"
	"venueplan/internal/storage"
)

// Options configure Open.
type Options struct {
	Dir    string
	Config config.AppConfig
	// Token is the bearer token for the remote driver.
	Token string
	// Subject is recorded as updated_by for the postgres driver.
	Subject string
	// Notifier receives every notification in addition to the log.
	Notifier notify.Notifier
	Logger   *slog.Logger
}

// loader is implemented by persisters that can return the stored collection.
type loader interface {
	Load(ctx context.Context) ([]domain.Element, error)
}

// Session is an open plan with its controller and persistence.
type Session struct {
	Handle     *storage.PlanHandle
	Controller *editor.Controller
	Saver      *autosave.Scheduler
	Driver     string

	local   *storage.PlanPersister
	primary autosave.Persister
	drafts  *storage.DraftStore
	notify  notify.Notifier
	closers []func()
	log     *slog.Logger
}

// Open loads the plan in opts.Dir and wires the configured storage driver.
// Remote drivers that cannot be reached fail the open; the MQTT notifier is
// optional and only logged when unavailable.
func Open(ctx context.Context, opts Options) (*Session, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.WithComponent("session")
	}
	h, err := storage.Open(opts.Dir)
	if err != nil {
		return nil, err
	}
	scope := applog.Scope{Venue: h.Plan.VenueID, Line: h.Plan.LineID}
	l := logger.With(slog.String("venue", scope.Venue), slog.String("driver", cfg.Storage.Driver))
	if scope.Line != "" {
		l = l.With(slog.String("line", scope.Line))
	}

	s := &Session{Handle: h, Driver: cfg.Storage.Driver, log: l}
	s.local = storage.NewPlanPersister(h)
	s.local.KeepRevisions = cfg.Storage.KeepRevisions
	s.local.KeepBackups = cfg.Storage.KeepBackups
	s.local.SkipRevisions = cfg.Storage.Driver == config.DriverFile

	if err := s.connect(ctx, opts); err != nil {
		s.closeAll()
		return nil, err
	}
	s.notify = s.notifiers(opts, scope)

	initial, err := s.initialElements(ctx)
	if err != nil {
		s.closeAll()
		return nil, err
	}
	s.Saver = autosave.New(cfg.Editor.AutosaveDelay(), s.primary, s.notify, l)
	s.Controller = editor.New(cfg.Editor.Options(), editor.Deps{Saver: s.Saver, Notifier: s.notify, Logger: l})
	s.Controller.Load(initial)
	l.Info("session opened", slog.Int("elements", len(initial)))
	return s, nil
}

func (s *Session) connect(ctx context.Context, opts Options) error {
	cfg := opts.Config
	plan := s.Handle.Plan
	switch cfg.Storage.Driver {
	case config.DriverFile:
		s.primary = s.local
	case config.DriverSQLite:
		rebuilt, err := storage.DetectAndRebuildIndex(ctx, s.Handle.Root, plan)
		if err != nil {
			s.log.Warn("revision index unavailable", slog.Any("err", err))
		} else if rebuilt {
			s.log.Warn("revision index rebuilt")
		}
		s.primary = s.local
	case config.DriverPostgres:
		pw, _ := config.GetSecret(config.SecretDBPassword)
		db, err := backend.OpenPostgres(ctx, withPassword(cfg.Storage.DSN, pw))
		if err != nil {
			return err
		}
		s.closers = append(s.closers, func() { _ = db.Close() })
		if _, err := backend.ApplyMigrations(ctx, db); err != nil {
			return err
		}
		subject := opts.Subject
		if subject == "" {
			subject = currentUser()
		}
		s.primary = backend.NewRepository(db).Scope(plan.VenueID, plan.LineID, subject)
	case config.DriverRedis:
		pw, _ := config.GetSecret(config.SecretRedisPass)
		rc, err := storage.NewRedisClient(ctx, cfg.Storage.RedisAddr, pw, cfg.Storage.RedisDB)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, func() { _ = rc.Close() })
		s.drafts = storage.NewDraftStore(rc, plan.VenueID, plan.LineID, cfg.Storage.DraftTTL())
		s.primary = s.drafts
	case config.DriverRemote:
		c := backend.NewClient(backend.ClientConfig{
			BaseURL: cfg.Server.BaseURL,
			Token:   opts.Token,
			VenueID: plan.VenueID,
			LineID:  plan.LineID,
			Timeout: cfg.Server.Timeout(),
			Retries: 2,
		})
		if !c.Healthy(ctx) {
			return fmt.Errorf("remote server %s is not reachable", cfg.Server.BaseURL)
		}
		s.primary = c
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return nil
}

func (s *Session) notifiers(opts Options, scope applog.Scope) notify.Notifier {
	n := notify.Multi{notify.Log{L: s.log}}
	if opts.Notifier != nil {
		n = append(n, opts.Notifier)
	}
	nc := opts.Config.Notify
	if nc.MQTTBroker == "" {
		return n
	}
	label := scope.Venue
	if scope.Line != "" {
		label += "/" + scope.Line
	}
	m, err := notify.ConnectMQTT(notify.MQTTOptions{
		Broker:   nc.MQTTBroker,
		ClientID: nc.MQTTClientID,
		Topic:    nc.MQTTTopic,
		Scope:    label,
	}, s.log)
	if err != nil {
		s.log.Warn("mqtt notifier disabled", slog.Any("err", err))
		return n
	}
	s.closers = append(s.closers, m.Close)
	return append(n, m)
}

// initialElements picks the collection to edit: a pending Redis draft wins over
// plan.json, and a remote store wins unless it has nothing for this plan yet.
func (s *Session) initialElements(ctx context.Context) ([]domain.Element, error) {
	local := domain.Collection(s.Handle.Plan.Elements).Clone()
	switch s.Driver {
	case config.DriverRedis:
		elems, err := s.drafts.Load(ctx)
		if errors.Is(err, storage.ErrNoDraft) {
			return local, nil
		}
		if err != nil {
			return nil, err
		}
		s.notify.Notify(notify.Info, "Restored unsaved draft")
		return elems, nil
	case config.DriverPostgres, config.DriverRemote:
		ld, ok := s.primary.(loader)
		if !ok {
			return local, nil
		}
		elems, err := ld.Load(ctx)
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 && len(local) > 0 {
			return local, nil
		}
		return elems, nil
	}
	return local, nil
}

// Commit is an explicit save: pending edits are persisted through the driver
// and plan.json is rewritten when the driver is not the plan file itself. A
// committed Redis draft is discarded.
func (s *Session) Commit(ctx context.Context) error {
	elems := s.Controller.Elements()
	if err := s.Saver.Save(ctx, elems); err != nil {
		return err
	}
	if s.primary == s.local {
		return nil
	}
	prev := s.local.Trigger
	s.local.Trigger = storage.TriggerSave
	err := s.local.Persist(ctx, elems)
	s.local.Trigger = prev
	if err != nil {
		return err
	}
	if s.drafts != nil {
		if err := s.drafts.Discard(ctx); err != nil {
			s.log.Warn("discard draft failed", slog.Any("err", err))
		}
	}
	return nil
}

// Plan returns the last plan written to plan.json.
func (s *Session) Plan() domain.Plan { return s.local.Plan() }

// Elements returns the live collection; used for crash snapshots.
func (s *Session) Elements() []domain.Element {
	if s == nil || s.Controller == nil {
		return nil
	}
	return s.Controller.Elements()
}

// Close flushes any pending autosave and releases connections.
func (s *Session) Close(ctx context.Context) error {
	var err error
	if s.Saver != nil {
		err = s.Saver.Flush(ctx)
		s.Saver.Destroy()
		s.Saver.Wait()
	}
	s.closeAll()
	s.log.Info("session closed")
	return err
}

func (s *Session) closeAll() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// withPassword injects pw into a URL-style DSN that carries a user but no password.
func withPassword(dsn, pw string) string {
	if pw == "" {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil || u.Scheme == "" {
		return dsn
	}
	if _, has := u.User.Password(); has {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), pw)
	return u.String()
}

func currentUser() string {
	for _, k := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return "venueplan"
}

// closeTimeout bounds the final flush on shutdown.
const closeTimeout = 10 * time.Second

// CloseWithTimeout is Close with a bounded background context.
func (s *Session) CloseWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return s.Close(ctx)
}
