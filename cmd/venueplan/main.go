/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"venueplan/internal/backend"
	"venueplan/internal/bulk"
	"venueplan/internal/config"
	"venueplan/internal/crash"
	"venueplan/internal/domain"
	"venueplan/internal/export"
	applog "venueplan/internal/log"
	"venueplan/internal/session"
	"venueplan/internal/storage"
	"venueplan/internal/ui"
	"venueplan/internal/version"
)

// errUsage marks argument errors; they exit with status 2.
var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprintln(w, "VenuePlan - venue floor-plan editor")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  venueplan version|-v|--version                 Show version")
	fmt.Fprintln(w, "  venueplan init <dir> <venue> [line]            Create an empty plan at <dir>")
	fmt.Fprintln(w, "  venueplan open <dir>                           Open the plan at <dir> and print a summary")
	fmt.Fprintln(w, "  venueplan revisions <dir> [limit]              List recorded revisions")
	fmt.Fprintln(w, "  venueplan export <dir> svg|png|pdf|xlsx <out>  Export the plan")
	fmt.Fprintln(w, "  venueplan batch <dir> web|print [outDir]       Export a preset into outDir (default <dir>/exports)")
	fmt.Fprintln(w, "  venueplan align <dir> <mode> <id>...           Align (left|center|right|top|middle|bottom),")
	fmt.Fprintln(w, "                                                 distribute (horizontal|vertical) or match elements")
	fmt.Fprintln(w, "  venueplan serve                                Run the plan API (storage.dsn must point at Postgres)")
	fmt.Fprintln(w, "  venueplan login <subject> [ttlSeconds]         Request a token from server.base_url and store it")
	fmt.Fprintln(w, "  venueplan config                               Show the config path and environment overrides")
	fmt.Fprintln(w, "  venueplan ui <dir>                             Launch desktop UI (build with -tags fyne)")
}

type cli struct {
	cfg   config.AppConfig
	token string
	out   io.Writer
	log   *slog.Logger
}

func main() {
	cfg, token, cfgErr := config.Load()
	applog.Init(cfg.Logging.LogOptions())
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config file ignored", slog.Any("err", cfgErr))
	}
	c := &cli{cfg: cfg, token: token, out: os.Stdout, log: l}
	l.Debug("start", slog.Int("args", len(os.Args)))
	os.Exit(c.run(os.Args[1:]))
}

func (c *cli) run(args []string) int {
	if len(args) == 0 {
		usage(c.out)
		return 0
	}
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(c.out, "VenuePlan", version.String())
		return 0
	case "init":
		err = c.initPlan(args[1:])
	case "open":
		err = c.open(args[1:])
	case "revisions":
		err = c.revisions(args[1:])
	case "export":
		err = c.export(args[1:])
	case "batch":
		err = c.batch(args[1:])
	case "align":
		err = c.align(args[1:])
	case "serve":
		err = c.serve()
	case "login":
		err = c.login(args[1:])
	case "config":
		err = c.showConfig()
	case "ui":
		if len(args) < 2 {
			err = fmt.Errorf("%w: ui requires <dir>", errUsage)
			break
		}
		abs, _ := filepath.Abs(args[1])
		err = ui.Run(abs, c.cfg, c.token)
	case "help", "-h", "--help":
		usage(c.out)
		return 0
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	if err == nil {
		return 0
	}
	fmt.Fprintln(c.out, "Error:", err)
	if errors.Is(err, errUsage) {
		usage(c.out)
		return 2
	}
	c.log.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
	return 1
}

func absDir(args []string, cmd string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("%w: %s requires <dir>", errUsage, cmd)
	}
	return filepath.Abs(args[0])
}

func (c *cli) initPlan(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: init requires <dir> and <venue>", errUsage)
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	p := domain.Plan{
		VenueID:      args[1],
		Name:         args[1],
		CanvasWidth:  c.cfg.Editor.CanvasWidth,
		CanvasHeight: c.cfg.Editor.CanvasHeight,
		Elements:     []domain.Element{},
	}
	if len(args) > 2 {
		p.LineID = args[2]
	}
	c.log.Info("init plan", slog.String("root", abs), slog.String("venue", p.VenueID), slog.String("line", p.LineID))
	if _, err := storage.InitPlan(abs, p); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Created plan at", abs)
	return nil
}

func (c *cli) open(args []string) error {
	abs, err := absDir(args, "open")
	if err != nil {
		return err
	}
	h, err := storage.Open(abs)
	if err != nil {
		return err
	}
	p := h.Plan
	counts := map[domain.Kind]int{}
	for _, e := range p.Elements {
		counts[e.Kind]++
	}
	_, zones := export.Inventory(p)
	seats := 0
	for _, z := range zones {
		seats += z.Seats
	}
	fmt.Fprintf(c.out, "Opened plan: %s\n", p.Name)
	fmt.Fprintf(c.out, "Venue: %s\n", p.VenueID)
	if p.LineID != "" {
		fmt.Fprintf(c.out, "Line: %s\n", p.LineID)
	}
	fmt.Fprintf(c.out, "Elements: %d (tables %d, zones %d, special areas %d, security %d)\n",
		len(p.Elements), counts[domain.KindTable], counts[domain.KindZone], counts[domain.KindSpecialArea], counts[domain.KindSecurity])
	fmt.Fprintf(c.out, "Seats: %d\n", seats)
	for _, z := range zones {
		fmt.Fprintf(c.out, "  %-20s tables %3d  seats %4d\n", z.Zone, z.Tables, z.Seats)
	}
	if !p.UpdatedAt.IsZero() {
		fmt.Fprintln(c.out, "Updated:", p.UpdatedAt.Local().Format(time.RFC3339))
	}
	fmt.Fprintln(c.out, "Root:", h.Root)
	return nil
}

func (c *cli) revisions(args []string) error {
	abs, err := absDir(args, "revisions")
	if err != nil {
		return err
	}
	limit := 20
	if len(args) > 1 {
		if limit, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("%w: limit must be a number", errUsage)
		}
	}
	h, err := storage.Open(abs)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	revs, err := storage.ListRevisions(ctx, h, limit)
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		fmt.Fprintln(c.out, "No revisions recorded.")
		return nil
	}
	for _, r := range revs {
		fmt.Fprintf(c.out, "%6d  %s  %-8s  %d elements\n", r.ID, r.TS.Local().Format(time.RFC3339), r.Trigger, len(r.Elements))
	}
	return nil
}

func (c *cli) export(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: export requires <dir> <format> <out>", errUsage)
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	f, err := export.ParseFormat(args[1])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	h, err := storage.Open(abs)
	if err != nil {
		return err
	}
	out := args[2]
	if fi, statErr := os.Stat(out); statErr == nil && fi.IsDir() {
		out = filepath.Join(out, export.FileName(h.Plan, f))
	}
	if err := export.ToFile(f, h.Plan, out, export.Options{Margin: 20}); err != nil {
		return err
	}
	c.log.Info("exported", slog.String("format", string(f)), slog.String("out", out))
	fmt.Fprintln(c.out, "Exported", out)
	return nil
}

func (c *cli) batch(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: batch requires <dir> <preset>", errUsage)
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	preset := export.PresetName(strings.ToLower(args[1]))
	if preset != export.PresetWeb && preset != export.PresetPrint {
		return fmt.Errorf("%w: unknown preset %q", errUsage, args[1])
	}
	outDir := filepath.Join(abs, storage.ExportsDirName)
	if len(args) > 2 {
		outDir = args[2]
	}
	h, err := storage.Open(abs)
	if err != nil {
		return err
	}
	written, err := export.BatchExport(h.Plan, export.BatchOptions{Preset: preset, OutDir: outDir})
	for _, p := range written {
		fmt.Fprintln(c.out, "Exported", p)
	}
	return err
}

func (c *cli) align(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: align requires <dir> <mode> <id>...", errUsage)
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	mode, ids := strings.ToLower(args[1]), args[2:]
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s, err := session.Open(ctx, session.Options{Dir: abs, Config: c.cfg, Token: c.token})
	if err != nil {
		return err
	}
	defer crash.Recover(s.Handle, s.Elements)
	defer func() {
		if cerr := s.Close(ctx); cerr != nil {
			c.log.Warn("close session", slog.Any("err", cerr))
		}
	}()

	ctrl := s.Controller
	for _, id := range ids {
		if _, ok := ctrl.Element(id); !ok {
			return fmt.Errorf("no element with id %q", id)
		}
	}
	ctrl.Select(ids...)
	switch mode {
	case "left", "center", "right", "top", "middle", "bottom":
		err = ctrl.Align(bulk.Alignment(mode))
	case "horizontal", "vertical":
		err = ctrl.Distribute(bulk.Axis(mode))
	case "match":
		err = ctrl.MatchSize(nil)
	default:
		return fmt.Errorf("%w: unknown align mode %q", errUsage, mode)
	}
	if err != nil {
		return err
	}
	if err := s.Commit(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Applied %s to %d elements\n", mode, len(ids))
	return nil
}

func (c *cli) serve() error {
	dsn := c.cfg.Storage.DSN
	if dsn == "" {
		return fmt.Errorf("%w: serve requires storage.dsn (or %s)", errUsage, config.EnvDSN)
	}
	secret, err := config.GetSecret(config.SecretAuthSecret)
	if err != nil && !errors.Is(err, config.ErrNoSecret) {
		c.log.Warn("keychain unavailable", slog.Any("err", err))
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Fprintln(c.out, "Serving plan API on", c.cfg.Server.Addr)
	return backend.Serve(ctx, dsn, backend.ServerConfig{
		Addr:         c.cfg.Server.Addr,
		Secret:       secret,
		ReadTimeout:  c.cfg.Server.Timeout(),
		WriteTimeout: c.cfg.Server.Timeout(),
	})
}

func (c *cli) login(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: login requires <subject>", errUsage)
	}
	ttl := 24 * time.Hour
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: ttlSeconds must be a positive number", errUsage)
		}
		ttl = time.Duration(n) * time.Second
	}
	issuer, err := config.GetSecret(config.SecretAuthSecret)
	if err != nil && !errors.Is(err, config.ErrNoSecret) {
		return fmt.Errorf("read auth secret: %w", err)
	}
	client := backend.NewClient(backend.ClientConfig{
		BaseURL:      c.cfg.Server.BaseURL,
		Timeout:      c.cfg.Server.Timeout(),
		IssuerSecret: issuer,
	})
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.Timeout())
	defer cancel()
	tok, err := client.IssueToken(ctx, args[0], ttl)
	if err != nil {
		return err
	}
	if err := config.SetSecret(config.SecretServerToken, tok); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	fmt.Fprintln(c.out, "Token stored in the OS keychain.")
	return nil
}

func (c *cli) showConfig() error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Config file:", path)
	fmt.Fprintln(c.out, "Storage driver:", c.cfg.Storage.Driver)
	for _, key := range []string{
		"editor.grid_size", "editor.grid_snap", "editor.guides", "editor.autosave_ms", "editor.history_depth",
		"storage.driver", "storage.dsn", "storage.redis_addr",
		"server.addr", "server.base_url", "server.timeout_ms",
		"notify.mqtt_broker", "notify.mqtt_topic",
		"logging.level", "logging.format", "logging.source", "logging.file",
	} {
		if env, ok := config.EnvOverrideFor(key); ok {
			fmt.Fprintf(c.out, "  %s overridden by %s\n", key, env)
		}
	}
	return nil
}
