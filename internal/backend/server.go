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
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"venueplan/internal/domain"
	applog "venueplan/internal/log"
	"venueplan/internal/storage"
	"venueplan/internal/version"
)

// DevSecret signs tokens when no secret is configured.
const DevSecret = "dev-secret-change-me"

// IssuerHeader carries the signing secret on token requests. It is only
// checked when a real secret is configured; the dev secret issues freely.
const IssuerHeader = "X-Issuer-Secret"

// ServerConfig configures the plan API.
type ServerConfig struct {
	Addr         string
	Secret       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MaxTokenTTL caps the lifetime of issued tokens.
	MaxTokenTTL time.Duration
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Secret == "" {
		c.Secret = DevSecret
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.MaxTokenTTL <= 0 {
		c.MaxTokenTTL = 24 * time.Hour
	}
	return c
}

// putPlanRequest is the PUT body. The server is told the full new state.
type putPlanRequest struct {
	Elements json.RawMessage `json:"elements"`
}

type tokenRequest struct {
	Subject    string `json:"subject"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type planHandler struct {
	store Store
	cfg   ServerConfig
	log   *slog.Logger
}

// NewServer builds the fiber app serving the plan API on top of store.
func NewServer(store Store, cfg ServerConfig) *fiber.App {
	cfg = cfg.withDefaults()
	h := &planHandler{store: store, cfg: cfg, log: applog.WithComponent("backend")}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		AppName:      "venueplan",
	})
	app.Use(recover.New())
	app.Use(h.logRequests)

	app.Get("/healthz", func(c fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/readyz", h.ready)
	app.Get("/version", func(c fiber.Ctx) error { return c.SendString(version.String()) })
	app.Post("/api/auth/token", h.issueToken)

	api := app.Group("/api/venues", requireAuth(cfg.Secret))
	api.Get("/:venue/plan", h.getPlan)
	api.Put("/:venue/plan", h.putPlan)
	return app
}

func (h *planHandler) logRequests(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.log.Debug("request",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("status", c.Response().StatusCode()),
		slog.Duration("took", time.Since(start)),
	)
	return err
}

func (h *planHandler) ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		return c.Status(http.StatusServiceUnavailable).SendString("db not ready")
	}
	return c.SendString("ready")
}

func (h *planHandler) issueToken(c fiber.Ctx) error {
	if h.cfg.Secret != DevSecret && subtle.ConstantTimeCompare([]byte(c.Get(IssuerHeader)), []byte(h.cfg.Secret)) != 1 {
		h.log.Warn("token request rejected", slog.String("ip", c.IP()))
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "token issuance requires the issuer secret"})
	}
	var req tokenRequest
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
	}
	if req.Subject == "" {
		req.Subject = "dev"
	}
	ttl := time.Duration(req.TTLSeconds) * time.Second
	if ttl <= 0 || ttl > h.cfg.MaxTokenTTL {
		ttl = time.Hour
	}
	exp := time.Now().Add(ttl)
	tok, err := signToken(h.cfg.Secret, req.Subject, exp)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(tokenResponse{Token: tok, ExpiresAt: exp.UTC().Format(time.RFC3339)})
}

func (h *planHandler) getPlan(c fiber.Ctx) error {
	venue, line := c.Params("venue"), strings.TrimSpace(c.Query("line"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec, err := h.store.GetPlan(ctx, venue, line)
	if errors.Is(err, ErrNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "plan not found"})
	}
	if err != nil {
		h.log.Error("get plan failed", slog.String("venue", venue), slog.Any("err", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "storage error"})
	}
	return c.JSON(rec)
}

func (h *planHandler) putPlan(c fiber.Ctx) error {
	venue, line := c.Params("venue"), strings.TrimSpace(c.Query("line"))
	elems, err := decodeElements(venue, c.Body())
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	sub, _ := c.Locals(subjectKey).(string)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rec, err := h.store.PutPlan(ctx, venue, line, sub, elems)
	if err != nil {
		h.log.Error("put plan failed", slog.String("venue", venue), slog.Any("err", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "storage error"})
	}
	h.log.Info("plan stored", slog.String("venue", venue), slog.String("line", line),
		slog.Int64("version", rec.Version), slog.Int("elements", len(elems)), slog.String("subject", sub))
	return c.JSON(rec)
}

// decodeElements validates a PUT body against the plan schema and returns
// normalized elements.
func decodeElements(venue string, body []byte) ([]domain.Element, error) {
	var req putPlanRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, errors.New("invalid json")
	}
	if len(req.Elements) == 0 {
		return nil, errors.New("elements are required")
	}
	doc, err := json.Marshal(map[string]any{"venueId": venue, "elements": req.Elements})
	if err != nil {
		return nil, err
	}
	if err := storage.ValidatePlan(doc); err != nil {
		return nil, err
	}
	var elems []domain.Element
	if err := json.Unmarshal(req.Elements, &elems); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}
	out := make([]domain.Element, 0, len(elems))
	for _, e := range elems {
		out = append(out, e.Normalize())
	}
	return out, nil
}

// Serve opens Postgres, applies migrations and runs the API until ctx is done.
func Serve(ctx context.Context, dsn string, cfg ServerConfig) error {
	cfg = cfg.withDefaults()
	l := applog.WithOperation(applog.WithComponent("backend"), "serve")
	if cfg.Secret == DevSecret {
		l.Warn("no auth secret configured; using insecure dev secret")
	}
	db, err := OpenPostgres(ctx, dsn)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("db close", slog.Any("err", err))
		}
	}()
	if _, err := ApplyMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	app := NewServer(NewRepository(db), cfg)
	errc := make(chan error, 1)
	go func() {
		l.Info("listening", slog.String("addr", cfg.Addr))
		errc <- app.Listen(cfg.Addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return app.ShutdownWithContext(sctx)
	}
}
