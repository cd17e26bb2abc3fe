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
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"venueplan/internal/domain"
)

// ClientConfig configures a remote plan client for one venue/line scope.
type ClientConfig struct {
	BaseURL string
	Token   string // bearer token
	// IssuerSecret authorizes IssueToken against servers with a real secret.
	IssuerSecret string
	VenueID      string
	LineID       string
	Timeout      time.Duration
	Retries      int
}

// Client talks to the plan API. It implements autosave.Persister for its scope
// and provides the initial load.
type Client struct {
	http    *resty.Client
	venueID string
	lineID  string
	issuer  string
}

// apiError is the error body returned by the server.
type apiError struct {
	Error string `json:"error"`
}

// NewClient creates a client. baseURL may include a trailing slash.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Accept", "application/json").
		SetError(&apiError{})
	if cfg.Token != "" {
		rc.SetAuthToken(cfg.Token)
	}
	return &Client{http: rc, venueID: cfg.VenueID, lineID: cfg.LineID, issuer: cfg.IssuerSecret}
}

func (c *Client) planRequest(ctx context.Context) *resty.Request {
	r := c.http.R().SetContext(ctx).SetPathParam("venue", c.venueID)
	if c.lineID != "" {
		r.SetQueryParam("line", c.lineID)
	}
	return r
}

func responseError(op string, resp *resty.Response) error {
	msg := resp.Status()
	if e, ok := resp.Error().(*apiError); ok && e.Error != "" {
		msg = e.Error
	}
	return fmt.Errorf("%s: server returned %d: %s", op, resp.StatusCode(), msg)
}

// Fetch returns the remote plan record or ErrNotFound.
func (c *Client) Fetch(ctx context.Context) (*PlanRecord, error) {
	var rec PlanRecord
	resp, err := c.planRequest(ctx).SetResult(&rec).Get("/api/venues/{venue}/plan")
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.IsError() {
		return nil, responseError("get plan", resp)
	}
	return &rec, nil
}

// Load returns the remote elements; a missing plan yields an empty collection.
func (c *Client) Load(ctx context.Context) ([]domain.Element, error) {
	rec, err := c.Fetch(ctx)
	if errors.Is(err, ErrNotFound) {
		return []domain.Element{}, nil
	}
	if err != nil {
		return nil, err
	}
	if rec.Elements == nil {
		rec.Elements = []domain.Element{}
	}
	return rec.Elements, nil
}

// Persist implements autosave.Persister by replacing the remote plan.
func (c *Client) Persist(ctx context.Context, elems []domain.Element) error {
	_, err := c.Put(ctx, elems)
	return err
}

// Put replaces the remote plan and returns the stored record.
func (c *Client) Put(ctx context.Context, elems []domain.Element) (*PlanRecord, error) {
	if elems == nil {
		elems = []domain.Element{}
	}
	var rec PlanRecord
	resp, err := c.planRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"elements": elems}).
		SetResult(&rec).
		Put("/api/venues/{venue}/plan")
	if err != nil {
		return nil, fmt.Errorf("put plan: %w", err)
	}
	if resp.IsError() {
		return nil, responseError("put plan", resp)
	}
	return &rec, nil
}

// IssueToken asks the server for a token for subject and installs it on the client.
func (c *Client) IssueToken(ctx context.Context, subject string, ttl time.Duration) (string, error) {
	var out tokenResponse
	r := c.http.R()
	if c.issuer != "" {
		r.SetHeader(IssuerHeader, c.issuer)
	}
	resp, err := r.SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(tokenRequest{Subject: subject, TTLSeconds: int64(ttl / time.Second)}).
		SetResult(&out).
		Post("/api/auth/token")
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	if resp.IsError() {
		return "", responseError("issue token", resp)
	}
	c.http.SetAuthToken(out.Token)
	return out.Token, nil
}

// Healthy reports whether the server answers /readyz.
func (c *Client) Healthy(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get("/readyz")
	return err == nil && resp.IsSuccess()
}
