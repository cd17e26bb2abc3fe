/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the user config
// directory merged over defaults, then VPL_* environment overrides. Secrets
// live in the OS keychain and never in the YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"venueplan/internal/editor"
	applog "venueplan/internal/log"
)

// CurrentVersion is the config_version written by Save.
const CurrentVersion = 1

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverRemote   = "remote"
)

type EditorConfig struct {
	GridSize       float64 `yaml:"grid_size"`
	GridSnap       bool    `yaml:"grid_snap"`
	Guides         bool    `yaml:"guides"`
	GuideThreshold float64 `yaml:"guide_threshold"`
	HistoryDepth   int     `yaml:"history_depth"`
	AutosaveMs     int     `yaml:"autosave_ms"`
	ZoomMin        float64 `yaml:"zoom_min"`
	ZoomMax        float64 `yaml:"zoom_max"`
	CanvasWidth    float64 `yaml:"canvas_width"`
	CanvasHeight   float64 `yaml:"canvas_height"`
	PasteOffset    float64 `yaml:"paste_offset"`
}

type StorageConfig struct {
	// Driver selects where autosave writes: file (plan.json only), sqlite
	// (plan.json plus revision log), postgres, redis (drafts) or remote (HTTP API).
	Driver        string `yaml:"driver"`
	DSN           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisDB       int    `yaml:"redis_db"`
	DraftTTLS     int    `yaml:"draft_ttl_s"`
	KeepRevisions int    `yaml:"keep_revisions"`
	KeepBackups   int    `yaml:"keep_backups"`
	// Passwords are not stored on disk; they live in the OS keychain.
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
	// The bearer token and the signing secret live in the OS keychain.
}

type NotifyConfig struct {
	MQTTBroker   string `yaml:"mqtt_broker"`
	MQTTTopic    string `yaml:"mqtt_topic"`
	MQTTClientID string `yaml:"mqtt_client_id"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the user-editable configuration persisted as YAML.
// Bump config_version when the structure changes incompatibly.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	Storage       StorageConfig `yaml:"storage"`
	Server        ServerConfig  `yaml:"server"`
	Notify        NotifyConfig  `yaml:"notify"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	d := editor.DefaultOptions()
	return AppConfig{
		ConfigVersion: CurrentVersion,
		Editor: EditorConfig{
			GridSize:       d.GridSize,
			GridSnap:       d.GridSnap,
			Guides:         d.Guides,
			GuideThreshold: d.GuideThreshold,
			HistoryDepth:   d.HistoryDepth,
			AutosaveMs:     2000,
			ZoomMin:        d.ZoomMin,
			ZoomMax:        d.ZoomMax,
			CanvasWidth:    d.CanvasWidth,
			CanvasHeight:   d.CanvasHeight,
			PasteOffset:    d.PasteOffset,
		},
		Storage: StorageConfig{
			Driver:        DriverSQLite,
			RedisAddr:     "localhost:6379",
			DraftTTLS:     86400,
			KeepRevisions: 100,
			KeepBackups:   20,
		},
		Server:  ServerConfig{Addr: ":8080", BaseURL: "http://localhost:8080", TimeoutMs: 15000},
		Notify:  NotifyConfig{MQTTTopic: "venueplan/notifications", MQTTClientID: "venueplan"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Options converts the editor section into controller options.
func (e EditorConfig) Options() editor.Options {
	o := editor.DefaultOptions()
	o.GridSize = e.GridSize
	o.GridSnap = e.GridSnap
	o.Guides = e.Guides
	o.GuideThreshold = e.GuideThreshold
	o.HistoryDepth = e.HistoryDepth
	o.ZoomMin = e.ZoomMin
	o.ZoomMax = e.ZoomMax
	o.CanvasWidth = e.CanvasWidth
	o.CanvasHeight = e.CanvasHeight
	o.PasteOffset = e.PasteOffset
	return o
}

// AutosaveDelay returns the debounce window; zero or negative means the default.
func (e EditorConfig) AutosaveDelay() time.Duration {
	if e.AutosaveMs <= 0 {
		return 0
	}
	return time.Duration(e.AutosaveMs) * time.Millisecond
}

// DraftTTL returns the Redis draft lifetime.
func (s StorageConfig) DraftTTL() time.Duration { return time.Duration(s.DraftTTLS) * time.Second }

// Timeout returns the HTTP timeout, falling back to the default.
func (s ServerConfig) Timeout() time.Duration {
	if s.TimeoutMs <= 0 {
		return time.Duration(Defaults().Server.TimeoutMs) * time.Millisecond
	}
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// LogOptions converts the logging section for log.Init.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

// Validate reports configuration values that cannot work.
func (c AppConfig) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite, DriverPostgres, DriverRedis, DriverRemote:
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	if c.Storage.Driver == DriverPostgres && strings.TrimSpace(c.Storage.DSN) == "" {
		errs = append(errs, errors.New("storage.dsn: required for postgres"))
	}
	if c.Storage.Driver == DriverRemote && strings.TrimSpace(c.Server.BaseURL) == "" {
		errs = append(errs, errors.New("server.base_url: required for remote storage"))
	}
	if c.Editor.ZoomMin > 0 && c.Editor.ZoomMax > 0 && c.Editor.ZoomMin > c.Editor.ZoomMax {
		errs = append(errs, errors.New("editor.zoom_min: greater than zoom_max"))
	}
	return errors.Join(errs...)
}

// Env var names used as overrides.
const (
	EnvConfigFile    = "VPL_CONFIG"
	EnvGridSize      = "VPL_GRID_SIZE"
	EnvGridSnap      = "VPL_GRID_SNAP"
	EnvGuides        = "VPL_GUIDES"
	EnvAutosaveMs    = "VPL_AUTOSAVE_MS"
	EnvHistoryDepth  = "VPL_HISTORY_DEPTH"
	EnvStorageDriver = "VPL_STORAGE_DRIVER"
	EnvDSN           = "VPL_DSN"
	EnvRedisAddr     = "VPL_REDIS_ADDR"
	EnvServerAddr    = "VPL_SERVER_ADDR"
	EnvServerURL     = "VPL_SERVER_URL"
	EnvServerTimeout = "VPL_SERVER_TIMEOUT_MS"
	EnvMQTTBroker    = "VPL_MQTT_BROKER"
	EnvMQTTTopic     = "VPL_MQTT_TOPIC"
	EnvLogLevel      = applog.EnvLevel
	EnvLogFormat     = applog.EnvFormat
	EnvLogSource     = applog.EnvSource
	EnvLogFile       = applog.EnvFile
)

// envKeys maps dotted config keys to their override variables.
var envKeys = map[string]string{
	"editor.grid_size":     EnvGridSize,
	"editor.grid_snap":     EnvGridSnap,
	"editor.guides":        EnvGuides,
	"editor.autosave_ms":   EnvAutosaveMs,
	"editor.history_depth": EnvHistoryDepth,
	"storage.driver":       EnvStorageDriver,
	"storage.dsn":          EnvDSN,
	"storage.redis_addr":   EnvRedisAddr,
	"server.addr":          EnvServerAddr,
	"server.base_url":      EnvServerURL,
	"server.timeout_ms":    EnvServerTimeout,
	"notify.mqtt_broker":   EnvMQTTBroker,
	"notify.mqtt_topic":    EnvMQTTTopic,
	"logging.level":        EnvLogLevel,
	"logging.format":       EnvLogFormat,
	"logging.source":       EnvLogSource,
	"logging.file":         EnvLogFile,
}

// ConfigPath returns the per-user config file path. VPL_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "VenuePlan")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "VenuePlan")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "venueplan")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "venueplan")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file (if present), applies defaults and merges
// environment overrides. The server bearer token is read from the keychain and
// returned separately. A malformed file is reported but defaults still apply.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	var ferr error
	if data, err := os.ReadFile(path); err == nil {
		fileCfg, perr := parseFile(data)
		if perr != nil {
			ferr = fmt.Errorf("parse %s: %w", path, perr)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := GetSecret(SecretServerToken)
	return cfg, tok, ferr
}

// parseFile decodes YAML. Booleans missing from the file keep their defaults.
func parseFile(data []byte) (AppConfig, error) {
	fileCfg := AppConfig{}
	d := Defaults()
	fileCfg.Editor.Guides = d.Editor.Guides
	fileCfg.Editor.GridSnap = d.Editor.GridSnap
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return AppConfig{}, err
	}
	return fileCfg, nil
}

// Save writes the config YAML and stores the token in the keychain when non-empty.
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if cfg.ConfigVersion == 0 {
		cfg.ConfigVersion = CurrentVersion
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := SetSecret(SecretServerToken, token); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// editor
	setFloat(&dst.Editor.GridSize, src.Editor.GridSize)
	dst.Editor.GridSnap = src.Editor.GridSnap
	dst.Editor.Guides = src.Editor.Guides
	setFloat(&dst.Editor.GuideThreshold, src.Editor.GuideThreshold)
	setInt(&dst.Editor.HistoryDepth, src.Editor.HistoryDepth)
	setInt(&dst.Editor.AutosaveMs, src.Editor.AutosaveMs)
	setFloat(&dst.Editor.ZoomMin, src.Editor.ZoomMin)
	setFloat(&dst.Editor.ZoomMax, src.Editor.ZoomMax)
	setFloat(&dst.Editor.CanvasWidth, src.Editor.CanvasWidth)
	setFloat(&dst.Editor.CanvasHeight, src.Editor.CanvasHeight)
	setFloat(&dst.Editor.PasteOffset, src.Editor.PasteOffset)
	// storage
	setString(&dst.Storage.Driver, strings.ToLower(src.Storage.Driver))
	setString(&dst.Storage.DSN, src.Storage.DSN)
	setString(&dst.Storage.RedisAddr, src.Storage.RedisAddr)
	setInt(&dst.Storage.RedisDB, src.Storage.RedisDB)
	setInt(&dst.Storage.DraftTTLS, src.Storage.DraftTTLS)
	setInt(&dst.Storage.KeepRevisions, src.Storage.KeepRevisions)
	setInt(&dst.Storage.KeepBackups, src.Storage.KeepBackups)
	// server
	setString(&dst.Server.Addr, src.Server.Addr)
	setString(&dst.Server.BaseURL, src.Server.BaseURL)
	setInt(&dst.Server.TimeoutMs, src.Server.TimeoutMs)
	// notify
	setString(&dst.Notify.MQTTBroker, src.Notify.MQTTBroker)
	setString(&dst.Notify.MQTTTopic, src.Notify.MQTTTopic)
	setString(&dst.Notify.MQTTClientID, src.Notify.MQTTClientID)
	// logging
	setString(&dst.Logging.Level, strings.ToLower(src.Logging.Level))
	setString(&dst.Logging.Format, strings.ToLower(src.Logging.Format))
	dst.Logging.Source = src.Logging.Source
	setString(&dst.Logging.File, src.Logging.File)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string, dst *bool) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		lv := strings.ToLower(v)
		*dst = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envFloat(EnvGridSize, &cfg.Editor.GridSize)
	envBool(EnvGridSnap, &cfg.Editor.GridSnap)
	envBool(EnvGuides, &cfg.Editor.Guides)
	envInt(EnvAutosaveMs, &cfg.Editor.AutosaveMs)
	envInt(EnvHistoryDepth, &cfg.Editor.HistoryDepth)
	envString(EnvStorageDriver, &cfg.Storage.Driver)
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	envString(EnvDSN, &cfg.Storage.DSN)
	envString(EnvRedisAddr, &cfg.Storage.RedisAddr)
	envString(EnvServerAddr, &cfg.Server.Addr)
	envString(EnvServerURL, &cfg.Server.BaseURL)
	envInt(EnvServerTimeout, &cfg.Server.TimeoutMs)
	envString(EnvMQTTBroker, &cfg.Notify.MQTTBroker)
	envString(EnvMQTTTopic, &cfg.Notify.MQTTTopic)
	envString(EnvLogLevel, &cfg.Logging.Level)
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	envString(EnvLogFormat, &cfg.Logging.Format)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	envBool(EnvLogSource, &cfg.Logging.Source)
	envString(EnvLogFile, &cfg.Logging.File)
}

// EnvOverrideFor returns the env var name if the dotted key is overridden by
// the environment.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
