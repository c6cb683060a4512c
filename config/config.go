// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the curator YAML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"curator/cellstate"
)

// Rule kinds understood by the validation package.
const (
	KindRequired = "required"
	KindNumeric  = "numeric"
	KindChoice   = "choice"
	KindExpr     = "expr"
	KindScript   = "script"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the top-level configuration document.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Grid    GridConfig    `yaml:"grid"`
	Palette Palette       `yaml:"palette"`
	Rules   []RuleConfig  `yaml:"rules"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GridConfig holds grid geometry and behaviour.
type GridConfig struct {
	IconSize       float32 `yaml:"icon_size"`
	IconMargin     float32 `yaml:"icon_margin"`
	MinColumnWidth float32 `yaml:"min_column_width"`
	// FilterColumns names the columns the filter box searches. Empty means all.
	FilterColumns []string `yaml:"filter_columns"`
}

// RuleConfig binds one validation rule to a column.
type RuleConfig struct {
	Column      string   `yaml:"column"`
	Kind        string   `yaml:"kind"`
	Min         *float64 `yaml:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty"`
	Values      []string `yaml:"values,omitempty"`
	MaxDistance int      `yaml:"max_distance,omitempty"`
	Expr        string   `yaml:"expr,omitempty"`
	Script      string   `yaml:"script,omitempty"`
	Severity    string   `yaml:"severity,omitempty"`
	Message     string   `yaml:"message,omitempty"`
}

// SeverityStatus returns the status a failing rule reports.
// An empty severity means INVALID.
func (r RuleConfig) SeverityStatus() (cellstate.Status, error) {
	if strings.TrimSpace(r.Severity) == "" {
		return cellstate.StatusInvalid, nil
	}
	s, err := cellstate.ParseStatus(r.Severity)
	if err != nil {
		return cellstate.StatusInvalid, err
	}
	switch s {
	case cellstate.StatusInvalid, cellstate.StatusWarning, cellstate.StatusInfo:
		return s, nil
	}
	return cellstate.StatusInvalid, fmt.Errorf("severity %q is not invalid, warning or info", r.Severity)
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the listener.
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Grid: GridConfig{
			IconSize:       16,
			IconMargin:     4,
			MinColumnWidth: 100,
		},
		Palette: DefaultPalette(),
	}
}

// Load reads path and merges it over Default. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not text or json", c.Logging.Format))
	}
	if c.Grid.IconSize <= 0 {
		errs = append(errs, fmt.Errorf("grid.icon_size must be positive"))
	}
	if c.Grid.IconMargin < 0 {
		errs = append(errs, fmt.Errorf("grid.icon_margin must not be negative"))
	}
	if _, err := c.Palette.Colors(); err != nil {
		errs = append(errs, err)
	}
	for i, r := range c.Rules {
		if err := r.validate(); err != nil {
			errs = append(errs, fmt.Errorf("rules[%d]: %w", i, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func (r RuleConfig) validate() error {
	if r.Column == "" && r.Kind != KindExpr {
		return fmt.Errorf("column is required for %s rules", r.Kind)
	}
	if _, err := r.SeverityStatus(); err != nil {
		return err
	}
	switch r.Kind {
	case KindRequired:
	case KindNumeric:
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return fmt.Errorf("min %v exceeds max %v", *r.Min, *r.Max)
		}
	case KindChoice:
		if len(r.Values) == 0 {
			return fmt.Errorf("choice rule on %s has no values", r.Column)
		}
		if r.MaxDistance < 0 {
			return fmt.Errorf("max_distance must not be negative")
		}
	case KindExpr:
		if strings.TrimSpace(r.Expr) == "" {
			return fmt.Errorf("expr rule has no expression")
		}
	case KindScript:
		if strings.TrimSpace(r.Script) == "" {
			return fmt.Errorf("script rule on %s has no script", r.Column)
		}
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}
	return nil
}

// SlogLevel parses the configured level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
