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

// Command curator opens a table of records in a validation grid where
// flagged cells can be corrected and the result exported.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"curator/config"
	"curator/metrics"
	"curator/validation"
	"curator/windows"
)

var (
	configPath  string
	logLevel    string
	logFormat   string
	metricsAddr string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curator [file]",
		Short: "Validate and correct tabular records",
		Long: `Curator loads a CSV, Parquet or JSON file into a grid, validates every
cell against the configured rules and lets flagged values be corrected
before the table is exported again.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          run,
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFormat, "log-format", "", "log format (text or json)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

// loadConfig reads the configuration and applies command line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	rules, err := validation.FromConfig(cfg.Rules)
	if err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	logger.Info("rules loaded", "count", rules.Len())

	m := metrics.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error("metrics listener stopped", "error", err)
			}
		}()
	}

	a := app.NewWithID("io.curator")
	mw, err := windows.NewMainWindow(a, windows.Options{
		Config:  cfg,
		Rules:   rules,
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer mw.Close()

	if len(args) == 1 {
		if err := mw.LoadFile(args[0]); err != nil {
			return err
		}
	}
	go func() {
		<-ctx.Done()
		a.Quit()
	}()
	mw.ShowAndRun()
	return nil
}
