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

// Package metrics exposes curation counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Validation outcomes.
const (
	OutcomeValid       = "valid"
	OutcomeWarning     = "warning"
	OutcomeInfo        = "info"
	OutcomeInvalid     = "invalid"
	OutcomeCorrectable = "correctable"
	OutcomeRejected    = "rejected"
)

// Correction outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeMalformed = "malformed"
)

// Metrics owns a private registry. A nil *Metrics records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	validations *prometheus.CounterVec
	corrections *prometheus.CounterVec
}

// New registers the curator counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		// Labels: outcome (valid, warning, info, invalid, correctable, rejected)
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "validation_requests_total",
			Help:      "Validation requests handled, by outcome",
		}, []string{"outcome"}),
		// Labels: outcome (applied, malformed, rejected)
		corrections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "corrections_total",
			Help:      "Correction attempts, by outcome",
		}, []string{"outcome"}),
	}
}

// Validation counts one validation request.
func (m *Metrics) Validation(outcome string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(outcome).Inc()
}

// Correction counts one correction attempt.
func (m *Metrics) Correction(outcome string) {
	if m == nil {
		return
	}
	m.corrections.WithLabelValues(outcome).Inc()
}

// Validations returns the validation counter family.
func (m *Metrics) Validations() *prometheus.CounterVec {
	return m.validations
}

// Corrections returns the correction counter family.
func (m *Metrics) Corrections() *prometheus.CounterVec {
	return m.corrections
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listener started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
