// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.16
//

package observability

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// ParseCollector bundles Prometheus metrics for RINEX parsing. It satisfies
// gorinex.Recorder, so it can be handed to the reader with WithRecorder.
type ParseCollector struct {
	gatherer prometheus.Gatherer

	Records   *prometheus.CounterVec
	Errors    *prometheus.CounterVec
	Durations *prometheus.HistogramVec
}

// NewParseCollector registers parse metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewParseCollector(reg prometheus.Registerer) (*ParseCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	records, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rinex_records_total",
		Help: "Total number of decoded RINEX records, labeled by file kind and satellite system.",
	}, []string{"kind", "system"}), "rinex_records_total")
	if err != nil {
		return nil, err
	}

	errs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rinex_parse_errors_total",
		Help: "Total number of failed RINEX parses, labeled by file kind and failure reason.",
	}, []string{"kind", "reason"}), "rinex_parse_errors_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rinex_parse_duration_seconds",
		Help:    "Time spent parsing one RINEX file in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}, []string{"kind"}), "rinex_parse_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &ParseCollector{
		gatherer:  gatherer,
		Records:   records,
		Errors:    errs,
		Durations: durations,
	}, nil
}

// ObserveRecords adds n decoded records of one satellite system.
func (c *ParseCollector) ObserveRecords(kind, system string, n int) {
	if c == nil || c.Records == nil {
		return
	}
	c.Records.WithLabelValues(kind, system).Add(float64(n))
}

// ObserveError counts one failed parse.
func (c *ParseCollector) ObserveError(kind, reason string) {
	if c == nil || c.Errors == nil {
		return
	}
	c.Errors.WithLabelValues(kind, reason).Inc()
}

// ObserveDuration records the wall time of one parse.
func (c *ParseCollector) ObserveDuration(kind string, d time.Duration) {
	if c == nil || c.Durations == nil {
		return
	}
	c.Durations.WithLabelValues(kind).Observe(d.Seconds())
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ParseCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gathererOrDefault(), promhttp.HandlerOpts{})
}

// WriteText dumps every gathered metric family in the Prometheus text format.
func (c *ParseCollector) WriteText(w io.Writer) error {
	mfs, err := c.gathererOrDefault().Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func (c *ParseCollector) gathererOrDefault() prometheus.Gatherer {
	if c.gatherer == nil {
		return prometheus.DefaultGatherer
	}
	return c.gatherer
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
