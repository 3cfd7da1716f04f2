// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.16
//

package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewParseCollector(reg)
	require.NoError(t, err)

	c.ObserveRecords("NAV", "GPS", 2)
	c.ObserveRecords("NAV", "GPS", 3)
	c.ObserveError("OBS", "field_decode")
	c.ObserveDuration("NAV", 20*time.Millisecond)

	assert.Equal(t, 5.0, testutil.ToFloat64(c.Records.WithLabelValues("NAV", "GPS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Errors.WithLabelValues("OBS", "field_decode")))
	assert.Equal(t, uint64(1), histogramSampleCount(t, reg, "rinex_parse_duration_seconds", "NAV"))
}

func TestParseCollectorReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewParseCollector(reg)
	require.NoError(t, err)
	b, err := NewParseCollector(reg)
	require.NoError(t, err)

	a.ObserveRecords("OBS", "SBAS", 1)
	b.ObserveRecords("OBS", "SBAS", 1)
	assert.Equal(t, 2.0, testutil.ToFloat64(a.Records.WithLabelValues("OBS", "SBAS")))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *ParseCollector
	assert.NotPanics(t, func() {
		c.ObserveRecords("NAV", "GPS", 1)
		c.ObserveError("NAV", "io")
		c.ObserveDuration("NAV", time.Second)
	})
}

func TestWriteTextAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewParseCollector(reg)
	require.NoError(t, err)
	c.ObserveRecords("NAV", "SBAS", 2)

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))
	assert.Contains(t, buf.String(), `rinex_records_total{kind="NAV",system="SBAS"} 2`)

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "rinex_records_total")
}

func histogramSampleCount(t *testing.T, reg *prometheus.Registry, name, kind string) uint64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabel(m, "kind", kind) {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}
