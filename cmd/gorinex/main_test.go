// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	m "github.com/mkhts/gorinex"
	"github.com/mkhts/gorinex/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", name)
}

func TestParseArgsFlagsOverrideConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
use: G
out: from-config.db
track: true
log:
  level: warn
  format: json
`), 0o644))

	a, err := parseArgs([]string{"-config", cfg, "-use", "R,S", "-v", "x.10o"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "x.10o", a.inFn)
	assert.Equal(t, "from-config.db", a.outFn)
	assert.Equal(t, m.SystemList{m.SystemGLONASS, m.SystemSBAS}, a.use)
	assert.True(t, a.track)
	assert.Equal(t, "debug", a.logLevel)
	assert.Equal(t, "json", a.logFormat)
}

func TestParseArgsErrors(t *testing.T) {
	_, err := parseArgs([]string{}, io.Discard)
	assert.Error(t, err)

	_, err = parseArgs([]string{"-use", "X", "a.10n"}, io.Discard)
	assert.ErrorIs(t, err, m.ErrUnsupportedSatelliteSystem)
	assert.Contains(t, err.Error(), "-use")
}

func TestRunApplicationReadsContainer(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.db")
	ds, err := m.ReadFile(context.Background(), fixture("demo3.10n"))
	require.NoError(t, err)
	require.NoError(t, store.Write(out, ds))

	a, err := parseArgs([]string{out}, io.Discard)
	require.NoError(t, err)
	a.logLevel = "error"
	var stdout bytes.Buffer
	require.NoError(t, runApplication(context.Background(), a, &stdout))
	assert.Contains(t, stdout.String(), "NAV (RINEX 3.01) demo3.10n")

	a.group = "OBS"
	err = runApplication(context.Background(), a, io.Discard)
	assert.ErrorIs(t, err, store.ErrGroupNotFound)

	a.inFn = filepath.Join(t.TempDir(), "missing.db")
	err = runApplication(context.Background(), a, io.Discard)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, a.inFn)
}

func TestRunApplicationStoresAndTracks(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.db")
	a := cmdOpt{inFn: fixture("demo3.10n"), outFn: out, track: true, metrics: true, logLevel: "error"}

	var stdout bytes.Buffer
	require.NoError(t, runApplication(context.Background(), a, &stdout))
	assert.Contains(t, stdout.String(), "NAV (RINEX 3.01)")
	assert.Contains(t, stdout.String(), "lat(deg)")
	assert.Contains(t, stdout.String(), `rinex_records_total{kind="NAV",system="SBAS"} 2`)

	c, err := store.Open(out)
	require.NoError(t, err)
	defer c.Close()
	groups, err := c.Groups()
	require.NoError(t, err)
	assert.Equal(t, []string{"NAV"}, groups)
}

func TestRunApplicationFailsOnBadInput(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.10n")
	require.NoError(t, os.WriteFile(bad, []byte("     4.00           N\n"), 0o644))
	err := runApplication(context.Background(), cmdOpt{inFn: bad, logLevel: "error"}, io.Discard)
	assert.ErrorIs(t, err, m.ErrUnsupportedVersion)
}
