// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.16
//

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf}).With(String("file", "demo.10n"))
	log.Debug(context.Background(), "header read", Int("records", 2), Err(errors.New("boom")))

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "header read", m["msg"])
	assert.Equal(t, "DEBUG", m["level"])
	assert.Equal(t, "demo.10n", m["file"])
	assert.Equal(t, float64(2), m["records"])
	assert.Equal(t, "boom", m["error"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})
	log.Info(context.Background(), "dropped")
	assert.Zero(t, buf.Len())
	log.Warn(context.Background(), "kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNoopLogger(t *testing.T) {
	log := Noop().With(String("k", "v"))
	assert.NotPanics(t, func() {
		log.Error(context.Background(), "nothing")
	})
}
