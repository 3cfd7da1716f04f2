// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.16
//

package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracingExportsSpans(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	shutdown, err := InitTracing(ctx, TracingConfig{Enabled: true, Output: &buf}, nil)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "gorinex.ReadFile")
	span.End()
	ShutdownWithTimeout(ctx, shutdown, nil)

	assert.Contains(t, buf.String(), "gorinex.ReadFile")
}

func TestInitTracingDisabled(t *testing.T) {
	ctx := context.Background()
	shutdown, err := InitTracing(ctx, TracingConfig{}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))

	_, span := otel.Tracer("test").Start(ctx, "x")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}
