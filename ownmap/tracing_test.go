package ownmap

import (
	"bytes"
	"context"
	"testing"

	"github.com/jamesrr39/go-tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSpan(t *testing.T) {
	t.Run("without tracer", func(t *testing.T) {
		assert.NotPanics(t, func() {
			StartSpan(context.Background(), "render")()
		})
	})

	t.Run("with tracer", func(t *testing.T) {
		tracer := tracing.NewTracer(new(bytes.Buffer))
		trace := tracing.StartTrace(tracer, "test")

		ctx := context.WithValue(context.Background(), tracing.TraceCtxKey, trace)
		ctx = context.WithValue(ctx, tracing.TracerCtxKey, tracer)

		StartSpan(ctx, "render")()
		require.Len(t, trace.Spans, 1)
		assert.Equal(t, "render", trace.Spans[0].Name)
	})
}
