package ownmap

import (
	"context"

	"github.com/jamesrr39/go-tracing"
)

// StartSpan starts a tracing span and returns the function that ends it.
// Outside of a traced request (CLI rendering, tests) nothing is recorded.
func StartSpan(ctx context.Context, name string) func() {
	if ctx.Value(tracing.TracerCtxKey) == nil || ctx.Value(tracing.TraceCtxKey) == nil {
		return func() {}
	}

	span := tracing.StartSpan(ctx, name)
	return func() {
		span.End(ctx)
	}
}
