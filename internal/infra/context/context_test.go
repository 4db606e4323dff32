package context_test

import (
	"context"
	"testing"

	context_ "github.com/mkrupp/storefront/internal/infra/context"
)

func TestUserID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if _, ok := context_.UserIDFromContext(ctx); ok {
		t.Fatal("expected no user id in empty context")
	}

	ctx = context_.WithUserID(ctx, 42)

	userID, ok := context_.UserIDFromContext(ctx)
	if !ok || userID != 42 {
		t.Errorf("UserIDFromContext() = %d, %v, want 42, true", userID, ok)
	}
}

func TestTraceID(t *testing.T) {
	t.Parallel()

	ctx := context_.WithTraceID(context.Background(), "abc")

	traceID, ok := context_.TraceIDFromContext(ctx)
	if !ok || traceID != "abc" {
		t.Errorf("TraceIDFromContext() = %q, %v, want abc, true", traceID, ok)
	}
}
