package services_test

import (
	"context"
	"testing"

	"vizmse/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRundown(ctx, "evening")
	ctx = services.WithOperation(ctx, "take")
	ctx = services.WithRequestID(ctx, "req-123")

	if name, ok := services.RundownFromContext(ctx); !ok || name != "evening" {
		t.Fatalf("unexpected rundown: %v %v", name, ok)
	}
	if op, ok := services.OperationFromContext(ctx); !ok || op != "take" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithOperation(ctx, "")
	ctx = services.WithRundown(ctx, "")
	if _, ok := services.OperationFromContext(ctx); ok {
		t.Fatal("expected no operation value")
	}
	if _, ok := services.RundownFromContext(ctx); ok {
		t.Fatal("expected no rundown value")
	}
}
