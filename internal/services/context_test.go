package services_test

import (
	"context"
	"testing"

	"notionbrainz/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithKind(ctx, "albums")
	ctx = services.WithPageID(ctx, "page-9")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if kind, ok := services.KindFromContext(ctx); !ok || kind != "albums" {
		t.Fatalf("unexpected kind: %v %v", kind, ok)
	}
	if page, ok := services.PageIDFromContext(ctx); !ok || page != "page-9" {
		t.Fatalf("unexpected page id: %v %v", page, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := services.WithKind(context.Background(), "")
	if _, ok := services.KindFromContext(ctx); ok {
		t.Fatal("expected no kind value")
	}
	ctx = services.WithPageID(ctx, "")
	if _, ok := services.PageIDFromContext(ctx); ok {
		t.Fatal("expected no page value")
	}
}
