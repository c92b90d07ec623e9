package ctxutil

import (
	"context"
	"testing"
)

func TestWithUserID_And_UserIDFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithUserID(context.Background(), "user-001")

	got, ok := UserIDFromCtx(ctx)
	if !ok {
		t.Fatal("expected ok=true for a non-empty id")
	}
	if got != "user-001" {
		t.Fatalf("expected user-001, got %s", got)
	}
}

func TestUserIDFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	got, ok := UserIDFromCtx(context.Background())
	if ok {
		t.Fatal("expected ok=false for empty context")
	}
	if got != "" {
		t.Fatalf("expected empty id, got %s", got)
	}
}

func TestUserIDFromCtx_EmptyString(t *testing.T) {
	t.Parallel()

	ctx := WithUserID(context.Background(), "")
	if _, ok := UserIDFromCtx(ctx); ok {
		t.Fatal("expected ok=false for empty id")
	}
}

func TestUserIDFromCtx_WrongType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), userIDKey, 42)
	if _, ok := UserIDFromCtx(ctx); ok {
		t.Fatal("expected ok=false for wrong type")
	}
}

func TestUserRole(t *testing.T) {
	t.Parallel()

	if got := UserRoleFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty role, got %q", got)
	}
	ctx := WithUserRole(context.Background(), "editor")
	if got := UserRoleFromCtx(ctx); got != "editor" {
		t.Fatalf("expected editor, got %q", got)
	}
}

func TestWithRequestID_And_RequestIDFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-abc-123")
	if got := RequestIDFromCtx(ctx); got != "req-abc-123" {
		t.Fatalf("expected req-abc-123, got %s", got)
	}
	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %s", got)
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	if ip := ClientIPFromCtx(context.Background()); ip != nil {
		t.Fatalf("expected nil, got %q", *ip)
	}
	ctx := WithClientIP(context.Background(), "10.0.0.1")
	ip := ClientIPFromCtx(ctx)
	if ip == nil || *ip != "10.0.0.1" {
		t.Fatalf("expected 10.0.0.1, got %v", ip)
	}
}
