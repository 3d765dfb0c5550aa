package logging

import (
	"context"
	"testing"
)

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	if fields := ContextFields(ctx); len(fields) != 0 {
		t.Errorf("empty context produced fields %v", fields)
	}

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithOwner(ctx, "alice")

	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want req-123", got)
	}
	if got := GetOwner(ctx); got != "alice" {
		t.Errorf("GetOwner() = %q, want alice", got)
	}

	fields := ContextFields(ctx)
	if len(fields) != 4 {
		t.Fatalf("len(fields) = %d, want 4: %v", len(fields), fields)
	}
	if fields[0] != "request_id" || fields[1] != "req-123" {
		t.Errorf("fields[0:2] = %v, want request_id req-123", fields[:2])
	}
	if fields[2] != "owner" || fields[3] != "alice" {
		t.Errorf("fields[2:4] = %v, want owner alice", fields[2:])
	}
}
