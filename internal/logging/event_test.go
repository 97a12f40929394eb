package logging

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestEventEnsureRequestID(t *testing.T) {
	got := EnsureRequestID("  req-123  ")
	if got != "req-123" {
		t.Fatalf("EnsureRequestID preserved existing id = %q, want %q", got, "req-123")
	}

	generated := EnsureRequestID("   ")
	if !strings.HasPrefix(generated, "req-") {
		t.Fatalf("EnsureRequestID generated id = %q, want req- prefix", generated)
	}
}

func TestEventNewTickID(t *testing.T) {
	first := NewTickID()
	second := NewTickID()

	if !strings.HasPrefix(first, "tick-") {
		t.Fatalf("first tick id = %q, want tick- prefix", first)
	}
	if first == second {
		t.Fatalf("tick ids should be unique, got %q and %q", first, second)
	}
}

func TestEventNewOperationID(t *testing.T) {
	first := NewOperationID()
	second := NewOperationID()

	if !strings.HasPrefix(first, "op-") {
		t.Fatalf("first operation id = %q, want op- prefix", first)
	}
	if first == second {
		t.Fatalf("operation ids should be unique, got %q and %q", first, second)
	}
}

func TestEventNewRunID(t *testing.T) {
	id := NewRunID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("run id %q is not a uuid: %v", id, err)
	}
}
