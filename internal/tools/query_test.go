package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jasonychoong/retire-server/internal/ledger"
)

func TestQueryTool_Call(t *testing.T) {
	store := newFakeStore("s1")
	registry, _ := NewRegistry(testDeps(store), []string{"information", "information_query"})

	for _, value := range []string{"pension of $2,100/month", "owns home outright"} {
		if _, err := registry.Call(context.Background(), "information", map[string]any{
			"topic": "income_cash_flow",
			"value": value,
		}); err != nil {
			t.Fatalf("information Call() error = %v", err)
		}
	}

	out, err := registry.Call(context.Background(), "information_query", map[string]any{})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	var records []ledger.InformationRecord
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Value != "pension of $2,100/month" || records[1].Value != "owns home outright" {
		t.Errorf("records out of order: %+v", records)
	}
}

func TestQueryTool_EmptySession(t *testing.T) {
	store := newFakeStore("s1")
	registry, _ := NewRegistry(testDeps(store), []string{"information_query"})

	out, err := registry.Call(context.Background(), "information_query", map[string]any{})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if out != "[]" {
		t.Errorf("Call() = %q, want %q", out, "[]")
	}
}
