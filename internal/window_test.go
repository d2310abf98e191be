package internal

import (
	"fmt"
	"testing"
)

func makeHistory(contents ...string) []HistoryEntry {
	entries := make([]HistoryEntry, len(contents))
	for i, c := range contents {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		entries[i] = HistoryEntry{Role: role, Content: c, Timestamp: fmt.Sprintf("2026-08-25T12:00:%02dZ", i)}
	}
	return entries
}

func TestPrepareWindow(t *testing.T) {
	tests := []struct {
		name           string
		history        []HistoryEntry
		windowSize     int
		shouldTruncate bool
		wantContents   []string
	}{
		{
			name:           "longer history keeps last window",
			history:        makeHistory("a", "b", "c", "d", "e"),
			windowSize:     2,
			shouldTruncate: true,
			wantContents:   []string{"d", "e"},
		},
		{
			name:           "truncation disabled returns everything",
			history:        makeHistory("a", "b", "c", "d", "e"),
			windowSize:     2,
			shouldTruncate: false,
			wantContents:   []string{"a", "b", "c", "d", "e"},
		},
		{
			name:           "zero window returns everything",
			history:        makeHistory("a", "b", "c"),
			windowSize:     0,
			shouldTruncate: true,
			wantContents:   []string{"a", "b", "c"},
		},
		{
			name:           "negative window returns everything",
			history:        makeHistory("a", "b", "c"),
			windowSize:     -3,
			shouldTruncate: true,
			wantContents:   []string{"a", "b", "c"},
		},
		{
			name:           "shorter history unchanged",
			history:        makeHistory("a", "b"),
			windowSize:     10,
			shouldTruncate: true,
			wantContents:   []string{"a", "b"},
		},
		{
			name:           "exact fit unchanged",
			history:        makeHistory("a", "b", "c"),
			windowSize:     3,
			shouldTruncate: true,
			wantContents:   []string{"a", "b", "c"},
		},
		{
			name:           "empty history",
			history:        []HistoryEntry{},
			windowSize:     4,
			shouldTruncate: true,
			wantContents:   []string{},
		},
		{
			name: "tail may open mid exchange",
			history: []HistoryEntry{
				{Role: RoleUser, Content: "first"},
				{Role: RoleAssistant, Content: "hello"},
				{Role: RoleUser, Content: "next"},
			},
			windowSize:     2,
			shouldTruncate: true,
			wantContents:   []string{"hello", "next"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrepareWindow(tt.history, tt.windowSize, tt.shouldTruncate)
			if len(got) != len(tt.wantContents) {
				t.Fatalf("PrepareWindow() = %d entries, want %d", len(got), len(tt.wantContents))
			}
			for i, want := range tt.wantContents {
				if got[i].Content != want {
					t.Errorf("entry[%d].Content = %q, want %q", i, got[i].Content, want)
				}
			}
		})
	}
}

func TestPrepareWindow_DoesNotMutate(t *testing.T) {
	history := makeHistory("a", "b", "c", "d")
	PrepareWindow(history, 2, true)

	if len(history) != 4 || history[0].Content != "a" {
		t.Errorf("input slice was mutated: %+v", history)
	}
}

func TestPrepareWindow_Idempotent(t *testing.T) {
	history := makeHistory("a", "b", "c", "d", "e")
	once := PrepareWindow(history, 3, true)
	twice := PrepareWindow(once, 3, true)

	if len(once) != len(twice) {
		t.Fatalf("second application changed length: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("entry[%d] differs after second application", i)
		}
	}
}
