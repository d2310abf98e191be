package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SeedSession describes a fixture session to lay out on disk the same way
// the session store writes it. Raw JSON fields default to empty documents.
type SeedSession struct {
	ID           string
	CreatedAt    string
	Description  string
	IsCurrent    bool
	History      string   // raw JSON array, defaults to []
	Metadata     string   // raw JSON object, defaults to {}
	Information  []string // raw JSONL lines for information.jsonl
	Completeness []string // raw JSONL lines for completeness.jsonl
}

// SeedStore writes a complete store layout (index plus session directories)
// under root without going through the store implementation.
func SeedStore(t *testing.T, root string, sessions ...SeedSession) {
	t.Helper()
	sessionsDir := filepath.Join(root, "sessions")
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		t.Fatalf("Failed to create sessions dir: %v", err)
	}

	index := make([]map[string]interface{}, 0, len(sessions))
	for _, s := range sessions {
		createdAt := s.CreatedAt
		if createdAt == "" {
			createdAt = "2026-08-25T12:00:00Z"
		}
		entry := map[string]interface{}{
			"id":         s.ID,
			"created_at": createdAt,
			"is_current": s.IsCurrent,
		}
		if s.Description != "" {
			entry["description"] = s.Description
		}
		index = append(index, entry)

		dir := filepath.Join(sessionsDir, s.ID)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create session dir %s: %v", s.ID, err)
		}
		history := s.History
		if history == "" {
			history = "[]"
		}
		metadata := s.Metadata
		if metadata == "" {
			metadata = "{}"
		}
		writeFile(t, filepath.Join(dir, "history.json"), history+"\n")
		writeFile(t, filepath.Join(dir, "metadata.json"), metadata+"\n")
		if len(s.Information) > 0 {
			writeFile(t, filepath.Join(dir, "information.jsonl"), strings.Join(s.Information, "\n")+"\n")
		}
		if len(s.Completeness) > 0 {
			writeFile(t, filepath.Join(dir, "completeness.jsonl"), strings.Join(s.Completeness, "\n")+"\n")
		}
	}

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal index: %v", err)
	}
	writeFile(t, filepath.Join(sessionsDir, "index.json"), string(data)+"\n")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
