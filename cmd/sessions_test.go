package cmd

import (
	"testing"

	"github.com/jasonychoong/retire-server/internal"
)

func newTestStore(t *testing.T) (string, *internal.SessionStore) {
	t.Helper()
	root := t.TempDir()
	store, err := internal.NewSessionStore(root, nil)
	if err != nil {
		t.Fatalf("NewSessionStore() error = %v", err)
	}
	return root, store
}

func TestSessionsNewCommand(t *testing.T) {
	root, store := newTestStore(t)

	if err := runCommand(t, "--root", root, "sessions", "new", "Planning", "for", "retirement"); err != nil {
		t.Fatalf("sessions new error = %v", err)
	}

	records, err := store.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ListSessions() returned %d records, want 1", len(records))
	}
	if records[0].Description != "Planning for retirement" {
		t.Errorf("Description = %q, want %q", records[0].Description, "Planning for retirement")
	}
}

func TestSessionsListCommand_Empty(t *testing.T) {
	root, _ := newTestStore(t)
	if err := runCommand(t, "--root", root, "sessions", "list"); err != nil {
		t.Errorf("sessions list error = %v", err)
	}
}

func TestSessionsRmCommand(t *testing.T) {
	root, store := newTestStore(t)
	rec, err := store.CreateSession("doomed")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if err := runCommand(t, "--root", root, "sessions", "rm", rec.ID); err != nil {
		t.Fatalf("sessions rm error = %v", err)
	}
	if store.SessionExists(rec.ID) {
		t.Errorf("session %s still exists after rm", rec.ID)
	}
}

func TestSessionsRmCommand_Unknown(t *testing.T) {
	root, _ := newTestStore(t)
	if err := runCommand(t, "--root", root, "sessions", "rm", "no-such-session"); err == nil {
		t.Error("sessions rm on unknown session expected error, got nil")
	}
}

func TestSessionsDescribeCommand(t *testing.T) {
	root, store := newTestStore(t)
	rec, err := store.CreateSession("")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if err := runCommand(t, "--root", root, "sessions", "describe", rec.ID, "Early", "retirement", "check"); err != nil {
		t.Fatalf("sessions describe error = %v", err)
	}

	records, err := store.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if records[0].Description != "Early retirement check" {
		t.Errorf("Description = %q, want %q", records[0].Description, "Early retirement check")
	}
}

func TestSessionsUseCommand(t *testing.T) {
	root, store := newTestStore(t)
	first, err := store.CreateSession("first")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	second, err := store.CreateSession("second")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if err := store.MarkCurrent(first.ID); err != nil {
		t.Fatalf("MarkCurrent() error = %v", err)
	}

	if err := runCommand(t, "--root", root, "sessions", "use", second.ID); err != nil {
		t.Fatalf("sessions use error = %v", err)
	}

	current, err := store.CurrentSession()
	if err != nil {
		t.Fatalf("CurrentSession() error = %v", err)
	}
	if current == nil || current.ID != second.ID {
		t.Errorf("CurrentSession() = %v, want %s", current, second.ID)
	}
}

func TestSessionsUseCommand_Unknown(t *testing.T) {
	root, _ := newTestStore(t)
	if err := runCommand(t, "--root", root, "sessions", "use", "no-such-session"); err == nil {
		t.Error("sessions use on unknown session expected error, got nil")
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"full uuid", "abcdef12-3456-7890-abcd-ef1234567890", "abcdef12"},
		{"short id", "abc", "abc"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shortID(tt.id); got != tt.want {
				t.Errorf("shortID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}
