package internal

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jasonychoong/retire-server/internal/ledger"
)

func TestFormatArrow(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "|"},
		{-5, "|"},
		{1, "|"},
		{2, "|"},
		{3, "|>"},
		{5, "|>"},
		{12, "|=>"},
		{13, "|==>"},
		{50, "|=========>"},
		{100, "|" + strings.Repeat("=", 19) + ">"},
	}
	for _, tt := range tests {
		if got := FormatArrow(tt.score); got != tt.want {
			t.Errorf("FormatArrow(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestFormatTopicLine(t *testing.T) {
	got := FormatTopicLine(1, "income_cash_flow", nil)
	want := "1. income_cash_flow" + strings.Repeat(" ", 5) + " | 0"
	if got != want {
		t.Errorf("FormatTopicLine() = %q, want %q", got, want)
	}

	got = FormatTopicLine(2, "healthcare_medicare", &ledger.ScoreEntry{Topic: "healthcare_medicare", Score: 45})
	want = "2. healthcare_medicare" + strings.Repeat(" ", 2) + " |========> 45"
	if got != want {
		t.Errorf("FormatTopicLine() = %q, want %q", got, want)
	}

	got = FormatTopicLine(3, "housing_geography", &ledger.ScoreEntry{Topic: "housing_geography", Score: 0})
	want = "3. housing_geography" + strings.Repeat(" ", 4) + " | 0"
	if got != want {
		t.Errorf("FormatTopicLine() = %q, want %q", got, want)
	}
}

func TestLatestScores(t *testing.T) {
	snapshots := []ledger.CompletenessSnapshot{
		{Scores: []ledger.ScoreEntry{
			{Topic: "income_cash_flow", Score: 20},
			{Topic: "healthcare_medicare", Score: 10},
			{Topic: "not_a_topic", Score: 99},
		}},
		{Scores: []ledger.ScoreEntry{
			{Topic: "income_cash_flow", Score: 45, Reason: "pension details arrived"},
		}},
	}

	latest := LatestScores(snapshots)
	if len(latest) != len(ledger.CanonicalTopics) {
		t.Fatalf("latest = %d topics, want %d", len(latest), len(ledger.CanonicalTopics))
	}
	if entry := latest["income_cash_flow"]; entry == nil || entry.Score != 45 {
		t.Errorf("income_cash_flow = %+v, want the newest score", entry)
	}
	if entry := latest["healthcare_medicare"]; entry == nil || entry.Score != 10 {
		t.Errorf("healthcare_medicare = %+v, want 10", entry)
	}
	if latest["estate_planning"] != nil {
		t.Errorf("estate_planning = %+v, want nil", latest["estate_planning"])
	}
	if _, ok := latest["not_a_topic"]; ok {
		t.Error("unknown topic leaked into the fold")
	}
}

func seedCompleteness(t *testing.T, store *SessionStore, sessionID string) {
	t.Helper()
	lg := ledger.NewTopicLedger(store)
	_, err := lg.AppendCompleteness(sessionID, []ledger.ScoreEntry{
		{Topic: "income_cash_flow", Score: 40},
		{Topic: "healthcare_medicare", Score: 15},
	})
	if err != nil {
		t.Fatalf("AppendCompleteness() error = %v", err)
	}
}

func TestCompletenessMonitor_RunQuit(t *testing.T) {
	store := newTestStore(t)
	rec, _ := store.CreateSession("")
	seedCompleteness(t, store, rec.ID)

	var out bytes.Buffer
	monitor := &CompletenessMonitor{
		Ledger:    ledger.NewTopicLedger(store),
		SessionID: rec.ID,
		Prompts:   map[string]string{},
		Interval:  100 * time.Millisecond,
		In:        strings.NewReader("q\n"),
		Out:       &out,
	}

	if err := monitor.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "1. income_cash_flow") {
		t.Errorf("output missing topic line:\n%s", output)
	}
	if !strings.Contains(output, "|=======> 40") {
		t.Errorf("output missing gauge for 40:\n%s", output)
	}
	if !strings.Contains(output, "Exiting.") {
		t.Errorf("output missing exit message:\n%s", output)
	}
}

func TestCompletenessMonitor_RunShowsPrompt(t *testing.T) {
	store := newTestStore(t)
	rec, _ := store.CreateSession("")
	seedCompleteness(t, store, rec.ID)

	var out bytes.Buffer
	monitor := &CompletenessMonitor{
		Ledger:    ledger.NewTopicLedger(store),
		SessionID: rec.ID,
		Prompts:   map[string]string{"healthcare_medicare": "What does your Medicare coverage look like?"},
		Interval:  100 * time.Millisecond,
		In:        strings.NewReader("2\n\nq\n"),
		Out:       &out,
	}

	if err := monitor.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "Recommended prompt for healthcare_medicare:") {
		t.Errorf("output missing prompt heading:\n%s", output)
	}
	if !strings.Contains(output, "What does your Medicare coverage look like?") {
		t.Errorf("output missing prompt text:\n%s", output)
	}
	if !strings.Contains(output, "Copy the prompt above, then press Enter to continue monitoring...") {
		t.Errorf("output missing continue instruction:\n%s", output)
	}
}

func TestCompletenessMonitor_RunMissingPrompt(t *testing.T) {
	store := newTestStore(t)
	rec, _ := store.CreateSession("")
	seedCompleteness(t, store, rec.ID)

	var out bytes.Buffer
	monitor := &CompletenessMonitor{
		Ledger:    ledger.NewTopicLedger(store),
		SessionID: rec.ID,
		Prompts:   map[string]string{},
		Interval:  100 * time.Millisecond,
		In:        strings.NewReader("3\nq\n"),
		Out:       &out,
	}

	if err := monitor.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "No recommended prompt found for topic 'housing_geography'.") {
		t.Errorf("output missing fallback message:\n%s", out.String())
	}
}

func TestCompletenessMonitor_RunAwaitingData(t *testing.T) {
	store := newTestStore(t)
	rec, _ := store.CreateSession("")

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	monitor := &CompletenessMonitor{
		Ledger:    ledger.NewTopicLedger(store),
		SessionID: rec.ID,
		Prompts:   map[string]string{},
		Interval:  20 * time.Millisecond,
		In:        strings.NewReader(""),
		Out:       &out,
	}

	if err := monitor.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "awaiting data...") {
		t.Errorf("output = %q, want awaiting data", out.String())
	}
	if !strings.Contains(out.String(), "Exiting.") {
		t.Errorf("output = %q, want exit message", out.String())
	}
}
