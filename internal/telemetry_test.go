package internal

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jasonychoong/retire-server/internal/model"
)

func TestExtractToolEvents(t *testing.T) {
	blocks := []model.ContentBlock{
		{Type: model.BlockText, Text: "Let me record that."},
		{Type: model.BlockToolUse, ID: "tu_1", Name: "information", Input: map[string]any{"topic": "income_cash_flow"}},
		{Type: model.BlockToolUse, ID: "tu_2", Name: "completeness"},
		{Type: model.BlockToolResult, ToolUseID: "tu_1", Content: []model.ContentBlock{{Type: model.BlockText, Text: "Recorded information for topic 'income_cash_flow'."}}},
		{Type: model.BlockToolResult, ToolUseID: "tu_2", IsError: true, Content: []model.ContentBlock{{Type: model.BlockText, Text: "scores must be a non-empty list of topic score objects"}}},
	}

	events := ExtractToolEvents(blocks)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}

	if events[0].Tool != "information" || events[0].Status != ToolStatusOK {
		t.Errorf("events[0] = %+v, want ok information event", events[0])
	}
	if events[0].Summary != "Recorded information for topic 'income_cash_flow'." {
		t.Errorf("Summary = %q", events[0].Summary)
	}
	if events[0].Input["topic"] != "income_cash_flow" {
		t.Errorf("Input = %v, want the tool arguments", events[0].Input)
	}

	if events[1].Tool != "completeness" || events[1].Status != ToolStatusError {
		t.Errorf("events[1] = %+v, want error completeness event", events[1])
	}
	if !strings.Contains(events[1].Summary, "non-empty list") {
		t.Errorf("Summary = %q, want the error text", events[1].Summary)
	}
}

func TestExtractToolEvents_TruncatesLongResults(t *testing.T) {
	long := strings.Repeat("x", 300)
	blocks := []model.ContentBlock{
		{Type: model.BlockToolUse, ID: "tu_1", Name: "information_query"},
		{Type: model.BlockToolResult, ToolUseID: "tu_1", Content: []model.ContentBlock{{Type: model.BlockText, Text: long}}},
	}

	events := ExtractToolEvents(blocks)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	want := strings.Repeat("x", 200) + "..."
	if events[0].Summary != want {
		t.Errorf("Summary length = %d, want truncated to %d", len(events[0].Summary), len(want))
	}
}

func TestExtractToolEvents_TruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("金", 250)
	blocks := []model.ContentBlock{
		{Type: model.BlockToolUse, ID: "tu_1", Name: "information_query"},
		{Type: model.BlockToolResult, ToolUseID: "tu_1", Content: []model.ContentBlock{{Type: model.BlockText, Text: long}}},
	}

	events := ExtractToolEvents(blocks)
	summary := events[0].Summary
	if !utf8.ValidString(summary) {
		t.Error("Summary is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(summary); got != 203 {
		t.Errorf("Summary runes = %d, want 203", got)
	}
	if !strings.HasSuffix(summary, "...") {
		t.Errorf("Summary = %q, want ellipsis suffix", summary[len(summary)-12:])
	}
}

func TestExtractToolEvents_DropsUnmatchedResults(t *testing.T) {
	blocks := []model.ContentBlock{
		{Type: model.BlockToolResult, ToolUseID: "tu_ghost", Content: []model.ContentBlock{{Type: model.BlockText, Text: "orphan"}}},
		{Type: model.BlockText, Text: "nothing to do"},
	}
	if events := ExtractToolEvents(blocks); len(events) != 0 {
		t.Errorf("events = %+v, want none", events)
	}
}

func TestExtractToolEvents_KeepsRequestOrder(t *testing.T) {
	blocks := []model.ContentBlock{
		{Type: model.BlockToolUse, ID: "tu_1", Name: "information"},
		{Type: model.BlockToolUse, ID: "tu_2", Name: "retirement_readiness"},
		{Type: model.BlockToolResult, ToolUseID: "tu_2", Content: []model.ContentBlock{{Type: model.BlockText, Text: "second"}}},
		{Type: model.BlockToolResult, ToolUseID: "tu_1", Content: []model.ContentBlock{{Type: model.BlockText, Text: "first"}}},
	}

	events := ExtractToolEvents(blocks)
	if len(events) != 2 || events[0].Summary != "first" || events[1].Summary != "second" {
		t.Errorf("events = %+v, want request order with matched summaries", events)
	}
}
