package internal

import (
	"github.com/jasonychoong/retire-server/internal/model"
)

// toolResultSummaryLimit caps how much tool output is kept in a turn record.
const toolResultSummaryLimit = 200

// Tool event statuses.
const (
	ToolStatusOK    = "ok"
	ToolStatusError = "error"
)

// ToolEvent is the persisted trace of one tool invocation within a turn.
type ToolEvent struct {
	Tool    string         `json:"tool"`
	Input   map[string]any `json:"input,omitempty"`
	Status  string         `json:"status"`
	Summary string         `json:"result_summary,omitempty"`
}

// ExtractToolEvents pairs tool_use blocks with their tool_result blocks and
// distills each pair into a ToolEvent. Events keep the order tools were
// requested in; results that match no request are dropped.
func ExtractToolEvents(blocks []model.ContentBlock) []ToolEvent {
	results := make(map[string]model.ContentBlock)
	for _, b := range blocks {
		if b.Type == model.BlockToolResult && b.ToolUseID != "" {
			results[b.ToolUseID] = b
		}
	}

	var events []ToolEvent
	for _, b := range blocks {
		if b.Type != model.BlockToolUse {
			continue
		}
		event := ToolEvent{Tool: b.Name, Input: b.Input, Status: ToolStatusOK}
		if result, ok := results[b.ID]; ok {
			if result.IsError {
				event.Status = ToolStatusError
			}
			event.Summary = truncateSummary(result.ResultText())
		}
		events = append(events, event)
	}
	return events
}

// truncateSummary trims long tool output at a rune boundary and marks the
// cut with an ellipsis.
func truncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= toolResultSummaryLimit {
		return s
	}
	return string(runes[:toolResultSummaryLimit]) + "..."
}
