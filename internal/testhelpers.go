package internal

// CreateTestRecord returns a session record with sample data.
func CreateTestRecord(id string) SessionRecord {
	return SessionRecord{
		ID:          id,
		CreatedAt:   "2026-08-25T12:00:00Z",
		Description: "Test conversation",
	}
}

// CreateTestHistory returns a short user/assistant exchange.
func CreateTestHistory() []HistoryEntry {
	return []HistoryEntry{
		{Role: RoleUser, Content: "I want to retire at 62.", Timestamp: "2026-08-25T12:00:05Z"},
		{Role: RoleAssistant, Content: "Tell me about your expected income sources.", Timestamp: "2026-08-25T12:00:07Z"},
	}
}

// CreateTestMetadata returns metadata carrying a config snapshot and one
// completed turn.
func CreateTestMetadata() Metadata {
	meta := Metadata{
		MetaConfig: map[string]any{
			"model":                   "gpt-5.1-mini",
			"window_size":             40,
			"should_truncate_results": true,
		},
		MetaLastResponse:   "Tell me about your expected income sources.",
		MetaLastStopReason: "end_turn",
	}
	meta.AppendTurn(TurnRecord{
		Timestamp: "2026-08-25T12:00:07Z",
		User:      "I want to retire at 62.",
		Assistant: "Tell me about your expected income sources.",
	})
	return meta
}
