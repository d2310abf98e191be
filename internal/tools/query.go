package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jasonychoong/retire-server/internal/ledger"
)

type queryTool struct {
	ledger    *ledger.TopicLedger
	sessionID string
}

func newQueryTool(deps Deps) Tool {
	return &queryTool{ledger: deps.Ledger, sessionID: deps.SessionID}
}

func (t *queryTool) Name() string {
	return "information_query"
}

func (t *queryTool) Description() string {
	return "Return every fact recorded for this session so far, as JSON."
}

func (t *queryTool) InputSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *queryTool) Call(_ context.Context, _ map[string]any) (string, error) {
	records, err := t.ledger.ReadInformation(t.sessionID)
	if err != nil {
		return "", err
	}
	if records == nil {
		records = []ledger.InformationRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode records: %w", err)
	}
	return string(data), nil
}
