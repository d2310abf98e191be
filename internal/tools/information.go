package tools

import (
	"context"
	"fmt"

	"github.com/jasonychoong/retire-server/internal/ledger"
)

type informationTool struct {
	ledger    *ledger.TopicLedger
	sessionID string
}

func newInformationTool(deps Deps) Tool {
	return &informationTool{ledger: deps.Ledger, sessionID: deps.SessionID}
}

func (t *informationTool) Name() string {
	return "information"
}

func (t *informationTool) Description() string {
	return "Record one fact about the user's retirement picture under a canonical topic."
}

func (t *informationTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic": map[string]any{
				"type":        "string",
				"enum":        topicList(),
				"description": "Canonical topic the fact belongs to.",
			},
			"value": map[string]any{
				"type":        "string",
				"description": "The fact itself, stated briefly.",
			},
			"subtopic": map[string]any{
				"type":        "string",
				"description": "Optional finer grouping within the topic.",
			},
			"fact_type": map[string]any{
				"type":        "string",
				"description": "Optional label such as goal, constraint, or asset.",
			},
			"confidence": map[string]any{
				"type":        "number",
				"description": "Confidence between 0.0 and 1.0. Defaults to 0.9 when omitted.",
			},
		},
		"required": []string{"topic", "value"},
	}
}

func (t *informationTool) Call(_ context.Context, input map[string]any) (string, error) {
	topic, _ := stringArg(input, "topic")
	value, _ := stringArg(input, "value")
	subtopic, _ := stringArg(input, "subtopic")
	factType, _ := stringArg(input, "fact_type")

	confidence := 0.9
	if v, ok := floatArg(input, "confidence"); ok {
		confidence = v
	}
	if confidence < 0 || confidence > 1 {
		return "", fmt.Errorf("confidence must be between 0.0 and 1.0")
	}

	_, err := t.ledger.AppendInformation(t.sessionID, ledger.Fact{
		Topic:      topic,
		Subtopic:   subtopic,
		FactType:   factType,
		Value:      value,
		Confidence: confidence,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Recorded information for topic '%s'.", topic), nil
}
