package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/jasonychoong/retire-server/internal/ledger"
)

type completenessTool struct {
	ledger    *ledger.TopicLedger
	sessionID string
}

func newCompletenessTool(deps Deps) Tool {
	return &completenessTool{ledger: deps.Ledger, sessionID: deps.SessionID}
}

func (t *completenessTool) Name() string {
	return "completeness"
}

func (t *completenessTool) Description() string {
	return "Store a snapshot of 0-100 completeness scores across the canonical retirement topics."
}

func (t *completenessTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"scores": map[string]any{
				"type":        "array",
				"description": "Full set of topic scores for this snapshot.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"topic": map[string]any{
							"type": "string",
							"enum": topicList(),
						},
						"score": map[string]any{
							"type":    "integer",
							"minimum": 0,
							"maximum": 100,
						},
						"reason": map[string]any{
							"type":        "string",
							"description": "Optional short justification for the score.",
						},
					},
					"required": []string{"topic", "score"},
				},
			},
		},
		"required": []string{"scores"},
	}
}

func (t *completenessTool) Call(_ context.Context, input map[string]any) (string, error) {
	rawScores, ok := input["scores"].([]any)
	if !ok || len(rawScores) == 0 {
		return "", fmt.Errorf("scores must be a non-empty list of topic score objects")
	}

	entries := make([]ledger.ScoreEntry, 0, len(rawScores))
	for _, raw := range rawScores {
		obj, ok := raw.(map[string]any)
		if !ok {
			return "", fmt.Errorf("each score entry must be an object with 'topic' and 'score'")
		}
		topic, hasTopic := stringArg(obj, "topic")
		score, hasScore := floatArg(obj, "score")
		if !hasTopic || !hasScore {
			return "", fmt.Errorf("each score entry must include 'topic' and 'score'")
		}
		if score != float64(int(score)) {
			return "", fmt.Errorf("score for topic %q must be an integer between 0 and 100", topic)
		}
		reason, _ := stringArg(obj, "reason")
		entries = append(entries, ledger.ScoreEntry{Topic: topic, Score: int(score), Reason: reason})
	}

	if _, err := t.ledger.AppendCompleteness(t.sessionID, entries); err != nil {
		return "", err
	}

	topics := make([]string, len(entries))
	for i, e := range entries {
		topics[i] = e.Topic
	}
	return fmt.Sprintf("Completeness snapshot stored for topics: %s", strings.Join(topics, ", ")), nil
}
