package internal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jasonychoong/retire-server/internal/model"
)

// noResponseText stands in for an assistant reply with no text content.
const noResponseText = "[No response]"

// Invoker produces a model reply for a prepared message window. The agent
// satisfies this; tests substitute fakes.
type Invoker interface {
	Converse(ctx context.Context, messages []model.Message) (*model.Reply, error)
}

// TurnRunner executes chat turns for one session, persisting history before
// and after each model call so a crash never loses the user's words.
type TurnRunner struct {
	store     *SessionStore
	sessionID string
	cfg       SessionConfig
	invoker   Invoker
	logger    *zap.Logger

	history  []HistoryEntry
	metadata Metadata
}

// NewTurnRunner loads the session's history and metadata and returns a
// runner bound to the given invoker.
func NewTurnRunner(store *SessionStore, sessionID string, cfg SessionConfig, invoker Invoker, logger *zap.Logger) (*TurnRunner, error) {
	history, err := store.ReadHistory(sessionID)
	if err != nil {
		return nil, err
	}
	metadata, err := store.ReadMetadata(sessionID)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TurnRunner{
		store:     store,
		sessionID: sessionID,
		cfg:       cfg,
		invoker:   invoker,
		logger:    logger,
		history:   history,
		metadata:  metadata,
	}, nil
}

// History returns the conversation entries loaded so far, newest last.
func (r *TurnRunner) History() []HistoryEntry {
	return r.history
}

// ExecuteTurn appends the user's message, runs the model over the visible
// window, and persists the assistant reply plus turn telemetry. The user
// entry is written to disk before the model is called; a model failure is
// recorded in metadata and returned, leaving the user entry in place.
func (r *TurnRunner) ExecuteTurn(ctx context.Context, userText string) (string, error) {
	userEntry := HistoryEntry{Role: RoleUser, Content: userText, Timestamp: NowUTC()}
	r.history = append(r.history, userEntry)
	if err := r.store.WriteHistory(r.sessionID, r.history); err != nil {
		return "", err
	}

	window := PrepareWindow(r.history, r.cfg.WindowSize, r.cfg.ShouldTruncateResults)
	reply, err := r.invoker.Converse(ctx, historyToMessages(window))
	if err != nil {
		r.recordFailure(userEntry.Timestamp, err)
		return "", fmt.Errorf("model call failed: %w", err)
	}

	text := reply.TextContent()
	if text == "" {
		text = noResponseText
	}
	assistantEntry := HistoryEntry{Role: RoleAssistant, Content: text, Timestamp: NowUTC()}
	r.history = append(r.history, assistantEntry)
	if err := r.store.WriteHistory(r.sessionID, r.history); err != nil {
		return "", err
	}

	r.metadata.AppendTurn(TurnRecord{
		Timestamp:  assistantEntry.Timestamp,
		User:       userText,
		Assistant:  text,
		StopReason: reply.StopReason,
		Usage:      reply.Usage,
		ToolEvents: ExtractToolEvents(reply.Blocks),
	})
	r.metadata[MetaLastResponse] = text
	r.metadata[MetaLastStopReason] = reply.StopReason
	if err := r.store.WriteMetadata(r.sessionID, r.metadata); err != nil {
		return "", err
	}

	fields := []zap.Field{
		zap.String("session", r.sessionID),
		zap.String("stop_reason", reply.StopReason),
	}
	if reply.Usage != nil {
		fields = append(fields, zap.Int("total_tokens", reply.Usage.TotalTokens))
	}
	r.logger.Debug("turn complete", fields...)
	return text, nil
}

// recordFailure appends an error record to metadata and persists it. The
// persist is best effort: the original failure is what the caller sees.
func (r *TurnRunner) recordFailure(timestamp string, cause error) {
	r.metadata.AppendError(timestamp, cause.Error())
	if err := r.store.WriteMetadata(r.sessionID, r.metadata); err != nil {
		r.logger.Warn("failed to persist error record",
			zap.String("session", r.sessionID),
			zap.Error(err))
	}
}

// historyToMessages converts history entries to model messages, skipping
// anything that is not part of the user/assistant exchange.
func historyToMessages(entries []HistoryEntry) []model.Message {
	messages := make([]model.Message, 0, len(entries))
	for _, entry := range entries {
		if entry.Role != RoleUser && entry.Role != RoleAssistant {
			continue
		}
		messages = append(messages, model.TextMessage(entry.Role, entry.Content))
	}
	return messages
}
