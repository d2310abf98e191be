// Package ledger records retirement-profile facts and completeness scores
// as append-only JSONL logs attached to a session.
package ledger

import (
	"encoding/json"
	"fmt"
	"time"
)

// Log file names within a session directory.
const (
	InformationLog  = "information.jsonl"
	CompletenessLog = "completeness.jsonl"
)

// EventStore is the slice of the session store the ledger writes through.
// Both methods fail when the session does not exist.
type EventStore interface {
	AppendEvent(sessionID, logName string, record any) error
	ReadEvents(sessionID, logName string) ([]json.RawMessage, error)
}

// ValidationError reports a record rejected before anything was written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// InformationRecord is one captured fact about the user's retirement picture.
type InformationRecord struct {
	SessionID  string  `json:"session_id"`
	Topic      string  `json:"topic"`
	Subtopic   string  `json:"subtopic,omitempty"`
	FactType   string  `json:"fact_type,omitempty"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	CreatedAt  string  `json:"created_at"`
}

// ScoreEntry is one topic's score inside a completeness snapshot.
type ScoreEntry struct {
	Topic  string `json:"topic"`
	Score  int    `json:"score"`
	Reason string `json:"reason,omitempty"`
}

// CompletenessSnapshot is a full set of topic scores taken at one moment.
type CompletenessSnapshot struct {
	SessionID string       `json:"session_id"`
	Scores    []ScoreEntry `json:"scores"`
	CreatedAt string       `json:"created_at"`
}

// Fact is the caller-supplied portion of an information record.
type Fact struct {
	Topic      string
	Subtopic   string
	FactType   string
	Value      string
	Confidence float64
}

// TopicLedger appends and reads the per-session fact and score logs. Every
// call names its session explicitly.
type TopicLedger struct {
	store EventStore
}

func NewTopicLedger(store EventStore) *TopicLedger {
	return &TopicLedger{store: store}
}

// AppendInformation validates and stores one fact, returning the stamped
// record as written.
func (l *TopicLedger) AppendInformation(sessionID string, fact Fact) (*InformationRecord, error) {
	if err := ValidateTopic(fact.Topic); err != nil {
		return nil, err
	}
	if fact.Confidence < 0 || fact.Confidence > 1 {
		return nil, &ValidationError{Reason: "confidence must be between 0.0 and 1.0"}
	}
	rec := &InformationRecord{
		SessionID:  sessionID,
		Topic:      fact.Topic,
		Subtopic:   fact.Subtopic,
		FactType:   fact.FactType,
		Value:      fact.Value,
		Confidence: fact.Confidence,
		CreatedAt:  timestamp(),
	}
	if err := l.store.AppendEvent(sessionID, InformationLog, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AppendCompleteness validates every entry before writing a single snapshot
// line. One invalid entry rejects the whole batch and the log stays untouched.
func (l *TopicLedger) AppendCompleteness(sessionID string, scores []ScoreEntry) (*CompletenessSnapshot, error) {
	for _, entry := range scores {
		if err := ValidateTopic(entry.Topic); err != nil {
			return nil, err
		}
		if entry.Score < 0 || entry.Score > 100 {
			return nil, &ValidationError{
				Reason: fmt.Sprintf("score for topic %q must be an integer between 0 and 100", entry.Topic),
			}
		}
	}
	snap := &CompletenessSnapshot{
		SessionID: sessionID,
		Scores:    scores,
		CreatedAt: timestamp(),
	}
	if err := l.store.AppendEvent(sessionID, CompletenessLog, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// ReadInformation returns every fact recorded for the session in append order.
func (l *TopicLedger) ReadInformation(sessionID string) ([]InformationRecord, error) {
	raws, err := l.store.ReadEvents(sessionID, InformationLog)
	if err != nil {
		return nil, err
	}
	records := make([]InformationRecord, 0, len(raws))
	for _, raw := range raws {
		var rec InformationRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse information record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadCompleteness returns every snapshot for the session in append order.
func (l *TopicLedger) ReadCompleteness(sessionID string) ([]CompletenessSnapshot, error) {
	raws, err := l.store.ReadEvents(sessionID, CompletenessLog)
	if err != nil {
		return nil, err
	}
	snaps := make([]CompletenessSnapshot, 0, len(raws))
	for _, raw := range raws {
		var snap CompletenessSnapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("failed to parse completeness snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
