package internal

import (
	"time"

	"github.com/jasonychoong/retire-server/internal/model"
)

// Role values recorded in session history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// SessionRecord represents one entry in the session index
type SessionRecord struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"created_at"`
	Description string `json:"description,omitempty"`
	IsCurrent   bool   `json:"is_current"`
}

// CreatedTime parses the record timestamp, returning the zero time when it
// cannot be parsed.
func (r SessionRecord) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// HistoryEntry represents one conversation entry in history.json
type HistoryEntry struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// TurnRecord summarizes one executed turn inside session metadata
type TurnRecord struct {
	Timestamp  string       `json:"timestamp"`
	User       string       `json:"user"`
	Assistant  string       `json:"assistant"`
	StopReason string       `json:"stop_reason,omitempty"`
	Usage      *model.Usage `json:"usage,omitempty"`
	ToolEvents []ToolEvent  `json:"tool_events,omitempty"`
}

// ErrorRecord captures a model invocation failure inside session metadata
type ErrorRecord struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// Metadata is the free-form metadata.json document. Unknown keys written by
// other tooling round-trip untouched.
type Metadata map[string]any

// Well-known metadata keys.
const (
	MetaConfig          = "config"
	MetaErrors          = "errors"
	MetaTurns           = "turns"
	MetaLastResponse    = "last_response"
	MetaLastStopReason  = "last_stop_reason"
	MetaPromptText      = "system_prompt_text"
	MetaPromptSource    = "system_prompt_source"
	MetaPromptFilePath  = "system_prompt_file_path"
	MetaPromptUpdatedAt = "system_prompt_updated_at"
)

// AppendError records a failed model invocation.
func (m Metadata) AppendError(timestamp, message string) {
	list, _ := m[MetaErrors].([]any)
	m[MetaErrors] = append(list, ErrorRecord{Timestamp: timestamp, Message: message})
}

// AppendTurn records a completed turn.
func (m Metadata) AppendTurn(rec TurnRecord) {
	list, _ := m[MetaTurns].([]any)
	m[MetaTurns] = append(list, rec)
}

// StringValue returns the string stored under key, or "" when absent or not
// a string.
func (m Metadata) StringValue(key string) string {
	s, _ := m[key].(string)
	return s
}

// NowUTC returns the current time as an RFC 3339 UTC timestamp with
// sub-second precision.
func NowUTC() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
