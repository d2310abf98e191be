package export

import (
	"fmt"
	"io"

	"github.com/jasonychoong/retire-server/internal"
)

// Transcript is the exportable view of one session: the index record, the
// conversation entries, and a summary of the metadata.
type Transcript struct {
	ID          string                  `json:"id"`
	CreatedAt   string                  `json:"created_at"`
	Description string                  `json:"description,omitempty"`
	Model       string                  `json:"model,omitempty"`
	StopReason  string                  `json:"last_stop_reason,omitempty"`
	Turns       int                     `json:"turns"`
	Entries     []internal.HistoryEntry `json:"entries"`
}

// NewTranscript assembles the exportable view of a session.
func NewTranscript(rec internal.SessionRecord, entries []internal.HistoryEntry, meta internal.Metadata) *Transcript {
	t := &Transcript{
		ID:          rec.ID,
		CreatedAt:   rec.CreatedAt,
		Description: rec.Description,
		StopReason:  meta.StringValue(internal.MetaLastStopReason),
		Entries:     entries,
	}
	if cfg, err := internal.ConfigFromMetadata(meta); err == nil && cfg != nil {
		t.Model = cfg.Model
	}
	if turns, ok := meta[internal.MetaTurns].([]any); ok {
		t.Turns = len(turns)
	}
	return t
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(session *Transcript, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}
