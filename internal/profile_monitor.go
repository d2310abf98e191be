package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/jasonychoong/retire-server/internal/ledger"
)

// ProfileMonitor renders the collected facts for one session, grouped by
// topic and subtopic. It takes no input; the frame refreshes on a timer.
type ProfileMonitor struct {
	Ledger    *ledger.TopicLedger
	SessionID string
	Interval  time.Duration
	Out       io.Writer
}

// Run polls the information log until ctx is canceled.
func (m *ProfileMonitor) Run(ctx context.Context) error {
	if m.Interval <= 0 {
		m.Interval = DefaultPollInterval
	}
	if m.Out == nil {
		m.Out = os.Stdout
	}

	for {
		if ctx.Err() != nil {
			fmt.Fprintln(m.Out, "\nExiting.")
			return nil
		}

		records, err := m.Ledger.ReadInformation(m.SessionID)
		ClearScreen(m.Out)
		output := ""
		if err == nil {
			output = RenderProfile(records)
		}
		if output == "" {
			output = "awaiting data..."
		}
		fmt.Fprintln(m.Out, output)

		if sleepCtx(ctx, m.Interval) != nil {
			fmt.Fprintln(m.Out, "\nExiting.")
			return nil
		}
	}
}

// RenderProfile renders records grouped topic then subtopic then facts.
// Topics follow canonical order; subtopics keep insertion order; records
// with unknown topics are skipped.
func RenderProfile(records []ledger.InformationRecord) string {
	grouped := make(map[string]map[string][]ledger.InformationRecord)
	subtopicOrder := make(map[string][]string)
	for _, rec := range records {
		if !ledger.IsCanonicalTopic(rec.Topic) {
			continue
		}
		subtopic := rec.Subtopic
		if subtopic == "" {
			subtopic = "(uncategorized)"
		}
		bucket, ok := grouped[rec.Topic]
		if !ok {
			bucket = make(map[string][]ledger.InformationRecord)
			grouped[rec.Topic] = bucket
		}
		if _, seen := bucket[subtopic]; !seen {
			subtopicOrder[rec.Topic] = append(subtopicOrder[rec.Topic], subtopic)
		}
		bucket[subtopic] = append(bucket[subtopic], rec)
	}

	var lines []string
	for _, topic := range ledger.CanonicalTopics {
		subtopics := subtopicOrder[topic]
		if len(subtopics) == 0 {
			continue
		}
		lines = append(lines, topic)
		for _, subtopic := range subtopics {
			lines = append(lines, "    "+subtopic)
			for _, rec := range grouped[topic][subtopic] {
				value := rec.Value
				if value == "" {
					value = "[missing value]"
				}
				lines = append(lines, fmt.Sprintf("        %s: %s", FactLabel(rec), value))
			}
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// FactLabel turns a record's fact_type into a display label: underscores
// become spaces and the phrase is capitalized. Records without a fact_type
// are labeled Fact.
func FactLabel(rec ledger.InformationRecord) string {
	label := strings.TrimSpace(strings.ReplaceAll(rec.FactType, "_", " "))
	if label == "" {
		return "Fact"
	}
	runes := []rune(strings.ToLower(label))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
