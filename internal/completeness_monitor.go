package internal

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jasonychoong/retire-server/internal/ledger"
)

// arrowScale is one gauge character per five points.
const arrowScale = 5

const topicSelectPrompt = "Help me explore a specific topic (enter number 1-8)> "

var monitorHeaderStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("62")).
	Bold(true)

// CompletenessMonitor renders live topic coverage for one session and lets
// the user pull up a recommended exploration prompt per topic.
type CompletenessMonitor struct {
	Ledger    *ledger.TopicLedger
	SessionID string
	Prompts   map[string]string
	Interval  time.Duration
	In        io.Reader
	Out       io.Writer
}

// Run polls the completeness log until ctx is canceled or the user quits.
func (m *CompletenessMonitor) Run(ctx context.Context) error {
	if m.Interval <= 0 {
		m.Interval = DefaultPollInterval
	}
	if m.In == nil {
		m.In = os.Stdin
	}
	if m.Out == nil {
		m.Out = os.Stdout
	}
	reader := newLineReader(m.In, m.Out)

	for {
		if ctx.Err() != nil {
			fmt.Fprintln(m.Out, "\nExiting.")
			return nil
		}

		snapshots, err := m.Ledger.ReadCompleteness(m.SessionID)
		ClearScreen(m.Out)
		if err != nil || len(snapshots) == 0 {
			fmt.Fprintln(m.Out, "awaiting data...")
			if sleepCtx(ctx, m.Interval) != nil {
				fmt.Fprintln(m.Out, "\nExiting.")
				return nil
			}
			continue
		}
		m.renderFrame(snapshots)

		line, ok := reader.ReadLine(ctx, topicSelectPrompt, m.Interval)
		if ctx.Err() != nil {
			fmt.Fprintln(m.Out, "\nExiting.")
			return nil
		}
		if !ok || line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "q", "quit", "exit":
			fmt.Fprintln(m.Out, "Exiting.")
			return nil
		}
		if !isDigits(line) {
			fmt.Fprintln(m.Out, "Please enter a number between 1 and 8, or Ctrl-C to quit.")
			_ = sleepCtx(ctx, time.Second)
			continue
		}
		index, _ := strconv.Atoi(line)
		if index < 1 || index > len(ledger.CanonicalTopics) {
			fmt.Fprintln(m.Out, "Please enter a number between 1 and 8.")
			_ = sleepCtx(ctx, time.Second)
			continue
		}
		m.showPrompt(ctx, reader, index-1)
	}
}

func (m *CompletenessMonitor) renderFrame(snapshots []ledger.CompletenessSnapshot) {
	fmt.Fprintln(m.Out, monitorHeaderStyle.Render(fmt.Sprintf("Topic completeness (session %s)", m.SessionID)))
	latest := LatestScores(snapshots)
	for i, topic := range ledger.CanonicalTopics {
		fmt.Fprintln(m.Out, FormatTopicLine(i+1, topic, latest[topic]))
	}
}

func (m *CompletenessMonitor) showPrompt(ctx context.Context, reader *lineReader, topicIndex int) {
	topic := ledger.CanonicalTopics[topicIndex]
	text := m.Prompts[topic]
	if text == "" {
		fmt.Fprintf(m.Out, "No recommended prompt found for topic '%s'.\n", topic)
		return
	}
	fmt.Fprintln(m.Out)
	fmt.Fprintf(m.Out, "Recommended prompt for %s:\n", topic)
	fmt.Fprintln(m.Out, text)
	fmt.Fprintln(m.Out)
	reader.waitLine(ctx, "Copy the prompt above, then press Enter to continue monitoring...")
}

// LatestScores folds snapshots into the most recent score per canonical
// topic. Topics never scored map to nil.
func LatestScores(snapshots []ledger.CompletenessSnapshot) map[string]*ledger.ScoreEntry {
	latest := make(map[string]*ledger.ScoreEntry, len(ledger.CanonicalTopics))
	for _, topic := range ledger.CanonicalTopics {
		latest[topic] = nil
	}
	for _, snapshot := range snapshots {
		for _, entry := range snapshot.Scores {
			if _, canonical := latest[entry.Topic]; !canonical {
				continue
			}
			e := entry
			latest[entry.Topic] = &e
		}
	}
	return latest
}

// FormatArrow renders a gauge scaled to the score, one segment per five
// points.
func FormatArrow(score int) string {
	if score <= 0 {
		return "|"
	}
	segments := int(math.Round(float64(score) / arrowScale))
	switch {
	case segments <= 0:
		return "|"
	case segments == 1:
		return "|>"
	default:
		return "|" + strings.Repeat("=", segments-1) + ">"
	}
}

// FormatTopicLine renders one numbered topic row with its gauge. A nil entry
// means the topic has never been scored.
func FormatTopicLine(index int, topic string, entry *ledger.ScoreEntry) string {
	label := fmt.Sprintf("%-24s", fmt.Sprintf("%d. %s", index, topic))
	if entry == nil {
		return label + " | 0"
	}
	return fmt.Sprintf("%s %s %d", label, FormatArrow(entry.Score), entry.Score)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
