package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jasonychoong/retire-server/internal"
)

var limit int

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the transcript for a session",
	Long:  `Display the stored conversation for one session.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		store, err := openStore()
		if err != nil {
			return err
		}
		record, err := findSessionRecord(store, sessionID)
		if err != nil {
			return err
		}
		entries, err := store.ReadHistory(sessionID)
		if err != nil {
			return err
		}

		displaySessionHeader(record, len(entries))

		toShow := entries
		if limit > 0 && limit < len(toShow) {
			toShow = toShow[len(toShow)-limit:]
		}
		skipped := len(entries) - len(toShow)
		if skipped > 0 {
			fmt.Println(timestampStyle.Render(fmt.Sprintf("... (%d earlier message(s))", skipped)))
			fmt.Println()
		}

		for i, entry := range toShow {
			displayEntry(skipped+i+1, entry, len(entries))
		}

		return nil
	},
}

// findSessionRecord looks up the index entry for an id. A directory that
// fell out of the index still shows with a bare record.
func findSessionRecord(store *internal.SessionStore, id string) (internal.SessionRecord, error) {
	records, err := store.ListSessions()
	if err != nil {
		return internal.SessionRecord{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	if store.SessionExists(id) {
		return internal.SessionRecord{ID: id}, nil
	}
	return internal.SessionRecord{}, &internal.NotFoundError{SessionID: id}
}

func displaySessionHeader(rec internal.SessionRecord, entryCount int) {
	title := rec.Description
	if title == "" {
		title = rec.ID
	}
	fmt.Println(sessionHeaderStyle.Render(fmt.Sprintf("💬 %s", title)))

	metaParts := []string{fmt.Sprintf("ID: %s", rec.ID)}
	if rec.CreatedAt != "" {
		metaParts = append(metaParts, fmt.Sprintf("Created: %s", rec.CreatedAt))
	}
	metaParts = append(metaParts, fmt.Sprintf("Entries: %d", entryCount))
	fmt.Println(sessionMetaStyle.Render(strings.Join(metaParts, " • ")))

	fmt.Println()
}

func displayEntry(index int, entry internal.HistoryEntry, total int) {
	var roleStyle lipgloss.Style
	var roleLabel string

	switch entry.Role {
	case internal.RoleUser:
		roleStyle = userMessageStyle
		roleLabel = "👤 User"
	case internal.RoleAssistant:
		roleStyle = assistantMessageStyle
		roleLabel = "🤖 Assistant"
	default:
		roleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		roleLabel = fmt.Sprintf("🔧 %s", entry.Role)
	}

	// Message header
	header := roleStyle.Render(roleLabel) + " " + timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	if entry.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339Nano, entry.Timestamp); err == nil {
			header += " " + timestampStyle.Render(t.Format("15:04:05"))
		} else {
			header += " " + timestampStyle.Render(entry.Timestamp)
		}
	}

	fmt.Println(header)

	// Message content
	content := strings.TrimSpace(entry.Content)
	if content != "" {
		content = wrapText(content, 80)
		fmt.Println(messageContentStyle.Render(content))
	} else {
		fmt.Println(messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
	}

	fmt.Println()
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		// Wrap long lines
		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
					currentLine = word
				} else {
					wrapped = append(wrapped, word)
					currentLine = ""
				}
			} else {
				if currentLine == "" {
					currentLine = word
				} else {
					currentLine += " " + word
				}
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the last N entries")
}
