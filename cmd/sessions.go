package cmd

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jasonychoong/retire-server/internal"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage chat sessions",
	Long:  `List, create, describe, switch, and delete chat sessions.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		records, err := store.ListSessions()
		if err != nil {
			return err
		}
		displaySessionTable(records)
		return nil
	},
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new [description]",
	Short: "Create a session",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		rec, err := store.CreateSession(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("Created session %s\n", rec.ID)
		return nil
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.DeleteSession(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted session %s\n", args[0])
		return nil
	},
}

var sessionsDescribeCmd = &cobra.Command{
	Use:   "describe <session-id> <description>",
	Short: "Update a session description",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.UpdateDescription(args[0], strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Printf("Updated description for session %s\n", args[0])
		return nil
	},
}

var sessionsUseCmd = &cobra.Command{
	Use:   "use <session-id>",
	Short: "Mark a session as current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.MarkCurrent(args[0]); err != nil {
			return err
		}
		fmt.Printf("Current session is now %s\n", args[0])
		return nil
	},
}

func displaySessionTable(records []internal.SessionRecord) {
	if len(records) == 0 {
		fmt.Println(headerStyle.Render("📋 No sessions found"))
		return
	}

	sorted := make([]internal.SessionRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt < sorted[j].CreatedAt
	})

	fmt.Println(headerStyle.Render(fmt.Sprintf("📋 Found %d session(s)", len(sorted))))
	fmt.Println()

	// Use tabwriter for aligned columns with better spacing
	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, " \t"+titleStyle.Render("ID")+"\t"+titleStyle.Render("Created")+"\t"+titleStyle.Render("Description")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))

	for _, rec := range sorted {
		marker := " "
		if rec.IsCurrent {
			marker = currentStyle.Render("*")
		}

		created := dateStyle.Render("-")
		if t := rec.CreatedTime(); !t.IsZero() {
			created = dateStyle.Render(humanize.Time(t))
		}

		description := rec.Description
		if description == "" {
			description = "Untitled"
		}
		if len(description) > 50 {
			description = description[:47] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", marker, idStyle.Render(shortID(rec.ID)), created, description)
	}

	_ = w.Flush()
	fmt.Println()
	fmt.Println(idStyle.Render("💡 Tip: Use the full ID (e.g., ") +
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(sorted[0].ID) +
		idStyle.Render(") with `retire-server show <id>`"))
}

// shortID trims a uuid to its leading segment for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)
	sessionsCmd.AddCommand(sessionsDescribeCmd)
	sessionsCmd.AddCommand(sessionsUseCmd)
}
