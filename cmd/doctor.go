package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jasonychoong/retire-server/internal"
	"github.com/jasonychoong/retire-server/internal/ledger"
)

var (
	successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	warningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	infoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Underline(true)
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the session store for problems",
	Long: `Walk the session store and report anything unhealthy:
  • Store root and index accessibility
  • Index entries without directories (and directories without entries)
  • Unreadable or malformed session documents
  • Malformed ledger lines

Exits non-zero only when the store itself is unusable; damaged individual
sessions are reported as warnings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("🔍 Session Store Health Check"))
		fmt.Println()

		// Step 1: Open the store
		fmt.Println(infoStyle.Render("Step 1: Opening session store..."))
		store, err := openStore()
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to open session store:"), err)
			return fmt.Errorf("health check failed: store is not usable")
		}
		fmt.Println(successStyle.Render("✅ Store opened"))
		if verbose {
			fmt.Printf("   Root: %s\n", store.Root())
			fmt.Printf("   Sessions dir: %s\n", store.SessionsDir())
		}
		fmt.Println()

		// Step 2: Read the index
		fmt.Println(infoStyle.Render("Step 2: Reading session index..."))
		records, err := store.ListSessions()
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to read index:"), err)
			return fmt.Errorf("health check failed: index is not readable")
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✅ Index lists %d session(s)", len(records))))
		fmt.Println()

		// Step 3: Index vs directories, both directions
		fmt.Println(infoStyle.Render("Step 3: Checking index against directories..."))
		orphans := 0
		indexed := make(map[string]bool, len(records))
		for _, rec := range records {
			indexed[rec.ID] = true
			if !store.SessionExists(rec.ID) {
				fmt.Println(warningStyle.Render(fmt.Sprintf("⚠️  Indexed session %s has no directory", rec.ID)))
				orphans++
			}
		}
		dirs, err := os.ReadDir(store.SessionsDir())
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to list session directories:"), err)
			return fmt.Errorf("health check failed: sessions directory is not readable")
		}
		for _, dir := range dirs {
			if !dir.IsDir() {
				continue
			}
			if !indexed[dir.Name()] {
				fmt.Println(warningStyle.Render(fmt.Sprintf("⚠️  Directory %s is not in the index", dir.Name())))
				orphans++
			}
		}
		if orphans == 0 {
			fmt.Println(successStyle.Render("✅ Index and directories agree"))
		}
		fmt.Println()

		// Step 4: Per-session documents
		fmt.Println(infoStyle.Render("Step 4: Checking session documents..."))
		damaged := 0
		for _, rec := range records {
			if !store.SessionExists(rec.ID) {
				continue
			}
			problems := checkSessionDocuments(store, rec.ID)
			if len(problems) == 0 {
				if verbose {
					fmt.Printf("   %s ok\n", shortID(rec.ID))
				}
				continue
			}
			damaged++
			for _, problem := range problems {
				fmt.Println(warningStyle.Render(fmt.Sprintf("⚠️  %s: %s", shortID(rec.ID), problem)))
			}
		}
		if damaged == 0 {
			fmt.Println(successStyle.Render("✅ All session documents parse"))
		}
		fmt.Println()

		// Summary
		fmt.Println(sectionStyle.Render("📊 Summary"))
		fmt.Println()
		total := orphans + damaged
		if total == 0 {
			fmt.Println(successStyle.Render("✅ Health check passed!"))
			fmt.Println(successStyle.Render(fmt.Sprintf("   • Sessions: %d checked", len(records))))
			return nil
		}
		fmt.Println(warningStyle.Render(fmt.Sprintf("⚠️  Health check found %d problem(s)", total)))
		fmt.Println("   • The store itself is usable; damaged sessions are listed above")
		return nil
	},
}

// checkSessionDocuments parses every document of one session and describes
// what fails.
func checkSessionDocuments(store *internal.SessionStore, id string) []string {
	var problems []string
	if _, err := store.ReadHistory(id); err != nil {
		problems = append(problems, fmt.Sprintf("history: %v", err))
	}
	if _, err := store.ReadMetadata(id); err != nil {
		problems = append(problems, fmt.Sprintf("metadata: %v", err))
	}
	for _, logName := range []string{ledger.InformationLog, ledger.CompletenessLog} {
		lines, err := store.ReadEvents(id, logName)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", logName, err))
			continue
		}
		malformed := 0
		for _, line := range lines {
			if !json.Valid(line) {
				malformed++
			}
		}
		if malformed > 0 {
			problems = append(problems, fmt.Sprintf("%s: %d malformed line(s)", logName, malformed))
		}
	}
	return problems
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
