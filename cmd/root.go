package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jasonychoong/retire-server/internal"
)

var (
	verbose bool
	rootDir string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"

	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "retire-server",
	Short: "Retirement planning chat sessions on local storage",
	Long: `A local-first CLI for retirement planning conversations.

Chats run against OpenAI or Gemini models with tool calling, and every
session lives on disk as plain JSON documents that other processes can
watch live.

Features:
  • Multi-session chat with durable history and metadata
  • Topic ledgers recording captured facts and completeness scores
  • Live terminal monitors for completeness and profile views
  • Export in multiple formats (JSONL, Markdown, YAML, JSON)
  • Health checks over the on-disk session layout

Quick Start:
  retire-server chat                     # Start or resume a conversation
  retire-server sessions list            # List all sessions
  retire-server monitor completeness     # Watch topic coverage live
  retire-server export <session-id>      # Export a transcript

For detailed usage, see: https://github.com/jasonychoong/retire-server`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = internal.NewLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// defaultRoot resolves the default store root: RETIRE_ROOT when set, else
// the current directory.
func defaultRoot() string {
	if env := os.Getenv("RETIRE_ROOT"); env != "" {
		return env
	}
	return "."
}

// storeRoot returns the directory the session store lives under.
func storeRoot() string {
	return rootDir
}

// openStore opens the session store under the resolved root.
func openStore() (*internal.SessionStore, error) {
	return internal.NewSessionStore(storeRoot(), logger)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", defaultRoot(), "Session store root directory (env RETIRE_ROOT)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
