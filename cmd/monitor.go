package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jasonychoong/retire-server/internal"
	"github.com/jasonychoong/retire-server/internal/ledger"
)

var (
	monitorSessionID string
	monitorInterval  time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch session state live",
	Long: `Poll a session's on-disk ledgers and render them in the terminal.

Monitors are read-only and can run alongside an active chat in another
process.`,
}

var monitorCompletenessCmd = &cobra.Command{
	Use:   "completeness",
	Short: "Watch topic completeness scores",
	Long: `Render a live gauge per retirement topic from the completeness ledger.

Entering a topic number shows a recommended prompt for exploring that topic;
q or Ctrl-C exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		sessionID, err := internal.ResolveMonitorSession(store, monitorSessionID)
		if err != nil {
			return err
		}
		prompts, err := internal.LoadTopicPrompts(storeRoot())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		monitor := &internal.CompletenessMonitor{
			Ledger:    ledger.NewTopicLedger(store),
			SessionID: sessionID,
			Prompts:   prompts,
			Interval:  monitorInterval,
		}
		return monitor.Run(ctx)
	},
}

var monitorProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Watch the captured retirement profile",
	Long:  `Render the facts recorded in the information ledger, grouped by topic.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		sessionID, err := internal.ResolveMonitorSession(store, monitorSessionID)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		monitor := &internal.ProfileMonitor{
			Ledger:    ledger.NewTopicLedger(store),
			SessionID: sessionID,
			Interval:  monitorInterval,
		}
		return monitor.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.PersistentFlags().StringVar(&monitorSessionID, "session", "", "Session to watch (defaults to the current session)")
	monitorCmd.PersistentFlags().DurationVar(&monitorInterval, "interval", internal.DefaultPollInterval, "Poll interval")
	monitorCmd.AddCommand(monitorCompletenessCmd)
	monitorCmd.AddCommand(monitorProfileCmd)
}
