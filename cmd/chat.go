package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jasonychoong/retire-server/internal"
	"github.com/jasonychoong/retire-server/internal/ledger"
	"github.com/jasonychoong/retire-server/internal/model"
	"github.com/jasonychoong/retire-server/internal/tools"
)

// historyDisplayLimit caps the conversation overview shown on startup.
const historyDisplayLimit = 10

// exitCommands end the interactive loop.
var exitCommands = map[string]bool{
	"exit":  true,
	"/exit": true,
	"quit":  true,
	":q":    true,
}

var (
	chatSessionID        string
	chatNewSession       bool
	chatDescription      string
	chatConfigPath       string
	chatModel            string
	chatWindowSize       int
	chatTruncateResults  string
	chatSystemPrompt     string
	chatSystemPromptFile string
	chatSingle           bool
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [prompt...]",
	Short: "Start or resume a conversation",
	Long: `Run a retirement planning conversation against the configured model.

Without flags the current session is resumed (or a fresh one created).
Session state is written to disk after every turn, so monitors in other
processes see facts and completeness scores as they are captured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		sessionID, err := resolveChatSession(store)
		if err != nil {
			return err
		}

		metadata, err := store.ReadMetadata(sessionID)
		if err != nil {
			return err
		}

		cfg, err := resolveChatConfig(cmd, metadata)
		if err != nil {
			return err
		}
		metadata[internal.MetaConfig] = cfg.ToMap()

		promptText, err := internal.ResolveSystemPrompt(store, sessionID, metadata, chatSystemPrompt, chatSystemPromptFile)
		if err != nil {
			return err
		}
		if err := store.WriteMetadata(sessionID, metadata); err != nil {
			return err
		}

		client, err := model.NewClient(cfg.Model, logger)
		if err != nil {
			return err
		}
		registry, err := buildToolRegistry(store, sessionID)
		if err != nil {
			return err
		}
		agent, err := model.NewAgent(model.AgentConfig{
			Client: client,
			Tools:  registry,
			System: promptText,
			Logger: logger,
		})
		if err != nil {
			return err
		}
		runner, err := internal.NewTurnRunner(store, sessionID, *cfg, agent, logger)
		if err != nil {
			return err
		}

		printStartupBlock(sessionID, cfg, metadata, promptText)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var runErr error
		if chatSingle {
			runErr = runSingleTurn(ctx, runner, args)
		} else {
			runInteractiveLoop(ctx, runner)
		}
		fmt.Printf("Session ID: %s\n", sessionID)
		return runErr
	},
}

// resolveChatSession picks the session this run operates on and marks it
// current. An explicit id (flag or RETIRE_CURRENT_SESSION_ID) must exist;
// with no id at all a fresh session is created.
func resolveChatSession(store *internal.SessionStore) (string, error) {
	if chatDescription != "" && !chatNewSession && chatSessionID == "" {
		return "", fmt.Errorf("--description requires --session or --new-session")
	}

	if chatNewSession {
		rec, err := store.CreateSession(chatDescription)
		if err != nil {
			return "", err
		}
		if err := store.MarkCurrent(rec.ID); err != nil {
			return "", err
		}
		return rec.ID, nil
	}

	sessionID := chatSessionID
	if sessionID == "" {
		sessionID = os.Getenv("RETIRE_CURRENT_SESSION_ID")
	}
	if sessionID == "" {
		rec, err := store.CreateSession("")
		if err != nil {
			return "", err
		}
		sessionID = rec.ID
	} else if !store.SessionExists(sessionID) {
		return "", &internal.NotFoundError{SessionID: sessionID}
	}

	if chatSessionID != "" && chatDescription != "" {
		if err := store.UpdateDescription(chatSessionID, chatDescription); err != nil {
			return "", err
		}
	}
	if err := store.MarkCurrent(sessionID); err != nil {
		return "", err
	}
	return sessionID, nil
}

// resolveChatConfig builds the effective session config: the metadata
// snapshot when present (fresh sessions and --new-session load config.yaml),
// with flag overrides applied field-wise.
func resolveChatConfig(cmd *cobra.Command, metadata internal.Metadata) (*internal.SessionConfig, error) {
	cfg, err := internal.ConfigFromMetadata(metadata)
	if err != nil {
		return nil, err
	}
	if cfg == nil || chatNewSession {
		path := chatConfigPath
		if path == "" {
			path = filepath.Join(storeRoot(), "config.yaml")
		}
		cfg, err = internal.LoadBaseConfig(path)
		if err != nil {
			return nil, err
		}
	}

	overrides := internal.ConfigOverrides{Model: chatModel}
	if cmd.Flags().Changed("window-size") {
		overrides.WindowSize = &chatWindowSize
	}
	if chatTruncateResults != "" {
		truncate, err := internal.ParseBoolFlag(chatTruncateResults)
		if err != nil {
			return nil, err
		}
		overrides.TruncateResults = &truncate
	}
	effective := cfg.ApplyOverrides(overrides)
	return &effective, nil
}

// buildToolRegistry wires the builtin tools to this session's ledger. A
// missing tools.yaml runs the chat without tools.
func buildToolRegistry(store *internal.SessionStore, sessionID string) (*tools.Registry, error) {
	names, err := tools.LoadToolNames(filepath.Join(storeRoot(), "tools.yaml"))
	if err != nil {
		return nil, err
	}
	deps := tools.Deps{Ledger: ledger.NewTopicLedger(store), SessionID: sessionID}
	return tools.NewRegistry(deps, names)
}

// printStartupBlock echoes the effective session settings.
func printStartupBlock(sessionID string, cfg *internal.SessionConfig, metadata internal.Metadata, promptText string) {
	fmt.Printf("Active session: %s\n", sessionID)
	fmt.Printf("Model: %s\n", cfg.Model)
	fmt.Printf("Window size: %d\n", cfg.WindowSize)
	fmt.Printf("Should truncate results: %t\n", cfg.ShouldTruncateResults)
	if promptText != "" {
		source := metadata.StringValue(internal.MetaPromptSource)
		if source == "" {
			source = "unknown"
		}
		location := metadata.StringValue(internal.MetaPromptFilePath)
		if location == "" {
			location = "inline text"
		}
		fmt.Printf("System prompt (%s): %s\n", source, location)
	}
}

// printHistoryOverview displays the tail of the existing conversation.
func printHistoryOverview(history []internal.HistoryEntry) {
	if len(history) == 0 {
		fmt.Println("No previous conversation history.")
		return
	}
	fmt.Println("Previous conversation:")
	start := len(history) - historyDisplayLimit
	if start < 0 {
		start = 0
	}
	for _, entry := range history[start:] {
		label := entry.Role
		switch entry.Role {
		case internal.RoleUser:
			label = "You"
		case internal.RoleAssistant:
			label = "Assistant"
		case internal.RoleSystem:
			label = "System"
		}
		fmt.Printf("%s: %s\n", label, entry.Content)
	}
}

// runInteractiveLoop reads user turns until an exit command, EOF, or
// interrupt. Model failures are reported and the loop keeps going.
func runInteractiveLoop(ctx context.Context, runner *internal.TurnRunner) {
	printHistoryOverview(runner.History())
	fmt.Println("Enter '/exit' or press Ctrl-D to leave the session.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("You> ")
		select {
		case <-ctx.Done():
			fmt.Println("\nInterrupted.")
			return
		case line, ok := <-lines:
			if !ok {
				fmt.Println()
				return
			}
			input := strings.TrimSpace(line)
			if input == "" {
				continue
			}
			if exitCommands[strings.ToLower(input)] {
				return
			}
			response, err := runner.ExecuteTurn(ctx, input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Agent execution failed: %v\n", err)
				continue
			}
			fmt.Printf("Assistant: %s\n", response)
		}
	}
}

// runSingleTurn executes one turn from the command arguments or stdin.
func runSingleTurn(ctx context.Context, runner *internal.TurnRunner, args []string) error {
	input := strings.TrimSpace(strings.Join(args, " "))
	if input == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		input = strings.TrimSpace(string(data))
	}
	if input == "" {
		return fmt.Errorf("no input provided")
	}

	response, err := runner.ExecuteTurn(ctx, input)
	if err != nil {
		return err
	}
	fmt.Printf("Assistant: %s\n", response)
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "Target an existing session by id")
	chatCmd.Flags().BoolVar(&chatNewSession, "new-session", false, "Create a new session before running")
	chatCmd.Flags().StringVar(&chatDescription, "description", "", "Set the session description (with --session or --new-session)")
	chatCmd.Flags().StringVar(&chatConfigPath, "config", "", "Override the default config.yaml path")
	chatCmd.Flags().StringVar(&chatModel, "model", "", "Override the configured model code")
	chatCmd.Flags().IntVar(&chatWindowSize, "window-size", 0, "Override the sliding window size")
	chatCmd.Flags().StringVar(&chatTruncateResults, "truncate-results", "", "Override result truncation (true/false)")
	chatCmd.Flags().StringVar(&chatSystemPrompt, "system-prompt", "", "Inline system prompt for this session")
	chatCmd.Flags().StringVar(&chatSystemPromptFile, "system-prompt-file", "", "Read the system prompt from a file")
	chatCmd.Flags().BoolVar(&chatSingle, "single", false, "Run one turn and exit")
}
