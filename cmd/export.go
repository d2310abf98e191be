package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jasonychoong/retire-server/internal/export"
)

var (
	format    string
	outputDir string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session transcript to file",
	Long: `Export a session in various formats (jsonl, md, yaml, json).

Use 'retire-server sessions list' to see available session IDs.`,
	Args: cobra.ExactArgs(1),
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
		meta, err := store.ReadMetadata(sessionID)
		if err != nil {
			return err
		}
		transcript := export.NewTranscript(record, entries, meta)

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		filename := fmt.Sprintf("session_%s.%s", sessionID, exporter.Extension())
		path := filepath.Join(outputDir, filename)
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		if err := exporter.Export(transcript, file); err != nil {
			_ = file.Close()
			return fmt.Errorf("failed to export session %s: %w", sessionID, err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to close export file: %w", err)
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("✅ Exported session %s to %s", shortID(sessionID), path)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
}
