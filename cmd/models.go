package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jasonychoong/retire-server/internal/model"
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List selectable models",
	Long:  `Show the model registry and whether each provider's API key is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(headerStyle.Render("🧠 Available models"))
		fmt.Println()

		w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, titleStyle.Render("Code")+"\t"+titleStyle.Render("Provider")+"\t"+titleStyle.Render("API key")+"\t"+titleStyle.Render("Configured")+"\t"+titleStyle.Render("Description")+"\t")
		_, _ = fmt.Fprintln(w, strings.Repeat("─", 110))

		for _, cfg := range model.Models() {
			configured := dateStyle.Render("no")
			if os.Getenv(cfg.EnvVar()) != "" {
				configured = currentStyle.Render("yes")
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", cfg.Code, cfg.Provider, cfg.EnvVar(), configured, cfg.Description)
		}

		_ = w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
