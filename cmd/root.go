package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vidyaai/diagramgen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "diagramgen",
	Short: "Diagram generation pipeline for STEM assignments",
	Long: "Diagramgen classifies assignment questions, renders diagrams through\n" +
		"the best-fit backend, and gates every image behind a vision review.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DIAGRAMGEN_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.config/diagramgen/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then DIAGRAMGEN_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func buildLogger(cmd *cobra.Command) (*zap.Logger, error) {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
