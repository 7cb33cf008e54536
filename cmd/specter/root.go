package main

import (
	"github.com/spf13/cobra"

	"specter/internal/version"
)

var (
	// rootFlag is the repository root; commands resolve "." against the
	// enclosing git repository when possible.
	rootFlag string
)

var rootCmd = &cobra.Command{
	Use:   "specter",
	Short: "Specter - structural knowledge graph and historical analytics",
	Long: `Specter builds a knowledge graph from extractor output, mines git history
for ownership and churn, and derives analytics over both: complexity reports,
bus factor, change coupling, hotspots, change risk, and health trajectory.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("specter version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".", "Repository root to analyze")
}
