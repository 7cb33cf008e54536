package main

import (
	"github.com/spf13/cobra"

	"specter/internal/hotspots"
)

var (
	hotspotsFormat string
	hotspotsLimit  int
)

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots",
	Short: "Rank files by combined complexity and churn",
	Long: `Cross-reference structural complexity with git churn. Files scoring
high on both axes are refactor candidates; either signal alone lands in
a different quadrant.

Examples:
  specter hotspots
  specter hotspots --limit=50 --format=human`,
	Run: runHotspots,
}

func init() {
	hotspotsCmd.Flags().StringVar(&hotspotsFormat, "format", "json", "Output format (json, human, yaml)")
	hotspotsCmd.Flags().IntVar(&hotspotsLimit, "limit", 20, "Maximum hotspots to return")
	rootCmd.AddCommand(hotspotsCmd)
}

func runHotspots(cmd *cobra.Command, args []string) {
	e := mustEnv(hotspotsFormat)
	defer e.close()
	ctx := newContext()

	g := e.mustLoadGraph()
	churn := e.miner().ChurnCounts(ctx)

	printResponse(hotspots.Analyze(g, churn, hotspotsLimit), hotspotsFormat)
}
