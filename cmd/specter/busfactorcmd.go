package main

import (
	"github.com/spf13/cobra"

	"specter/internal/busfactor"
)

var busfactorFormat string

var busfactorCmd = &cobra.Command{
	Use:   "busfactor",
	Short: "Estimate knowledge concentration per repository area",
	Long: `Estimate how many contributors each area of the repository depends
on, from weighted git contributions. Areas with a bus factor of one and a
dominant owner are flagged critical.

Examples:
  specter busfactor
  specter busfactor --format=human`,
	Run: runBusFactor,
}

func init() {
	busfactorCmd.Flags().StringVar(&busfactorFormat, "format", "json", "Output format (json, human, yaml)")
	rootCmd.AddCommand(busfactorCmd)
}

func runBusFactor(cmd *cobra.Command, args []string) {
	e := mustEnv(busfactorFormat)
	defer e.close()
	ctx := newContext()

	g := e.mustLoadGraph()
	miner := e.miner()
	histories := miner.MineAll(ctx)
	stats := miner.RepoStats(ctx)

	printResponse(busfactor.New(e.manifest).Analyze(g, histories, *stats), busfactorFormat)
}
