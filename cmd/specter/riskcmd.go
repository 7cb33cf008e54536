package main

import (
	"github.com/spf13/cobra"

	"specter/internal/risk"
)

var (
	riskFormat string
	riskBase   string
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Score the risk of the current uncommitted or branch changes",
	Long: `Score the working tree's diff against six weighted factors: change
size, lines touched, complexity of touched symbols, downstream import
impact, ownership concentration, and test coverage.

Examples:
  specter risk
  specter risk --base=main
  specter risk --format=human`,
	Run: runRisk,
}

func init() {
	riskCmd.Flags().StringVar(&riskFormat, "format", "json", "Output format (json, human, yaml)")
	riskCmd.Flags().StringVar(&riskBase, "base", "", "Base ref to diff against (default: working tree vs HEAD)")
	rootCmd.AddCommand(riskCmd)
}

func runRisk(cmd *cobra.Command, args []string) {
	e := mustEnv(riskFormat)
	defer e.close()
	ctx := newContext()

	g := e.mustLoadGraph()
	miner := e.miner()
	diff := miner.CollectDiff(ctx, riskBase)
	histories := miner.MineAll(ctx)

	printResponse(risk.NewScorer(g, histories).Assess(diff), riskFormat)
}
