package main

import (
	"github.com/spf13/cobra"

	"specter/internal/coupling"
)

var (
	couplingFormat string
	couplingLimit  int
)

var couplingCmd = &cobra.Command{
	Use:   "coupling <file>",
	Short: "Detect files that change together with a target file",
	Long: `Mine commits touching the target file and report which other files
repeatedly change in the same commits. Couplings with no import
relationship are flagged hidden.

Examples:
  specter coupling src/server.ts
  specter coupling src/server.ts --limit=10 --format=human`,
	Args: cobra.ExactArgs(1),
	Run:  runCoupling,
}

func init() {
	couplingCmd.Flags().StringVar(&couplingFormat, "format", "json", "Output format (json, human, yaml)")
	couplingCmd.Flags().IntVar(&couplingLimit, "limit", 20, "Maximum couplings to return")
	rootCmd.AddCommand(couplingCmd)
}

func runCoupling(cmd *cobra.Command, args []string) {
	e := mustEnv(couplingFormat)
	defer e.close()
	ctx := newContext()

	g := e.mustLoadGraph()
	analyzer := coupling.NewAnalyzer(e.miner(), e.logger)

	printResponse(analyzer.Analyze(ctx, g, args[0], couplingLimit), couplingFormat)
}
