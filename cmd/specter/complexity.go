package main

import (
	"github.com/spf13/cobra"

	"specter/internal/complexity"
)

var (
	complexityFormat       string
	complexityLimit        int
	complexityIncludeFiles bool
)

// categoryOrder fixes the rendering order of complexity buckets
var categoryOrder = []complexity.Category{
	complexity.Low, complexity.Medium, complexity.High, complexity.VeryHigh,
}

var complexityCmd = &cobra.Command{
	Use:   "complexity",
	Short: "Report complexity distribution and refactor targets",
	Long: `Aggregate per-symbol complexity into a repository report: averages,
distribution across categories, per-directory rollups, and refactor
targets ranked by priority.

Examples:
  specter complexity
  specter complexity --limit=10 --format=human
  specter complexity --include-files`,
	Run: runComplexity,
}

func init() {
	complexityCmd.Flags().StringVar(&complexityFormat, "format", "json", "Output format (json, human, yaml)")
	complexityCmd.Flags().IntVar(&complexityLimit, "limit", 20, "Maximum symbols and targets to return")
	complexityCmd.Flags().BoolVar(&complexityIncludeFiles, "include-files", false, "Rank file nodes alongside symbols")
	rootCmd.AddCommand(complexityCmd)
}

// ComplexityResponseCLI bundles the report with its refactor targets
type ComplexityResponseCLI struct {
	Report  *complexity.Report          `json:"report"`
	Targets []complexity.RefactorTarget `json:"targets"`
}

func runComplexity(cmd *cobra.Command, args []string) {
	e := mustEnv(complexityFormat)
	defer e.close()

	g := e.mustLoadGraph()
	analyzer := complexity.New(e.cfg.Complexity)

	printResponse(&ComplexityResponseCLI{
		Report:  analyzer.Analyze(g, complexityLimit, complexityIncludeFiles),
		Targets: analyzer.RefactorTargets(g, complexityLimit),
	}, complexityFormat)
}
