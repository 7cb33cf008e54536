package main

import (
	"github.com/spf13/cobra"

	"specter/internal/trajectory"
)

var trendFormat string

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Project the health score trajectory from recorded snapshots",
	Long: `Fit a trend to the recorded health snapshots and project the health
score one week, one month, and three months ahead.

Examples:
  specter trend
  specter trend --format=human`,
	Run: runTrend,
}

func init() {
	trendCmd.Flags().StringVar(&trendFormat, "format", "json", "Output format (json, human, yaml)")
	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, args []string) {
	e := mustEnv(trendFormat)
	defer e.close()

	snaps, err := trajectory.NewSnapshotStore(e.rootDir, e.cfg.Snapshots.MaxHistory, e.logger).List()
	if err != nil {
		exitErr("reading snapshots", err)
	}

	printResponse(trajectory.CalculateTrajectory(snaps), trendFormat)
}
