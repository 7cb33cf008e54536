package main

import (
	"github.com/spf13/cobra"

	"specter/internal/trajectory"
)

var (
	velocityFormat string
	velocityFiles  int
)

var velocityCmd = &cobra.Command{
	Use:   "velocity",
	Short: "Compare the newest health snapshot against the oldest",
	Long: `Measure how the aggregate metrics moved between the oldest and newest
recorded snapshots. Per-file movement is estimated from aggregate ratios
and labeled as such.

Examples:
  specter velocity
  specter velocity --files=10 --format=human`,
	Run: runVelocity,
}

func init() {
	velocityCmd.Flags().StringVar(&velocityFormat, "format", "json", "Output format (json, human, yaml)")
	velocityCmd.Flags().IntVar(&velocityFiles, "files", 10, "Maximum per-file estimates to return")
	rootCmd.AddCommand(velocityCmd)
}

func runVelocity(cmd *cobra.Command, args []string) {
	e := mustEnv(velocityFormat)
	defer e.close()

	snaps, err := trajectory.NewSnapshotStore(e.rootDir, e.cfg.Snapshots.MaxHistory, e.logger).List()
	if err != nil {
		exitErr("reading snapshots", err)
	}

	// The graph is optional here; velocity still works from snapshots
	// alone when no graph is persisted.
	g, _, err := e.store.Load(e.rootDir)
	if err != nil {
		exitErr("loading graph", err)
	}

	printResponse(trajectory.CalculateVelocity(snaps, g, velocityFiles), velocityFormat)
}
