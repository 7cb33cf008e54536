package main

import (
	"github.com/spf13/cobra"

	"specter/internal/trajectory"
)

var snapshotsFormat string

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List recorded health snapshots",
	Run:   runSnapshots,
}

func init() {
	snapshotsCmd.Flags().StringVar(&snapshotsFormat, "format", "json", "Output format (json, human, yaml)")
	rootCmd.AddCommand(snapshotsCmd)
}

// SnapshotsResponseCLI is the snapshots command's output payload
type SnapshotsResponseCLI struct {
	Snapshots []trajectory.HealthSnapshot `json:"snapshots"`
}

func runSnapshots(cmd *cobra.Command, args []string) {
	e := mustEnv(snapshotsFormat)
	defer e.close()

	snaps, err := trajectory.NewSnapshotStore(e.rootDir, e.cfg.Snapshots.MaxHistory, e.logger).List()
	if err != nil {
		exitErr("reading snapshots", err)
	}

	printResponse(&SnapshotsResponseCLI{Snapshots: snaps}, snapshotsFormat)
}
