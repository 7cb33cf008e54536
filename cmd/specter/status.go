package main

import (
	"github.com/spf13/cobra"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted graph's metadata and staleness",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "json", "Output format (json, human, yaml)")
	rootCmd.AddCommand(statusCmd)
}

// StatusResponseCLI is the status command's output payload
type StatusResponseCLI struct {
	HasGraph    bool   `json:"hasGraph"`
	ScanID      string `json:"scanId,omitempty"`
	ScannedAt   string `json:"scannedAt,omitempty"`
	FileCount   int    `json:"fileCount"`
	NodeCount   int    `json:"nodeCount"`
	EdgeCount   int    `json:"edgeCount"`
	Stale       bool   `json:"stale"`
	StaleReason string `json:"staleReason,omitempty"`
	ChangedFile string `json:"changedFile,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) {
	e := mustEnv(statusFormat)
	defer e.close()

	resp := &StatusResponseCLI{}
	if meta, ok := e.store.LoadMetadata(e.rootDir); ok {
		resp.HasGraph = true
		resp.ScanID = meta.ScanID
		resp.ScannedAt = meta.ScannedAt.Format("2006-01-02 15:04:05 MST")
		resp.FileCount = meta.FileCount
		resp.NodeCount = meta.NodeCount
		resp.EdgeCount = meta.EdgeCount
	}

	staleness, err := e.store.IsStale(e.rootDir, e.manifest)
	if err != nil {
		exitErr("checking staleness", err)
	}
	resp.Stale = staleness.Stale
	resp.StaleReason = staleness.Reason
	resp.ChangedFile = staleness.ChangedFile

	printResponse(resp, statusFormat)
}
