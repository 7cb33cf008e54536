package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"specter/internal/complexity"
	"specter/internal/extract"
	"specter/internal/graph"
	"specter/internal/hotspots"
	"specter/internal/trajectory"
)

var (
	scanFormat string
	scanInput  string
	scanSCIP   string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Build and persist the knowledge graph from extractor output",
	Long: `Build the knowledge graph from extraction facts and persist it under
.specter/, recording a health snapshot for trend analysis.

Extraction facts come from an external extractor, either as JSON
(--input, a file or a directory of per-file results) or as a SCIP
index (--scip).

Examples:
  specter scan --input extraction.json
  specter scan --input ./extraction-results/
  specter scan --scip index.scip --format=human`,
	Run: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "json", "Output format (json, human, yaml)")
	scanCmd.Flags().StringVar(&scanInput, "input", "", "Extraction JSON file or directory")
	scanCmd.Flags().StringVar(&scanSCIP, "scip", "", "SCIP index file")
	rootCmd.AddCommand(scanCmd)
}

// ScanResponseCLI is the scan command's output payload
type ScanResponseCLI struct {
	ScanID      string         `json:"scanId"`
	FileCount   int            `json:"fileCount"`
	TotalLines  int            `json:"totalLines"`
	NodeCount   int            `json:"nodeCount"`
	EdgeCount   int            `json:"edgeCount"`
	Languages   map[string]int `json:"languages"`
	DurationMs  int64          `json:"durationMs"`
	SnapshotID  string         `json:"snapshotId,omitempty"`
	HealthScore int            `json:"healthScore"`
}

func runScan(cmd *cobra.Command, args []string) {
	start := time.Now()
	e := mustEnv(scanFormat)
	defer e.close()
	ctx := newContext()

	var results []extract.FileExtraction
	var err error
	switch {
	case scanSCIP != "":
		results, err = extract.LoadSCIP(scanSCIP)
	case scanInput != "":
		results, err = extract.LoadResults(scanInput)
	default:
		exitErr("reading extraction input", fmt.Errorf("one of --input or --scip is required"))
	}
	if err != nil {
		exitErr("reading extraction input", err)
	}

	g := graph.NewBuilder(e.rootDir, e.logger).Build(results)

	// Ownership lands on file nodes before the graph is persisted, so
	// consumers of the saved graph see contributors without re-mining.
	miner := e.miner()
	for path, h := range miner.MineAll(ctx) {
		if n, ok := g.FileNode(path); ok {
			n.File.Contributors = h.ContributorNames()
		}
	}

	g.Metadata.ScanDurationMs = time.Since(start).Milliseconds()

	if err := e.store.Save(g, e.rootDir); err != nil {
		exitErr("saving graph", err)
	}

	// Record a health snapshot so trend and velocity have a series to
	// work from. Snapshot failures do not fail the scan.
	analyzer := complexity.New(e.cfg.Complexity)
	report := analyzer.Analyze(g, 0, false)
	churn := miner.ChurnCounts(ctx)
	hotspotReport := hotspots.Analyze(g, churn, 0)

	snapStore := trajectory.NewSnapshotStore(e.rootDir, e.cfg.Snapshots.MaxHistory, e.logger)
	snap, err := snapStore.Record(g, hotspotReport.Quadrants[hotspots.QuadrantRefactor], trajectory.Distribution{
		Low:      report.Distribution[complexity.Low],
		Medium:   report.Distribution[complexity.Medium],
		High:     report.Distribution[complexity.High],
		VeryHigh: report.Distribution[complexity.VeryHigh],
	}, e.runner.Head(ctx))
	if err != nil {
		e.logger.Warn("snapshot not recorded", map[string]interface{}{"error": err.Error()})
	}

	// Scans are the natural housekeeping point for the history cache.
	if db := e.openCache(); db != nil {
		if n, err := db.Cleanup(30 * 24 * time.Hour); err == nil && n > 0 {
			e.logger.Debug("pruned stale history cache rows", map[string]interface{}{"rows": n})
		}
	}

	resp := &ScanResponseCLI{
		ScanID:     g.Metadata.ScanID,
		FileCount:  g.Metadata.FileCount,
		TotalLines: g.Metadata.TotalLines,
		NodeCount:  g.Metadata.NodeCount,
		EdgeCount:  g.Metadata.EdgeCount,
		Languages:  g.Metadata.Languages,
		DurationMs: g.Metadata.ScanDurationMs,
	}
	if snap != nil {
		resp.SnapshotID = snap.ID
		resp.HealthScore = snap.Metrics.HealthScore
	}
	printResponse(resp, scanFormat)
}
