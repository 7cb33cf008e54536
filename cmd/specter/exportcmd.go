package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"specter/internal/store"
)

var (
	exportOut  string
	exportMode string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the persisted graph to a file",
	Long: `Export the persisted knowledge graph. Mode "full" writes the complete
graph; "summary" writes metadata plus per-file aggregates. Targets ending
in .zst are zstd-compressed.

Examples:
  specter export --out graph.json
  specter export --out summary.json --mode=summary
  specter export --out graph.json.zst`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "specter-export.json", "Output file path")
	exportCmd.Flags().StringVar(&exportMode, "mode", "full", "Export mode (full, summary)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	e := mustEnv("human")
	defer e.close()

	if err := e.store.Export(e.rootDir, exportOut, store.ExportMode(exportMode)); err != nil {
		exitErr("exporting graph", err)
	}
	fmt.Printf("Exported %s graph to %s\n", exportMode, exportOut)
}
