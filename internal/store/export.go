package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"specter/internal/errors"
	"specter/internal/graph"
)

// ExportMode selects how much of the graph an export carries
type ExportMode string

const (
	// ExportFull writes the complete graph
	ExportFull ExportMode = "full"
	// ExportSummary writes metadata plus per-file aggregates only
	ExportSummary ExportMode = "summary"
)

// FileSummary is one file's aggregate in a summary export
type FileSummary struct {
	Path        string `json:"path"`
	Language    string `json:"language"`
	LineCount   int    `json:"lineCount"`
	SymbolCount int    `json:"symbolCount"`
	Complexity  int    `json:"complexity"`
	ImportCount int    `json:"importCount"`
	ExportCount int    `json:"exportCount"`
}

// Summary is the payload of a summary export
type Summary struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exportedAt"`
	Metadata   graph.Metadata `json:"metadata"`
	Files      []FileSummary  `json:"files"`
}

// Export writes the persisted graph to outPath in the given mode. Paths
// ending in .zst are zstd-compressed. A missing graph is an error here,
// unlike Load: the caller asked for an artifact that cannot be produced.
func (s *Store) Export(rootDir, outPath string, mode ExportMode) error {
	g, ok, err := s.Load(rootDir)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.NoGraphFound, "no graph to export for "+rootDir, nil)
	}

	var payload interface{}
	switch mode {
	case ExportFull:
		payload = g
	case ExportSummary:
		payload = buildSummary(g)
	default:
		return errors.New(errors.InvalidExportTarget, fmt.Sprintf("unknown export mode %q", mode), nil)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.New(errors.InternalError, "failed to encode export", err)
	}

	if strings.HasSuffix(outPath, ".zst") {
		data, err = compress(data)
		if err != nil {
			return errors.New(errors.InternalError, "failed to compress export", err)
		}
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.New(errors.InvalidExportTarget, "cannot create export directory "+dir, err)
		}
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return errors.New(errors.InvalidExportTarget, "cannot write export to "+outPath, err)
	}

	s.logger.Info("graph exported", map[string]interface{}{
		"path":  outPath,
		"mode":  string(mode),
		"bytes": len(data),
	})
	return nil
}

func buildSummary(g *graph.KnowledgeGraph) *Summary {
	symbolCounts := make(map[string]int)
	for _, n := range g.Nodes {
		if !n.IsFile() {
			symbolCounts[n.FilePath]++
		}
	}

	files := make([]FileSummary, 0, g.Metadata.FileCount)
	for _, n := range g.FileNodes() {
		files = append(files, FileSummary{
			Path:        n.FilePath,
			Language:    n.File.Language,
			LineCount:   n.File.LineCount,
			SymbolCount: symbolCounts[n.FilePath],
			Complexity:  n.Complexity,
			ImportCount: n.File.ImportCount,
			ExportCount: n.File.ExportCount,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return &Summary{
		Version:    g.Version,
		ExportedAt: time.Now().UTC(),
		Metadata:   g.Metadata,
		Files:      files,
	}
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}
