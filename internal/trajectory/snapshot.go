// Package trajectory records health snapshots at scan time and derives
// trend and velocity from the recorded series. Snapshots are immutable
// once written; retention prunes the oldest beyond the configured cap.
package trajectory

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"specter/internal/graph"
	"specter/internal/logging"
)

// Metrics are the aggregate measurements frozen into a snapshot
type Metrics struct {
	FileCount     int     `json:"fileCount"`
	TotalLines    int     `json:"totalLines"`
	AvgComplexity float64 `json:"avgComplexity"`
	MaxComplexity int     `json:"maxComplexity"`
	HotspotCount  int     `json:"hotspotCount"`
	HealthScore   int     `json:"healthScore"`
}

// Distribution is the complexity category histogram at snapshot time
type Distribution struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	VeryHigh int `json:"veryHigh"`
}

// HealthSnapshot is one immutable point on the health timeline
type HealthSnapshot struct {
	ID           string       `json:"id"`
	CommitHash   string       `json:"commitHash,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	Metrics      Metrics      `json:"metrics"`
	Distribution Distribution `json:"distribution"`
}

// SnapshotStore reads and writes snapshots under <root>/.specter/snapshots
type SnapshotStore struct {
	dir        string
	maxHistory int
	logger     *logging.Logger
}

// NewSnapshotStore creates a store with the given retention cap
func NewSnapshotStore(rootDir string, maxHistory int, logger *logging.Logger) *SnapshotStore {
	return &SnapshotStore{
		dir:        filepath.Join(rootDir, ".specter", "snapshots"),
		maxHistory: maxHistory,
		logger:     logger,
	}
}

// HealthScore maps average complexity to a 0-100 health score. Five points
// per unit of average complexity, floored at zero.
func HealthScore(avgComplexity float64) int {
	score := int(math.Round(100 - avgComplexity*5))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Record builds a snapshot from the current graph and persists it,
// pruning history beyond the retention cap.
func (s *SnapshotStore) Record(g *graph.KnowledgeGraph, hotspotCount int, dist Distribution, commitHash string) (*HealthSnapshot, error) {
	symbols := g.SymbolNodes()
	var total, max int
	for _, n := range symbols {
		total += n.Complexity
		if n.Complexity > max {
			max = n.Complexity
		}
	}
	avg := 0.0
	if len(symbols) > 0 {
		avg = float64(total) / float64(len(symbols))
	}

	now := time.Now().UTC()
	snap := &HealthSnapshot{
		ID:         fmt.Sprintf("%d", now.UnixMilli()),
		CommitHash: commitHash,
		Timestamp:  now,
		Metrics: Metrics{
			FileCount:     g.Metadata.FileCount,
			TotalLines:    g.Metadata.TotalLines,
			AvgComplexity: avg,
			MaxComplexity: max,
			HotspotCount:  hotspotCount,
			HealthScore:   HealthScore(avg),
		},
		Distribution: dist,
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(s.dir, snap.ID+".json"), data, 0644); err != nil {
		return nil, err
	}

	if err := s.prune(); err != nil {
		s.logger.Warn("snapshot pruning failed", map[string]interface{}{"error": err.Error()})
	}
	return snap, nil
}

// List returns all snapshots oldest first. Unreadable snapshot files are
// skipped with a warning; one corrupt snapshot must not hide the series.
func (s *SnapshotStore) List() ([]HealthSnapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var snaps []HealthSnapshot
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		var snap HealthSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			s.logger.Warn("skipping corrupt snapshot", map[string]interface{}{"file": entry.Name()})
			continue
		}
		snaps = append(snaps, snap)
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Timestamp.Before(snaps[j].Timestamp) })
	return snaps, nil
}

// prune removes the oldest snapshots beyond the retention cap
func (s *SnapshotStore) prune() error {
	snaps, err := s.List()
	if err != nil {
		return err
	}
	if s.maxHistory <= 0 || len(snaps) <= s.maxHistory {
		return nil
	}
	for _, snap := range snaps[:len(snaps)-s.maxHistory] {
		if err := os.Remove(filepath.Join(s.dir, snap.ID+".json")); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
