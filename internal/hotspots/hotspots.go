// Package hotspots cross-references structural complexity with change
// churn. A file is only a hotspot when it is both complex and frequently
// touched; either signal alone is a different, lesser problem.
package hotspots

import (
	"math"
	"sort"

	"specter/internal/graph"
)

// Quadrant places a file on the complexity/churn plane, split at the
// 50th percentile on both axes.
type Quadrant string

const (
	// QuadrantRefactor marks complex files under active churn
	QuadrantRefactor Quadrant = "refactor-candidate"
	// QuadrantComplexStable marks complex files that rarely change
	QuadrantComplexStable Quadrant = "complex-stable"
	// QuadrantChurningSimple marks simple files under active churn
	QuadrantChurningSimple Quadrant = "churning-simple"
	// QuadrantHealthy marks simple, stable files
	QuadrantHealthy Quadrant = "healthy"
)

// Hotspot is one file's position on the complexity/churn plane
type Hotspot struct {
	FilePath             string   `json:"filePath"`
	Complexity           int      `json:"complexity"`
	Churn                int      `json:"churn"`
	ComplexityPercentile float64  `json:"complexityPercentile"`
	ChurnPercentile      float64  `json:"churnPercentile"`
	Score                int      `json:"score"`
	Quadrant             Quadrant `json:"quadrant"`
}

// Report is the full hotspot analysis. ChurnAvailable is false when no
// file carries any churn; hotspot scores are then complexity-only.
type Report struct {
	ChurnAvailable bool             `json:"churnAvailable"`
	FileCount      int              `json:"fileCount"`
	Hotspots       []Hotspot        `json:"hotspots"`
	Quadrants      map[Quadrant]int `json:"quadrants"`
	Insights       []string         `json:"insights,omitempty"`
}

// Analyze ranks every file by percentile on both axes and scores it as
// the geometric mean of the two ranks. Churn counts come from history
// mining; files missing from the churn map count as zero churn. When
// every file's churn is zero the churn axis carries no signal and every
// churn percentile is zero, so a complex but never-changed file reads
// complex-stable rather than refactor-candidate.
func Analyze(g *graph.KnowledgeGraph, churn map[string]int, limit int) *Report {
	files := g.FileNodes()
	report := &Report{
		FileCount: len(files),
		Quadrants: map[Quadrant]int{
			QuadrantRefactor:       0,
			QuadrantComplexStable:  0,
			QuadrantChurningSimple: 0,
			QuadrantHealthy:        0,
		},
	}
	if len(files) == 0 {
		return report
	}

	complexities := make([]int, 0, len(files))
	churns := make([]int, 0, len(files))
	for _, f := range files {
		complexities = append(complexities, f.Complexity)
		churns = append(churns, churn[f.FilePath])
		if churn[f.FilePath] > 0 {
			report.ChurnAvailable = true
		}
	}
	sort.Ints(complexities)
	sort.Ints(churns)

	if !report.ChurnAvailable {
		report.Insights = append(report.Insights, "No churn data available; files are ranked by complexity only")
	}

	for _, f := range files {
		pcComplexity := percentileRank(complexities, f.Complexity)
		pcChurn := 0.0
		if report.ChurnAvailable {
			pcChurn = percentileRank(churns, churn[f.FilePath])
		}

		h := Hotspot{
			FilePath:             f.FilePath,
			Complexity:           f.Complexity,
			Churn:                churn[f.FilePath],
			ComplexityPercentile: pcComplexity,
			ChurnPercentile:      pcChurn,
			Score:                int(math.Round(math.Sqrt(pcComplexity * pcChurn))),
			Quadrant:             quadrantOf(pcComplexity, pcChurn),
		}
		report.Quadrants[h.Quadrant]++
		report.Hotspots = append(report.Hotspots, h)
	}

	sort.Slice(report.Hotspots, func(i, j int) bool {
		if report.Hotspots[i].Score != report.Hotspots[j].Score {
			return report.Hotspots[i].Score > report.Hotspots[j].Score
		}
		return report.Hotspots[i].FilePath < report.Hotspots[j].FilePath
	})
	if limit > 0 && len(report.Hotspots) > limit {
		report.Hotspots = report.Hotspots[:limit]
	}
	return report
}

// percentileRank returns the share of the sorted population at or below
// the value, scaled to [0,100]. The maximum value always ranks 100.
func percentileRank(sorted []int, value int) float64 {
	atOrBelow := sort.SearchInts(sorted, value+1)
	return float64(atOrBelow) / float64(len(sorted)) * 100
}

func quadrantOf(pcComplexity, pcChurn float64) Quadrant {
	complexSide := pcComplexity > 50
	churnSide := pcChurn > 50
	switch {
	case complexSide && churnSide:
		return QuadrantRefactor
	case complexSide:
		return QuadrantComplexStable
	case churnSide:
		return QuadrantChurningSimple
	default:
		return QuadrantHealthy
	}
}
