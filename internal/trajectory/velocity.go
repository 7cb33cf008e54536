package trajectory

import (
	"fmt"
	"math"
	"sort"

	"specter/internal/graph"
)

// MetricChange is one aggregate metric's movement between two snapshots
type MetricChange struct {
	Metric        string  `json:"metric"`
	From          float64 `json:"from"`
	To            float64 `json:"to"`
	PercentChange int     `json:"percentChange"`
}

// FileEstimate is an estimated per-file complexity movement. The prior
// value is scaled from the current one by the snapshot-level average
// complexity ratio, so it is an approximation, not a measurement.
type FileEstimate struct {
	FilePath       string  `json:"filePath"`
	Current        int     `json:"current"`
	EstimatedPrior float64 `json:"estimatedPrior"`
	PercentChange  int     `json:"percentChange"`
	Estimated      bool    `json:"estimated"`
}

// Velocity compares the newest snapshot against the oldest
type Velocity struct {
	Available     bool           `json:"available"`
	From          string         `json:"from,omitempty"`
	To            string         `json:"to,omitempty"`
	SpanDays      float64        `json:"spanDays"`
	Changes       []MetricChange `json:"changes,omitempty"`
	FileEstimates []FileEstimate `json:"fileEstimates,omitempty"`
	Insights      []string       `json:"insights"`
}

// PercentChange returns the rounded percentage movement from a to b.
// A zero baseline with any growth reads as 100; equal values read as 0.
func PercentChange(from, to float64) int {
	if from == 0 {
		if to > 0 {
			return 100
		}
		return 0
	}
	if from == to {
		return 0
	}
	return int(math.Round((to - from) / from * 100))
}

// CalculateVelocity compares the newest snapshot against the oldest and
// estimates per-file complexity movement from the current graph. Fewer
// than two snapshots yields an unavailable result with an insight.
func CalculateVelocity(snapshots []HealthSnapshot, g *graph.KnowledgeGraph, topFiles int) *Velocity {
	if len(snapshots) < 2 {
		return &Velocity{
			Available: false,
			Insights:  []string{"Need at least two snapshots to measure velocity; run another scan later"},
		}
	}

	oldest := snapshots[0]
	newest := snapshots[len(snapshots)-1]

	v := &Velocity{
		Available: true,
		From:      oldest.ID,
		To:        newest.ID,
		SpanDays:  newest.Timestamp.Sub(oldest.Timestamp).Hours() / 24,
	}

	v.Changes = []MetricChange{
		metricChange("fileCount", float64(oldest.Metrics.FileCount), float64(newest.Metrics.FileCount)),
		metricChange("totalLines", float64(oldest.Metrics.TotalLines), float64(newest.Metrics.TotalLines)),
		metricChange("avgComplexity", oldest.Metrics.AvgComplexity, newest.Metrics.AvgComplexity),
		metricChange("maxComplexity", float64(oldest.Metrics.MaxComplexity), float64(newest.Metrics.MaxComplexity)),
		metricChange("hotspotCount", float64(oldest.Metrics.HotspotCount), float64(newest.Metrics.HotspotCount)),
		metricChange("healthScore", float64(oldest.Metrics.HealthScore), float64(newest.Metrics.HealthScore)),
	}

	if g != nil && newest.Metrics.AvgComplexity > 0 {
		ratio := oldest.Metrics.AvgComplexity / newest.Metrics.AvgComplexity
		for _, n := range g.FileNodes() {
			if n.Complexity == 0 {
				continue
			}
			prior := float64(n.Complexity) * ratio
			v.FileEstimates = append(v.FileEstimates, FileEstimate{
				FilePath:       n.FilePath,
				Current:        n.Complexity,
				EstimatedPrior: math.Round(prior*10) / 10,
				PercentChange:  PercentChange(prior, float64(n.Complexity)),
				Estimated:      true,
			})
		}
		sort.Slice(v.FileEstimates, func(i, j int) bool {
			if v.FileEstimates[i].Current != v.FileEstimates[j].Current {
				return v.FileEstimates[i].Current > v.FileEstimates[j].Current
			}
			return v.FileEstimates[i].FilePath < v.FileEstimates[j].FilePath
		})
		if topFiles > 0 && len(v.FileEstimates) > topFiles {
			v.FileEstimates = v.FileEstimates[:topFiles]
		}
	}

	v.Insights = velocityInsights(v)
	return v
}

func metricChange(name string, from, to float64) MetricChange {
	return MetricChange{
		Metric:        name,
		From:          from,
		To:            to,
		PercentChange: PercentChange(from, to),
	}
}

func velocityInsights(v *Velocity) []string {
	var insights []string
	byName := make(map[string]MetricChange, len(v.Changes))
	for _, c := range v.Changes {
		byName[c.Metric] = c
	}

	if hc := byName["healthScore"]; hc.PercentChange < 0 {
		insights = append(insights, fmt.Sprintf("Health score dropped %d%% over %.0f days", -hc.PercentChange, v.SpanDays))
	} else if hc.PercentChange > 0 {
		insights = append(insights, fmt.Sprintf("Health score improved %d%% over %.0f days", hc.PercentChange, v.SpanDays))
	}
	if ac := byName["avgComplexity"]; ac.PercentChange > 10 {
		insights = append(insights, "Average complexity is growing faster than the codebase; new code is denser than old")
	}
	if fc, tl := byName["fileCount"], byName["totalLines"]; fc.PercentChange > 0 && tl.PercentChange > 2*fc.PercentChange {
		insights = append(insights, "Lines are growing faster than files; existing files are getting longer")
	}
	if len(v.FileEstimates) > 0 {
		insights = append(insights, "Per-file movement is estimated from aggregate ratios, not measured per snapshot")
	}
	if len(insights) == 0 {
		insights = append(insights, "No significant movement between snapshots")
	}
	return insights
}
