package trajectory

import (
	"fmt"
	"math"
)

// Direction summarizes where the health score is heading
type Direction string

const (
	DirectionImproving Direction = "improving"
	DirectionDeclining Direction = "declining"
	DirectionStable    Direction = "stable"
)

// maxSlopePerWeek clamps the fitted slope; a health score moves at most
// 50 points per week before the projection stops being meaningful.
const maxSlopePerWeek = 50.0

// Scenario is one forward projection of the health score
type Scenario struct {
	Label       string  `json:"label"`
	WeeksAhead  float64 `json:"weeksAhead"`
	Projected   float64 `json:"projected"`
	Optimistic  float64 `json:"optimistic"`
	Pessimistic float64 `json:"pessimistic"`
}

// Trajectory is the fitted health trend with forward scenarios
type Trajectory struct {
	Direction    Direction  `json:"direction"`
	SlopePerWeek float64    `json:"slopePerWeek"`
	Confidence   float64    `json:"confidence"`
	DataPoints   int        `json:"dataPoints"`
	SpanWeeks    float64    `json:"spanWeeks"`
	Scenarios    []Scenario `json:"scenarios"`
	Insights     []string   `json:"insights"`
}

// CalculateTrajectory fits health score against weeks since the first
// snapshot and projects one week, one month, and three months ahead.
// Fewer than two snapshots yields a stable zero trajectory with an
// explanatory insight.
func CalculateTrajectory(snapshots []HealthSnapshot) *Trajectory {
	if len(snapshots) < 2 {
		return &Trajectory{
			Direction:  DirectionStable,
			DataPoints: len(snapshots),
			Insights:   []string{"Not enough snapshots to fit a trend; run more scans over time"},
		}
	}

	base := snapshots[0].Timestamp
	var sumX, sumY, sumXY, sumX2 float64
	n := float64(len(snapshots))
	for _, s := range snapshots {
		x := s.Timestamp.Sub(base).Hours() / (24 * 7)
		y := float64(s.Metrics.HealthScore)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	var slope float64
	denominator := n*sumX2 - sumX*sumX
	if denominator != 0 {
		slope = (n*sumXY - sumX*sumY) / denominator
	}
	if slope > maxSlopePerWeek {
		slope = maxSlopePerWeek
	}
	if slope < -maxSlopePerWeek {
		slope = -maxSlopePerWeek
	}

	spanWeeks := snapshots[len(snapshots)-1].Timestamp.Sub(base).Hours() / (24 * 7)
	latest := float64(snapshots[len(snapshots)-1].Metrics.HealthScore)

	traj := &Trajectory{
		SlopePerWeek: slope,
		Confidence:   confidence(snapshots, slope, sumX/n, sumY/n),
		DataPoints:   len(snapshots),
		SpanWeeks:    spanWeeks,
	}

	switch {
	case slope > 0.5:
		traj.Direction = DirectionImproving
	case slope < -0.5:
		traj.Direction = DirectionDeclining
	default:
		traj.Direction = DirectionStable
	}

	for _, horizon := range []struct {
		label string
		weeks float64
	}{
		{"1 week", 1},
		{"1 month", 4.345},
		{"3 months", 13.035},
	} {
		projected := latest + slope*horizon.weeks
		variance := math.Abs(slope) * horizon.weeks * 0.5
		traj.Scenarios = append(traj.Scenarios, Scenario{
			Label:       horizon.label,
			WeeksAhead:  horizon.weeks,
			Projected:   clampScore(projected),
			Optimistic:  clampScore(projected + variance),
			Pessimistic: clampScore(projected - variance),
		})
	}

	traj.Insights = trajectoryInsights(traj, latest)
	return traj
}

// confidence blends three signals into [0,1]: how many points the fit
// used, how long a span they cover, and how well the line explains them.
func confidence(snapshots []HealthSnapshot, slope, meanX, meanY float64) float64 {
	countScore := math.Min(float64(len(snapshots))/10, 1.0)

	base := snapshots[0].Timestamp
	spanWeeks := snapshots[len(snapshots)-1].Timestamp.Sub(base).Hours() / (24 * 7)
	spanScore := math.Min(spanWeeks/8, 1.0)

	intercept := meanY - slope*meanX
	var ssRes, ssTot float64
	for _, s := range snapshots {
		x := s.Timestamp.Sub(base).Hours() / (24 * 7)
		y := float64(s.Metrics.HealthScore)
		predicted := intercept + slope*x
		ssRes += (y - predicted) * (y - predicted)
		ssTot += (y - meanY) * (y - meanY)
	}
	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
		if r2 < 0 {
			r2 = 0
		}
	}

	return math.Round((countScore*0.3+spanScore*0.3+r2*0.4)*100) / 100
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return math.Round(v*10) / 10
}

func trajectoryInsights(t *Trajectory, latest float64) []string {
	var insights []string
	switch t.Direction {
	case DirectionImproving:
		insights = append(insights, fmt.Sprintf("Health is improving by %.1f points per week", t.SlopePerWeek))
	case DirectionDeclining:
		insights = append(insights, fmt.Sprintf("Health is declining by %.1f points per week", -t.SlopePerWeek))
	default:
		insights = append(insights, "Health score is holding steady")
	}
	if t.Confidence < 0.4 {
		insights = append(insights, "Confidence is low; the series is short or noisy")
	}
	if latest < 50 && t.Direction != DirectionImproving {
		insights = append(insights, "Health score is already below 50; consider prioritizing the refactor targets")
	}
	return insights
}
