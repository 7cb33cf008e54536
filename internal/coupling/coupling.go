// Package coupling detects change coupling: files that repeatedly change
// in the same commits as a target file. Couplings with no import
// relationship in the graph are flagged hidden; those are the ones the
// structure does not explain.
package coupling

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"specter/internal/graph"
	"specter/internal/history"
	"specter/internal/logging"
)

// Level buckets a coupling strength for display
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// LevelOf buckets a coupling strength
func LevelOf(strength float64) Level {
	switch {
	case strength >= 0.7:
		return LevelHigh
	case strength >= 0.4:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Coupling is one reported co-change pairing
type Coupling struct {
	File             string  `json:"file"`
	FilePath         string  `json:"filePath"`
	SharedCommits    int     `json:"sharedCommits"`
	TotalCommits     int     `json:"totalCommits"`
	CouplingStrength float64 `json:"couplingStrength"`
	Level            Level   `json:"level"`

	// Hidden means the pair has no import relationship in either
	// direction; the coupling exists only in history.
	Hidden bool `json:"hidden"`
}

// Analysis is the full coupling report for one target file
type Analysis struct {
	TargetFile      string     `json:"targetFile"`
	CommitCount     int        `json:"commitCount"`
	AnalyzedAt      time.Time  `json:"analyzedAt"`
	Couplings       []Coupling `json:"couplings"`
	Insights        []string   `json:"insights"`
	Recommendations []string   `json:"recommendations"`
}

// Analyzer classifies mined co-change pairings against the graph
type Analyzer struct {
	miner  *history.Miner
	logger *logging.Logger
}

// NewAnalyzer creates a coupling analyzer backed by the given miner
func NewAnalyzer(miner *history.Miner, logger *logging.Logger) *Analyzer {
	return &Analyzer{miner: miner, logger: logger}
}

// Analyze mines co-changes for the target file and classifies each pairing
// as expected (an import edge links the pair) or hidden. Mining failures
// degrade to an empty coupling list, never an error.
func (a *Analyzer) Analyze(ctx context.Context, g *graph.KnowledgeGraph, targetFile string, limit int) *Analysis {
	target := graph.NormalizePath(targetFile)
	importPairs := g.ImportPairs()

	mined := a.miner.CoChanges(ctx, target, importPairs, graph.PairKey)

	analysis := &Analysis{
		TargetFile: target,
		AnalyzedAt: time.Now().UTC(),
	}

	for _, m := range mined {
		analysis.CommitCount = m.TotalCommits
		analysis.Couplings = append(analysis.Couplings, Coupling{
			File:             path.Base(m.File2),
			FilePath:         m.File2,
			SharedCommits:    m.SharedCommits,
			TotalCommits:     m.TotalCommits,
			CouplingStrength: m.CouplingStrength,
			Level:            LevelOf(m.CouplingStrength),
			Hidden:           !m.HasImportRelationship,
		})
	}

	sort.Slice(analysis.Couplings, func(i, j int) bool {
		if analysis.Couplings[i].CouplingStrength != analysis.Couplings[j].CouplingStrength {
			return analysis.Couplings[i].CouplingStrength > analysis.Couplings[j].CouplingStrength
		}
		return analysis.Couplings[i].FilePath < analysis.Couplings[j].FilePath
	})
	if limit > 0 && len(analysis.Couplings) > limit {
		analysis.Couplings = analysis.Couplings[:limit]
	}

	analysis.Insights = generateInsights(analysis.Couplings)
	analysis.Recommendations = generateRecommendations(analysis.Couplings, target)

	a.logger.Debug("coupling analysis complete", map[string]interface{}{
		"target":    target,
		"couplings": len(analysis.Couplings),
	})
	return analysis
}

func generateInsights(couplings []Coupling) []string {
	insights := make([]string, 0)

	hidden := 0
	for _, c := range couplings {
		if c.Hidden {
			hidden++
		}
	}
	if hidden > 0 {
		insights = append(insights, fmt.Sprintf("%d coupling(s) have no import relationship; the dependency lives only in history", hidden))
	}

	for _, c := range couplings {
		if isTestPath(c.FilePath) {
			insights = append(insights, fmt.Sprintf("Changes often require test updates (%d%% of commits touch %s)", int(c.CouplingStrength*100), c.File))
			break
		}
	}

	high := 0
	for _, c := range couplings {
		if c.Level == LevelHigh {
			high++
		}
	}
	if high >= 3 {
		insights = append(insights, fmt.Sprintf("Strong coupling detected with %d other files", high))
	}

	for _, c := range couplings {
		if isConfigPath(c.FilePath) && c.Level != LevelLow {
			insights = append(insights, "Configuration often changes together ("+c.File+")")
			break
		}
	}

	if len(insights) == 0 {
		insights = append(insights, "No significant coupling patterns detected")
	}
	return insights
}

func generateRecommendations(couplings []Coupling, targetFile string) []string {
	recommendations := make([]string, 0)
	if len(couplings) == 0 {
		return recommendations
	}

	topFiles := make([]string, 0, 3)
	for i, c := range couplings {
		if i >= 3 {
			break
		}
		topFiles = append(topFiles, c.File)
	}
	recommendations = append(recommendations,
		"When modifying "+path.Base(targetFile)+", consider reviewing: "+strings.Join(topFiles, ", "))

	for _, c := range couplings {
		if c.Hidden && c.Level == LevelHigh {
			recommendations = append(recommendations,
				fmt.Sprintf("Investigate the hidden dependency between %s and %s; consider making it explicit or extracting the shared concern", path.Base(targetFile), c.File))
			break
		}
	}

	for _, c := range couplings {
		if isTestPath(c.FilePath) && c.CouplingStrength >= 0.7 {
			recommendations = append(recommendations, fmt.Sprintf("Update tests in %s (%d%% coupling)", c.File, int(c.CouplingStrength*100)))
			break
		}
	}
	return recommendations
}

func isTestPath(p string) bool {
	return strings.Contains(p, "_test") || strings.Contains(p, ".test.") ||
		strings.Contains(p, ".spec.") || strings.Contains(p, "/test/") ||
		strings.Contains(p, "/tests/") || strings.Contains(p, "__tests__")
}

func isConfigPath(p string) bool {
	return strings.HasSuffix(p, ".json") || strings.HasSuffix(p, ".yaml") ||
		strings.HasSuffix(p, ".yml") || strings.HasSuffix(p, ".toml")
}
