// Package risk scores a proposed change set against the graph and mined
// ownership. Each factor maps a measured quantity to 0-100 through fixed
// breakpoints; the overall score is the weighted sum.
package risk

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"specter/internal/graph"
	"specter/internal/history"
)

// Level buckets an overall score
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// LevelOf buckets an overall 0-100 score
func LevelOf(overall int) Level {
	switch {
	case overall <= 25:
		return LevelLow
	case overall <= 50:
		return LevelMedium
	case overall <= 75:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// Factor names, stable across output formats
const (
	FactorFilesChanged      = "filesChanged"
	FactorLinesChanged      = "linesChanged"
	FactorComplexityTouched = "complexityTouched"
	FactorDependentImpact   = "dependentImpact"
	FactorBusFactorRisk     = "busFactorRisk"
	FactorTestCoverage      = "testCoverage"
)

// factorWeights must sum to exactly 1.0; Score validates this.
var factorWeights = map[string]float64{
	FactorFilesChanged:      0.15,
	FactorLinesChanged:      0.15,
	FactorComplexityTouched: 0.25,
	FactorDependentImpact:   0.25,
	FactorBusFactorRisk:     0.10,
	FactorTestCoverage:      0.10,
}

// Factor is one scored risk dimension
type Factor struct {
	Name    string  `json:"name"`
	Score   int     `json:"score"`
	Weight  float64 `json:"weight"`
	Details string  `json:"details"`
}

// Score is the full risk assessment for a change set
type Score struct {
	Overall         int      `json:"overall"`
	Level           Level    `json:"level"`
	Summary         string   `json:"summary"`
	Factors         []Factor `json:"factors"`
	Recommendations []string `json:"recommendations"`
}

// Scorer assesses change sets
type Scorer struct {
	graph     *graph.KnowledgeGraph
	histories map[string]*history.FileHistory
}

// NewScorer creates a scorer over the current graph. Histories may be nil
// when the repository has no usable git history; the ownership factor then
// scores zero.
func NewScorer(g *graph.KnowledgeGraph, histories map[string]*history.FileHistory) *Scorer {
	return &Scorer{graph: g, histories: histories}
}

// Assess scores a diff file list. An empty diff short-circuits to a zero
// score; there is nothing to assess and nothing to warn about.
func (s *Scorer) Assess(diff []history.DiffFile) *Score {
	if len(diff) == 0 {
		return &Score{
			Overall: 0,
			Level:   LevelLow,
			Summary: "Nothing to analyze.",
		}
	}

	factors := []Factor{
		s.filesChanged(diff),
		s.linesChanged(diff),
		s.complexityTouched(diff),
		s.dependentImpact(diff),
		s.busFactorRisk(diff),
		s.testCoverage(diff),
	}

	var weightSum, weighted float64
	for _, f := range factors {
		weightSum += f.Weight
		weighted += float64(f.Score) * f.Weight
	}
	if math.Abs(weightSum-1.0) > 1e-9 {
		panic(fmt.Sprintf("risk factor weights sum to %v, want 1.0", weightSum))
	}

	overall := int(math.Round(weighted))
	score := &Score{
		Overall: overall,
		Level:   LevelOf(overall),
		Factors: factors,
	}
	score.Summary = summarize(score, len(diff))
	score.Recommendations = recommend(factors)
	return score
}

func (s *Scorer) filesChanged(diff []history.DiffFile) Factor {
	n := len(diff)
	var score int
	switch {
	case n <= 3:
		score = 10
	case n <= 10:
		score = 40
	case n <= 20:
		score = 70
	default:
		score = 100
	}
	return Factor{
		Name:    FactorFilesChanged,
		Score:   score,
		Weight:  factorWeights[FactorFilesChanged],
		Details: fmt.Sprintf("%d file(s) changed", n),
	}
}

func (s *Scorer) linesChanged(diff []history.DiffFile) Factor {
	total := 0
	for _, f := range diff {
		total += f.Additions + f.Deletions
	}
	var score int
	switch {
	case total <= 50:
		score = 10
	case total <= 200:
		score = 30
	case total <= 500:
		score = 50
	case total <= 1000:
		score = 75
	default:
		score = 100
	}
	return Factor{
		Name:    FactorLinesChanged,
		Score:   score,
		Weight:  factorWeights[FactorLinesChanged],
		Details: fmt.Sprintf("%d line(s) added or removed", total),
	}
}

func (s *Scorer) complexityTouched(diff []history.DiffFile) Factor {
	maxComplexity := 0
	worst := ""
	for _, f := range diff {
		for _, sym := range s.graph.SymbolsInFile(f.Path) {
			if sym.Complexity > maxComplexity {
				maxComplexity = sym.Complexity
				worst = sym.Name
			}
		}
	}

	var score int
	switch {
	case maxComplexity == 0:
		score = 0
	case maxComplexity <= 5:
		score = 10
	case maxComplexity <= 10:
		score = 30
	case maxComplexity <= 20:
		score = 60
	case maxComplexity <= 30:
		score = 80
	default:
		score = 100
	}

	details := "no known symbols in touched files"
	if worst != "" {
		details = fmt.Sprintf("highest complexity touched is %d (%s)", maxComplexity, worst)
	}
	return Factor{
		Name:    FactorComplexityTouched,
		Score:   score,
		Weight:  factorWeights[FactorComplexityTouched],
		Details: details,
	}
}

func (s *Scorer) dependentImpact(diff []history.DiffFile) Factor {
	dependents := make(map[string]bool)
	for _, f := range diff {
		for _, dep := range s.graph.Dependents(f.Path) {
			dependents[dep] = true
		}
	}
	n := len(dependents)

	var score int
	switch {
	case n == 0:
		score = 0
	case n <= 2:
		score = 20
	case n <= 5:
		score = 40
	case n <= 10:
		score = 60
	case n <= 20:
		score = 80
	default:
		score = 100
	}
	return Factor{
		Name:    FactorDependentImpact,
		Score:   score,
		Weight:  factorWeights[FactorDependentImpact],
		Details: fmt.Sprintf("%d file(s) transitively import the changed files", n),
	}
}

func (s *Scorer) busFactorRisk(diff []history.DiffFile) Factor {
	topShare := 0.0
	owner := ""
	for _, f := range diff {
		h, ok := s.histories[graph.NormalizePath(f.Path)]
		if !ok {
			continue
		}
		top, share := h.TopContributor()
		if share > topShare {
			topShare = share
			owner = top.Name
		}
	}

	var score int
	switch {
	case topShare == 0:
		score = 0
	case topShare < 0.5:
		score = 10
	case topShare < 0.65:
		score = 30
	case topShare < 0.8:
		score = 60
	case topShare < 0.9:
		score = 80
	default:
		score = 100
	}

	details := "no ownership history for touched files"
	if owner != "" {
		details = fmt.Sprintf("%s holds %d%% of the work on a touched file", owner, int(topShare*100))
	}
	return Factor{
		Name:    FactorBusFactorRisk,
		Score:   score,
		Weight:  factorWeights[FactorBusFactorRisk],
		Details: details,
	}
}

func (s *Scorer) testCoverage(diff []history.DiffFile) Factor {
	sourceLines := 0
	hasSource, hasTests := false, false
	for _, f := range diff {
		if isTestPath(f.Path) {
			hasTests = true
			continue
		}
		hasSource = true
		sourceLines += f.Additions + f.Deletions
	}

	var score int
	var details string
	switch {
	case !hasSource:
		score = 0
		details = "test-only change"
	case hasTests:
		score = 0
		details = "tests included alongside source changes"
	default:
		switch {
		case sourceLines <= 50:
			score = 40
		case sourceLines <= 200:
			score = 60
		case sourceLines <= 500:
			score = 80
		default:
			score = 100
		}
		details = fmt.Sprintf("%d source line(s) changed with no test changes", sourceLines)
	}
	return Factor{
		Name:    FactorTestCoverage,
		Score:   score,
		Weight:  factorWeights[FactorTestCoverage],
		Details: details,
	}
}

func summarize(score *Score, fileCount int) string {
	switch score.Level {
	case LevelLow:
		return fmt.Sprintf("Low-risk change across %d file(s).", fileCount)
	case LevelMedium:
		return fmt.Sprintf("Moderate risk across %d file(s); review the flagged factors.", fileCount)
	case LevelHigh:
		return fmt.Sprintf("High-risk change across %d file(s); consider splitting it up.", fileCount)
	default:
		return fmt.Sprintf("Critical-risk change across %d file(s); this needs careful review and staging.", fileCount)
	}
}

func recommend(factors []Factor) []string {
	byName := make(map[string]Factor, len(factors))
	for _, f := range factors {
		byName[f.Name] = f
	}

	var recs []string
	if byName[FactorFilesChanged].Score >= 70 || byName[FactorLinesChanged].Score >= 75 {
		recs = append(recs, "Split this change into smaller, independently reviewable pieces")
	}
	if byName[FactorTestCoverage].Score >= 40 {
		recs = append(recs, "Add or update tests covering the changed source files")
	}
	if byName[FactorDependentImpact].Score >= 60 {
		recs = append(recs, "Verify downstream files that import the changed ones; "+byName[FactorDependentImpact].Details)
	}
	if byName[FactorBusFactorRisk].Score >= 60 {
		recs = append(recs, "Request review from outside the usual owner; "+byName[FactorBusFactorRisk].Details)
	}
	if byName[FactorComplexityTouched].Score >= 60 {
		recs = append(recs, "Touched symbols are complex; re-run the relevant analyzers after merging")
	}
	if len(recs) == 0 {
		recs = append(recs, "Change looks well scoped; no specific concerns")
	}

	sort.Strings(recs)
	return recs
}

func isTestPath(p string) bool {
	return strings.Contains(p, "_test") || strings.Contains(p, ".test.") ||
		strings.Contains(p, ".spec.") || strings.Contains(p, "/test/") ||
		strings.Contains(p, "/tests/") || strings.Contains(p, "__tests__")
}
