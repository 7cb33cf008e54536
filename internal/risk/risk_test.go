package risk

import (
	"math"
	"strings"
	"testing"

	"specter/internal/extract"
	"specter/internal/graph"
	"specter/internal/history"
	"specter/internal/logging"
)

func buildGraph() *graph.KnowledgeGraph {
	results := []extract.FileExtraction{
		{
			FilePath:  "src/a.ts",
			LineCount: 120,
			Symbols: []extract.Symbol{
				{Kind: extract.KindFunction, Name: "parse", LineStart: 1, LineEnd: 60, Complexity: 25},
			},
		},
		{
			FilePath:  "src/b.ts",
			LineCount: 40,
			Imports:   []extract.Import{{Specifier: "./a"}},
		},
	}
	return graph.NewBuilder(".", logging.Discard()).Build(results)
}

func TestFactorWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range factorWeights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum to %v, want 1.0", sum)
	}
}

func TestAssess_EmptyDiff(t *testing.T) {
	score := NewScorer(buildGraph(), nil).Assess(nil)
	if score.Overall != 0 || score.Level != LevelLow {
		t.Errorf("empty diff scored %d/%s, want 0/low", score.Overall, score.Level)
	}
	if score.Summary != "Nothing to analyze." {
		t.Errorf("summary = %q", score.Summary)
	}
}

func TestAssess_OverallIsWeightedSum(t *testing.T) {
	diff := []history.DiffFile{
		{Path: "src/a.ts", Status: "modified", Additions: 10, Deletions: 5},
	}
	score := NewScorer(buildGraph(), nil).Assess(diff)

	var weighted float64
	for _, f := range score.Factors {
		weighted += float64(f.Score) * f.Weight
	}
	want := int(math.Round(weighted))
	if score.Overall != want {
		t.Errorf("overall = %d, want %d", score.Overall, want)
	}
	if score.Overall < 0 || score.Overall > 100 {
		t.Errorf("overall = %d, outside [0,100]", score.Overall)
	}
	if score.Level != LevelOf(score.Overall) {
		t.Errorf("level = %s, want %s", score.Level, LevelOf(score.Overall))
	}
}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		overall int
		want    Level
	}{
		{0, LevelLow},
		{25, LevelLow},
		{26, LevelMedium},
		{50, LevelMedium},
		{51, LevelHigh},
		{75, LevelHigh},
		{76, LevelCritical},
		{100, LevelCritical},
	}
	for _, tt := range tests {
		if got := LevelOf(tt.overall); got != tt.want {
			t.Errorf("LevelOf(%d) = %s, want %s", tt.overall, got, tt.want)
		}
	}
}

func diffOf(n int) []history.DiffFile {
	diff := make([]history.DiffFile, n)
	for i := range diff {
		diff[i] = history.DiffFile{Path: "src/x.ts", Status: "modified", Additions: 1}
	}
	return diff
}

func TestFilesChangedBreakpoints(t *testing.T) {
	s := NewScorer(buildGraph(), nil)
	tests := []struct {
		files, want int
	}{
		{1, 10},
		{3, 10},
		{4, 40},
		{10, 40},
		{11, 70},
		{20, 70},
		{21, 100},
	}
	for _, tt := range tests {
		if got := s.filesChanged(diffOf(tt.files)).Score; got != tt.want {
			t.Errorf("filesChanged(%d files) = %d, want %d", tt.files, got, tt.want)
		}
	}
}

func TestLinesChangedBreakpoints(t *testing.T) {
	s := NewScorer(buildGraph(), nil)
	tests := []struct {
		lines, want int
	}{
		{50, 10},
		{51, 30},
		{200, 30},
		{201, 50},
		{500, 50},
		{501, 75},
		{1000, 75},
		{1001, 100},
	}
	for _, tt := range tests {
		diff := []history.DiffFile{{Path: "src/x.ts", Additions: tt.lines}}
		if got := s.linesChanged(diff).Score; got != tt.want {
			t.Errorf("linesChanged(%d lines) = %d, want %d", tt.lines, got, tt.want)
		}
	}
}

func TestComplexityTouched(t *testing.T) {
	s := NewScorer(buildGraph(), nil)
	// src/a.ts holds a complexity-25 symbol.
	f := s.complexityTouched([]history.DiffFile{{Path: "src/a.ts"}})
	if f.Score != 80 {
		t.Errorf("score = %d, want 80", f.Score)
	}
	if !strings.Contains(f.Details, "parse") {
		t.Errorf("details = %q, want the worst symbol named", f.Details)
	}

	// Unknown files score zero.
	f = s.complexityTouched([]history.DiffFile{{Path: "docs/readme.md"}})
	if f.Score != 0 {
		t.Errorf("unknown file score = %d, want 0", f.Score)
	}
}

func TestDependentImpact(t *testing.T) {
	s := NewScorer(buildGraph(), nil)
	// src/b.ts imports src/a.ts.
	f := s.dependentImpact([]history.DiffFile{{Path: "src/a.ts"}})
	if f.Score != 20 {
		t.Errorf("score = %d, want 20", f.Score)
	}

	f = s.dependentImpact([]history.DiffFile{{Path: "src/b.ts"}})
	if f.Score != 0 {
		t.Errorf("leaf file score = %d, want 0", f.Score)
	}
}

func TestBusFactorRisk(t *testing.T) {
	histories := map[string]*history.FileHistory{
		"src/a.ts": {
			FilePath: "src/a.ts",
			Contributors: map[string]history.Contribution{
				"a@x.com": {Name: "A", Email: "a@x.com", Commits: 95},
				"b@x.com": {Name: "B", Email: "b@x.com", Commits: 5},
			},
		},
	}
	s := NewScorer(buildGraph(), histories)

	f := s.busFactorRisk([]history.DiffFile{{Path: "src/a.ts"}})
	if f.Score != 100 {
		t.Errorf("score = %d, want 100 for 95%% ownership", f.Score)
	}

	f = s.busFactorRisk([]history.DiffFile{{Path: "src/unknown.ts"}})
	if f.Score != 0 {
		t.Errorf("no-history score = %d, want 0", f.Score)
	}
}

func TestTestCoverage(t *testing.T) {
	s := NewScorer(buildGraph(), nil)

	// Test-only changes carry no coverage risk.
	f := s.testCoverage([]history.DiffFile{{Path: "src/a.test.ts", Additions: 100}})
	if f.Score != 0 {
		t.Errorf("test-only score = %d, want 0", f.Score)
	}

	// Source plus tests is also clean.
	f = s.testCoverage([]history.DiffFile{
		{Path: "src/a.ts", Additions: 100},
		{Path: "src/a.test.ts", Additions: 50},
	})
	if f.Score != 0 {
		t.Errorf("source-with-tests score = %d, want 0", f.Score)
	}

	// Source without tests scales with size.
	f = s.testCoverage([]history.DiffFile{{Path: "src/a.ts", Additions: 300}})
	if f.Score != 80 {
		t.Errorf("untested 300-line change score = %d, want 80", f.Score)
	}
}

func TestRecommendations(t *testing.T) {
	// Large, untested change touching an owned complex file.
	histories := map[string]*history.FileHistory{
		"src/a.ts": {
			FilePath: "src/a.ts",
			Contributors: map[string]history.Contribution{
				"a@x.com": {Name: "A", Email: "a@x.com", Commits: 100},
			},
		},
	}
	diff := make([]history.DiffFile, 0, 25)
	for i := 0; i < 25; i++ {
		diff = append(diff, history.DiffFile{Path: "src/a.ts", Additions: 60})
	}
	score := NewScorer(buildGraph(), histories).Assess(diff)

	wantFragments := []string{"Split this change", "Add or update tests", "usual owner"}
	for _, frag := range wantFragments {
		found := false
		for _, r := range score.Recommendations {
			if strings.Contains(r, frag) {
				found = true
			}
		}
		if !found {
			t.Errorf("recommendation %q missing from %v", frag, score.Recommendations)
		}
	}
}

func TestRecommendations_Fallback(t *testing.T) {
	diff := []history.DiffFile{
		{Path: "src/b.ts", Additions: 5, Deletions: 2},
		{Path: "src/b.test.ts", Additions: 3},
	}
	score := NewScorer(buildGraph(), nil).Assess(diff)
	if len(score.Recommendations) != 1 || !strings.Contains(score.Recommendations[0], "well scoped") {
		t.Errorf("recommendations = %v, want the well-scoped fallback", score.Recommendations)
	}
}
