package busfactor

import (
	"fmt"
	"testing"

	"specter/internal/config"
	"specter/internal/extract"
	"specter/internal/graph"
	"specter/internal/history"
	"specter/internal/logging"
)

func contributors(commits ...int) map[string]history.Contribution {
	m := make(map[string]history.Contribution, len(commits))
	for i, c := range commits {
		email := fmt.Sprintf("dev%d@example.com", i)
		m[email] = history.Contribution{
			Name:    fmt.Sprintf("Dev %d", i),
			Email:   email,
			Commits: c,
		}
	}
	return m
}

func TestBusFactor_FloorOfOne(t *testing.T) {
	if got := busFactor(map[string]history.Contribution{}); got != 1 {
		t.Errorf("busFactor(empty) = %d, want 1", got)
	}
	if got := busFactor(contributors(100)); got != 1 {
		t.Errorf("busFactor(single owner) = %d, want 1", got)
	}
}

func TestBusFactor_ThresholdCounting(t *testing.T) {
	tests := []struct {
		name    string
		commits []int
		want    int
	}{
		{"two equal owners", []int{50, 50}, 2},
		{"five equal owners", []int{20, 20, 20, 20, 20}, 5},
		{"one dominant plus noise", []int{96, 1, 1, 1, 1}, 1},
		{"two meet threshold", []int{40, 40, 10, 10}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := busFactor(contributors(tt.commits...)); got != tt.want {
				t.Errorf("busFactor(%v) = %d, want %d", tt.commits, got, tt.want)
			}
		})
	}
}

// Spreading the same total work across more even contributors never
// lowers the bus factor.
func TestBusFactor_Monotonicity(t *testing.T) {
	prev := 0
	for n := 1; n <= 5; n++ {
		commits := make([]int, n)
		for i := range commits {
			commits[i] = 100 / n
		}
		got := busFactor(contributors(commits...))
		if got < prev {
			t.Errorf("busFactor with %d even contributors = %d, dropped below %d", n, got, prev)
		}
		prev = got
	}
}

func TestAreaOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.ts", "."},
		{"lib/util.ts", "lib"},
		{"src/auth/login.ts", "src/auth"},
		{"src/index.ts", "src"},
		{"internal/api/handler.go", "internal"},
	}
	for _, tt := range tests {
		if got := AreaOf(tt.path); got != tt.want {
			t.Errorf("AreaOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func buildGraph(paths []string) *graph.KnowledgeGraph {
	results := make([]extract.FileExtraction, 0, len(paths))
	for _, p := range paths {
		results = append(results, extract.FileExtraction{FilePath: p, LineCount: 50})
	}
	return graph.NewBuilder(".", logging.Discard()).Build(results)
}

func TestAnalyze_Unavailable(t *testing.T) {
	a := New(nil)
	report := a.Analyze(buildGraph([]string{"src/a.ts"}), nil, history.RepoStats{Available: false})
	if report.Available {
		t.Error("report must be unavailable without history")
	}
	if len(report.Insights) == 0 {
		t.Error("unavailable report must carry an insight")
	}
}

func TestAnalyze_CriticalityCascade(t *testing.T) {
	paths := []string{"src/auth/login.ts", "src/auth/token.ts"}
	g := buildGraph(paths)

	histories := map[string]*history.FileHistory{
		"src/auth/login.ts": {FilePath: "src/auth/login.ts", TotalCommits: 10, Contributors: contributors(95, 5)},
		"src/auth/token.ts": {FilePath: "src/auth/token.ts", TotalCommits: 4, Contributors: contributors(90, 10)},
	}

	report := New(nil).Analyze(g, histories, history.RepoStats{Available: true, TotalCommits: 14})
	if !report.Available {
		t.Fatal("report unavailable")
	}
	if len(report.Areas) != 1 {
		t.Fatalf("areas = %d, want 1", len(report.Areas))
	}

	area := report.Areas[0]
	if area.Name != "src/auth" {
		t.Errorf("area = %s, want src/auth", area.Name)
	}
	// One contributor holds over 80% of the weighted work: critical.
	if area.BusFactor != 1 {
		t.Errorf("bus factor = %d, want 1", area.BusFactor)
	}
	if area.Criticality != CriticalityCritical {
		t.Errorf("criticality = %s, want critical", area.Criticality)
	}
	if area.Remediation == "" {
		t.Error("critical area must carry remediation text")
	}
}

func TestAnalyze_ManifestCoreAreas(t *testing.T) {
	manifest := &config.Manifest{}
	manifest.BusFactor.CoreAreas = []string{"billing"}

	a := New(manifest)
	if !a.isCore("billing") {
		t.Error("manifest core area not recognized")
	}
	if !a.isCore("src/auth") {
		t.Error("default core name auth not recognized under src/")
	}
	if a.isCore("docs") {
		t.Error("docs wrongly treated as core")
	}
}

func TestOverallBusFactor_LineWeighted(t *testing.T) {
	areas := []Area{
		{Name: "src/core", BusFactor: 1, LineCount: 9000},
		{Name: "docs", BusFactor: 5, LineCount: 1000},
	}
	// (1*9000 + 5*1000) / 10000 = 1.4, rounds to 1.
	if got := overallBusFactor(areas); got != 1 {
		t.Errorf("overall = %d, want 1", got)
	}

	if got := overallBusFactor(nil); got != 0 {
		t.Errorf("overall with no areas = %d, want 0", got)
	}
	if got := overallBusFactor([]Area{{Name: ".", BusFactor: 3, LineCount: 0}}); got != 1 {
		t.Errorf("overall with zero lines = %d, want 1", got)
	}
}

func TestAnalyze_ContributorSharesSumToOne(t *testing.T) {
	shares := topShares(contributors(60, 30, 10), 5)
	var sum float64
	for _, s := range shares {
		sum += s.Share
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("shares sum to %v, want 1.0", sum)
	}
	if shares[0].Share < shares[1].Share {
		t.Error("shares not sorted descending")
	}
}
