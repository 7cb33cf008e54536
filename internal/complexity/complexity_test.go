package complexity

import (
	"testing"

	"specter/internal/config"
	"specter/internal/extract"
	"specter/internal/graph"
	"specter/internal/logging"
)

func defaultAnalyzer() *Analyzer {
	return New(config.DefaultConfig().Complexity)
}

func graphWithComplexities(values []int) *graph.KnowledgeGraph {
	symbols := make([]extract.Symbol, 0, len(values))
	for i, v := range values {
		symbols = append(symbols, extract.Symbol{
			Kind:       extract.KindFunction,
			Name:       "fn" + string(rune('a'+i)),
			LineStart:  i*10 + 1,
			LineEnd:    i*10 + 5,
			Complexity: v,
		})
	}
	results := []extract.FileExtraction{{FilePath: "src/main.ts", LineCount: 100, Symbols: symbols}}
	return graph.NewBuilder(".", logging.Discard()).Build(results)
}

func TestCategorize_GapFreeBoundaries(t *testing.T) {
	a := defaultAnalyzer()
	tests := []struct {
		value int
		want  Category
	}{
		{0, Low},
		{5, Low},
		{6, Medium},
		{10, Medium},
		{11, High},
		{20, High},
		{21, VeryHigh},
		{100, VeryHigh},
	}
	for _, tt := range tests {
		if got := a.Categorize(tt.value); got != tt.want {
			t.Errorf("Categorize(%d) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestAnalyze_KnownDistribution(t *testing.T) {
	a := defaultAnalyzer()
	report := a.Analyze(graphWithComplexities([]int{5, 10, 15, 20, 25}), 0, false)

	if report.SymbolCount != 5 {
		t.Fatalf("SymbolCount = %d, want 5", report.SymbolCount)
	}
	if report.AvgComplexity != 15 {
		t.Errorf("AvgComplexity = %v, want 15", report.AvgComplexity)
	}
	if report.MaxComplexity != 25 {
		t.Errorf("MaxComplexity = %d, want 25", report.MaxComplexity)
	}
	if report.TotalComplexity != 75 {
		t.Errorf("TotalComplexity = %d, want 75", report.TotalComplexity)
	}

	want := map[Category]int{Low: 1, Medium: 1, High: 2, VeryHigh: 1}
	for cat, n := range want {
		if report.Distribution[cat] != n {
			t.Errorf("Distribution[%s] = %d, want %d", cat, report.Distribution[cat], n)
		}
	}
}

func TestAnalyze_EmptyGraph(t *testing.T) {
	a := defaultAnalyzer()
	report := a.Analyze(graphWithComplexities(nil), 0, false)
	if report.SymbolCount != 0 || report.AvgComplexity != 0 {
		t.Errorf("empty graph: count=%d avg=%v, want zeros", report.SymbolCount, report.AvgComplexity)
	}
}

func TestAnalyze_TopSymbolsSortedAndLimited(t *testing.T) {
	a := defaultAnalyzer()
	report := a.Analyze(graphWithComplexities([]int{3, 30, 12, 7}), 2, false)

	if len(report.TopSymbols) != 2 {
		t.Fatalf("TopSymbols = %d, want 2", len(report.TopSymbols))
	}
	if report.TopSymbols[0].Complexity != 30 || report.TopSymbols[1].Complexity != 12 {
		t.Errorf("TopSymbols = [%d %d], want [30 12]",
			report.TopSymbols[0].Complexity, report.TopSymbols[1].Complexity)
	}
}

func TestAnalyze_IncludeFiles(t *testing.T) {
	a := defaultAnalyzer()
	g := graphWithComplexities([]int{5, 10})

	report := a.Analyze(g, 0, true)

	// The file node sums its symbols and outranks both of them.
	if len(report.TopSymbols) != 3 {
		t.Fatalf("TopSymbols = %d, want 2 symbols plus 1 file", len(report.TopSymbols))
	}
	top := report.TopSymbols[0]
	if top.Kind != "file" || top.FilePath != "src/main.ts" || top.Complexity != 15 {
		t.Errorf("top entry = %+v, want the file node with complexity 15", top)
	}

	// Aggregates stay symbol-only so file sums never double-count.
	if report.SymbolCount != 2 || report.TotalComplexity != 15 || report.AvgComplexity != 7.5 {
		t.Errorf("aggregates = count %d total %d avg %v, want 2/15/7.5",
			report.SymbolCount, report.TotalComplexity, report.AvgComplexity)
	}

	for _, s := range a.Analyze(g, 0, false).TopSymbols {
		if s.Kind == "file" {
			t.Errorf("file node %s ranked without the include-files option", s.FilePath)
		}
	}
}

func TestRefactorTargets(t *testing.T) {
	a := defaultAnalyzer()

	symbols := []extract.Symbol{
		{Kind: extract.KindFunction, Name: "calm", LineStart: 1, LineEnd: 10, Complexity: 4},
		{Kind: extract.KindFunction, Name: "busy", LineStart: 20, LineEnd: 30, Complexity: 15},
		{Kind: extract.KindFunction, Name: "monster", LineStart: 40, LineEnd: 150, Complexity: 25},
		{Kind: extract.KindFunction, Name: "sprawl", LineStart: 200, LineEnd: 280, Complexity: 3},
	}
	g := graph.NewBuilder(".", logging.Discard()).Build([]extract.FileExtraction{
		{FilePath: "src/main.ts", LineCount: 300, Symbols: symbols},
	})

	targets := a.RefactorTargets(g, 0)
	if len(targets) != 3 {
		t.Fatalf("targets = %d, want 3 (busy, monster, sprawl)", len(targets))
	}

	// Highest priority first: monster is over the high threshold and also
	// a long function.
	if targets[0].Symbol.Name != "monster" {
		t.Errorf("first target = %s, want monster", targets[0].Symbol.Name)
	}
	if targets[0].Priority != PriorityHigh || !targets[0].LongFunction {
		t.Errorf("monster: priority=%s long=%v, want high priority long function",
			targets[0].Priority, targets[0].LongFunction)
	}

	for _, target := range targets {
		switch target.Symbol.Name {
		case "busy":
			if target.Priority != PriorityMedium || target.LongFunction {
				t.Errorf("busy: priority=%s long=%v, want medium, not long", target.Priority, target.LongFunction)
			}
		case "sprawl":
			if !target.LongFunction {
				t.Error("sprawl spans 81 lines and must be flagged long")
			}
		case "calm":
			t.Error("calm is below every threshold and must not be a target")
		}
	}
}

func TestAnalyze_DirectoryRollups(t *testing.T) {
	a := defaultAnalyzer()
	g := graph.NewBuilder(".", logging.Discard()).Build([]extract.FileExtraction{
		{FilePath: "src/api/a.ts", LineCount: 10, Symbols: []extract.Symbol{
			{Kind: extract.KindFunction, Name: "one", LineStart: 1, LineEnd: 2, Complexity: 10},
		}},
		{FilePath: "src/db/b.ts", LineCount: 10, Symbols: []extract.Symbol{
			{Kind: extract.KindFunction, Name: "two", LineStart: 1, LineEnd: 2, Complexity: 4},
		}},
	})

	report := a.Analyze(g, 0, false)
	if len(report.Directories) != 2 {
		t.Fatalf("directories = %d, want 2", len(report.Directories))
	}
	// Sorted by total complexity descending.
	if report.Directories[0].Directory != "src/api" {
		t.Errorf("first rollup = %s, want src/api", report.Directories[0].Directory)
	}
	if report.Directories[0].TotalComplexity != 10 || report.Directories[0].FileCount != 1 {
		t.Errorf("src/api rollup = %+v", report.Directories[0])
	}
}
