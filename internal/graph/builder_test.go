package graph

import (
	"testing"

	"specter/internal/extract"
	"specter/internal/logging"
)

func testExtraction() []extract.FileExtraction {
	return []extract.FileExtraction{
		{
			FilePath:  "src/server.ts",
			Language:  "typescript",
			LineCount: 120,
			Symbols: []extract.Symbol{
				{Kind: extract.KindFunction, Name: "startServer", LineStart: 10, LineEnd: 40, Complexity: 8, Exported: true},
				{Kind: extract.KindFunction, Name: "stopServer", LineStart: 42, LineEnd: 60, Complexity: 3, Exported: true},
			},
			Imports: []extract.Import{
				{Specifier: "./router"},
				{Specifier: "express"},
			},
			Exports: []extract.Export{{Name: "startServer"}},
		},
		{
			FilePath:  "src/router.ts",
			Language:  "typescript",
			LineCount: 80,
			Symbols: []extract.Symbol{
				{Kind: extract.KindFunction, Name: "route", LineStart: 5, LineEnd: 30, Complexity: 6, Calls: []string{"startServer"}},
			},
		},
	}
}

func TestBuild_FileComplexityIsSumOfSymbols(t *testing.T) {
	g := NewBuilder(".", logging.Discard()).Build(testExtraction())

	for _, file := range g.FileNodes() {
		sum := 0
		for _, sym := range g.SymbolsInFile(file.FilePath) {
			sum += sym.Complexity
		}
		if file.Complexity != sum {
			t.Errorf("file %s complexity = %d, want sum of symbols %d", file.FilePath, file.Complexity, sum)
		}
	}

	server, ok := g.FileNode("src/server.ts")
	if !ok {
		t.Fatal("file node for src/server.ts not found")
	}
	if server.Complexity != 11 {
		t.Errorf("server.ts complexity = %d, want 11", server.Complexity)
	}
}

func TestBuild_DeterministicIDs(t *testing.T) {
	b := NewBuilder(".", logging.Discard())
	g1 := b.Build(testExtraction())

	// Same input in reverse order must yield the same node IDs and edges.
	reversed := testExtraction()
	reversed[0], reversed[1] = reversed[1], reversed[0]
	g2 := b.Build(reversed)

	if len(g1.Nodes) != len(g2.Nodes) {
		t.Fatalf("node counts differ: %d vs %d", len(g1.Nodes), len(g2.Nodes))
	}
	for id := range g1.Nodes {
		if _, ok := g2.Nodes[id]; !ok {
			t.Errorf("node %s missing from reordered build", id)
		}
	}
	if len(g1.Edges) != len(g2.Edges) {
		t.Errorf("edge counts differ: %d vs %d", len(g1.Edges), len(g2.Edges))
	}
}

func TestBuild_ImportResolution(t *testing.T) {
	g := NewBuilder(".", logging.Discard()).Build(testExtraction())

	var importEdges []Edge
	for _, e := range g.Edges {
		if e.Type == EdgeImports {
			importEdges = append(importEdges, e)
		}
	}

	// "./router" resolves to src/router.ts; "express" is external and
	// produces no edge.
	if len(importEdges) != 1 {
		t.Fatalf("import edges = %d, want 1", len(importEdges))
	}
	if importEdges[0].Source != FileID("src/server.ts") {
		t.Errorf("import source = %s, want %s", importEdges[0].Source, FileID("src/server.ts"))
	}
	if importEdges[0].Target != FileID("src/router.ts") {
		t.Errorf("import target = %s, want %s", importEdges[0].Target, FileID("src/router.ts"))
	}
}

func TestBuild_SkipsParseErrors(t *testing.T) {
	results := testExtraction()
	results = append(results, extract.FileExtraction{
		FilePath:   "src/broken.ts",
		ParseError: "unexpected token",
	})

	g := NewBuilder(".", logging.Discard()).Build(results)
	if _, ok := g.FileNode("src/broken.ts"); ok {
		t.Error("unparsed file produced a node")
	}
	if g.Metadata.FileCount != 2 {
		t.Errorf("FileCount = %d, want 2", g.Metadata.FileCount)
	}
}

func TestBuild_DuplicateSymbolsCollapse(t *testing.T) {
	results := []extract.FileExtraction{{
		FilePath:  "a.ts",
		LineCount: 20,
		Symbols: []extract.Symbol{
			{Kind: extract.KindFunction, Name: "overloaded", LineStart: 1, LineEnd: 5, Complexity: 2},
			{Kind: extract.KindFunction, Name: "overloaded", LineStart: 1, LineEnd: 5, Complexity: 9},
		},
	}}

	g := NewBuilder(".", logging.Discard()).Build(results)
	symbols := g.SymbolsInFile("a.ts")
	if len(symbols) != 1 {
		t.Fatalf("symbols = %d, want 1", len(symbols))
	}
	// The first declaration wins.
	if symbols[0].Complexity != 2 {
		t.Errorf("complexity = %d, want 2", symbols[0].Complexity)
	}

	file, _ := g.FileNode("a.ts")
	if file.Complexity != 2 {
		t.Errorf("file complexity = %d, want 2 (duplicate must not double-count)", file.Complexity)
	}
}

func TestBuild_CallEdgesOnlyForUnambiguousNames(t *testing.T) {
	results := testExtraction()
	// A second symbol named startServer makes the call target ambiguous.
	results[1].Symbols = append(results[1].Symbols, extract.Symbol{
		Kind: extract.KindFunction, Name: "startServer", LineStart: 50, LineEnd: 60,
	})

	g := NewBuilder(".", logging.Discard()).Build(results)
	for _, e := range g.Edges {
		if e.Type == EdgeCalls {
			t.Errorf("ambiguous callee produced call edge %s", e.ID)
		}
	}
}

func TestSyncCounts(t *testing.T) {
	g := NewBuilder(".", logging.Discard()).Build(testExtraction())
	if g.Metadata.NodeCount != len(g.Nodes) {
		t.Errorf("NodeCount = %d, want %d", g.Metadata.NodeCount, len(g.Nodes))
	}
	if g.Metadata.EdgeCount != len(g.Edges) {
		t.Errorf("EdgeCount = %d, want %d", g.Metadata.EdgeCount, len(g.Edges))
	}
}

func TestNormalizeRel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"./src/a.ts", "src/a.ts"},
		{"src\\win\\a.ts", "src/win/a.ts"},
		{"/abs/a.ts", "abs/a.ts"},
		{"src/../a.ts", "a.ts"},
	}
	for _, tt := range tests {
		if got := normalizeRel(tt.in); got != tt.want {
			t.Errorf("normalizeRel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
