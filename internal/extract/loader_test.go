package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadResults_SingleFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "extraction.json")
	content := `[
  {"filePath": "src/b.ts", "language": "typescript", "lineCount": 20, "symbols": []},
  {"filePath": "src/a.ts", "language": "typescript", "lineCount": 40,
   "symbols": [{"kind": "function", "name": "run", "lineStart": 1, "lineEnd": 10, "complexity": 3}]}
]`
	if err := os.WriteFile(input, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	results, err := LoadResults(input)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	// Sorted by path regardless of input order.
	if results[0].FilePath != "src/a.ts" || results[1].FilePath != "src/b.ts" {
		t.Errorf("order = %s, %s, want sorted", results[0].FilePath, results[1].FilePath)
	}
	if len(results[0].Symbols) != 1 || results[0].Symbols[0].Complexity != 3 {
		t.Errorf("symbols = %+v", results[0].Symbols)
	}
}

func TestLoadResults_Directory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.json":    `{"filePath": "src/b.ts", "language": "typescript", "lineCount": 20}`,
		"a.json":    `{"filePath": "src/a.ts", "language": "typescript", "lineCount": 40}`,
		"notes.txt": "not extraction output",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	results, err := LoadResults(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2 (non-json skipped)", len(results))
	}
	if results[0].FilePath != "src/a.ts" {
		t.Errorf("first = %s, want src/a.ts", results[0].FilePath)
	}
}

func TestLoadResults_MissingPath(t *testing.T) {
	if _, err := LoadResults(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("want error for missing input")
	}
}

func TestLoadResults_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(input, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadResults(input); err == nil {
		t.Error("want error for malformed input")
	}
}
