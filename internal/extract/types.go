// Package extract defines the extraction facts Specter consumes from an
// external symbol extractor, plus loaders for the supported input formats.
// Specter never parses source itself; it builds the knowledge graph from
// these facts.
package extract

// SymbolKind classifies an extracted symbol
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindType      SymbolKind = "type"
	KindEnum      SymbolKind = "enum"
	KindVariable  SymbolKind = "variable"
)

// Symbol is one extracted declaration
type Symbol struct {
	Kind          SymbolKind `json:"kind"`
	Name          string     `json:"name"`
	Exported      bool       `json:"exported"`
	LineStart     int        `json:"lineStart"`
	LineEnd       int        `json:"lineEnd"`
	Complexity    int        `json:"complexity"` // cyclomatic: decision-point count
	Parameters    []string   `json:"parameters,omitempty"`
	IsAsync       bool       `json:"isAsync,omitempty"`
	IsGenerator   bool       `json:"isGenerator,omitempty"`
	Extends       string     `json:"extends,omitempty"`
	Implements    []string   `json:"implements,omitempty"`
	Documentation string     `json:"documentation,omitempty"`
	Calls         []string   `json:"calls,omitempty"`
}

// Import is one import statement. ResolvedPath is the extractor's
// root-relative resolution when it performed one; empty means the builder
// resolves Specifier itself. External packages carry neither a relative
// Specifier nor a ResolvedPath that exists under the root and produce no
// edge.
type Import struct {
	Specifier    string `json:"specifier"`
	ResolvedPath string `json:"resolvedPath,omitempty"`
}

// Export is one exported binding
type Export struct {
	Name       string `json:"name"`
	IsDefault  bool   `json:"isDefault,omitempty"`
	IsReExport bool   `json:"isReExport,omitempty"`
}

// FileExtraction is the per-file unit of extractor output
type FileExtraction struct {
	FilePath  string   `json:"filePath"`
	Language  string   `json:"language,omitempty"`
	LineCount int      `json:"lineCount"`
	Symbols   []Symbol `json:"symbols"`
	Imports   []Import `json:"imports"`
	Exports   []Export `json:"exports"`

	// ParseError marks a file the extractor failed on. The builder skips
	// such files; the scan stays best-effort.
	ParseError string `json:"parseError,omitempty"`
}
