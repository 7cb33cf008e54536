// Package graph defines the knowledge graph model and its builder.
//
// The graph is rebuilt wholesale on every scan, persisted by the store
// package, and read-only for every analyzer until the next scan
// supersedes it.
package graph

import "time"

// Version is the persisted graph schema version
const Version = "1"

// NodeKind classifies a graph node
type NodeKind string

const (
	KindFile      NodeKind = "file"
	KindFunction  NodeKind = "function"
	KindClass     NodeKind = "class"
	KindInterface NodeKind = "interface"
	KindType      NodeKind = "type"
	KindEnum      NodeKind = "enum"
	KindVariable  NodeKind = "variable"
)

// EdgeType classifies a graph edge
type EdgeType string

const (
	EdgeImports  EdgeType = "imports"
	EdgeExports  EdgeType = "exports"
	EdgeCalls    EdgeType = "calls"
	EdgeExtends  EdgeType = "extends"
	EdgeContains EdgeType = "contains"
)

// FileDetail holds the fields only file nodes carry
type FileDetail struct {
	Language     string   `json:"language"`
	LineCount    int      `json:"lineCount"`
	ImportCount  int      `json:"importCount"`
	ExportCount  int      `json:"exportCount"`
	Contributors []string `json:"contributors,omitempty"`
}

// SymbolDetail holds the fields only symbol nodes carry
type SymbolDetail struct {
	Parameters    []string `json:"parameters,omitempty"`
	IsAsync       bool     `json:"isAsync,omitempty"`
	IsGenerator   bool     `json:"isGenerator,omitempty"`
	Extends       string   `json:"extends,omitempty"`
	Implements    []string `json:"implements,omitempty"`
	Documentation string   `json:"documentation,omitempty"`
}

// Node is a graph node. Exactly one of File/Symbol is set, matching Kind:
// file nodes carry File, every other kind carries Symbol. Analyzers switch
// on Kind and read the matching detail.
//
// A file node's Complexity is always the sum of the complexities of the
// symbol nodes sharing its FilePath; the builder maintains this, it is
// never measured independently.
type Node struct {
	ID         string   `json:"id"`
	Kind       NodeKind `json:"kind"`
	Name       string   `json:"name"`
	FilePath   string   `json:"filePath"`
	LineStart  int      `json:"lineStart"`
	LineEnd    int      `json:"lineEnd"`
	Exported   bool     `json:"exported"`
	Complexity int      `json:"complexity"`

	File   *FileDetail   `json:"file,omitempty"`
	Symbol *SymbolDetail `json:"symbol,omitempty"`
}

// IsFile reports whether the node is a file node
func (n *Node) IsFile() bool {
	return n.Kind == KindFile
}

// Span returns the number of lines the node covers
func (n *Node) Span() int {
	if n.LineEnd < n.LineStart {
		return 0
	}
	return n.LineEnd - n.LineStart + 1
}

// Edge is a directed graph edge. Endpoints are node IDs; import edges use
// the file-node IDs of both the importing and the resolved imported file
// (one canonical key scheme, chosen at edge creation).
type Edge struct {
	ID       string            `json:"id"`
	Source   string            `json:"source"`
	Target   string            `json:"target"`
	Type     EdgeType          `json:"type"`
	Weight   float64           `json:"weight,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Metadata describes one scan
type Metadata struct {
	ScanID         string         `json:"scanId"`
	ScannedAt      time.Time      `json:"scannedAt"`
	ScanDurationMs int64          `json:"scanDurationMs"`
	RootDir        string         `json:"rootDir"`
	FileCount      int            `json:"fileCount"`
	TotalLines     int            `json:"totalLines"`
	Languages      map[string]int `json:"languages"`
	NodeCount      int            `json:"nodeCount"`
	EdgeCount      int            `json:"edgeCount"`

	// Checksum is the blake2b-256 hex digest of the persisted graph bytes,
	// written to the metadata sidecar for corruption detection.
	Checksum string `json:"checksum,omitempty"`
}

// KnowledgeGraph is the persisted structural model of a scanned tree
type KnowledgeGraph struct {
	Version  string           `json:"version"`
	Metadata Metadata         `json:"metadata"`
	Nodes    map[string]*Node `json:"nodes"`
	Edges    []Edge           `json:"edges"`
}

// SyncCounts refreshes the metadata counts from the collections. Called
// before every save so persisted counts always match collection sizes.
func (g *KnowledgeGraph) SyncCounts() {
	g.Metadata.NodeCount = len(g.Nodes)
	g.Metadata.EdgeCount = len(g.Edges)
}
