package graph

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"specter/internal/extract"
	"specter/internal/logging"
)

// importCandidates are the suffixes tried, in order, when an import
// specifier has no extension.
var importCandidates = []string{
	".ts", ".tsx", ".js", ".jsx",
	"/index.ts", "/index.tsx", "/index.js", "/index.jsx",
}

// languageByExtension maps file extensions to language names for the
// metadata histogram.
var languageByExtension = map[string]string{
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".go":   "go",
	".py":   "python",
	".rs":   "rust",
	".java": "java",
	".rb":   "ruby",
	".kt":   "kotlin",
}

// IsSourcePath reports whether the path carries a recognized source
// extension. The store uses this to limit staleness checks to files that
// would have contributed extraction facts.
func IsSourcePath(p string) bool {
	_, ok := languageByExtension[path.Ext(p)]
	return ok
}

// Builder converts extraction facts into a knowledge graph
type Builder struct {
	rootDir string
	logger  *logging.Logger
}

// NewBuilder creates a builder for the given root directory
func NewBuilder(rootDir string, logger *logging.Logger) *Builder {
	return &Builder{rootDir: rootDir, logger: logger}
}

// Build constructs a knowledge graph from extractor output. Construction is
// deterministic: the same input yields the same node IDs and edges. Files
// the extractor failed on are skipped, never fatal.
func (b *Builder) Build(results []extract.FileExtraction) *KnowledgeGraph {
	start := time.Now()

	g := &KnowledgeGraph{
		Version: Version,
		Metadata: Metadata{
			ScanID:    uuid.NewString(),
			ScannedAt: start.UTC(),
			RootDir:   b.rootDir,
			Languages: map[string]int{},
		},
		Nodes: make(map[string]*Node),
	}

	sorted := make([]extract.FileExtraction, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FilePath < sorted[j].FilePath
	})

	// Known file set for import resolution; populated up front so edges
	// never depend on iteration order.
	known := make(map[string]bool, len(sorted))
	for _, fe := range sorted {
		if fe.ParseError == "" {
			known[normalizeRel(fe.FilePath)] = true
		}
	}

	// symbolByName collects symbol node IDs per name for extends/calls
	// resolution; only unambiguous names produce cross-file edges.
	symbolByName := make(map[string][]string)

	skipped := 0
	for _, fe := range sorted {
		if fe.ParseError != "" {
			skipped++
			b.logger.Warn("skipping unparsed file", map[string]interface{}{
				"file":  fe.FilePath,
				"error": fe.ParseError,
			})
			continue
		}
		b.addFile(g, fe, known, symbolByName)
	}

	b.linkSymbolEdges(g, sorted, symbolByName)

	g.Metadata.ScanDurationMs = time.Since(start).Milliseconds()
	g.SyncCounts()

	b.logger.Info("graph built", map[string]interface{}{
		"files":   g.Metadata.FileCount,
		"nodes":   g.Metadata.NodeCount,
		"edges":   g.Metadata.EdgeCount,
		"skipped": skipped,
	})
	return g
}

// addFile creates the file node, its symbol nodes, and its import, export
// and contains edges.
func (b *Builder) addFile(g *KnowledgeGraph, fe extract.FileExtraction, known map[string]bool, symbolByName map[string][]string) {
	filePath := normalizeRel(fe.FilePath)

	lang := fe.Language
	if lang == "" {
		lang = languageByExtension[path.Ext(filePath)]
	}
	if lang == "" {
		lang = "unknown"
	}

	fileNode := &Node{
		ID:        FileID(filePath),
		Kind:      KindFile,
		Name:      path.Base(filePath),
		FilePath:  filePath,
		LineStart: 1,
		LineEnd:   fe.LineCount,
		File: &FileDetail{
			Language:    lang,
			LineCount:   fe.LineCount,
			ImportCount: len(fe.Imports),
			ExportCount: len(fe.Exports),
		},
	}
	g.Nodes[fileNode.ID] = fileNode

	g.Metadata.FileCount++
	g.Metadata.TotalLines += fe.LineCount
	g.Metadata.Languages[lang]++

	for _, sym := range fe.Symbols {
		node := symbolNode(filePath, sym)
		// Duplicate declarations (overloads) collapse onto one ID; keep
		// the first, which carries the earliest line.
		if _, exists := g.Nodes[node.ID]; exists {
			continue
		}
		g.Nodes[node.ID] = node
		fileNode.Complexity += node.Complexity
		symbolByName[sym.Name] = append(symbolByName[sym.Name], node.ID)

		g.Edges = append(g.Edges, Edge{
			ID:     edgeID(fileNode.ID, node.ID, EdgeContains),
			Source: fileNode.ID,
			Target: node.ID,
			Type:   EdgeContains,
		})
	}

	for _, exp := range fe.Exports {
		targets := symbolByName[exp.Name]
		// Export edges only when the exported name is a symbol of this file.
		for _, id := range targets {
			if g.Nodes[id].FilePath != filePath {
				continue
			}
			g.Edges = append(g.Edges, Edge{
				ID:     edgeID(fileNode.ID, id, EdgeExports),
				Source: fileNode.ID,
				Target: id,
				Type:   EdgeExports,
				Metadata: map[string]string{
					"isDefault": fmt.Sprintf("%t", exp.IsDefault),
				},
			})
		}
	}

	for _, imp := range fe.Imports {
		resolved, ok := b.resolveImport(filePath, imp, known)
		if !ok {
			// External package or unresolvable specifier: no edge.
			continue
		}
		g.Edges = append(g.Edges, Edge{
			ID:     edgeID(fileNode.ID, FileID(resolved), EdgeImports),
			Source: fileNode.ID,
			Target: FileID(resolved),
			Type:   EdgeImports,
			Weight: 1,
			Metadata: map[string]string{
				"specifier": imp.Specifier,
			},
		})
	}
}

// linkSymbolEdges adds extends and calls edges once every node exists.
// Names that resolve to more than one symbol produce no edge; a wrong edge
// is worse than a missing one.
func (b *Builder) linkSymbolEdges(g *KnowledgeGraph, results []extract.FileExtraction, symbolByName map[string][]string) {
	for _, fe := range results {
		if fe.ParseError != "" {
			continue
		}
		filePath := normalizeRel(fe.FilePath)
		for _, sym := range fe.Symbols {
			sourceID := SymbolID(sym.Kind, filePath, sym.Name, sym.LineStart)
			if _, ok := g.Nodes[sourceID]; !ok {
				continue
			}

			if sym.Extends != "" {
				if targetID, ok := uniqueSymbol(symbolByName, sym.Extends); ok && targetID != sourceID {
					g.Edges = append(g.Edges, Edge{
						ID:     edgeID(sourceID, targetID, EdgeExtends),
						Source: sourceID,
						Target: targetID,
						Type:   EdgeExtends,
					})
				}
			}

			for _, callee := range sym.Calls {
				targetID, ok := uniqueSymbol(symbolByName, callee)
				if !ok || targetID == sourceID {
					continue
				}
				g.Edges = append(g.Edges, Edge{
					ID:     edgeID(sourceID, targetID, EdgeCalls),
					Source: sourceID,
					Target: targetID,
					Type:   EdgeCalls,
					Weight: 1,
				})
			}
		}
	}
}

// resolveImport resolves an import to a known root-relative file path.
// Relative specifiers resolve against the importing file's directory, then
// against the root. Extensionless specifiers try the fixed candidate list.
func (b *Builder) resolveImport(fromFile string, imp extract.Import, known map[string]bool) (string, bool) {
	if imp.ResolvedPath != "" {
		p := normalizeRel(imp.ResolvedPath)
		if match, ok := matchKnown(p, known); ok {
			return match, true
		}
		return "", false
	}

	spec := imp.Specifier
	if spec == "" {
		return "", false
	}

	var bases []string
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		bases = []string{path.Join(path.Dir(fromFile), spec)}
	} else if strings.HasPrefix(spec, "/") {
		bases = []string{normalizeRel(spec)}
	} else {
		// Bare specifier: usually an external package. A root-relative
		// match is still tried so root-anchored aliases resolve.
		bases = []string{normalizeRel(spec)}
	}

	for _, base := range bases {
		base = normalizeRel(base)
		if match, ok := matchKnown(base, known); ok {
			return match, true
		}
	}
	return "", false
}

// matchKnown checks a candidate path against the known file set, trying
// extension variants and index files for extensionless candidates, and
// sibling .ts/.js variants for explicit extensions.
func matchKnown(candidate string, known map[string]bool) (string, bool) {
	if known[candidate] {
		return candidate, true
	}

	ext := path.Ext(candidate)
	if ext == "" {
		for _, suffix := range importCandidates {
			if known[candidate+suffix] {
				return candidate + suffix, true
			}
		}
		return "", false
	}

	// Tolerate .js specifiers that compile from .ts sources and vice versa.
	stem := strings.TrimSuffix(candidate, ext)
	for _, alt := range []string{".ts", ".tsx", ".js", ".jsx"} {
		if alt != ext && known[stem+alt] {
			return stem + alt, true
		}
	}
	return "", false
}

// uniqueSymbol returns the node ID for name when exactly one symbol
// carries it.
func uniqueSymbol(symbolByName map[string][]string, name string) (string, bool) {
	ids := symbolByName[name]
	if len(ids) != 1 {
		return "", false
	}
	return ids[0], true
}

func symbolNode(filePath string, sym extract.Symbol) *Node {
	return &Node{
		ID:         SymbolID(sym.Kind, filePath, sym.Name, sym.LineStart),
		Kind:       NodeKind(sym.Kind),
		Name:       sym.Name,
		FilePath:   filePath,
		LineStart:  sym.LineStart,
		LineEnd:    sym.LineEnd,
		Exported:   sym.Exported,
		Complexity: sym.Complexity,
		Symbol: &SymbolDetail{
			Parameters:    sym.Parameters,
			IsAsync:       sym.IsAsync,
			IsGenerator:   sym.IsGenerator,
			Extends:       sym.Extends,
			Implements:    sym.Implements,
			Documentation: sym.Documentation,
		},
	}
}

// FileID returns the deterministic node ID for a file path
func FileID(filePath string) string {
	return "file:" + normalizeRel(filePath)
}

// SymbolID returns the deterministic node ID for a symbol
func SymbolID(kind extract.SymbolKind, filePath, name string, lineStart int) string {
	return fmt.Sprintf("%s:%s:%s:%d", kind, normalizeRel(filePath), name, lineStart)
}

func edgeID(source, target string, t EdgeType) string {
	return fmt.Sprintf("%s->%s:%s", source, target, t)
}

// normalizeRel cleans a path to forward-slash root-relative form
func normalizeRel(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	return p
}
