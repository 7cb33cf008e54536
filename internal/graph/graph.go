package graph

import (
	"path"
	"sort"
	"strings"
)

// NormalizePath cleans an arbitrary path (diff output, older artifacts)
// into the canonical root-relative form edges use.
func NormalizePath(p string) string {
	return normalizeRel(p)
}

// FileNodes returns all file nodes sorted by path
func (g *KnowledgeGraph) FileNodes() []*Node {
	var files []*Node
	for _, n := range g.Nodes {
		if n.IsFile() {
			files = append(files, n)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].FilePath < files[j].FilePath })
	return files
}

// SymbolNodes returns all non-file nodes sorted by ID
func (g *KnowledgeGraph) SymbolNodes() []*Node {
	var symbols []*Node
	for _, n := range g.Nodes {
		if !n.IsFile() {
			symbols = append(symbols, n)
		}
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].ID < symbols[j].ID })
	return symbols
}

// FileNode looks up the file node for a path, tolerating .ts/.js extension
// variants from older artifacts or diff output.
func (g *KnowledgeGraph) FileNode(filePath string) (*Node, bool) {
	p := normalizeRel(filePath)
	if n, ok := g.Nodes[FileID(p)]; ok {
		return n, true
	}

	ext := path.Ext(p)
	if ext == "" {
		return nil, false
	}
	stem := strings.TrimSuffix(p, ext)
	for _, alt := range []string{".ts", ".tsx", ".js", ".jsx"} {
		if alt == ext {
			continue
		}
		if n, ok := g.Nodes[FileID(stem+alt)]; ok {
			return n, true
		}
	}
	return nil, false
}

// SymbolsInFile returns the symbol nodes declared in a file, sorted by
// line.
func (g *KnowledgeGraph) SymbolsInFile(filePath string) []*Node {
	p := normalizeRel(filePath)
	if n, ok := g.FileNode(p); ok {
		p = n.FilePath
	}

	var symbols []*Node
	for _, n := range g.Nodes {
		if !n.IsFile() && n.FilePath == p {
			symbols = append(symbols, n)
		}
	}
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].LineStart != symbols[j].LineStart {
			return symbols[i].LineStart < symbols[j].LineStart
		}
		return symbols[i].ID < symbols[j].ID
	})
	return symbols
}

// importers builds the reverse import adjacency: imported file node ID ->
// importing file node IDs.
func (g *KnowledgeGraph) importers() map[string][]string {
	rev := make(map[string][]string)
	for _, e := range g.Edges {
		if e.Type == EdgeImports {
			rev[e.Target] = append(rev[e.Target], e.Source)
		}
	}
	return rev
}

// Dependents returns the file paths that transitively import filePath.
// The import graph is a plain directed multigraph and may contain cycles;
// traversal is a bounded BFS with a visited set.
func (g *KnowledgeGraph) Dependents(filePath string) []string {
	start, ok := g.FileNode(filePath)
	if !ok {
		return nil
	}

	rev := g.importers()
	visited := map[string]bool{start.ID: true}
	queue := []string{start.ID}
	var result []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dep := range rev[current] {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			queue = append(queue, dep)
			if n, ok := g.Nodes[dep]; ok {
				result = append(result, n.FilePath)
			}
		}
	}

	sort.Strings(result)
	return result
}

// ImportPairs returns an unordered-pair set of files connected by an
// import edge in either direction, keyed by PairKey. Coupling analysis
// uses it to separate expected from hidden coupling.
func (g *KnowledgeGraph) ImportPairs() map[string]bool {
	pairs := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Type != EdgeImports {
			continue
		}
		src, srcOK := g.Nodes[e.Source]
		dst, dstOK := g.Nodes[e.Target]
		if !srcOK || !dstOK {
			continue
		}
		pairs[PairKey(src.FilePath, dst.FilePath)] = true
	}
	return pairs
}

// PairKey returns the canonical unordered key for a file pair
func PairKey(a, b string) string {
	a = normalizeRel(a)
	b = normalizeRel(b)
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}
