// Package complexity aggregates per-symbol cyclomatic complexity recorded
// in the graph into repository-level reports and refactor targets. It never
// measures complexity itself; extractors did that at scan time.
package complexity

import (
	"fmt"
	"path"
	"sort"

	"specter/internal/config"
	"specter/internal/graph"
)

// Category buckets a complexity value against the configured thresholds
type Category string

const (
	Low      Category = "low"
	Medium   Category = "medium"
	High     Category = "high"
	VeryHigh Category = "veryHigh"
)

// Emoji returns the marker used in human output
func (c Category) Emoji() string {
	switch c {
	case Low:
		return "🟢"
	case Medium:
		return "🟡"
	case High:
		return "🟠"
	default:
		return "🔴"
	}
}

// Analyzer categorizes and aggregates graph complexity
type Analyzer struct {
	thresholds config.ComplexityConfig
}

// New creates an analyzer with the given thresholds
func New(thresholds config.ComplexityConfig) *Analyzer {
	return &Analyzer{thresholds: thresholds}
}

// Categorize buckets a single complexity value. The buckets are gap-free:
// every value at or below Low is low, every value above High is veryHigh.
func (a *Analyzer) Categorize(value int) Category {
	switch {
	case value <= a.thresholds.Low:
		return Low
	case value <= a.thresholds.Medium:
		return Medium
	case value <= a.thresholds.High:
		return High
	default:
		return VeryHigh
	}
}

// SymbolEntry is one symbol in a complexity report
type SymbolEntry struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	FilePath   string   `json:"filePath"`
	LineStart  int      `json:"lineStart"`
	Complexity int      `json:"complexity"`
	Category   Category `json:"category"`
}

// DirectoryRollup aggregates complexity for one directory
type DirectoryRollup struct {
	Directory       string  `json:"directory"`
	FileCount       int     `json:"fileCount"`
	SymbolCount     int     `json:"symbolCount"`
	TotalComplexity int     `json:"totalComplexity"`
	AvgComplexity   float64 `json:"avgComplexity"`
}

// Report is the repository-level complexity report
type Report struct {
	SymbolCount     int               `json:"symbolCount"`
	TotalComplexity int               `json:"totalComplexity"`
	AvgComplexity   float64           `json:"avgComplexity"`
	MaxComplexity   int               `json:"maxComplexity"`
	Distribution    map[Category]int  `json:"distribution"`
	TopSymbols      []SymbolEntry     `json:"topSymbols"`
	Directories     []DirectoryRollup `json:"directories"`
}

// Analyze builds the repository report from the graph's symbol nodes.
// File nodes never enter the averages or the distribution; their
// complexity is already the sum of their symbols and would double-count.
// With includeFiles set they do join the ranked TopSymbols list, so a
// file whose complexity is spread across many modest symbols still
// surfaces.
func (a *Analyzer) Analyze(g *graph.KnowledgeGraph, topN int, includeFiles bool) *Report {
	report := &Report{
		Distribution: map[Category]int{Low: 0, Medium: 0, High: 0, VeryHigh: 0},
	}

	symbols := g.SymbolNodes()
	dirs := make(map[string]*DirectoryRollup)
	dirFiles := make(map[string]map[string]bool)

	for _, n := range symbols {
		report.SymbolCount++
		report.TotalComplexity += n.Complexity
		if n.Complexity > report.MaxComplexity {
			report.MaxComplexity = n.Complexity
		}
		report.Distribution[a.Categorize(n.Complexity)]++

		dir := path.Dir(n.FilePath)
		roll, ok := dirs[dir]
		if !ok {
			roll = &DirectoryRollup{Directory: dir}
			dirs[dir] = roll
			dirFiles[dir] = make(map[string]bool)
		}
		roll.SymbolCount++
		roll.TotalComplexity += n.Complexity
		dirFiles[dir][n.FilePath] = true

		report.TopSymbols = append(report.TopSymbols, SymbolEntry{
			Name:       n.Name,
			Kind:       string(n.Kind),
			FilePath:   n.FilePath,
			LineStart:  n.LineStart,
			Complexity: n.Complexity,
			Category:   a.Categorize(n.Complexity),
		})
	}

	if report.SymbolCount > 0 {
		report.AvgComplexity = float64(report.TotalComplexity) / float64(report.SymbolCount)
	}

	if includeFiles {
		for _, n := range g.FileNodes() {
			report.TopSymbols = append(report.TopSymbols, SymbolEntry{
				Name:       n.Name,
				Kind:       string(n.Kind),
				FilePath:   n.FilePath,
				LineStart:  n.LineStart,
				Complexity: n.Complexity,
				Category:   a.Categorize(n.Complexity),
			})
		}
	}

	sort.Slice(report.TopSymbols, func(i, j int) bool {
		if report.TopSymbols[i].Complexity != report.TopSymbols[j].Complexity {
			return report.TopSymbols[i].Complexity > report.TopSymbols[j].Complexity
		}
		return report.TopSymbols[i].FilePath < report.TopSymbols[j].FilePath
	})
	if topN > 0 && len(report.TopSymbols) > topN {
		report.TopSymbols = report.TopSymbols[:topN]
	}

	for dir, roll := range dirs {
		roll.FileCount = len(dirFiles[dir])
		if roll.SymbolCount > 0 {
			roll.AvgComplexity = float64(roll.TotalComplexity) / float64(roll.SymbolCount)
		}
		report.Directories = append(report.Directories, *roll)
	}
	sort.Slice(report.Directories, func(i, j int) bool {
		if report.Directories[i].TotalComplexity != report.Directories[j].TotalComplexity {
			return report.Directories[i].TotalComplexity > report.Directories[j].TotalComplexity
		}
		return report.Directories[i].Directory < report.Directories[j].Directory
	})

	return report
}

// RefactorPriority ranks a refactor target
type RefactorPriority string

const (
	PriorityHigh   RefactorPriority = "high"
	PriorityMedium RefactorPriority = "medium"
)

// longFunctionSpan is the line span beyond which a symbol is flagged as a
// long function regardless of its complexity.
const longFunctionSpan = 50

// RefactorTarget is one symbol worth restructuring
type RefactorTarget struct {
	Symbol       SymbolEntry      `json:"symbol"`
	Priority     RefactorPriority `json:"priority"`
	LongFunction bool             `json:"longFunction"`
	Span         int              `json:"span"`
	Suggestion   string           `json:"suggestion"`
}

// RefactorTargets lists symbols above the medium threshold plus long
// functions, highest priority first.
func (a *Analyzer) RefactorTargets(g *graph.KnowledgeGraph, limit int) []RefactorTarget {
	var targets []RefactorTarget

	for _, n := range g.SymbolNodes() {
		span := n.Span()
		overHigh := n.Complexity > a.thresholds.High
		overMedium := n.Complexity > a.thresholds.Medium
		long := span > longFunctionSpan

		if !overMedium && !long {
			continue
		}

		target := RefactorTarget{
			Symbol: SymbolEntry{
				Name:       n.Name,
				Kind:       string(n.Kind),
				FilePath:   n.FilePath,
				LineStart:  n.LineStart,
				Complexity: n.Complexity,
				Category:   a.Categorize(n.Complexity),
			},
			LongFunction: long,
			Span:         span,
		}
		switch {
		case overHigh:
			target.Priority = PriorityHigh
			target.Suggestion = fmt.Sprintf("Break %s into smaller functions; complexity %d exceeds %d", n.Name, n.Complexity, a.thresholds.High)
		case overMedium:
			target.Priority = PriorityMedium
			target.Suggestion = fmt.Sprintf("Simplify branching in %s; complexity %d exceeds %d", n.Name, n.Complexity, a.thresholds.Medium)
		default:
			target.Priority = PriorityMedium
			target.Suggestion = fmt.Sprintf("Split %s; it spans %d lines", n.Name, span)
		}
		targets = append(targets, target)
	}

	sort.Slice(targets, func(i, j int) bool {
		pi, pj := targets[i].Priority == PriorityHigh, targets[j].Priority == PriorityHigh
		if pi != pj {
			return pi
		}
		if targets[i].Symbol.Complexity != targets[j].Symbol.Complexity {
			return targets[i].Symbol.Complexity > targets[j].Symbol.Complexity
		}
		return targets[i].Symbol.FilePath < targets[j].Symbol.FilePath
	})
	if limit > 0 && len(targets) > limit {
		targets = targets[:limit]
	}
	return targets
}
