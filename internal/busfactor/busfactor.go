// Package busfactor estimates knowledge concentration per area of the
// repository. An area's bus factor is the number of contributors whose
// weighted contribution share reaches 20%, floored at one.
package busfactor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"specter/internal/config"
	"specter/internal/graph"
	"specter/internal/history"
)

// shareThreshold is the weighted share at which a contributor counts
// toward an area's bus factor.
const shareThreshold = 0.20

// coreAreaNames are area names treated as core when ranking criticality,
// in addition to any the manifest declares.
var coreAreaNames = map[string]bool{
	"core":     true,
	"lib":      true,
	"src":      true,
	"server":   true,
	"api":      true,
	"auth":     true,
	"db":       true,
	"database": true,
}

// Criticality ranks how urgent an area's knowledge concentration is
type Criticality string

const (
	CriticalityCritical Criticality = "critical"
	CriticalityHigh     Criticality = "high"
	CriticalityMedium   Criticality = "medium"
	CriticalityLow      Criticality = "low"
)

// ContributorShare is one contributor's share of an area
type ContributorShare struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Share float64 `json:"share"`
}

// Area is the ownership picture for one repository area
type Area struct {
	Name         string             `json:"name"`
	FileCount    int                `json:"fileCount"`
	LineCount    int                `json:"lineCount"`
	BusFactor    int                `json:"busFactor"`
	Contributors []ContributorShare `json:"contributors"`
	Criticality  Criticality        `json:"criticality"`
	Remediation  string             `json:"remediation,omitempty"`
}

// Report is the repository-wide bus factor report
type Report struct {
	Available        bool     `json:"available"`
	OverallBusFactor int      `json:"overallBusFactor"`
	Areas            []Area   `json:"areas"`
	Insights         []string `json:"insights,omitempty"`
}

// Analyzer computes bus factor reports
type Analyzer struct {
	manifest *config.Manifest
}

// New creates an analyzer. The manifest may be nil.
func New(manifest *config.Manifest) *Analyzer {
	return &Analyzer{manifest: manifest}
}

// AreaOf maps a file path to its area: the top-level directory, or
// src/<subdir> for files under src so a conventional layout still splits
// into meaningful areas. Root-level files share the "." area.
func AreaOf(filePath string) string {
	parts := strings.Split(filePath, "/")
	if len(parts) == 1 {
		return "."
	}
	if parts[0] == "src" && len(parts) > 2 {
		return "src/" + parts[1]
	}
	return parts[0]
}

// Analyze builds the report from mined per-file histories. When the
// repository has no usable history the report is marked unavailable and
// carries no areas; callers render that state instead of failing.
func (a *Analyzer) Analyze(g *graph.KnowledgeGraph, histories map[string]*history.FileHistory, stats history.RepoStats) *Report {
	if !stats.Available || len(histories) == 0 {
		return &Report{
			Available: false,
			Insights:  []string{"No git history available; bus factor cannot be estimated"},
		}
	}

	type areaAccum struct {
		files   int
		lines   int
		byEmail map[string]history.Contribution
	}
	accums := make(map[string]*areaAccum)

	for _, n := range g.FileNodes() {
		h, ok := histories[n.FilePath]
		if !ok {
			continue
		}
		area := AreaOf(n.FilePath)
		acc, ok := accums[area]
		if !ok {
			acc = &areaAccum{byEmail: make(map[string]history.Contribution)}
			accums[area] = acc
		}
		acc.files++
		acc.lines += n.File.LineCount
		for email, c := range h.Contributors {
			acc.byEmail[email] = mergeContribution(acc.byEmail[email], c)
		}
	}

	report := &Report{Available: true}

	for name, acc := range accums {
		area := Area{
			Name:      name,
			FileCount: acc.files,
			LineCount: acc.lines,
			BusFactor: busFactor(acc.byEmail),
		}
		area.Contributors = topShares(acc.byEmail, 5)
		area.Criticality = a.criticality(area)
		area.Remediation = remediation(area)
		report.Areas = append(report.Areas, area)
	}

	sort.Slice(report.Areas, func(i, j int) bool {
		ri, rj := criticalityRank(report.Areas[i].Criticality), criticalityRank(report.Areas[j].Criticality)
		if ri != rj {
			return ri < rj
		}
		return report.Areas[i].Name < report.Areas[j].Name
	})

	report.OverallBusFactor = overallBusFactor(report.Areas)
	report.Insights = buildInsights(report)
	return report
}

// overallBusFactor is the line-count-weighted average of per-area bus
// factors, so a small side directory cannot mask concentration in the
// bulk of the code.
func overallBusFactor(areas []Area) int {
	var weighted, lines float64
	for _, a := range areas {
		weighted += float64(a.BusFactor) * float64(a.LineCount)
		lines += float64(a.LineCount)
	}
	if lines == 0 {
		if len(areas) > 0 {
			return 1
		}
		return 0
	}
	return int(math.Round(weighted / lines))
}

// busFactor counts contributors whose weighted share reaches the
// threshold, floored at one so an area with any history never reads zero.
func busFactor(contributors map[string]history.Contribution) int {
	var total float64
	for _, c := range contributors {
		total += c.Weighted()
	}
	if total == 0 {
		return 1
	}
	count := 0
	for _, c := range contributors {
		if c.Weighted()/total >= shareThreshold {
			count++
		}
	}
	if count < 1 {
		count = 1
	}
	return count
}

func topShares(contributors map[string]history.Contribution, limit int) []ContributorShare {
	var total float64
	for _, c := range contributors {
		total += c.Weighted()
	}
	if total == 0 {
		return nil
	}

	shares := make([]ContributorShare, 0, len(contributors))
	for _, c := range contributors {
		shares = append(shares, ContributorShare{
			Name:  c.Name,
			Email: c.Email,
			Share: c.Weighted() / total,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Share != shares[j].Share {
			return shares[i].Share > shares[j].Share
		}
		return shares[i].Email < shares[j].Email
	})
	if len(shares) > limit {
		shares = shares[:limit]
	}
	return shares
}

func (a *Analyzer) isCore(name string) bool {
	base := strings.TrimPrefix(name, "src/")
	if coreAreaNames[name] || coreAreaNames[base] {
		return true
	}
	if a.manifest != nil {
		for _, core := range a.manifest.BusFactor.CoreAreas {
			if name == core || base == core {
				return true
			}
		}
	}
	return false
}

func (a *Analyzer) criticality(area Area) Criticality {
	topShare := 0.0
	if len(area.Contributors) > 0 {
		topShare = area.Contributors[0].Share
	}
	switch {
	case area.BusFactor == 1 && topShare >= 0.80:
		return CriticalityCritical
	case area.BusFactor == 1:
		return CriticalityHigh
	case area.BusFactor == 2 && a.isCore(area.Name):
		return CriticalityHigh
	case area.BusFactor <= 2 && area.FileCount >= 10:
		return CriticalityMedium
	default:
		return CriticalityLow
	}
}

func criticalityRank(c Criticality) int {
	switch c {
	case CriticalityCritical:
		return 0
	case CriticalityHigh:
		return 1
	case CriticalityMedium:
		return 2
	default:
		return 3
	}
}

func remediation(area Area) string {
	switch area.Criticality {
	case CriticalityCritical:
		top := "the sole owner"
		if len(area.Contributors) > 0 {
			top = area.Contributors[0].Name
		}
		return fmt.Sprintf("Pair a second contributor with %s on %s and require reviews from outside the area", top, area.Name)
	case CriticalityHigh:
		return fmt.Sprintf("Schedule knowledge-sharing sessions for %s and rotate code review duty", area.Name)
	case CriticalityMedium:
		return fmt.Sprintf("Encourage cross-area contributions to %s before the concentration grows", area.Name)
	default:
		return ""
	}
}

func buildInsights(r *Report) []string {
	var insights []string
	critical := 0
	for _, area := range r.Areas {
		if area.Criticality == CriticalityCritical {
			critical++
		}
	}
	if critical > 0 {
		insights = append(insights, fmt.Sprintf("%d area(s) depend on a single contributor holding 80%% or more of the work", critical))
	}
	if r.OverallBusFactor <= 2 {
		insights = append(insights, fmt.Sprintf("Repository-wide bus factor is %d; losing one or two people would stall most areas", r.OverallBusFactor))
	}
	return insights
}

func mergeContribution(into, from history.Contribution) history.Contribution {
	if into.Email == "" {
		into.Name = from.Name
		into.Email = from.Email
	}
	into.Commits += from.Commits
	into.LinesAdded += from.LinesAdded
	into.LinesRemoved += from.LinesRemoved
	if from.LastCommit.After(into.LastCommit) {
		into.LastCommit = from.LastCommit
	}
	return into
}
