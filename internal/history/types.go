// Package history mines bounded, failure-tolerant signal from git history:
// per-file ownership, churn, repo-wide stats, change coupling, and diff
// file lists. Every query degrades to an empty result when git is
// unavailable or a single call fails; analyzers never see an exception
// from mining.
package history

import (
	"sort"
	"time"
)

// Contribution aggregates one contributor's activity on a file
type Contribution struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Commits      int       `json:"commits"`
	LinesAdded   int       `json:"linesAdded"`
	LinesRemoved int       `json:"linesRemoved"`
	LastCommit   time.Time `json:"lastCommit"`
}

// Weighted returns the weighted contribution score:
// commits + (added+removed)/10.
func (c Contribution) Weighted() float64 {
	return float64(c.Commits) + float64(c.LinesAdded+c.LinesRemoved)/10
}

// FileHistory is the mined history for a single file
type FileHistory struct {
	FilePath     string                  `json:"filePath"`
	TotalCommits int                     `json:"totalCommits"`
	Contributors map[string]Contribution `json:"contributors"` // keyed by lowercased email
	FirstCommit  time.Time               `json:"firstCommit,omitempty"`
	LastCommit   time.Time               `json:"lastCommit,omitempty"`
}

// TopContributor returns the contributor with the highest weighted score
// and that contributor's share of the file's total weighted score.
func (h *FileHistory) TopContributor() (Contribution, float64) {
	var top Contribution
	var topScore, total float64
	for _, c := range h.Contributors {
		score := c.Weighted()
		total += score
		if score > topScore || (score == topScore && c.Email < top.Email) {
			top = c
			topScore = score
		}
	}
	if total == 0 {
		return top, 0
	}
	return top, topScore / total
}

// ContributorNames lists contributor names by weighted score, highest
// first, ties broken by email so the order is deterministic.
func (h *FileHistory) ContributorNames() []string {
	contribs := make([]Contribution, 0, len(h.Contributors))
	for _, c := range h.Contributors {
		contribs = append(contribs, c)
	}
	sort.Slice(contribs, func(i, j int) bool {
		si, sj := contribs[i].Weighted(), contribs[j].Weighted()
		if si != sj {
			return si > sj
		}
		return contribs[i].Email < contribs[j].Email
	})
	names := make([]string, 0, len(contribs))
	for _, c := range contribs {
		names = append(names, c.Name)
	}
	return names
}

// RepoStats aggregates repository-wide history
type RepoStats struct {
	Available    bool      `json:"available"`
	TotalCommits int       `json:"totalCommits"`
	Contributors int       `json:"contributors"`
	FirstCommit  time.Time `json:"firstCommit,omitempty"`
	LastCommit   time.Time `json:"lastCommit,omitempty"`
}

// Strength returns the coupling strength of shared co-changes out of
// total commits touching the target. Always within [0,1]; exactly 1.0
// when every commit touched both files.
func Strength(shared, total int) float64 {
	if total <= 0 {
		return 0
	}
	if shared > total {
		shared = total
	}
	return float64(shared) / float64(total)
}

// ChangeCoupling is one co-change pairing against a target file
type ChangeCoupling struct {
	File1                 string  `json:"file1"`
	File2                 string  `json:"file2"`
	SharedCommits         int     `json:"sharedCommits"`
	TotalCommits          int     `json:"totalCommits"` // commits touching File1
	CouplingStrength      float64 `json:"couplingStrength"`
	HasImportRelationship bool    `json:"hasImportRelationship"`
}

// DiffFile is one entry of a diff file list fed to the risk scorer
type DiffFile struct {
	Path      string `json:"path"`
	Status    string `json:"status"` // added | modified | deleted | renamed
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// commit is one parsed git log record
type commit struct {
	Hash      string
	Author    string
	Email     string
	Timestamp time.Time
	Files     []fileChange
}

type fileChange struct {
	Path      string
	Additions int
	Deletions int
}
