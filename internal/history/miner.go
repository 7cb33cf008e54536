package history

import (
	"bufio"
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"specter/internal/gitexec"
	"specter/internal/logging"
	"specter/internal/storage"
)

// Options bounds mining work
type Options struct {
	WindowDays          int
	MaxCommitsPerFile   int
	CoChangeCommits     int
	MinCouplingStrength float64
	CacheTTL            time.Duration
}

// DefaultOptions returns the default mining bounds
func DefaultOptions() Options {
	return Options{
		WindowDays:          365,
		MaxCommitsPerFile:   50,
		CoChangeCommits:     50,
		MinCouplingStrength: 0.25,
		CacheTTL:            15 * time.Minute,
	}
}

// Miner executes history queries through a bounded git runner
type Miner struct {
	runner *gitexec.Runner
	cache  *storage.DB // optional; nil disables caching
	opts   Options
	logger *logging.Logger
}

// NewMiner creates a miner. cache may be nil.
func NewMiner(runner *gitexec.Runner, cache *storage.DB, opts Options, logger *logging.Logger) *Miner {
	if opts.MaxCommitsPerFile <= 0 {
		opts.MaxCommitsPerFile = DefaultOptions().MaxCommitsPerFile
	}
	if opts.CoChangeCommits <= 0 {
		opts.CoChangeCommits = DefaultOptions().CoChangeCommits
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = DefaultOptions().WindowDays
	}
	return &Miner{runner: runner, cache: cache, opts: opts, logger: logger}
}

// Available reports whether the working directory has git history
func (m *Miner) Available(ctx context.Context) bool {
	return m.runner.IsRepo(ctx)
}

// FileHistory mines ownership and churn for one file, capped at the N most
// recent commits. Failures yield an empty history, never an error.
func (m *Miner) FileHistory(ctx context.Context, filePath string) *FileHistory {
	empty := &FileHistory{FilePath: filePath, Contributors: map[string]Contribution{}}

	head := m.runner.Head(ctx)
	if head == "" {
		return empty
	}

	if m.cache != nil {
		var cached FileHistory
		if hit, err := m.cache.GetFileHistory(filePath, head, m.opts.CacheTTL, &cached); err == nil && hit {
			return &cached
		}
	}

	res := m.runner.Run(ctx,
		"log",
		"-n", strconv.Itoa(m.opts.MaxCommitsPerFile),
		"--numstat",
		"--follow",
		"--format=%H|%an|%ae|%aI",
		"--",
		filePath,
	)
	if res.Err != nil {
		return empty
	}

	commits := parseNumstatLog(res.Stdout)
	hist := aggregateFileHistory(filePath, commits)

	if m.cache != nil {
		if err := m.cache.PutFileHistory(filePath, head, hist); err != nil {
			m.logger.Debug("history cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return hist
}

// MineAll mines ownership for every file in one windowed pass. One git log
// call regardless of repository size; per-file caps do not apply here.
func (m *Miner) MineAll(ctx context.Context) map[string]*FileHistory {
	result := make(map[string]*FileHistory)

	res := m.runner.Run(ctx,
		"log",
		fmt.Sprintf("--since=%d days ago", m.opts.WindowDays),
		"--numstat",
		"--format=%H|%an|%ae|%aI",
	)
	if res.Err != nil {
		return result
	}

	perFile := make(map[string][]commit)
	for _, c := range parseNumstatLog(res.Stdout) {
		for _, fc := range c.Files {
			sub := c
			sub.Files = []fileChange{fc}
			perFile[fc.Path] = append(perFile[fc.Path], sub)
		}
	}
	for filePath, commits := range perFile {
		result[filePath] = aggregateFileHistory(filePath, commits)
	}
	return result
}

// RepoStats aggregates repo-wide totals. Unavailable history yields
// Available=false with zeroed counts.
func (m *Miner) RepoStats(ctx context.Context) *RepoStats {
	stats := &RepoStats{}
	if !m.Available(ctx) {
		return stats
	}

	countRes := m.runner.Run(ctx, "rev-list", "--count", "HEAD")
	if countRes.Err != nil {
		return stats
	}
	total, err := strconv.Atoi(strings.TrimSpace(countRes.Stdout))
	if err != nil {
		return stats
	}

	datesRes := m.runner.Run(ctx, "log", "--format=%aI|%ae")
	lines := datesRes.Lines()
	if datesRes.Err != nil || len(lines) == 0 {
		return stats
	}

	emails := make(map[string]bool)
	for _, line := range lines {
		parts := strings.SplitN(line, "|", 2)
		if len(parts) == 2 {
			emails[strings.ToLower(parts[1])] = true
		}
	}

	newest, _ := time.Parse(time.RFC3339, strings.SplitN(lines[0], "|", 2)[0])
	oldest, _ := time.Parse(time.RFC3339, strings.SplitN(lines[len(lines)-1], "|", 2)[0])

	stats.Available = true
	stats.TotalCommits = total
	stats.Contributors = len(emails)
	stats.FirstCommit = oldest
	stats.LastCommit = newest
	return stats
}

// ChurnCounts returns commit counts per file within the mining window
func (m *Miner) ChurnCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int)

	res := m.runner.Run(ctx,
		"log",
		fmt.Sprintf("--since=%d days ago", m.opts.WindowDays),
		"--name-only",
		"--format=",
	)
	if res.Err != nil {
		return counts
	}

	for _, line := range res.Lines() {
		counts[line]++
	}
	return counts
}

// CoChanges mines change coupling for a target file. It walks the target's
// last K commits, fetches each commit's full changed-file set (one batched
// call per commit), and tallies co-occurrence. importPairs, keyed by
// graph.PairKey-compatible keys, marks couplings backed by an import edge.
// A single commit's failure (e.g. a root commit) is skipped, not fatal.
func (m *Miner) CoChanges(ctx context.Context, target string, importPairs map[string]bool, pairKey func(a, b string) string) []ChangeCoupling {
	head := m.runner.Head(ctx)
	if head == "" {
		return nil
	}

	if m.cache != nil {
		var cached []ChangeCoupling
		if hit, err := m.cache.GetCoChanges(target, head, m.opts.CacheTTL, &cached); err == nil && hit {
			return cached
		}
	}

	hashesRes := m.runner.Run(ctx,
		"log",
		"-n", strconv.Itoa(m.opts.CoChangeCommits),
		"--format=%H",
		"--follow",
		"--",
		target,
	)
	hashes := hashesRes.Lines()
	if hashesRes.Err != nil || len(hashes) == 0 {
		return nil
	}

	batch := make([][]string, len(hashes))
	for i, h := range hashes {
		batch[i] = []string{"show", "--name-only", "--format=", h}
	}
	results := m.runner.RunBatch(ctx, batch)

	coCounts := make(map[string]int)
	skipped := 0
	for _, res := range results {
		if res.Err != nil {
			skipped++
			continue
		}
		seen := make(map[string]bool)
		for _, file := range res.Lines() {
			if file == target || seen[file] {
				continue
			}
			seen[file] = true
			coCounts[file]++
		}
	}
	if skipped > 0 {
		m.logger.Debug("skipped failing commits during coupling scan", map[string]interface{}{
			"target":  target,
			"skipped": skipped,
		})
	}

	total := len(hashes)
	couplings := make([]ChangeCoupling, 0, len(coCounts))
	for file, shared := range coCounts {
		if !isSourceFile(file) {
			continue
		}
		strength := Strength(shared, total)
		if strength < m.opts.MinCouplingStrength {
			continue
		}
		hasImport := false
		if importPairs != nil && pairKey != nil {
			hasImport = importPairs[pairKey(target, file)]
		}
		couplings = append(couplings, ChangeCoupling{
			File1:                 target,
			File2:                 file,
			SharedCommits:         shared,
			TotalCommits:          total,
			CouplingStrength:      strength,
			HasImportRelationship: hasImport,
		})
	}

	sort.Slice(couplings, func(i, j int) bool {
		if couplings[i].CouplingStrength != couplings[j].CouplingStrength {
			return couplings[i].CouplingStrength > couplings[j].CouplingStrength
		}
		return couplings[i].File2 < couplings[j].File2
	})

	if m.cache != nil {
		if err := m.cache.PutCoChanges(target, head, couplings); err != nil {
			m.logger.Debug("coupling cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return couplings
}

// CollectDiff returns the changed-file list between base and the working
// tree, suitable for the risk scorer. An empty base diffs against HEAD.
func (m *Miner) CollectDiff(ctx context.Context, base string) []DiffFile {
	if base == "" {
		base = "HEAD"
	}

	numstat := m.runner.Run(ctx, "diff", "--numstat", base)
	status := m.runner.Run(ctx, "diff", "--name-status", base)
	if numstat.Err != nil || status.Err != nil {
		return nil
	}

	statusByPath := make(map[string]string)
	for _, line := range status.Lines() {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		p := fields[len(fields)-1]
		switch fields[0][0] {
		case 'A':
			statusByPath[p] = "added"
		case 'D':
			statusByPath[p] = "deleted"
		case 'R':
			statusByPath[p] = "renamed"
		default:
			statusByPath[p] = "modified"
		}
	}

	var files []DiffFile
	for _, line := range numstat.Lines() {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		// Binary files report "-" counts.
		additions, _ := strconv.Atoi(fields[0])
		deletions, _ := strconv.Atoi(fields[1])
		p := fields[len(fields)-1]

		st := statusByPath[p]
		if st == "" {
			st = "modified"
		}
		files = append(files, DiffFile{
			Path:      p,
			Status:    st,
			Additions: additions,
			Deletions: deletions,
		})
	}
	return files
}

// parseNumstatLog parses `git log --numstat --format=%H|%an|%ae|%aI`
// output. Binary file rows ("-") are skipped; malformed lines are ignored
// rather than fatal.
func parseNumstatLog(output string) []commit {
	var commits []commit
	var current *commit

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if parts := strings.SplitN(line, "|", 4); len(parts) == 4 && isCommitHash(parts[0]) {
			if current != nil {
				commits = append(commits, *current)
			}
			ts, err := time.Parse(time.RFC3339, parts[3])
			if err != nil {
				ts = time.Time{}
			}
			current = &commit{
				Hash:      parts[0],
				Author:    parts[1],
				Email:     strings.ToLower(parts[2]),
				Timestamp: ts,
			}
			continue
		}

		if current == nil {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] == "-" || fields[1] == "-" {
			continue
		}
		additions, err1 := strconv.Atoi(fields[0])
		deletions, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			continue
		}
		current.Files = append(current.Files, fileChange{
			Path:      fields[len(fields)-1],
			Additions: additions,
			Deletions: deletions,
		})
	}
	if current != nil {
		commits = append(commits, *current)
	}
	return commits
}

// aggregateFileHistory folds parsed commits into per-contributor totals
func aggregateFileHistory(filePath string, commits []commit) *FileHistory {
	hist := &FileHistory{
		FilePath:     filePath,
		TotalCommits: len(commits),
		Contributors: make(map[string]Contribution),
	}

	for _, c := range commits {
		contrib := hist.Contributors[c.Email]
		contrib.Name = c.Author
		contrib.Email = c.Email
		contrib.Commits++
		for _, fc := range c.Files {
			contrib.LinesAdded += fc.Additions
			contrib.LinesRemoved += fc.Deletions
		}
		if c.Timestamp.After(contrib.LastCommit) {
			contrib.LastCommit = c.Timestamp
		}
		hist.Contributors[c.Email] = contrib

		if hist.FirstCommit.IsZero() || c.Timestamp.Before(hist.FirstCommit) {
			hist.FirstCommit = c.Timestamp
		}
		if c.Timestamp.After(hist.LastCommit) {
			hist.LastCommit = c.Timestamp
		}
	}
	return hist
}

// isCommitHash reports whether s looks like a full git object hash
func isCommitHash(s string) bool {
	if len(s) != 40 && len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

var sourceExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".mjs": true, ".cjs": true,
	".go": true, ".py": true, ".rs": true, ".java": true,
	".rb": true, ".kt": true, ".c": true, ".cpp": true, ".h": true,
}

// isSourceFile filters coupling results to code, dropping lockfiles,
// docs, and generated assets.
func isSourceFile(p string) bool {
	return sourceExtensions[path.Ext(p)]
}
