package history

import (
	"strings"
	"testing"
	"time"
)

const sampleLog = `0a1b2c3d4e5f60718293a4b5c6d7e8f901234567|Alice|ALICE@example.com|2026-07-01T10:00:00Z
12	4	src/server.ts
3	1	src/router.ts

89abcdef0123456789abcdef0123456789abcdef|Bob|bob@example.com|2026-07-02T11:30:00Z
-	-	assets/logo.png
7	2	src/server.ts

0123456789abcdef0123456789abcdef01234567|Alice|alice@example.com|2026-07-03T09:15:00Z
1	1	src/server.ts
`

func TestParseNumstatLog(t *testing.T) {
	commits := parseNumstatLog(sampleLog)
	if len(commits) != 3 {
		t.Fatalf("commits = %d, want 3", len(commits))
	}

	first := commits[0]
	if first.Author != "Alice" {
		t.Errorf("author = %q, want Alice", first.Author)
	}
	// Emails are lowercased so the same contributor aggregates once.
	if first.Email != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", first.Email)
	}
	if len(first.Files) != 2 {
		t.Errorf("files = %d, want 2", len(first.Files))
	}
	if first.Files[0].Additions != 12 || first.Files[0].Deletions != 4 {
		t.Errorf("numstat = %d/%d, want 12/4", first.Files[0].Additions, first.Files[0].Deletions)
	}

	// Binary rows ("-") are dropped.
	if len(commits[1].Files) != 1 {
		t.Errorf("binary row not skipped: files = %d, want 1", len(commits[1].Files))
	}

	wantTime := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	if !first.Timestamp.Equal(wantTime) {
		t.Errorf("timestamp = %v, want %v", first.Timestamp, wantTime)
	}
}

func TestParseNumstatLog_MalformedLines(t *testing.T) {
	// Garbage before the first header and malformed numstat rows are
	// ignored, never fatal.
	out := "not a header\n" + sampleLog + "x\ty\tsrc/huh.ts\n"
	commits := parseNumstatLog(out)
	if len(commits) != 3 {
		t.Errorf("commits = %d, want 3", len(commits))
	}
}

func TestIsCommitHash(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{strings.Repeat("a", 40), true},
		{strings.Repeat("0", 64), true},
		{"0a1b2c3d4e5f60718293a4b5c6d7e8f901234567", true},
		{strings.Repeat("a", 39), false},
		{strings.Repeat("G", 40), false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isCommitHash(tt.in); got != tt.want {
			t.Errorf("isCommitHash(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAggregateFileHistory(t *testing.T) {
	commits := parseNumstatLog(sampleLog)
	hist := aggregateFileHistory("src/server.ts", commits)

	if hist.TotalCommits != 3 {
		t.Errorf("TotalCommits = %d, want 3", hist.TotalCommits)
	}
	if len(hist.Contributors) != 2 {
		t.Fatalf("contributors = %d, want 2", len(hist.Contributors))
	}

	alice := hist.Contributors["alice@example.com"]
	if alice.Commits != 2 {
		t.Errorf("alice commits = %d, want 2", alice.Commits)
	}
	// 12+3 added and 4+1 removed in the first commit, 1/1 in the third.
	if alice.LinesAdded != 16 || alice.LinesRemoved != 6 {
		t.Errorf("alice lines = +%d/-%d, want +16/-6", alice.LinesAdded, alice.LinesRemoved)
	}

	if hist.FirstCommit.After(hist.LastCommit) {
		t.Error("FirstCommit after LastCommit")
	}
}

func TestWeighted(t *testing.T) {
	c := Contribution{Commits: 10, LinesAdded: 80, LinesRemoved: 20}
	if got := c.Weighted(); got != 20 {
		t.Errorf("Weighted() = %v, want 20", got)
	}
}

func TestTopContributor(t *testing.T) {
	hist := &FileHistory{Contributors: map[string]Contribution{
		"a@x.com": {Name: "A", Email: "a@x.com", Commits: 30},
		"b@x.com": {Name: "B", Email: "b@x.com", Commits: 10},
	}}
	top, share := hist.TopContributor()
	if top.Email != "a@x.com" {
		t.Errorf("top = %s, want a@x.com", top.Email)
	}
	if share != 0.75 {
		t.Errorf("share = %v, want 0.75", share)
	}
}

func TestContributorNames_WeightedOrder(t *testing.T) {
	hist := &FileHistory{Contributors: map[string]Contribution{
		"a@x.com": {Name: "A", Email: "a@x.com", Commits: 5},
		"b@x.com": {Name: "B", Email: "b@x.com", Commits: 30},
		"c@x.com": {Name: "C", Email: "c@x.com", Commits: 5},
	}}
	got := hist.ContributorNames()
	want := []string{"B", "A", "C"} // ties fall back to email order
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTopContributor_Empty(t *testing.T) {
	hist := &FileHistory{Contributors: map[string]Contribution{}}
	if _, share := hist.TopContributor(); share != 0 {
		t.Errorf("share = %v, want 0", share)
	}
}

func TestStrength(t *testing.T) {
	tests := []struct {
		shared, total int
		want          float64
	}{
		{0, 10, 0},
		{5, 10, 0.5},
		{10, 10, 1.0},
		{3, 0, 0},
		{12, 10, 1.0},
	}
	for _, tt := range tests {
		got := Strength(tt.shared, tt.total)
		if got != tt.want {
			t.Errorf("Strength(%d, %d) = %v, want %v", tt.shared, tt.total, got, tt.want)
		}
		if got < 0 || got > 1 {
			t.Errorf("Strength(%d, %d) = %v, outside [0,1]", tt.shared, tt.total, got)
		}
	}
}

func TestIsSourceFile(t *testing.T) {
	if !isSourceFile("src/a.ts") || !isSourceFile("pkg/b.go") {
		t.Error("source files not recognized")
	}
	if isSourceFile("package-lock.json") || isSourceFile("README.md") {
		t.Error("non-source files passed the filter")
	}
}
