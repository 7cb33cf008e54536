package store

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"specter/internal/config"
	"specter/internal/graph"
)

// Staleness reports whether the persisted graph predates the working tree
type Staleness struct {
	Stale       bool   `json:"stale"`
	ChangedFile string `json:"changedFile,omitempty"`
	Reason      string `json:"reason"`
}

// alwaysSkipped are directory names never considered for staleness,
// gitignored or not.
var alwaysSkipped = map[string]bool{
	".git":         true,
	Dir:            true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// IsStale compares source file mtimes against the persisted scan timestamp.
// A repo with no persisted graph is stale by definition. Paths matched by
// the root .gitignore or the manifest's scan.ignore prefixes are skipped.
func (s *Store) IsStale(rootDir string, manifest *config.Manifest) (Staleness, error) {
	meta, ok := s.LoadMetadata(rootDir)
	if !ok {
		return Staleness{Stale: true, Reason: "no graph has been persisted"}, nil
	}

	ignored, _ := gitignore.CompileIgnoreFile(filepath.Join(rootDir, ".gitignore"))

	result := Staleness{Reason: "graph is current"}
	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries cannot invalidate the graph
		}
		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if alwaysSkipped[d.Name()] || isManifestIgnored(rel, manifest) {
				return filepath.SkipDir
			}
			if ignored != nil && ignored.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !graph.IsSourcePath(rel) || isManifestIgnored(rel, manifest) {
			return nil
		}
		if ignored != nil && ignored.MatchesPath(rel) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if info.ModTime().After(meta.ScannedAt) {
			result = Staleness{
				Stale:       true,
				ChangedFile: rel,
				Reason:      "source files changed since last scan",
			}
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return Staleness{}, err
	}
	return result, nil
}

func isManifestIgnored(rel string, manifest *config.Manifest) bool {
	if manifest == nil {
		return false
	}
	for _, prefix := range manifest.Scan.Ignore {
		prefix = strings.TrimSuffix(filepath.ToSlash(prefix), "/")
		if prefix == "" {
			continue
		}
		if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
			return true
		}
	}
	return false
}
