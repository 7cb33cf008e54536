// Package store persists and loads the knowledge graph under
// <root>/.specter. The full graph and a metadata sidecar are written
// separately so staleness and existence checks never load the full graph.
package store

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"specter/internal/errors"
	"specter/internal/graph"
	"specter/internal/logging"
)

const (
	// Dir is the storage directory name under the scanned root
	Dir = ".specter"

	graphFile    = "graph.json"
	metadataFile = "metadata.json"
)

// Store reads and writes persisted graphs
type Store struct {
	logger *logging.Logger
}

// New creates a store
func New(logger *logging.Logger) *Store {
	return &Store{logger: logger}
}

// Path returns the storage directory for a root
func Path(rootDir string) string {
	return filepath.Join(rootDir, Dir)
}

// Save writes the full graph and its metadata sidecar, and ensures the
// storage directory is gitignored. Counts are synced before writing so
// persisted counts always match collection sizes.
func (s *Store) Save(g *graph.KnowledgeGraph, rootDir string) error {
	dir := Path(rootDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New(errors.InternalError, "failed to create storage directory", err)
	}

	g.SyncCounts()

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return errors.New(errors.InternalError, "failed to encode graph", err)
	}

	sum := blake2b.Sum256(data)
	g.Metadata.Checksum = hex.EncodeToString(sum[:])

	if err := os.WriteFile(filepath.Join(dir, graphFile), data, 0644); err != nil {
		return errors.New(errors.InternalError, "failed to write graph", err)
	}

	meta, err := json.MarshalIndent(g.Metadata, "", "  ")
	if err != nil {
		return errors.New(errors.InternalError, "failed to encode metadata", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), meta, 0644); err != nil {
		return errors.New(errors.InternalError, "failed to write metadata", err)
	}

	if err := ensureGitignored(rootDir); err != nil {
		// A missing gitignore entry is an inconvenience, not a failed save.
		s.logger.Warn("could not update .gitignore", map[string]interface{}{"error": err.Error()})
	}

	s.logger.Info("graph saved", map[string]interface{}{
		"nodes": g.Metadata.NodeCount,
		"edges": g.Metadata.EdgeCount,
		"path":  filepath.Join(dir, graphFile),
	})
	return nil
}

// Load reads the persisted graph. Missing, empty, or corrupt artifacts all
// return absent (ok=false) rather than an error; the error return is
// reserved for unexpected I/O failures.
func (s *Store) Load(rootDir string) (*graph.KnowledgeGraph, bool, error) {
	data, err := os.ReadFile(filepath.Join(Path(rootDir), graphFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(data) == 0 {
		return nil, false, nil
	}

	// The metadata sidecar carries the checksum of the graph bytes; a
	// mismatch means a torn or tampered write and reads as absent.
	if meta, ok := s.LoadMetadata(rootDir); ok && meta.Checksum != "" {
		sum := blake2b.Sum256(data)
		if hex.EncodeToString(sum[:]) != meta.Checksum {
			s.logger.Warn("graph checksum mismatch, treating as absent", map[string]interface{}{
				"root": rootDir,
			})
			return nil, false, nil
		}
	}

	var g graph.KnowledgeGraph
	if err := json.Unmarshal(data, &g); err != nil {
		s.logger.Warn("corrupt graph artifact, treating as absent", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false, nil
	}
	if g.Nodes == nil {
		return nil, false, nil
	}
	return &g, true, nil
}

// LoadMetadata reads only the metadata sidecar
func (s *Store) LoadMetadata(rootDir string) (*graph.Metadata, bool) {
	data, err := os.ReadFile(filepath.Join(Path(rootDir), metadataFile))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var meta graph.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, false
	}
	return &meta, true
}

// ensureGitignored appends the storage directory to <root>/.gitignore,
// idempotently: an existing entry is never duplicated.
func ensureGitignored(rootDir string) error {
	entry := Dir + "/"
	gitignorePath := filepath.Join(rootDir, ".gitignore")

	data, err := os.ReadFile(gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == entry || trimmed == Dir {
			return nil
		}
	}

	var content string
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		content = string(data) + "\n" + entry + "\n"
	} else {
		content = string(data) + entry + "\n"
	}
	return os.WriteFile(gitignorePath, []byte(content), 0644)
}
