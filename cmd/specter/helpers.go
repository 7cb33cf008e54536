package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"specter/internal/config"
	"specter/internal/errors"
	"specter/internal/gitexec"
	"specter/internal/graph"
	"specter/internal/history"
	"specter/internal/logging"
	"specter/internal/storage"
	"specter/internal/store"
)

// env bundles the pieces most commands need. Built once per invocation;
// the cache database is opened lazily and may be nil.
type env struct {
	rootDir  string
	cfg      *config.Config
	manifest *config.Manifest
	logger   *logging.Logger
	store    *store.Store
	runner   *gitexec.Runner
	cache    *storage.DB
}

func newLogger(cfg *config.Config, format string) *logging.Logger {
	level := "info"
	logFormat := "human"
	if cfg != nil {
		level = cfg.Logging.Level
		logFormat = cfg.Logging.Format
	}
	// JSON command output keeps logs structured too, so both streams
	// stay machine-readable.
	if format == "json" {
		logFormat = "json"
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(logFormat),
		Level:  logging.LogLevel(level),
	})
}

func newContext() context.Context {
	return context.Background()
}

// mustEnv resolves the root directory, loads config and manifest, and
// builds the shared pieces. Exits on unusable configuration.
func mustEnv(format string) *env {
	rootDir, err := filepath.Abs(rootFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving root %q: %v\n", rootFlag, err)
		os.Exit(1)
	}

	cfg, err := config.Load(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg, format)

	manifest, present, err := config.LoadManifest(rootDir)
	if err != nil {
		logger.Warn("ignoring unreadable specter.toml", map[string]interface{}{"error": err.Error()})
		manifest = &config.Manifest{}
	} else if present {
		logger.Debug("loaded project manifest", map[string]interface{}{"project": manifest.Project.Name})
	}

	// Prefer the enclosing git repository root so analytics line up with
	// history even when invoked from a subdirectory.
	if gitRoot, ok := gitexec.RepoRoot(newContext(), rootDir, logger); ok {
		rootDir = gitRoot
	}

	runner := gitexec.NewRunnerWithOptions(rootDir, gitexec.Options{
		Timeout:        time.Duration(cfg.Git.TimeoutMs) * time.Millisecond,
		MaxConcurrent:  cfg.Git.MaxConcurrent,
		SpawnPerSecond: cfg.Git.SpawnPerSecond,
	}, logger)

	return &env{
		rootDir:  rootDir,
		cfg:      cfg,
		manifest: manifest,
		logger:   logger,
		store:    store.New(logger),
		runner:   runner,
	}
}

// openCache opens the history cache database; a failure disables caching
// instead of failing the command.
func (e *env) openCache() *storage.DB {
	if e.cache != nil {
		return e.cache
	}
	db, err := storage.Open(e.rootDir, e.logger)
	if err != nil {
		e.logger.Warn("history cache unavailable, mining without it", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	e.cache = db
	return db
}

func (e *env) close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// miner builds a history miner with the configured bounds
func (e *env) miner() *history.Miner {
	return history.NewMiner(e.runner, e.openCache(), history.Options{
		WindowDays:          e.cfg.History.WindowDays,
		MaxCommitsPerFile:   e.cfg.History.MaxCommitsPerFile,
		CoChangeCommits:     e.cfg.History.CoChangeCommits,
		MinCouplingStrength: e.cfg.History.MinCouplingStrength,
		CacheTTL:            time.Duration(e.cfg.History.CacheTTLSeconds) * time.Second,
	}, e.logger)
}

// mustLoadGraph loads the persisted graph or exits with the canned fix
func (e *env) mustLoadGraph() *graph.KnowledgeGraph {
	g, ok, err := e.store.Load(e.rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading graph: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		specErr := errors.New(errors.NoGraphFound, "no knowledge graph found for "+e.rootDir, nil).
			WithFixes(errors.SuggestedFixes(errors.NoGraphFound)...)
		fmt.Fprintf(os.Stderr, "Error: %v\n", specErr)
		for _, fix := range specErr.SuggestedFixes {
			fmt.Fprintf(os.Stderr, "  try: %s (%s)\n", fix.Command, fix.Description)
		}
		os.Exit(1)
	}
	return g
}

func exitErr(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}
