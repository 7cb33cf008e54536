// Package gitexec runs bounded, timeout-guarded git subprocesses.
//
// Commands are always argv arrays, never shell-interpolated strings. The
// runner caps concurrent subprocesses with a weighted semaphore and smooths
// process creation with a rate limiter, so history mining never spikes the
// OS process table. A failed or timed-out call yields an empty Result with
// the error attached; batches always run to completion.
package gitexec

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"specter/internal/logging"
)

const (
	// DefaultTimeout is the per-call deadline
	DefaultTimeout = 30 * time.Second
	// DefaultMaxConcurrent caps in-flight git subprocesses
	DefaultMaxConcurrent = 6
	// DefaultSpawnPerSecond smooths subprocess creation
	DefaultSpawnPerSecond = 20
)

// Result is the outcome of a single git call. Err is set on failure and
// Stdout is empty; callers treat failed calls as "no data".
type Result struct {
	Stdout   string
	ExitCode int
	TimedOut bool
	Err      error
}

// Lines splits stdout into trimmed, non-empty lines
func (r Result) Lines() []string {
	if r.Err != nil || strings.TrimSpace(r.Stdout) == "" {
		return nil
	}
	raw := strings.Split(strings.TrimSpace(r.Stdout), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

// Options configures a Runner
type Options struct {
	Timeout        time.Duration
	MaxConcurrent  int
	SpawnPerSecond float64
}

// Runner executes git commands against a working directory
type Runner struct {
	root    string
	timeout time.Duration
	maxProc int
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	logger  *logging.Logger
}

// NewRunner creates a runner with default limits
func NewRunner(root string, logger *logging.Logger) *Runner {
	return NewRunnerWithOptions(root, Options{}, logger)
}

// NewRunnerWithOptions creates a runner with explicit limits; zero values
// take defaults.
func NewRunnerWithOptions(root string, opts Options, logger *logging.Logger) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.SpawnPerSecond <= 0 {
		opts.SpawnPerSecond = DefaultSpawnPerSecond
	}
	return &Runner{
		root:    root,
		timeout: opts.Timeout,
		maxProc: opts.MaxConcurrent,
		sem:     semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		limiter: rate.NewLimiter(rate.Limit(opts.SpawnPerSecond), opts.MaxConcurrent),
		logger:  logger,
	}
}

// Root returns the working directory the runner operates in
func (r *Runner) Root() string {
	return r.root
}

// Run executes one git command. The returned Result carries any failure;
// Run itself never panics or propagates subprocess errors.
func (r *Runner) Run(ctx context.Context, args ...string) Result {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Result{Err: err}
	}
	defer r.sem.Release(1)

	if err := r.limiter.Wait(ctx); err != nil {
		return Result{Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(callCtx, "git", args...)
	cmd.Dir = r.root

	output, err := cmd.Output()
	if err != nil {
		res := Result{Err: err, ExitCode: -1}
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
		}
		if callCtx.Err() == context.DeadlineExceeded {
			res.TimedOut = true
		}
		r.logger.Debug("git call failed", map[string]interface{}{
			"args":     strings.Join(args, " "),
			"exitCode": res.ExitCode,
			"timedOut": res.TimedOut,
		})
		return res
	}

	return Result{Stdout: string(output)}
}

// RunBatch executes a batch of git commands through the bounded pool and
// returns results in input order. Individual failures stay local to their
// Result; the batch owner merges after all calls resolve.
func (r *Runner) RunBatch(ctx context.Context, batch [][]string) []Result {
	results := make([]Result, len(batch))

	var group errgroup.Group
	group.SetLimit(r.maxProc)
	for i, args := range batch {
		group.Go(func() error {
			results[i] = r.Run(ctx, args...)
			return nil
		})
	}
	// Workers never return errors; failures live in their Result slot.
	_ = group.Wait()

	return results
}

// IsRepo reports whether the working directory is inside a git repository
func (r *Runner) IsRepo(ctx context.Context) bool {
	return r.Run(ctx, "rev-parse", "--git-dir").Err == nil
}

// Head returns the current HEAD commit hash, or "" outside a repository
func (r *Runner) Head(ctx context.Context) string {
	res := r.Run(ctx, "rev-parse", "HEAD")
	if res.Err != nil {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

// RepoRoot returns the repository toplevel for a starting directory
func RepoRoot(ctx context.Context, start string, logger *logging.Logger) (string, bool) {
	r := NewRunner(start, logger)
	res := r.Run(ctx, "rev-parse", "--show-toplevel")
	if res.Err != nil {
		return "", false
	}
	return strings.TrimSpace(res.Stdout), true
}
