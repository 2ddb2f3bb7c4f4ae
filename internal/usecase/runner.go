package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/oss-metrics/repolang/internal/analyzer"
	"github.com/oss-metrics/repolang/internal/cloner"
	"github.com/oss-metrics/repolang/internal/domain"
	"github.com/oss-metrics/repolang/internal/gateway"
)

// RunnerConfig holds the runtime knobs of the pipeline.
type RunnerConfig struct {
	// Workdir is the scratch area that holds working copies during analysis.
	Workdir string
	// Workers bounds how many repositories are processed at once. 1 keeps
	// the pipeline strictly sequential.
	Workers int
}

// cloneSkipper is implemented by analyzers that work from remote
// coordinates and need no working copy.
type cloneSkipper interface {
	NeedsClone() bool
}

// Runner orchestrates the fetch → clone → analyze → remove → record
// pipeline across every configured project. Per-repository and per-project
// failures are logged and isolated; they never abort the run.
type Runner struct {
	lister   gateway.Lister
	cloner   cloner.Cloner
	analyzer analyzer.Analyzer
	cfg      RunnerConfig
	out      io.Writer
	logger   *log.Logger

	errLine *color.Color
}

// NewRunner creates a new Runner instance.
func NewRunner(lister gateway.Lister, cl cloner.Cloner, an analyzer.Analyzer, cfg RunnerConfig, out io.Writer, logger *log.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{
		lister:   lister,
		cloner:   cl,
		analyzer: an,
		cfg:      cfg,
		out:      out,
		logger:   logger,
		errLine:  color.New(color.FgRed),
	}
}

// Run processes every project in order and returns the filled accumulator.
// The caller finalizes the overall totals exactly once afterwards.
func (r *Runner) Run(ctx context.Context, projectKeys []string) (*Accumulator, error) {
	if r.needsClone() {
		if err := os.MkdirAll(r.cfg.Workdir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create scratch directory: %w", err)
		}
	}

	acc := NewAccumulator()
	for _, key := range projectKeys {
		slugs, err := r.lister.ListRepositories(ctx, key)
		if err != nil {
			r.errLine.Fprintf(r.out, "Failed to fetch repositories for project %s: %v\n", key, err)
			continue
		}
		if len(slugs) == 0 {
			fmt.Fprintf(r.out, "No repositories found for project %s.\n", key)
			continue
		}

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(r.cfg.Workers)
		for _, slug := range slugs {
			eg.Go(func() error {
				r.processRepository(egCtx, acc, key, slug)
				return nil
			})
		}
		// Workers never return errors; failures are isolated per repository.
		_ = eg.Wait()
	}
	return acc, nil
}

func (r *Runner) processRepository(ctx context.Context, acc *Accumulator, projectKey, slug string) {
	target := analyzer.Target{ProjectKey: projectKey, Slug: slug}

	if r.needsClone() {
		// The scratch path is qualified by project key so parallel runs and
		// slug collisions across projects cannot share a directory.
		dest := filepath.Join(r.cfg.Workdir, projectKey+"-"+slug)
		if err := r.cloner.Clone(ctx, projectKey, slug, dest); err != nil {
			r.errLine.Fprintf(r.out, "Failed to clone %s/%s: %v\n", projectKey, slug, err)
			acc.Record(projectKey, slug, domain.LanguageStats{})
			return
		}
		defer func() {
			if err := r.cloner.Remove(dest); err != nil {
				r.errLine.Fprintf(r.out, "Failed to clean up %s: %v\n", dest, err)
			}
		}()
		target.Dir = dest
	}

	stats, err := r.analyzer.Analyze(ctx, target)
	if err != nil {
		r.errLine.Fprintf(r.out, "Failed to analyze %s/%s: %v\n", projectKey, slug, err)
		stats = domain.LanguageStats{}
	}
	acc.Record(projectKey, slug, stats)
	fmt.Fprintf(r.out, "Analyzed %s/%s: %d languages detected.\n", projectKey, slug, len(stats))
}

func (r *Runner) needsClone() bool {
	if s, ok := r.analyzer.(cloneSkipper); ok {
		return s.NeedsClone()
	}
	return true
}
