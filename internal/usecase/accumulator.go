// Package usecase contains the business logic of the application.
package usecase

import (
	"sync"

	"github.com/oss-metrics/repolang/internal/domain"
)

// Accumulator collects per-repository language statistics into per-project
// tables and a running overall total. It owns all accumulation state so
// ordering and single finalization are enforced by the type rather than by
// convention. Record is safe for concurrent use; the runner relies on that
// when repository processing is parallelized.
type Accumulator struct {
	mu        sync.Mutex
	order     []string
	projects  map[string]*domain.ProjectLanguages
	overall   domain.LanguageStats
	finalized bool
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		projects: make(map[string]*domain.ProjectLanguages),
		overall:  make(domain.LanguageStats),
	}
}

// Record inserts stats under projectKey → slug and folds every percentage
// into the overall total, creating entries at 0 as needed. Recording an
// empty stats map still appends the repository, so a repository whose
// analysis failed appears in its project's sheet as a row of zeros.
func (a *Accumulator) Record(projectKey, slug string, stats domain.LanguageStats) {
	a.mu.Lock()
	defer a.mu.Unlock()

	project, ok := a.projects[projectKey]
	if !ok {
		project = &domain.ProjectLanguages{Key: projectKey}
		a.projects[projectKey] = project
		a.order = append(a.order, projectKey)
	}
	project.Repos = append(project.Repos, domain.RepoLanguages{Slug: slug, Stats: stats})

	for lang, pct := range stats {
		a.overall[lang] += pct
	}
}

// Projects returns the per-project tables in first-recorded order.
func (a *Accumulator) Projects() []domain.ProjectLanguages {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.ProjectLanguages, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, *a.projects[key])
	}
	return out
}

// FinalizeOverall rescales the overall totals so they sum to 100 and
// returns them. It runs at most once: subsequent calls return the already
// normalized map without rescaling again. If no repository anywhere
// produced statistics the totals stay empty and no division occurs.
func (a *Accumulator) FinalizeOverall() domain.LanguageStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return a.overall
	}
	a.finalized = true

	total := 0.0
	for _, v := range a.overall {
		total += v
	}
	if total == 0 {
		return a.overall
	}
	for lang, v := range a.overall {
		a.overall[lang] = v / total * 100
	}
	return a.overall
}
