package analyzer

import (
	"context"
	"log"

	"github.com/oss-metrics/repolang/internal/domain"
	"github.com/oss-metrics/repolang/internal/gateway"
)

// RemoteAnalyzer resolves language composition from the hosting service's
// own per-language byte counts instead of inspecting a working copy.
// It needs no clone at all; the runner skips the clone step when this
// analyzer is in use.
type RemoteAnalyzer struct {
	resolver gateway.LanguageResolver
	logger   *log.Logger
}

// NewRemoteAnalyzer creates an analyzer backed by the hosting service.
func NewRemoteAnalyzer(resolver gateway.LanguageResolver, logger *log.Logger) *RemoteAnalyzer {
	return &RemoteAnalyzer{resolver: resolver, logger: logger}
}

// NeedsClone reports that this analyzer works from remote coordinates only.
func (a *RemoteAnalyzer) NeedsClone() bool { return false }

// Analyze fetches the service-computed language breakdown for the target.
func (a *RemoteAnalyzer) Analyze(ctx context.Context, target Target) (domain.LanguageStats, error) {
	a.logger.Printf("Fetching remote language stats for %s/%s...", target.ProjectKey, target.Slug)
	return a.resolver.RepositoryLanguages(ctx, target.ProjectKey, target.Slug)
}
