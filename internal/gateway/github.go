// Package gateway provides a gateway to the code-hosting service,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/oss-metrics/repolang/internal/domain"
)

// Lister defines the behavior of a gateway that enumerates the
// repositories belonging to a project.
type Lister interface {
	ListRepositories(ctx context.Context, projectKey string) ([]string, error)
}

// LanguageResolver fetches the hosting service's own language breakdown
// for a repository. Used by the remote analysis mode instead of cloning.
type LanguageResolver interface {
	RepositoryLanguages(ctx context.Context, projectKey, slug string) (domain.LanguageStats, error)
}

// GitHubGateway is the concrete implementation of Lister and
// LanguageResolver backed by the GitHub API.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// repoLanguagesQuery fetches per-language byte counts for one repository.
type repoLanguagesQuery struct {
	Repository struct {
		Languages struct {
			TotalSize githubv4.Int
			Edges     []struct {
				Size githubv4.Int
				Node struct {
					Name githubv4.String
				}
			}
		} `graphql:"languages(first: 100, orderBy: {field: SIZE, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// ListRepositories pages through every repository of the project and
// returns their slugs in the order the service provides them.
func (g *GitHubGateway) ListRepositories(ctx context.Context, projectKey string) ([]string, error) {
	g.logger.Printf("Listing repositories for project %s...", projectKey)
	opts := &github.RepositoryListByOrgOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var slugs []string
	for {
		repos, resp, err := g.restClient.Repositories.ListByOrg(ctx, projectKey, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories for %s: %w", projectKey, err)
		}
		for _, repo := range repos {
			slugs = append(slugs, repo.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of repositories...")
	}
	g.logger.Printf("Found %d repositories in project %s.", len(slugs), projectKey)
	return slugs, nil
}

// RepositoryLanguages resolves a repository's language composition from the
// service's own byte counts, converted to percentages of the total.
func (g *GitHubGateway) RepositoryLanguages(ctx context.Context, projectKey, slug string) (domain.LanguageStats, error) {
	variables := map[string]interface{}{
		"owner": githubv4.String(projectKey),
		"name":  githubv4.String(slug),
	}
	var q repoLanguagesQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for languages: %w", err)
	}

	total := float64(q.Repository.Languages.TotalSize)
	stats := make(domain.LanguageStats)
	if total == 0 {
		return stats, nil
	}
	for _, edge := range q.Repository.Languages.Edges {
		stats[string(edge.Node.Name)] = float64(edge.Size) / total * 100
	}
	return stats, nil
}
