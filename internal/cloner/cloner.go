// Package cloner manages the local clone lifecycle for analyzed repositories.
package cloner

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-git/go-git/v6"
	githttp "github.com/go-git/go-git/v6/plumbing/transport/http"
)

// Cloner defines the behavior of a working-copy lifecycle manager: it
// materializes a repository at a scratch path and later removes it.
type Cloner interface {
	Clone(ctx context.Context, projectKey, slug, dest string) error
	Remove(dest string) error
}

// Credentials identify the account used for authenticated clone URLs.
// They are never logged.
type Credentials struct {
	Username string
	Token    string
}

// GitCloner is the go-git backed implementation of Cloner.
type GitCloner struct {
	host   string
	creds  Credentials
	logger *log.Logger
}

// NewGitCloner creates a cloner that fetches repositories from the given
// hosting domain, e.g. "github.com".
func NewGitCloner(host string, creds Credentials, logger *log.Logger) *GitCloner {
	return &GitCloner{
		host:   host,
		creds:  creds,
		logger: logger,
	}
}

// Clone fetches the repository's default branch into dest. The destination
// must not already exist; the caller derives a unique scratch path per
// repository.
func (c *GitCloner) Clone(ctx context.Context, projectKey, slug, dest string) error {
	url := fmt.Sprintf("https://%s/%s/%s.git", c.host, projectKey, slug)
	c.logger.Printf("Cloning repository %s/%s...", projectKey, slug)

	opts := &git.CloneOptions{
		URL:          url,
		SingleBranch: true,
	}
	if c.creds.Token != "" {
		opts.Auth = &githttp.BasicAuth{
			Username: c.creds.Username,
			Password: c.creds.Token,
		}
	}

	if _, err := git.PlainCloneContext(ctx, dest, opts); err != nil {
		return fmt.Errorf("failed to clone %s/%s: %w", projectKey, slug, err)
	}
	c.logger.Printf("Repository %s/%s cloned successfully.", projectKey, slug)
	return nil
}

// Remove reclaims the scratch space used by a working copy. It is invoked
// unconditionally after analysis, whether or not analysis succeeded.
func (c *GitCloner) Remove(dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to remove working copy at %s: %w", dest, err)
	}
	return nil
}
