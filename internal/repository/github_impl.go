package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v74/github"
	"github.com/relkit/relkit/internal/config"
	"golang.org/x/oauth2"
)

// githubRepository is the implementation of the GithubRepository interface.
type githubRepository struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGithubRepository creates a new GithubRepository with validation.
func NewGithubRepository(token, owner, repo string) (GithubRepository, error) {
	return newGithubRepository(token, owner, repo)
}

// NewGithubExtendedRepository creates a new GithubExtendedRepository with validation.
func NewGithubExtendedRepository(token, owner, repo string) (GithubExtendedRepository, error) {
	return newGithubRepository(token, owner, repo)
}

func newGithubRepository(token, owner, repo string) (*githubRepository, error) {
	// Validate token format using the consolidated validator from config package
	if err := config.ValidateGitHubToken(token); err != nil {
		return nil, fmt.Errorf("invalid GitHub token: %w", err)
	}
	if err := config.ValidateGitHubOwnerRepo(owner, repo); err != nil {
		return nil, fmt.Errorf("invalid repository configuration: %w", err)
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: strings.TrimSpace(token)},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	return &githubRepository{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}, nil
}

// CreateRelease publishes a GitHub release for an already pushed tag and
// returns its ID.
func (r *githubRepository) CreateRelease(ctx context.Context, tag, name, notes string) (int64, error) {
	release, _, err := r.client.Repositories.CreateRelease(ctx, r.owner, r.repo, &github.RepositoryRelease{
		TagName: github.Ptr(tag),
		Name:    github.Ptr(name),
		Body:    github.Ptr(notes),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create release for tag %s: %w", tag, err)
	}
	return release.GetID(), nil
}

// GetReleaseByTag returns the release ID for a tag, or 0 when no release
// exists for it.
func (r *githubRepository) GetReleaseByTag(ctx context.Context, tag string) (int64, error) {
	release, resp, err := r.client.Repositories.GetReleaseByTag(ctx, r.owner, r.repo, tag)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get release for tag %s: %w", tag, err)
	}
	return release.GetID(), nil
}

// DeleteRelease removes a release by ID.
func (r *githubRepository) DeleteRelease(ctx context.Context, releaseID int64) error {
	if _, err := r.client.Repositories.DeleteRelease(ctx, r.owner, r.repo, releaseID); err != nil {
		return fmt.Errorf("failed to delete release %d: %w", releaseID, err)
	}
	return nil
}
