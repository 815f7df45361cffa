package repository

import (
	"context"
	"errors"
	"fmt"
)

var ErrGithubTokenRequired = errors.New("github token is required for GitHub operations")

type githubNoopRepository struct {
	owner string
	repo  string
}

func NewGithubNoopRepository(owner, repo string) GithubRepository {
	return &githubNoopRepository{owner: owner, repo: repo}
}

func NewGithubNoopExtendedRepository(owner, repo string) GithubExtendedRepository {
	return &githubNoopRepository{owner: owner, repo: repo}
}

func (r *githubNoopRepository) CreateRelease(_ context.Context, _, _, _ string) (int64, error) {
	return 0, r.operationError("create release")
}

func (r *githubNoopRepository) GetReleaseByTag(_ context.Context, _ string) (int64, error) {
	return 0, r.operationError("query release")
}

func (r *githubNoopRepository) DeleteRelease(_ context.Context, _ int64) error {
	return r.operationError("delete release")
}

func (r *githubNoopRepository) operationError(action string) error {
	return fmt.Errorf("%w: unable to %s for %s/%s", ErrGithubTokenRequired, action, r.owner, r.repo)
}
