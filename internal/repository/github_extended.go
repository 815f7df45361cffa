package repository

import "context"

// GithubExtendedRepository extends GithubRepository with the lookup and
// cleanup operations the orchestrator's compensation path needs.
type GithubExtendedRepository interface {
	GithubRepository
	// GetReleaseByTag returns the release ID for a tag, or 0 when none exists
	GetReleaseByTag(ctx context.Context, tag string) (int64, error)
	// DeleteRelease removes a release by ID
	DeleteRelease(ctx context.Context, releaseID int64) error
}
