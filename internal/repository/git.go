package repository

import (
	"context"

	"github.com/relkit/relkit/internal/domain"
)

// GitRepository defines the interface for Git operations.

type GitRepository interface {
	LatestTag(ctx context.Context) (string, error)
	ChangesSinceTag(ctx context.Context, tag string) (*domain.ChangeSet, error)
	TagExists(ctx context.Context, tag string) (bool, error)
	CreateTag(ctx context.Context, tag, msg string) error
	PushTag(ctx context.Context, tag string) error
}
