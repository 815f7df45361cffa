package service

import (
	"context"

	"github.com/relkit/relkit/internal/domain"
)

// NotesService generates the commit message and annotated tag message for a
// release.

type NotesService interface {
	CommitMessage(ctx context.Context, release *domain.Release) (string, error)
	TagMessage(ctx context.Context, release *domain.Release) (string, error)
}
