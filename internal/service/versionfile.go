package service

import (
	"context"

	"github.com/relkit/relkit/internal/domain"
)

// VersionFileService reads and writes the persisted current version.
//
// The file uses the bumpversion INI convention: a single
// `current_version = X.Y.Z` key, optionally under a `[bumpversion]` section.
// Writes preserve all other content of the file.
type VersionFileService interface {
	Read(ctx context.Context, path string) (*domain.Version, error)
	Write(ctx context.Context, path string, version *domain.Version) error
}
