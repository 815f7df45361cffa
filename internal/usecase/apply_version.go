package usecase

import (
	"context"
	"fmt"

	"github.com/relkit/relkit/internal/domain"
	"github.com/relkit/relkit/internal/service"
)

// ApplyVersionUseCase bumps the persisted version file and returns both the
// previous and the new version.

type ApplyVersionUseCase struct {
	VersionFileSvc service.VersionFileService
	VersionFile    string
	// InitialVersion seeds the version file on the first release when the
	// file does not exist yet.
	InitialVersion string
}

// Execute reads the current version, bumps it at the given level and writes
// the file back.
func (uc *ApplyVersionUseCase) Execute(ctx context.Context, level domain.BumpLevel) (*domain.Version, *domain.Version, error) {
	if level == domain.BumpNone {
		return nil, nil, fmt.Errorf("cannot apply a bump of level %q", level)
	}
	current, err := uc.VersionFileSvc.Read(ctx, uc.VersionFile)
	if err != nil {
		if uc.InitialVersion == "" {
			return nil, nil, fmt.Errorf("failed to read current version: %w", err)
		}
		current, err = domain.NewVersion(uc.InitialVersion)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid initial version %q: %w", uc.InitialVersion, err)
		}
	}
	next := current.Bump(level)
	if err := uc.VersionFileSvc.Write(ctx, uc.VersionFile, next); err != nil {
		return nil, nil, fmt.Errorf("failed to write bumped version: %w", err)
	}
	return current, next, nil
}
