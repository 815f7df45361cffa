package usecase

import (
	"context"
	"fmt"

	"github.com/relkit/relkit/internal/domain"
	"github.com/relkit/relkit/internal/repository"
)

// CheckChangesUseCase determines whether a release run should proceed and
// summarizes the commit range it would cover.

type CheckChangesUseCase struct {
	GitRepo repository.GitRepository
	// InitialVersion allows a first release when no tag exists yet. When
	// empty, a tagless repository is treated as nothing-to-do.
	InitialVersion string
}

// Execute returns the changeset since the latest tag and whether the run
// should proceed. A run proceeds only when the range is non-empty.
func (uc *CheckChangesUseCase) Execute(ctx context.Context) (*domain.ChangeSet, bool, error) {
	latestTag, err := uc.GitRepo.LatestTag(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get latest tag: %w", err)
	}
	if latestTag == "" && uc.InitialVersion == "" {
		// No tag to measure from and no configured starting point: skip.
		return &domain.ChangeSet{}, false, nil
	}
	changes, err := uc.GitRepo.ChangesSinceTag(ctx, latestTag)
	if err != nil {
		return nil, false, fmt.Errorf("failed to scan commits since tag: %w", err)
	}
	return changes, !changes.Empty(), nil
}
