package usecase

import (
	"context"
	"fmt"

	"github.com/relkit/relkit/internal/domain"
)

// DecideBumpUseCase applies the marker priority policy to a changeset.
//
// The decision is made exactly once per run and is final: callers must not
// re-evaluate after the version file has been bumped.

type DecideBumpUseCase struct{}

// Execute selects the bump level for the given changeset.
func (uc *DecideBumpUseCase) Execute(_ context.Context, changes *domain.ChangeSet) (domain.BumpLevel, error) {
	if changes == nil {
		return domain.BumpNone, fmt.Errorf("changeset cannot be nil")
	}
	return changes.Decide(), nil
}
