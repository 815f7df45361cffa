package usecase

import (
	"context"
	"testing"

	"github.com/relkit/relkit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideBumpUseCase_Execute(t *testing.T) {
	uc := &DecideBumpUseCase{}
	ctx := context.Background()

	t.Run("Should return patch for unmarked commits", func(t *testing.T) {
		level, err := uc.Execute(ctx, &domain.ChangeSet{Total: 2})
		require.NoError(t, err)
		assert.Equal(t, domain.BumpPatch, level)
	})
	t.Run("Should return minor when only minor markers are present", func(t *testing.T) {
		level, err := uc.Execute(ctx, &domain.ChangeSet{Total: 2, MinorMarked: 1})
		require.NoError(t, err)
		assert.Equal(t, domain.BumpMinor, level)
	})
	t.Run("Should return major when only major markers are present", func(t *testing.T) {
		level, err := uc.Execute(ctx, &domain.ChangeSet{Total: 2, MajorMarked: 1})
		require.NoError(t, err)
		assert.Equal(t, domain.BumpMajor, level)
	})
	t.Run("Should prefer patch over major when both markers appear", func(t *testing.T) {
		level, err := uc.Execute(ctx, &domain.ChangeSet{Total: 3, PatchMarked: 1, MajorMarked: 1})
		require.NoError(t, err)
		assert.Equal(t, domain.BumpPatch, level)
	})
	t.Run("Should return none for an empty changeset", func(t *testing.T) {
		level, err := uc.Execute(ctx, &domain.ChangeSet{})
		require.NoError(t, err)
		assert.Equal(t, domain.BumpNone, level)
	})
	t.Run("Should reject nil changeset", func(t *testing.T) {
		_, err := uc.Execute(ctx, nil)
		assert.Error(t, err)
	})
}
