package service

import (
	"context"
	"testing"

	"github.com/relkit/relkit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notesRelease(t *testing.T, version string) *domain.Release {
	t.Helper()
	ver, err := domain.NewVersion(version)
	require.NoError(t, err)
	return &domain.Release{
		Version: ver,
		Level:   domain.BumpPatch,
		TagName: ver.String(),
		Changes: domain.ChangeSet{BaseTag: "v1.2.3", Total: 3, PatchMarked: 1},
	}
}

func TestNotesService_CommitMessage(t *testing.T) {
	t.Run("Should embed the new version", func(t *testing.T) {
		svc := NewNotesService()
		msg, err := svc.CommitMessage(context.Background(), notesRelease(t, "1.2.4"))
		require.NoError(t, err)
		assert.Equal(t, "ci(release): bump version to v1.2.4", msg)
	})
	t.Run("Should reject nil release", func(t *testing.T) {
		svc := NewNotesService()
		_, err := svc.CommitMessage(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestNotesService_TagMessage(t *testing.T) {
	t.Run("Should summarize the commit range", func(t *testing.T) {
		svc := NewNotesService()
		msg, err := svc.TagMessage(context.Background(), notesRelease(t, "1.2.4"))
		require.NoError(t, err)
		assert.Contains(t, msg, "Release v1.2.4")
		assert.Contains(t, msg, "3 commits since v1.2.3")
		assert.Contains(t, msg, "patch bump")
	})
	t.Run("Should use singular for one commit", func(t *testing.T) {
		svc := NewNotesService()
		release := notesRelease(t, "1.2.4")
		release.Changes.Total = 1
		msg, err := svc.TagMessage(context.Background(), release)
		require.NoError(t, err)
		assert.Contains(t, msg, "1 commit since v1.2.3")
	})
	t.Run("Should describe the initial release base", func(t *testing.T) {
		svc := NewNotesService()
		release := notesRelease(t, "0.1.0")
		release.Changes.BaseTag = ""
		msg, err := svc.TagMessage(context.Background(), release)
		require.NoError(t, err)
		assert.Contains(t, msg, "since the beginning of history")
	})
	t.Run("Should reject release without version", func(t *testing.T) {
		svc := NewNotesService()
		_, err := svc.TagMessage(context.Background(), &domain.Release{})
		assert.Error(t, err)
	})
}
