package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPlanFixture() (*PlanOrchestrator, *MockGitRepo, *MockVersionFileService, *config.Config) {
	cfg := &config.Config{
		RemoteName:  "origin",
		MainBranch:  "main",
		VersionFile: ".bumpversion.cfg",
	}
	git := new(MockGitRepo)
	verFile := new(MockVersionFileService)
	return NewPlanOrchestrator(git, verFile, cfg), git, verFile, cfg
}

func TestPlanOrchestrator_Execute(t *testing.T) {
	t.Run("Should compute the next version without writing anything", func(t *testing.T) {
		orch, git, verFile, _ := newPlanFixture()
		git.On("LatestTag", mock.Anything).Return("v1.2.3", nil)
		git.On("ChangesSinceTag", mock.Anything, "v1.2.3").
			Return(&domain.ChangeSet{BaseTag: "v1.2.3", Total: 3, MajorMarked: 1}, nil)
		verFile.On("Read", mock.Anything, ".bumpversion.cfg").Return(mustDomainVersion(t, "1.2.3"), nil)

		err := orch.Execute(context.Background(), PlanConfig{})
		require.NoError(t, err)
		verFile.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
		git.AssertNotCalled(t, "CreateTag", mock.Anything, mock.Anything, mock.Anything)
		git.AssertNotCalled(t, "PushTag", mock.Anything, mock.Anything)
	})
	t.Run("Should report nothing to release for an empty range", func(t *testing.T) {
		orch, git, verFile, _ := newPlanFixture()
		git.On("LatestTag", mock.Anything).Return("v1.2.3", nil)
		git.On("ChangesSinceTag", mock.Anything, "v1.2.3").
			Return(&domain.ChangeSet{BaseTag: "v1.2.3"}, nil)

		err := orch.Execute(context.Background(), PlanConfig{})
		require.NoError(t, err)
		verFile.AssertNotCalled(t, "Read", mock.Anything, mock.Anything)
	})
	t.Run("Should plan a forced patch bump", func(t *testing.T) {
		orch, git, verFile, _ := newPlanFixture()
		git.On("LatestTag", mock.Anything).Return("v1.2.3", nil)
		git.On("ChangesSinceTag", mock.Anything, "v1.2.3").
			Return(&domain.ChangeSet{BaseTag: "v1.2.3"}, nil)
		verFile.On("Read", mock.Anything, ".bumpversion.cfg").Return(mustDomainVersion(t, "1.2.3"), nil)

		err := orch.Execute(context.Background(), PlanConfig{Force: true})
		require.NoError(t, err)
		verFile.AssertExpectations(t)
	})
	t.Run("Should fall back to initial version when the file is missing", func(t *testing.T) {
		orch, git, verFile, cfg := newPlanFixture()
		cfg.InitialVersion = "0.1.0"
		git.On("LatestTag", mock.Anything).Return("", nil)
		git.On("ChangesSinceTag", mock.Anything, "").
			Return(&domain.ChangeSet{Total: 1}, nil)
		verFile.On("Read", mock.Anything, ".bumpversion.cfg").
			Return((*domain.Version)(nil), errors.New("no such file"))

		err := orch.Execute(context.Background(), PlanConfig{})
		require.NoError(t, err)
	})
	t.Run("Should fail when the version file cannot be read", func(t *testing.T) {
		orch, git, verFile, _ := newPlanFixture()
		git.On("LatestTag", mock.Anything).Return("v1.2.3", nil)
		git.On("ChangesSinceTag", mock.Anything, "v1.2.3").
			Return(&domain.ChangeSet{BaseTag: "v1.2.3", Total: 1}, nil)
		verFile.On("Read", mock.Anything, ".bumpversion.cfg").
			Return((*domain.Version)(nil), errors.New("parse error"))

		err := orch.Execute(context.Background(), PlanConfig{})
		assert.Error(t, err)
	})
}

func mustDomainVersion(t *testing.T, raw string) *domain.Version {
	t.Helper()
	v, err := domain.NewVersion(raw)
	require.NoError(t, err)
	return v
}
