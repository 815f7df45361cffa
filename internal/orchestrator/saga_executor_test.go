package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/relkit/relkit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStateRepoMock() *MockStateRepository {
	stateRepo := new(MockStateRepository)
	stateRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	return stateRepo
}

func TestSagaExecutor_Execute(t *testing.T) {
	t.Run("Should execute all steps in order", func(t *testing.T) {
		saga := NewSagaExecutor(newStateRepoMock(), true)
		var order []string
		saga.AddStep(SagaStep{
			Name: "First",
			Type: domain.StepTypeScanChanges,
			Execute: func(_ context.Context) (map[string]any, error) {
				order = append(order, "first")
				return nil, nil
			},
		})
		saga.AddStep(SagaStep{
			Name: "Second",
			Type: domain.StepTypeDecideBump,
			Execute: func(_ context.Context) (map[string]any, error) {
				order = append(order, "second")
				return nil, nil
			},
		})
		err := saga.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, order)
		assert.Equal(t, domain.RunStatusCompleted, saga.GetState().Status)
	})
	t.Run("Should execute each step exactly once even on failure", func(t *testing.T) {
		saga := NewSagaExecutor(newStateRepoMock(), true)
		attempts := 0
		saga.AddStep(SagaStep{
			Name: "Flaky",
			Type: domain.StepTypePushCommit,
			Execute: func(_ context.Context) (map[string]any, error) {
				attempts++
				return nil, errors.New("transient network error")
			},
		})
		err := saga.Execute(context.Background())
		assert.Error(t, err)
		assert.Equal(t, 1, attempts, "core steps must not retry")
	})
	t.Run("Should compensate completed steps in reverse order on failure", func(t *testing.T) {
		saga := NewSagaExecutor(newStateRepoMock(), true)
		var compensated []string
		saga.AddStep(SagaStep{
			Name: "Apply Version",
			Type: domain.StepTypeApplyVersion,
			Execute: func(_ context.Context) (map[string]any, error) {
				return map[string]any{"version_file": ".bumpversion.cfg"}, nil
			},
			Compensate: func(_ context.Context, _ map[string]any) error {
				compensated = append(compensated, "apply_version")
				return nil
			},
		})
		saga.AddStep(SagaStep{
			Name: "Commit Version",
			Type: domain.StepTypeCommitVersion,
			Execute: func(_ context.Context) (map[string]any, error) {
				return map[string]any{"commit_sha": "abc"}, nil
			},
			Compensate: func(_ context.Context, _ map[string]any) error {
				compensated = append(compensated, "commit_version")
				return nil
			},
		})
		saga.AddStep(SagaStep{
			Name: "Create Tag",
			Type: domain.StepTypeCreateTag,
			Execute: func(_ context.Context) (map[string]any, error) {
				return nil, errors.New("tag creation failed")
			},
			Compensate: func(_ context.Context, _ map[string]any) error {
				compensated = append(compensated, "create_tag")
				return nil
			},
		})
		err := saga.Execute(context.Background())
		assert.Error(t, err)
		assert.Equal(t, []string{"commit_version", "apply_version"}, compensated)
		assert.Equal(t, domain.RunStatusRolledBack, saga.GetState().Status)
	})
	t.Run("Should pass rollback data to the compensating action", func(t *testing.T) {
		saga := NewSagaExecutor(newStateRepoMock(), true)
		var got map[string]any
		saga.AddStep(SagaStep{
			Name: "Create Tag",
			Type: domain.StepTypeCreateTag,
			Execute: func(_ context.Context) (map[string]any, error) {
				return map[string]any{"tag": "v1.2.4"}, nil
			},
			Compensate: func(_ context.Context, data map[string]any) error {
				got = data
				return nil
			},
		})
		saga.AddStep(SagaStep{
			Name: "Push Commit",
			Type: domain.StepTypePushCommit,
			Execute: func(_ context.Context) (map[string]any, error) {
				return nil, errors.New("push rejected")
			},
		})
		err := saga.Execute(context.Background())
		assert.Error(t, err)
		assert.Equal(t, "v1.2.4", got["tag"])
	})
	t.Run("Should retry compensation on transient failure", func(t *testing.T) {
		saga := NewSagaExecutor(newStateRepoMock(), true)
		attempts := 0
		saga.AddStep(SagaStep{
			Name: "Apply Version",
			Type: domain.StepTypeApplyVersion,
			Execute: func(_ context.Context) (map[string]any, error) {
				return nil, nil
			},
			Compensate: func(_ context.Context, _ map[string]any) error {
				attempts++
				if attempts == 1 {
					return errors.New("transient")
				}
				return nil
			},
		})
		saga.AddStep(SagaStep{
			Name: "Commit Version",
			Type: domain.StepTypeCommitVersion,
			Execute: func(_ context.Context) (map[string]any, error) {
				return nil, errors.New("boom")
			},
		})
		err := saga.Execute(context.Background())
		assert.Error(t, err)
		assert.Equal(t, 2, attempts)
	})
	t.Run("Should not compensate local git steps once a push completed", func(t *testing.T) {
		saga := NewSagaExecutor(newStateRepoMock(), true)
		var compensated []string
		record := func(name string) func(context.Context, map[string]any) error {
			return func(_ context.Context, _ map[string]any) error {
				compensated = append(compensated, name)
				return nil
			}
		}
		saga.AddStep(SagaStep{
			Name: "Apply Version",
			Type: domain.StepTypeApplyVersion,
			Execute: func(_ context.Context) (map[string]any, error) {
				return nil, nil
			},
			Compensate: record("apply_version"),
		})
		saga.AddStep(SagaStep{
			Name: "Create Tag",
			Type: domain.StepTypeCreateTag,
			Execute: func(_ context.Context) (map[string]any, error) {
				return nil, nil
			},
			Compensate: record("create_tag"),
		})
		saga.AddStep(SagaStep{
			Name: "Push Tag",
			Type: domain.StepTypePushTag,
			Execute: func(_ context.Context) (map[string]any, error) {
				return map[string]any{"pushed": true}, nil
			},
		})
		saga.AddStep(SagaStep{
			Name: "Announce Release",
			Type: domain.StepTypeAnnounceRelease,
			Execute: func(_ context.Context) (map[string]any, error) {
				return nil, errors.New("api down, non-retryable here")
			},
			Compensate: record("announce_release"),
		})
		err := saga.Execute(context.Background())
		assert.Error(t, err)
		assert.NotContains(t, compensated, "apply_version")
		assert.NotContains(t, compensated, "create_tag")
		assert.NotEqual(t, domain.RunStatusRolledBack, saga.GetState().Status)
	})
	t.Run("Should fail when initial state cannot be saved", func(t *testing.T) {
		stateRepo := new(MockStateRepository)
		stateRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		saga := NewSagaExecutor(stateRepo, true)
		err := saga.Execute(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save initial state")
	})
}

func TestLoadExistingSaga(t *testing.T) {
	t.Run("Should load a persisted run state", func(t *testing.T) {
		stateRepo := new(MockStateRepository)
		state := domain.NewRunState("run-42")
		stateRepo.On("Load", mock.Anything, "run-42").Return(state, nil)
		saga, err := LoadExistingSaga(context.Background(), stateRepo, "run-42")
		require.NoError(t, err)
		assert.Equal(t, "run-42", saga.GetState().RunID)
	})
	t.Run("Should fail when the run state is missing", func(t *testing.T) {
		stateRepo := new(MockStateRepository)
		stateRepo.On("Load", mock.Anything, "missing").
			Return((*domain.RunState)(nil), errors.New("state not found"))
		_, err := LoadExistingSaga(context.Background(), stateRepo, "missing")
		assert.Error(t, err)
	})
}
