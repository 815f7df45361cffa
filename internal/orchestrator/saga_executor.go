package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/relkit/relkit/internal/domain"
	"github.com/relkit/relkit/internal/repository"
	"github.com/sethvargo/go-retry"
)

// SagaStep represents a single step in the release run
type SagaStep struct {
	Name       string
	Type       domain.StepType
	Execute    func(ctx context.Context) (rollbackData map[string]any, err error)
	Compensate func(ctx context.Context, rollbackData map[string]any) error
}

// localGitSteps are the steps whose compensation mutates local git state.
// Once any push completed these must not run: the pushed refs are the source
// of truth and local cleanup would only hide what was published.
var localGitSteps = map[domain.StepType]bool{
	domain.StepTypeApplyVersion:  true,
	domain.StepTypeCommitVersion: true,
	domain.StepTypeCreateTag:     true,
}

// SagaExecutor runs the release steps in order, persisting progress so a
// failed run can be compensated. Steps execute exactly once; only the
// compensating actions retry.
type SagaExecutor struct {
	runID       string
	stateRepo   repository.StateRepository
	state       *domain.RunState
	steps       []SagaStep
	persistence bool
}

// NewSagaExecutor creates a new saga executor
func NewSagaExecutor(stateRepo repository.StateRepository, persistence bool) *SagaExecutor {
	runID := uuid.New().String()
	return &SagaExecutor{
		runID:       runID,
		stateRepo:   stateRepo,
		state:       domain.NewRunState(runID),
		steps:       []SagaStep{},
		persistence: persistence,
	}
}

// LoadExistingSaga loads the persisted state of a previous run
func LoadExistingSaga(
	ctx context.Context,
	stateRepo repository.StateRepository,
	runID string,
) (*SagaExecutor, error) {
	state, err := stateRepo.Load(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run state: %w", err)
	}
	return &SagaExecutor{
		runID:       runID,
		stateRepo:   stateRepo,
		state:       state,
		steps:       []SagaStep{},
		persistence: true,
	}, nil
}

// AddStep adds a step to the saga
func (s *SagaExecutor) AddStep(step SagaStep) {
	s.steps = append(s.steps, step)
	s.state.AddStep(step.Type)
}

// Execute runs the release steps with automatic compensation on failure.
// Compensation only covers local steps: once a push completed the run is past
// its commit point and the error is surfaced as-is.
func (s *SagaExecutor) Execute(ctx context.Context) error {
	if s.persistence {
		if err := s.saveState(ctx); err != nil {
			return fmt.Errorf("failed to save initial state: %w", err)
		}
	}
	s.state.Status = domain.RunStatusRunning
	for _, step := range s.steps {
		if err := s.executeStep(ctx, step); err != nil {
			s.state.MarkStepFailed(step.Type, err)
			if s.persistence {
				if saveErr := s.saveState(ctx); saveErr != nil {
					fmt.Printf("Warning: failed to save state before rollback: %v\n", saveErr)
				}
			}
			// Separate context so compensation completes even when the run
			// context is already canceled.
			rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RollbackTimeout)
			rollbackErr := s.rollback(rollbackCtx)
			cancel()
			if rollbackErr != nil {
				return fmt.Errorf("step '%s' failed: %w, rollback also failed: %v",
					step.Name, err, rollbackErr)
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name, err)
		}
	}
	s.state.Status = domain.RunStatusCompleted
	if s.persistence {
		if saveErr := s.saveState(ctx); saveErr != nil {
			fmt.Printf("Warning: failed to save final state: %v\n", saveErr)
		}
	}
	return nil
}

// executeStep executes a single saga step exactly once
func (s *SagaExecutor) executeStep(ctx context.Context, step SagaStep) error {
	s.state.MarkStepStarted(step.Type)
	if s.persistence {
		if saveErr := s.saveState(ctx); saveErr != nil {
			fmt.Printf("Warning: failed to save state after marking step started: %v\n", saveErr)
		}
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	rollbackData, err := step.Execute(ctx)
	if err != nil {
		return err
	}
	s.state.MarkStepCompleted(step.Type, rollbackData)
	if s.persistence {
		if saveErr := s.saveState(ctx); saveErr != nil {
			fmt.Printf("Warning: failed to save state after marking step completed: %v\n", saveErr)
		}
	}
	return nil
}

// Rollback executes compensating actions for completed steps
func (s *SagaExecutor) Rollback(ctx context.Context) error {
	return s.rollback(ctx)
}

// rollback internal implementation
func (s *SagaExecutor) rollback(ctx context.Context) error {
	fmt.Println("🔄 Starting rollback process...")
	completed := s.state.CompletedSteps()
	if len(completed) == 0 {
		fmt.Println("No steps to rollback")
		return nil
	}
	pushed := s.state.Pushed()
	if pushed {
		fmt.Println("⚠️  Run already pushed refs; local git state is left untouched")
	}
	for _, rec := range completed {
		select {
		case <-ctx.Done():
			return fmt.Errorf("rollback canceled: %w", ctx.Err())
		default:
		}
		if pushed && localGitSteps[rec.Type] {
			fmt.Printf("Skipping rollback of %s: refs already pushed\n", rec.Type)
			continue
		}
		if skipped, _ := rec.RollbackData["skip"].(bool); skipped {
			continue
		}
		step := s.findStepByType(rec.Type)
		if step == nil || step.Compensate == nil {
			continue
		}
		fmt.Printf("Rolling back: %s\n", step.Name)
		if err := s.executeCompensation(ctx, step, rec.RollbackData); err != nil {
			fmt.Printf("Failed to rollback %s: %v\n", step.Name, err)
			return fmt.Errorf("rollback failed for %s: %w", step.Name, err)
		}
		if s.persistence {
			if saveErr := s.saveState(ctx); saveErr != nil {
				fmt.Printf("Warning: failed to save state during rollback: %v\n", saveErr)
			}
		}
	}
	if !pushed {
		s.state.Status = domain.RunStatusRolledBack
	}
	if s.persistence {
		if saveErr := s.saveState(ctx); saveErr != nil {
			fmt.Printf("Warning: failed to save state after rollback: %v\n", saveErr)
		}
	}
	fmt.Println("✅ Rollback completed")
	return nil
}

// executeCompensation executes a compensating action with retry
func (s *SagaExecutor) executeCompensation(ctx context.Context, step *SagaStep, rollbackData map[string]any) error {
	retryStrategy := retry.WithMaxRetries(DefaultRetryCount, retry.NewExponential(DefaultRetryDelay))
	return retry.Do(ctx, retryStrategy, func(retryCtx context.Context) error {
		select {
		case <-retryCtx.Done():
			return retryCtx.Err()
		default:
		}
		if err := step.Compensate(retryCtx, rollbackData); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// findStepByType finds a saga step by step type
func (s *SagaExecutor) findStepByType(stepType domain.StepType) *SagaStep {
	for i := range s.steps {
		if s.steps[i].Type == stepType {
			return &s.steps[i]
		}
	}
	return nil
}

// saveState persists the current state
func (s *SagaExecutor) saveState(ctx context.Context) error {
	return s.stateRepo.Save(ctx, s.state)
}

// GetState returns the current run state
func (s *SagaExecutor) GetState() *domain.RunState {
	return s.state
}

// SetVersions records the previous and new version in the state
func (s *SagaExecutor) SetVersions(previous, version string) {
	s.state.PreviousVersion = previous
	s.state.Version = version
}

// SetTagName records the tag name in the state
func (s *SagaExecutor) SetTagName(tag string) {
	s.state.TagName = tag
}
