package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/domain"
	"github.com/relkit/relkit/internal/repository"
	"github.com/relkit/relkit/internal/service"
	"github.com/relkit/relkit/internal/usecase"
	"github.com/sethvargo/go-retry"
)

// ReleaseConfig contains configuration for a release run.
type ReleaseConfig struct {
	Force          bool   // Release even when no commits landed since the last tag
	DryRun         bool   // Bump the version file locally, no commit/tag/push
	CIOutput       bool   // Emit key=value lines for workflow consumption
	SkipAnnounce   bool   // Skip the GitHub release announcement
	EnableRollback bool   // Persist run state and compensate local steps on failure
	Rollback       bool   // Compensate a previously failed run instead of releasing
	RunID          string // Run ID for rollback operations
}

// ReleaseOrchestrator drives the whole release run: scan commits, decide the
// bump, rewrite the version file, commit, tag, push, announce.
type ReleaseOrchestrator struct {
	gitRepo        repository.GitExtendedRepository
	githubRepo     repository.GithubExtendedRepository
	fsRepo         repository.FileSystemRepository
	versionFileSvc service.VersionFileService
	notesSvc       service.NotesService
	stateRepo      repository.StateRepository
	historyRepo    repository.HistoryRepository
	config         *config.Config
}

// NewReleaseOrchestrator creates a new release orchestrator.
func NewReleaseOrchestrator(
	gitRepo repository.GitExtendedRepository,
	githubRepo repository.GithubExtendedRepository,
	fsRepo repository.FileSystemRepository,
	versionFileSvc service.VersionFileService,
	notesSvc service.NotesService,
	historyRepo repository.HistoryRepository,
	cfg *config.Config,
) *ReleaseOrchestrator {
	stateRepo := repository.NewJSONStateRepository(fsRepo, cfg.StateDir)
	return &ReleaseOrchestrator{
		gitRepo:        gitRepo,
		githubRepo:     githubRepo,
		fsRepo:         fsRepo,
		versionFileSvc: versionFileSvc,
		notesSvc:       notesSvc,
		stateRepo:      stateRepo,
		historyRepo:    historyRepo,
		config:         cfg,
	}
}

// Execute runs the complete release workflow.
func (o *ReleaseOrchestrator) Execute(ctx context.Context, cfg ReleaseConfig) error {
	if cfg.Rollback {
		return o.performRollback(ctx, cfg.RunID)
	}
	if cfg.EnableRollback {
		return o.executeWithSaga(ctx, cfg)
	}
	return o.executeDirect(ctx, cfg)
}

// executeDirect runs the workflow without run-state persistence. Every step
// executes exactly once; the first failure aborts the run.
func (o *ReleaseOrchestrator) executeDirect(ctx context.Context, cfg ReleaseConfig) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultWorkflowTimeout)
	defer cancel()
	if err := o.ensurePushCredentials(cfg); err != nil {
		return err
	}
	changes, proceed, err := o.checkChanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to check changes: %w", err)
	}
	o.printCIOutput(cfg.CIOutput, "has_changes=%t\n", proceed)
	o.printCIOutput(cfg.CIOutput, "latest_tag=%s\n", changes.BaseTag)
	level, err := o.decideBump(ctx, changes)
	if err != nil {
		return fmt.Errorf("failed to decide bump: %w", err)
	}
	if level == domain.BumpNone {
		if !cfg.Force {
			o.printStatus(cfg.CIOutput, "No changes detected since last release")
			if !cfg.DryRun {
				o.recordHistory(ctx, o.skippedRelease(changes))
			}
			return nil
		}
		level = domain.BumpPatch
	}
	o.printCIOutput(cfg.CIOutput, "bump=%s\n", level)
	release, err := o.prepareRelease(ctx, changes, level, cfg.CIOutput)
	if err != nil {
		return err
	}
	if cfg.DryRun {
		o.printStatus(cfg.CIOutput,
			fmt.Sprintf("🛈 Dry-run complete – version file bumped to %s locally (no commit/tag/push).", release.Version))
		return nil
	}
	if err := o.publish(ctx, release); err != nil {
		release.Status = domain.ReleaseStatusFailed
		o.recordHistory(ctx, release)
		return err
	}
	o.announce(ctx, release, cfg)
	release.Status = domain.ReleaseStatusPublished
	o.recordHistory(ctx, release)
	o.printStatus(cfg.CIOutput, fmt.Sprintf("✅ Released %s", release.TagName))
	return nil
}

// prepareRelease bumps the version file and assembles the release metadata
func (o *ReleaseOrchestrator) prepareRelease(
	ctx context.Context,
	changes *domain.ChangeSet,
	level domain.BumpLevel,
	ciOutput bool,
) (*domain.Release, error) {
	prev, next, err := o.applyVersion(ctx, level)
	if err != nil {
		return nil, fmt.Errorf("failed to apply version: %w", err)
	}
	if err := ValidateVersion(next.String()); err != nil {
		return nil, fmt.Errorf("invalid version: %w", err)
	}
	tagName := next.String()
	if err := ValidateTagName(tagName); err != nil {
		return nil, fmt.Errorf("invalid tag name: %w", err)
	}
	o.printCIOutput(ciOutput, "version=%s\n", next.Plain())
	o.printCIOutput(ciOutput, "tag=%s\n", tagName)
	return &domain.Release{
		RunID:           uuid.New().String(),
		PreviousVersion: prev,
		Version:         next,
		Level:           level,
		TagName:         tagName,
		Changes:         *changes,
	}, nil
}

// publish commits the version file, creates the annotated tag and pushes
// both. Failures abort immediately: a partial push is surfaced, never
// repaired in place.
func (o *ReleaseOrchestrator) publish(ctx context.Context, release *domain.Release) error {
	if err := o.commitVersionFile(ctx, release); err != nil {
		return err
	}
	exists, err := o.gitRepo.TagExists(ctx, release.TagName)
	if err != nil {
		return fmt.Errorf("failed to check tag existence: %w", err)
	}
	if exists {
		return fmt.Errorf("tag %s already exists", release.TagName)
	}
	tagMsg, err := o.notesSvc.TagMessage(ctx, release)
	if err != nil {
		return fmt.Errorf("failed to build tag message: %w", err)
	}
	if err := o.gitRepo.CreateTag(ctx, release.TagName, tagMsg); err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	if err := o.gitRepo.PushBranch(ctx, o.config.MainBranch); err != nil {
		return fmt.Errorf("failed to push commit: %w", err)
	}
	if err := o.gitRepo.PushTag(ctx, release.TagName); err != nil {
		return fmt.Errorf("commit pushed but tag push failed, manual intervention required: %w", err)
	}
	return nil
}

// commitVersionFile stages and commits the bumped version file
func (o *ReleaseOrchestrator) commitVersionFile(ctx context.Context, release *domain.Release) error {
	branch, err := o.gitRepo.GetCurrentBranch(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve current branch: %w", err)
	}
	if branch != o.config.MainBranch {
		return fmt.Errorf("refusing to release from branch %s, expected %s", branch, o.config.MainBranch)
	}
	if err := o.gitRepo.ConfigureUser(ctx, o.config.GitUserName, o.config.GitUserEmail); err != nil {
		return fmt.Errorf("failed to configure git user: %w", err)
	}
	if err := o.gitRepo.AddFiles(ctx, o.config.VersionFile); err != nil {
		return fmt.Errorf("failed to stage version file: %w", err)
	}
	message, err := o.notesSvc.CommitMessage(ctx, release)
	if err != nil {
		return fmt.Errorf("failed to build commit message: %w", err)
	}
	if err := o.gitRepo.Commit(ctx, message); err != nil {
		return fmt.Errorf("failed to commit version file: %w", err)
	}
	return nil
}

// announce creates a GitHub release for the pushed tag. The tag push is the
// commit point: an announcement failure is reported, not fatal.
func (o *ReleaseOrchestrator) announce(ctx context.Context, release *domain.Release, cfg ReleaseConfig) int64 {
	if cfg.SkipAnnounce || o.config.GithubToken == "" {
		return 0
	}
	existing, err := o.githubRepo.GetReleaseByTag(ctx, release.TagName)
	if err != nil {
		fmt.Printf("Warning: failed to check existing release for %s: %v\n", release.TagName, err)
		return 0
	}
	if existing != 0 {
		o.printStatus(cfg.CIOutput, fmt.Sprintf("Release for %s already exists, skipping announcement", release.TagName))
		return existing
	}
	notes, err := o.notesSvc.TagMessage(ctx, release)
	if err != nil {
		fmt.Printf("Warning: failed to build release notes: %v\n", err)
		return 0
	}
	var releaseID int64
	err = retry.Do(
		ctx,
		retry.WithMaxRetries(DefaultRetryCount, retry.NewExponential(DefaultRetryDelay)),
		func(ctx context.Context) error {
			id, createErr := o.githubRepo.CreateRelease(ctx, release.TagName, release.TagName, notes)
			if createErr != nil {
				return retry.RetryableError(createErr)
			}
			releaseID = id
			return nil
		},
	)
	if err != nil {
		fmt.Printf("Warning: failed to announce release %s: %v\n", release.TagName, err)
		return 0
	}
	return releaseID
}

// recordHistory appends the run outcome to the local ledger, best effort
func (o *ReleaseOrchestrator) recordHistory(ctx context.Context, release *domain.Release) {
	if o.historyRepo == nil || release == nil {
		return
	}
	if err := o.historyRepo.Record(ctx, release); err != nil {
		fmt.Printf("Warning: failed to record release history: %v\n", err)
	}
}

// skippedRelease builds the ledger entry for a run that found nothing to do
func (o *ReleaseOrchestrator) skippedRelease(changes *domain.ChangeSet) *domain.Release {
	return &domain.Release{
		RunID:   uuid.New().String(),
		Level:   domain.BumpNone,
		Changes: *changes,
		Status:  domain.ReleaseStatusSkipped,
	}
}

// ensurePushCredentials verifies a token is available before mutating anything
func (o *ReleaseOrchestrator) ensurePushCredentials(cfg ReleaseConfig) error {
	if cfg.DryRun {
		return nil
	}
	if o.config.GithubToken != "" {
		return nil
	}
	if err := ValidateEnvironmentVariables([]string{"GITHUB_TOKEN"}); err != nil {
		return fmt.Errorf("push requires credentials: %w", err)
	}
	return nil
}

// printCIOutput prints output in CI format if enabled
func (o *ReleaseOrchestrator) printCIOutput(ciOutput bool, format string, args ...any) {
	if ciOutput {
		fmt.Printf(format, args...)
	}
}

// printStatus prints status messages when not in CI mode
func (o *ReleaseOrchestrator) printStatus(ciOutput bool, message string) {
	if !ciOutput {
		fmt.Println(message)
	}
}

func (o *ReleaseOrchestrator) checkChanges(ctx context.Context) (*domain.ChangeSet, bool, error) {
	uc := &usecase.CheckChangesUseCase{
		GitRepo:        o.gitRepo,
		InitialVersion: o.config.InitialVersion,
	}
	return uc.Execute(ctx)
}

func (o *ReleaseOrchestrator) decideBump(ctx context.Context, changes *domain.ChangeSet) (domain.BumpLevel, error) {
	uc := &usecase.DecideBumpUseCase{}
	return uc.Execute(ctx, changes)
}

func (o *ReleaseOrchestrator) applyVersion(ctx context.Context, level domain.BumpLevel) (*domain.Version, *domain.Version, error) {
	uc := &usecase.ApplyVersionUseCase{
		VersionFileSvc: o.versionFileSvc,
		VersionFile:    o.config.VersionFile,
		InitialVersion: o.config.InitialVersion,
	}
	return uc.Execute(ctx, level)
}

// executeWithSaga runs the workflow with persisted run state and local
// compensation on failure
func (o *ReleaseOrchestrator) executeWithSaga(ctx context.Context, cfg ReleaseConfig) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultWorkflowTimeout)
	defer cancel()
	if err := o.ensurePushCredentials(cfg); err != nil {
		return err
	}
	saga := NewSagaExecutor(o.stateRepo, true)
	if err := o.buildAndExecuteWorkflow(ctx, saga, cfg); err != nil {
		return err
	}
	return nil
}

// buildAndExecuteWorkflow builds all workflow steps and executes the saga
func (o *ReleaseOrchestrator) buildAndExecuteWorkflow(
	ctx context.Context,
	saga *SagaExecutor,
	cfg ReleaseConfig,
) error {
	compensator := NewCompensatingActions(o.gitRepo, o.githubRepo)

	// Shared workflow context
	wctx := &workflowContext{runID: saga.GetState().RunID}

	o.addScanChangesStep(saga, cfg, compensator, wctx)
	o.addDecideBumpStep(saga, cfg, compensator, wctx)
	o.addApplyVersionStep(saga, cfg, compensator, wctx)
	o.addCommitVersionStep(saga, cfg, compensator, wctx)
	o.addCreateTagStep(saga, cfg, compensator, wctx)
	o.addPushCommitStep(saga, cfg, compensator, wctx)
	o.addPushTagStep(saga, cfg, compensator, wctx)
	o.addAnnounceStep(saga, cfg, compensator, wctx)
	o.addRecordHistoryStep(saga, compensator, wctx)

	if err := saga.Execute(ctx); err != nil {
		if wctx.release != nil {
			wctx.release.Status = domain.ReleaseStatusFailed
			o.recordHistory(ctx, wctx.release)
		}
		return fmt.Errorf("workflow failed: %w", err)
	}
	if wctx.release == nil {
		o.printStatus(cfg.CIOutput, "No changes detected since last release")
		return nil
	}
	o.printStatus(cfg.CIOutput, fmt.Sprintf("✅ Released %s", wctx.release.TagName))
	return nil
}

// workflowContext holds shared state for workflow execution
type workflowContext struct {
	runID     string
	changes   *domain.ChangeSet
	level     domain.BumpLevel
	release   *domain.Release
	commitSHA string
	releaseID int64
}

// Workflow step methods

func (o *ReleaseOrchestrator) addScanChangesStep(
	saga *SagaExecutor,
	cfg ReleaseConfig,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Scan Changes",
		Type: domain.StepTypeScanChanges,
		Execute: func(ctx context.Context) (map[string]any, error) {
			changes, proceed, err := o.checkChanges(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to check changes: %w", err)
			}
			wctx.changes = changes
			o.printCIOutput(cfg.CIOutput, "has_changes=%t\n", proceed)
			o.printCIOutput(cfg.CIOutput, "latest_tag=%s\n", changes.BaseTag)
			return map[string]any{
				"has_changes": proceed,
				"latest_tag":  changes.BaseTag,
			}, nil
		},
		Compensate: compensator.NoOp,
	})
}

func (o *ReleaseOrchestrator) addDecideBumpStep(
	saga *SagaExecutor,
	cfg ReleaseConfig,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Decide Bump",
		Type: domain.StepTypeDecideBump,
		Execute: func(ctx context.Context) (map[string]any, error) {
			level, err := o.decideBump(ctx, wctx.changes)
			if err != nil {
				return nil, fmt.Errorf("failed to decide bump: %w", err)
			}
			if level == domain.BumpNone {
				if !cfg.Force {
					return map[string]any{"skip": true}, nil
				}
				level = domain.BumpPatch
			}
			wctx.level = level
			o.printCIOutput(cfg.CIOutput, "bump=%s\n", level)
			return map[string]any{"bump": string(level)}, nil
		},
		Compensate: compensator.NoOp,
	})
}

func (o *ReleaseOrchestrator) addApplyVersionStep(
	saga *SagaExecutor,
	cfg ReleaseConfig,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Apply Version",
		Type: domain.StepTypeApplyVersion,
		Execute: func(ctx context.Context) (map[string]any, error) {
			if wctx.level == domain.BumpNone || wctx.level == "" {
				return map[string]any{"skip": true}, nil
			}
			prev, next, err := o.applyVersion(ctx, wctx.level)
			if err != nil {
				return nil, fmt.Errorf("failed to apply version: %w", err)
			}
			if err := ValidateVersion(next.String()); err != nil {
				return nil, fmt.Errorf("invalid version: %w", err)
			}
			tagName := next.String()
			if err := ValidateTagName(tagName); err != nil {
				return nil, fmt.Errorf("invalid tag name: %w", err)
			}
			wctx.release = &domain.Release{
				RunID:           wctx.runID,
				PreviousVersion: prev,
				Version:         next,
				Level:           wctx.level,
				TagName:         tagName,
				Changes:         *wctx.changes,
			}
			saga.SetVersions(prev.String(), next.String())
			saga.SetTagName(tagName)
			o.printCIOutput(cfg.CIOutput, "version=%s\n", next.Plain())
			o.printCIOutput(cfg.CIOutput, "tag=%s\n", tagName)
			return map[string]any{
				"version_file":     o.config.VersionFile,
				"previous_version": prev.Plain(),
			}, nil
		},
		Compensate: compensator.RestoreVersionFile,
	})
}

func (o *ReleaseOrchestrator) addCommitVersionStep(
	saga *SagaExecutor,
	cfg ReleaseConfig,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Commit Version",
		Type: domain.StepTypeCommitVersion,
		Execute: func(ctx context.Context) (map[string]any, error) {
			if wctx.release == nil || cfg.DryRun {
				return map[string]any{"skip": true}, nil
			}
			if err := o.commitVersionFile(ctx, wctx.release); err != nil {
				return nil, err
			}
			sha, err := o.gitRepo.GetHeadCommit(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve commit: %w", err)
			}
			wctx.commitSHA = sha
			return map[string]any{"commit_sha": sha}, nil
		},
		Compensate: compensator.ResetCommit,
	})
}

func (o *ReleaseOrchestrator) addCreateTagStep(
	saga *SagaExecutor,
	cfg ReleaseConfig,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Create Tag",
		Type: domain.StepTypeCreateTag,
		Execute: func(ctx context.Context) (map[string]any, error) {
			if wctx.release == nil || cfg.DryRun {
				return map[string]any{"skip": true}, nil
			}
			exists, err := o.gitRepo.TagExists(ctx, wctx.release.TagName)
			if err != nil {
				return nil, fmt.Errorf("failed to check tag existence: %w", err)
			}
			if exists {
				return nil, fmt.Errorf("tag %s already exists", wctx.release.TagName)
			}
			tagMsg, err := o.notesSvc.TagMessage(ctx, wctx.release)
			if err != nil {
				return nil, fmt.Errorf("failed to build tag message: %w", err)
			}
			if err := o.gitRepo.CreateTag(ctx, wctx.release.TagName, tagMsg); err != nil {
				return nil, fmt.Errorf("failed to create tag: %w", err)
			}
			return map[string]any{"tag": wctx.release.TagName}, nil
		},
		Compensate: compensator.DeleteLocalTag,
	})
}

func (o *ReleaseOrchestrator) addPushCommitStep(
	saga *SagaExecutor,
	cfg ReleaseConfig,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Push Commit",
		Type: domain.StepTypePushCommit,
		Execute: func(ctx context.Context) (map[string]any, error) {
			if wctx.release == nil || cfg.DryRun {
				return map[string]any{"skip": true}, nil
			}
			if err := o.gitRepo.PushBranch(ctx, o.config.MainBranch); err != nil {
				return nil, fmt.Errorf("failed to push commit: %w", err)
			}
			return map[string]any{
				"pushed": true,
				"branch": o.config.MainBranch,
			}, nil
		},
		Compensate: compensator.NoOp,
	})
}

func (o *ReleaseOrchestrator) addPushTagStep(
	saga *SagaExecutor,
	cfg ReleaseConfig,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Push Tag",
		Type: domain.StepTypePushTag,
		Execute: func(ctx context.Context) (map[string]any, error) {
			if wctx.release == nil || cfg.DryRun {
				return map[string]any{"skip": true}, nil
			}
			if err := o.gitRepo.PushTag(ctx, wctx.release.TagName); err != nil {
				return nil, fmt.Errorf("commit pushed but tag push failed, manual intervention required: %w", err)
			}
			return map[string]any{
				"pushed": true,
				"tag":    wctx.release.TagName,
			}, nil
		},
		Compensate: compensator.NoOp,
	})
}

func (o *ReleaseOrchestrator) addAnnounceStep(
	saga *SagaExecutor,
	cfg ReleaseConfig,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Announce Release",
		Type: domain.StepTypeAnnounceRelease,
		Execute: func(ctx context.Context) (map[string]any, error) {
			if wctx.release == nil || cfg.DryRun {
				return map[string]any{"skip": true}, nil
			}
			wctx.releaseID = o.announce(ctx, wctx.release, cfg)
			return map[string]any{"release_id": wctx.releaseID}, nil
		},
		Compensate: compensator.DeleteAnnouncement,
	})
}

func (o *ReleaseOrchestrator) addRecordHistoryStep(
	saga *SagaExecutor,
	compensator *CompensatingActions,
	wctx *workflowContext,
) {
	saga.AddStep(SagaStep{
		Name: "Record History",
		Type: domain.StepTypeRecordHistory,
		Execute: func(ctx context.Context) (map[string]any, error) {
			if wctx.release == nil {
				return map[string]any{"skip": true}, nil
			}
			wctx.release.Status = domain.ReleaseStatusPublished
			o.recordHistory(ctx, wctx.release)
			return map[string]any{"run_id": wctx.runID}, nil
		},
		Compensate: compensator.NoOp,
	})
}

// performRollback compensates a previously failed release run
func (o *ReleaseOrchestrator) performRollback(ctx context.Context, runID string) error {
	if runID == "" {
		// Load the latest run if no ID provided
		state, err := o.stateRepo.LoadLatest(ctx)
		if err != nil {
			return fmt.Errorf("failed to load latest run: %w", err)
		}
		runID = state.RunID
	}
	saga, err := LoadExistingSaga(ctx, o.stateRepo, runID)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	compensator := NewCompensatingActions(o.gitRepo, o.githubRepo)
	// The loaded state has no function pointers, rebuild the compensators
	o.rebuildSagaSteps(saga, compensator)
	if err := saga.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	fmt.Println("✅ Rollback completed successfully")
	return nil
}

// rebuildSagaSteps rebuilds the saga steps with compensating actions
func (o *ReleaseOrchestrator) rebuildSagaSteps(saga *SagaExecutor, compensator *CompensatingActions) {
	compensateMap := map[domain.StepType]func(context.Context, map[string]any) error{
		domain.StepTypeScanChanges:     compensator.NoOp,
		domain.StepTypeDecideBump:      compensator.NoOp,
		domain.StepTypeApplyVersion:    compensator.RestoreVersionFile,
		domain.StepTypeCommitVersion:   compensator.ResetCommit,
		domain.StepTypeCreateTag:       compensator.DeleteLocalTag,
		domain.StepTypePushCommit:      compensator.NoOp,
		domain.StepTypePushTag:         compensator.NoOp,
		domain.StepTypeAnnounceRelease: compensator.DeleteAnnouncement,
		domain.StepTypeRecordHistory:   compensator.NoOp,
	}
	for _, rec := range saga.GetState().Steps {
		if compensate, ok := compensateMap[rec.Type]; ok {
			saga.steps = append(saga.steps, SagaStep{
				Name:       string(rec.Type),
				Type:       rec.Type,
				Execute:    nil, // Not needed for rollback
				Compensate: compensate,
			})
		}
	}
}
