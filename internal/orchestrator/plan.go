package orchestrator

import (
	"context"
	"fmt"

	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/domain"
	"github.com/relkit/relkit/internal/repository"
	"github.com/relkit/relkit/internal/service"
	"github.com/relkit/relkit/internal/usecase"
)

// PlanConfig holds configuration for the plan orchestrator
type PlanConfig struct {
	CIOutput bool // Output in CI format
	Force    bool // Plan a release even when no commits landed since the last tag
}

// PlanOrchestrator computes what a release run would do without touching the
// repository: no file write, no commit, no tag, no push.
type PlanOrchestrator struct {
	gitRepo        repository.GitRepository
	versionFileSvc service.VersionFileService
	config         *config.Config
}

// NewPlanOrchestrator creates a new PlanOrchestrator
func NewPlanOrchestrator(
	gitRepo repository.GitRepository,
	versionFileSvc service.VersionFileService,
	cfg *config.Config,
) *PlanOrchestrator {
	return &PlanOrchestrator{
		gitRepo:        gitRepo,
		versionFileSvc: versionFileSvc,
		config:         cfg,
	}
}

// Execute computes and prints the release plan
func (o *PlanOrchestrator) Execute(ctx context.Context, cfg PlanConfig) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultWorkflowTimeout)
	defer cancel()
	changes, proceed, err := o.scanChanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan changes: %w", err)
	}
	o.printCIOutput(cfg.CIOutput, "has_changes=%t\n", proceed)
	o.printCIOutput(cfg.CIOutput, "latest_tag=%s\n", changes.BaseTag)
	o.printScanSummary(cfg.CIOutput, changes)
	level, err := o.decideBump(ctx, changes)
	if err != nil {
		return fmt.Errorf("failed to decide bump: %w", err)
	}
	if level == domain.BumpNone {
		if !cfg.Force {
			o.printStatus(cfg.CIOutput, "Nothing to release: no commits since the last tag")
			return nil
		}
		level = domain.BumpPatch
	}
	o.printCIOutput(cfg.CIOutput, "bump=%s\n", level)
	current, next, err := o.projectVersion(ctx, level)
	if err != nil {
		return fmt.Errorf("failed to project version: %w", err)
	}
	o.printCIOutput(cfg.CIOutput, "version=%s\n", next.Plain())
	o.printCIOutput(cfg.CIOutput, "tag=%s\n", next.String())
	o.printDecisionSummary(cfg.CIOutput, level, current, next)
	return nil
}

// scanChanges runs the read-only commit scan
func (o *PlanOrchestrator) scanChanges(ctx context.Context) (*domain.ChangeSet, bool, error) {
	uc := &usecase.CheckChangesUseCase{
		GitRepo:        o.gitRepo,
		InitialVersion: o.config.InitialVersion,
	}
	return uc.Execute(ctx)
}

func (o *PlanOrchestrator) decideBump(ctx context.Context, changes *domain.ChangeSet) (domain.BumpLevel, error) {
	uc := &usecase.DecideBumpUseCase{}
	return uc.Execute(ctx, changes)
}

// projectVersion reads the current version and computes the bumped one
// without writing anything back
func (o *PlanOrchestrator) projectVersion(
	ctx context.Context,
	level domain.BumpLevel,
) (*domain.Version, *domain.Version, error) {
	current, err := o.versionFileSvc.Read(ctx, o.config.VersionFile)
	if err != nil {
		if o.config.InitialVersion == "" {
			return nil, nil, fmt.Errorf("failed to read current version: %w", err)
		}
		current, err = domain.NewVersion(o.config.InitialVersion)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid initial version %q: %w", o.config.InitialVersion, err)
		}
	}
	return current, current.Bump(level), nil
}

func (o *PlanOrchestrator) printScanSummary(ciOutput bool, changes *domain.ChangeSet) {
	base := changes.BaseTag
	if base == "" {
		base = "the beginning of history"
	}
	o.printStatus(ciOutput, fmt.Sprintf("### 🔍 Commits since %s", base))
	o.printStatus(ciOutput, fmt.Sprintf("- total: %d (patch: %d, minor: %d, major: %d)",
		changes.Total, changes.PatchMarked, changes.MinorMarked, changes.MajorMarked))
}

func (o *PlanOrchestrator) printDecisionSummary(
	ciOutput bool,
	level domain.BumpLevel,
	current, next *domain.Version,
) {
	o.printStatus(ciOutput, "### 🧮 Decision")
	o.printStatus(ciOutput, fmt.Sprintf("- bump: %s", level))
	o.printStatus(ciOutput, fmt.Sprintf("- current version: %s", current.Plain()))
	o.printStatus(ciOutput, fmt.Sprintf("- next version: %s", next.Plain()))
	o.printStatus(ciOutput, fmt.Sprintf("- tag: %s", next.String()))
}

// printCIOutput prints output in CI format if enabled
func (o *PlanOrchestrator) printCIOutput(ciOutput bool, format string, args ...any) {
	if ciOutput {
		fmt.Printf(format, args...)
	}
}

// printStatus prints status if not CI
func (o *PlanOrchestrator) printStatus(ciOutput bool, message string) {
	if !ciOutput {
		fmt.Println(message)
	}
}
