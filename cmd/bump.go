package cmd

import (
	"github.com/relkit/relkit/internal/orchestrator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewBumpCmd creates the bump command
func NewBumpCmd(c *container, orch *orchestrator.ReleaseOrchestrator) *cobra.Command {
	var (
		bumpForce          bool
		bumpDryRun         bool
		bumpCIOutput       bool
		bumpSkipAnnounce   bool
		bumpEnableRollback bool
		bumpRollback       bool
		bumpRunID          string
	)
	cmd := &cobra.Command{
		Use:   "bump",
		Short: "Bump the version, commit, tag and push",
		Long: `Run the full release workflow:
- Scans commit messages since the last tag for version markers
  (#PATCH_VERSION, #MINOR_VERSION, #MAJOR_VERSION)
- Decides the bump level (patch markers or unmarked commits bump patch,
  then minor, then major)
- Bumps current_version in the version file
- Commits the file, creates annotated tag v<version>, pushes both

The run is fail-fast: any error aborts it and nothing is retried. With
--enable-rollback the local steps (version file, commit, tag) are undone
on failure; pushed refs are never rolled back.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := orchestrator.ReleaseConfig{
				Force:          bumpForce,
				DryRun:         bumpDryRun,
				CIOutput:       bumpCIOutput,
				SkipAnnounce:   bumpSkipAnnounce,
				EnableRollback: bumpEnableRollback,
				Rollback:       bumpRollback,
				RunID:          bumpRunID,
			}
			c.logger.Info("starting release run",
				zap.Bool("force", bumpForce),
				zap.Bool("dry_run", bumpDryRun),
				zap.Bool("rollback", bumpRollback))
			if err := orch.Execute(cmd.Context(), cfg); err != nil {
				c.logger.Error("release run failed", zap.Error(err))
				return err
			}
			c.logger.Info("release run finished")
			return nil
		},
	}

	cmd.Flags().BoolVar(&bumpForce, "force", false, "Release even if no commits landed since the last tag")
	cmd.Flags().BoolVar(&bumpDryRun, "dry-run", false, "Bump the version file locally without commit, tag or push")
	cmd.Flags().BoolVar(&bumpCIOutput, "ci-output", false, "Output in CI-friendly key=value format")
	cmd.Flags().BoolVar(&bumpSkipAnnounce, "skip-announce", false, "Skip the GitHub release announcement")
	cmd.Flags().BoolVar(&bumpEnableRollback, "enable-rollback", false, "Undo local steps automatically on failure")
	cmd.Flags().BoolVar(&bumpRollback, "rollback", false, "Compensate a previously failed run")
	cmd.Flags().StringVar(&bumpRunID, "run-id", "", "Run ID to rollback (uses latest if not specified)")
	return cmd
}
