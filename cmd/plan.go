package cmd

import (
	"github.com/relkit/relkit/internal/orchestrator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewPlanCmd creates the plan command
func NewPlanCmd(c *container, o *orchestrator.PlanOrchestrator) *cobra.Command {
	var (
		planCIOutput bool
		planForce    bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a release run would do without changing anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := orchestrator.PlanConfig{
				CIOutput: planCIOutput,
				Force:    planForce,
			}
			c.logger.Debug("computing release plan", zap.Bool("force", planForce))
			return o.Execute(cmd.Context(), cfg)
		},
	}
	cmd.Flags().BoolVar(&planCIOutput, "ci-output", false, "Output in CI-friendly key=value format")
	cmd.Flags().BoolVar(&planForce, "force", false, "Plan a release even if no commits landed since the last tag")
	return cmd
}
