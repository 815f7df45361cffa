package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/relkit/relkit/internal/repository"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd(c *container) *cobra.Command {
	var historyLimit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent releases from the local ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
			loader.Color("yellow") //nolint:errcheck
			loader.Suffix = " Loading release history..."
			loader.Start()
			entries, err := c.historyRepo.List(cmd.Context(), historyLimit)
			loader.Stop()
			if err != nil {
				return fmt.Errorf("failed to load release history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("No releases recorded yet")
				return nil
			}
			drawHistoryTable(entries)
			return nil
		},
	}
	cmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of releases to show")
	return cmd
}

func drawHistoryTable(entries []repository.HistoryEntry) {
	fmt.Println("\n" + text.FgGreen.Sprint("📦 Release History"))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Tag", "Level", "From", "To", "Commits", "Markers (P/M/M)", "Status", "Date"})

	for _, e := range entries {
		markers := fmt.Sprintf("%d/%d/%d", e.PatchMarked, e.MinorMarked, e.MajorMarked)
		t.AppendRow(table.Row{
			e.TagName,
			e.Level,
			e.PreviousVersion,
			e.Version,
			e.TotalCommits,
			markers,
			formatStatus(e.Status),
			e.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func formatStatus(status string) string {
	switch status {
	case "published":
		return text.FgGreen.Sprint(status)
	case "failed":
		return text.FgRed.Sprint(status)
	default:
		return text.FgYellow.Sprint(status)
	}
}
