package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

var (
	watchProcess   bool
	watchReprocess bool
	watchOnce      bool
)

var errInboxServiceMissing = errors.New("inbox service not configured")

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Import PDFs from a directory and watch it for new ones",
	Long: `Registers every PDF under the directory that is not yet a paper, then keeps
watching the directory tree and registers PDFs as they are saved. Hidden
files and directories are ignored.

Use --once to import without watching, and --process to run the ingest
pipeline for each new paper. Press ctrl+c to stop watching.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchProcess, "process", "p", false, "process each new paper")
	watchCmd.Flags().BoolVar(&watchReprocess, "reprocess", false, "reprocess known papers whose PDF is rewritten")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "import the directory and exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if inboxService == nil {
		return errInboxServiceMissing
	}
	opts := domain.InboxOptions{Process: watchProcess, Reprocess: watchReprocess}

	if watchOnce {
		papers, err := inboxService.Import(cmd.Context(), args[0], opts)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", args[0], err)
		}
		if jsonFlag {
			if papers == nil {
				papers = []domain.Paper{}
			}
			return printJSON(cmd, papers)
		}
		for i := range papers {
			printAdded(cmd, &papers[i])
		}
		cmd.Println(mutedStyle.Render(fmt.Sprintf("%d papers imported", len(papers))))
		return nil
	}

	if !jsonFlag {
		cmd.Println(mutedStyle.Render("Watching " + args[0] + " (ctrl+c to stop)"))
	}
	err := inboxService.Watch(cmd.Context(), args[0], opts, func(p domain.Paper) {
		if jsonFlag {
			_ = printJSON(cmd, p)
			return
		}
		printAdded(cmd, &p)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", args[0], err)
	}
	return nil
}

func printAdded(cmd *cobra.Command, p *domain.Paper) {
	cmd.Printf("%s  %s  %s\n", p.ID, statusLabel(p.Status), p.PDFPath)
}
