package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/longkey1/gptmd/internal/gptmd/branch"
	"github.com/longkey1/gptmd/internal/gptmd/config"
	"github.com/longkey1/gptmd/internal/gptmd/export"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list <input>",
	Short: "List the conversations in an export file",
	Long: `List the conversations contained in an export file, most recently updated first.

MESSAGES is the number of nodes on the branch that convert would render.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := config.NormalizePathArg(args[0])
		if !isReadableFile(input) {
			return exitError(exitUnreadable, "input file does not exist or is not readable: %s", input)
		}

		convs, err := export.LoadFile(input)
		if err != nil {
			if errors.Is(err, export.ErrInvalidJSON) || errors.Is(err, export.ErrNotConversation) {
				return exitError(exitInvalidJSON, "%w", err)
			}
			return exitError(exitUnreadable, "reading input: %w", err)
		}
		export.SortNewestFirst(convs)

		// Print table header
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUPDATED\tMESSAGES\tTITLE")
		fmt.Fprintln(w, "--\t-------\t--------\t-----")

		for _, conv := range convs {
			updated := "-"
			if t := conv.UpdatedAt(); !t.IsZero() {
				updated = t.Format("2006-01-02")
			}
			title := conv.Title
			if title == "" {
				title = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				conv.GetShortID(),
				updated,
				len(branch.Resolve(conv.Mapping, conv.CurrentNode)),
				title,
			)
		}
		w.Flush()

		fmt.Printf("\nUse 'gptmd convert %s -c <id>' to convert one conversation.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
