package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var errJournalDisabled = errors.New("journal is disabled: set journal.enabled in the configuration")

// journalCmd represents the journal command
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the operation journal",
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent journal entries, newest first",
	Long: `List the outcomes recorded in the persistent journal: reads, updates,
appended transactions, validations and warnings.

Example:
  fwledger journal list --limit 20`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		j := container.GetJournal()
		if j == nil {
			return errJournalDisabled
		}
		entries, err := j.Entries(limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tLEVEL\tOPERATION\tINDEX\tFIELD\tMESSAGE")
		for _, e := range entries {
			index := "-"
			if e.Index != nil {
				index = fmt.Sprint(*e.Index)
			}
			field := e.Field
			if field == "" {
				field = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.Time.Format(time.RFC3339), e.Level, e.Operation, index, field, e.Message)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalListCmd.Flags().IntP("limit", "l", 20, "Maximum number of entries to show")
}
