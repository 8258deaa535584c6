package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/fwledger/pkg/codec"
	"github.com/ssargent/fwledger/pkg/ledger"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate the file structure",
	Long: `Check that the first line is a header, the last line a footer and every
line in between a transaction, each exactly 120 bytes long.

Example:
  fwledger validate ledger.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if err := requireFile(path); err != nil {
			return err
		}
		if err := container.GetLedgerService(path).Validate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "File validation passed.")
		return nil
	},
}

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add a new transaction to the file",
	Long: `Append a transaction right before the footer. The counter is assigned
automatically and the footer counter and control sum are updated.

Example:
  fwledger add ledger.txt --amount 100 --currency PLN`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		amount, _ := cmd.Flags().GetInt64("amount")
		currency, _ := cmd.Flags().GetString("currency")

		currency, err := codec.Currency(currency)
		if err != nil {
			return err
		}
		if err := requireFile(path); err != nil {
			return err
		}

		outcome, err := container.GetLedgerService(path).AppendTransaction(cmd.Context(), amount, currency)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Transaction added successfully (counter %s).\n", outcome.Value)
		return nil
	},
}

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <file>",
	Short: "Set the value of a field",
	Long: `Write a value into a field of the record at a 0-based index. Closed
fields (field_id, counter) are never changed. Updating an amount moves the
footer control sum by the difference.

Example:
  fwledger set ledger.txt --index 1 --field amount --value 200.00`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		index, _ := cmd.Flags().GetInt("index")
		field, _ := cmd.Flags().GetString("field")
		value, _ := cmd.Flags().GetString("value")

		if err := requireFile(path); err != nil {
			return err
		}

		outcome, err := container.GetLedgerService(path).SetField(cmd.Context(), index, field, value)
		if err != nil {
			return err
		}
		if printWarning(cmd, outcome) {
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Field updated successfully.")
		return nil
	},
}

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <file>",
	Short: "Get the value of a field",
	Long: `Read a field of the record at a 0-based index. total_counter and
control_sum are read from the footer whatever the index.

Example:
  fwledger get ledger.txt --index 1 --field amount`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		index, _ := cmd.Flags().GetInt("index")
		field, _ := cmd.Flags().GetString("field")

		if err := requireFile(path); err != nil {
			return err
		}

		outcome, err := container.GetLedgerService(path).GetField(cmd.Context(), index, field)
		if err != nil {
			return err
		}
		if printWarning(cmd, outcome) {
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "The value of the field '%s' is: %s\n", field, outcome.Value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd, addCmd, setCmd, getCmd)

	addCmd.Flags().Int64("amount", 0, "Transaction amount in whole units (non-negative integer)")
	addCmd.Flags().String("currency", "", "Currency of the transaction: PLN, USD or EUR")
	addCmd.MarkFlagRequired("amount")
	addCmd.MarkFlagRequired("currency")

	setCmd.Flags().Int("index", 0, "Index of the record to modify (0-based)")
	setCmd.Flags().String("field", "", "Field name to modify")
	setCmd.Flags().String("value", "", "New value for the field")
	setCmd.MarkFlagRequired("index")
	setCmd.MarkFlagRequired("field")
	setCmd.MarkFlagRequired("value")

	getCmd.Flags().Int("index", 0, "Index of the record to read (0-based)")
	getCmd.Flags().String("field", "", "Field name to read")
	getCmd.MarkFlagRequired("index")
	getCmd.MarkFlagRequired("field")
}

// printWarning prints the warning of a no-op outcome and reports whether
// there was one
func printWarning(cmd *cobra.Command, outcome ledger.Outcome) bool {
	if outcome.HasValue() {
		return false
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Warning: %s\n", outcome.Warning.Message)
	return true
}
