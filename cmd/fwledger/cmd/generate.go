package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/fwledger/pkg/generate"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Generate an example ledger file",
	Long: `Write a well-formed ledger with the given number of transactions
(1 to 20000) and validate it. Transaction i has amount i.

Examples:
  fwledger generate ledger.txt --transactions 5
  fwledger generate ledger.txt --transactions 1000 --currency EUR --seed 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		cfg := container.GetConfig()

		transactions, _ := cmd.Flags().GetInt("transactions")
		if !cmd.Flags().Changed("transactions") {
			transactions = cfg.Generate.Transactions
		}
		currency, _ := cmd.Flags().GetString("currency")
		if currency == "" {
			currency = cfg.Generate.Currency
		}
		seed, _ := cmd.Flags().GetUint64("seed")
		if !cmd.Flags().Changed("seed") {
			seed = cfg.Generate.Seed
		}

		_, err := generate.Generate(cmd.Context(), path, transactions, generate.Options{
			Seed:     seed,
			Currency: currency,
			Reporter: container.GetReporter(),
		})
		if err != nil {
			return err
		}
		if err := container.GetLedgerService(path).Validate(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Example file generated and validated successfully.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().IntP("transactions", "n", 0, "Number of transactions to generate (default from config)")
	generateCmd.Flags().String("currency", "", "Currency of every transaction (default from config)")
	generateCmd.Flags().Uint64("seed", 0, "Seed for the fake holder data, 0 for random (default from config)")
}
