/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/fwledger/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Write a configuration file with defaults and a freshly generated API key
for the REST server.

Examples:
  fwledger init
  fwledger init --config ./fwledger.yaml --ledger ./ledger.txt --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		ledgerPath, _ := cmd.Flags().GetString("ledger")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		cfg, err := initializeConfig(configPath, ledgerPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration written to %s\n", configPath)
		fmt.Fprintf(out, "Ledger: %s\n", cfg.LedgerPath)
		fmt.Fprintf(out, "API key: %s...\n", cfg.Server.APIKey[:8])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("ledger", "", "Ledger file the server uses by default")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}

// initializeConfig bootstraps a configuration at configPath
func initializeConfig(configPath, ledgerPath string) (*config.Config, error) {
	cfg, err := config.BootstrapConfig(configPath, ledgerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize configuration: %w", err)
	}
	return cfg, nil
}
