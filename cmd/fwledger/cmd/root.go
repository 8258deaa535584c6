/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/fwledger/pkg/config"
	"github.com/ssargent/fwledger/pkg/di"
)

// ErrFileNotExist is returned when the ledger file named on the command line is missing
var ErrFileNotExist = errors.New("the specified file does not exist")

var container *di.Container

// SetContainer injects the dependency container. When none is set, one is
// built from the configuration before the first command runs.
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fwledger",
	Short: "fwledger - fixed-width ledger file management",
	Long: `fwledger manages fixed-width ledger files: a header record, transaction
records and a footer carrying the transaction counter and the control sum.

Every line is 120 bytes. Reading, updating and appending keep the footer
consistent with the transactions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container != nil {
			return nil
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		c, err := di.NewContainer(cfg)
		if err != nil {
			return err
		}
		container = c
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if container != nil {
		container.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (default ~/.config/fwledger/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
}

// loadConfig reads the configuration named by --config, falling back to the
// default location and then to built-in defaults
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	explicit := configPath != ""
	if !explicit {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if explicit && cmd.Name() != "init" {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

// requireFile fails with ErrFileNotExist when path is missing
func requireFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrFileNotExist, path)
	}
	return nil
}
