/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Start the REST API server",
	Long: `Start the fwledger REST API server over one ledger file. Requests are
served one at a time, so the file has a single writer.

When no file is given, ledger_path from the configuration is used. The
/api/v1 routes require the X-API-Key header when an API key is configured.

Examples:
  fwledger serve ledger.txt --port 8080
  fwledger serve --config ./fwledger.yaml --api-key mysecretkey`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.GetConfig()

		path := cfg.LedgerPath
		if len(args) == 1 {
			path = args[0]
		}
		if err := requireFile(path); err != nil {
			return err
		}

		if cmd.Flags().Changed("bind") {
			cfg.Server.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.Server.APIKey, _ = cmd.Flags().GetString("api-key")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmd.Printf("Serving %s on %s\n", path, cfg.Server.Address())
		cmd.Printf("Metrics available at: http://%s/metrics\n", cfg.Server.Address())

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(ctx, container.GetServer(path))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to (default from config)")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (default from config)")
	serveCmd.Flags().String("api-key", "", "API key required on /api/v1 (default from config)")
}
