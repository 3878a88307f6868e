package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"BCVRates/internal/app"
	"BCVRates/internal/config"
	"BCVRates/internal/logging"
)

var overrides config.Overrides

var rootCmd = &cobra.Command{
	Use:           "bcvrates",
	Short:         "Scrape the BCV reference exchange rates",
	Long:          `Fetches the Banco Central de Venezuela reference-rate page once and emits the publication date and the USD, EUR, CNY, TRY and RUB rates as a JSON record.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load(overrides)
		logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

		if err := app.New(cfg, logger).Run(cmd.Context()); err != nil {
			logger.Error("run failed", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&overrides.ConfigPath, "config", "", "Path to YAML config (default $BCV_RATES_CONFIG)")
	rootCmd.Flags().StringVar(&overrides.URL, "url", "", "Page to scrape (default $BCV_RATES_URL or the BCV page)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
