package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/sitepass/internal/cli"
	"github.com/aretw0/sitepass/internal/config"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sitepass",
	Short: "sitepass tracks maintenance scheduling conversations with contractors",
	Long: `sitepass follows each contractor email thread through the scheduling workflow
(RAMS and engineer names), checks engineer inductions against the maintenance
date and validates requested dates against the pre-approved maintenance windows.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", domain.MessageOf(err))
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("store", "", "Record store backend: memory, file, xlsx, redis or postgres")
	rootCmd.PersistentFlags().String("dir", "", "Directory holding the record tables (file and xlsx stores)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
}

// loadConfig reads the configuration and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if cmd.Flags().Changed("store") {
		cfg.Store.Backend, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("dir") {
		cfg.Store.Dir, _ = cmd.Flags().GetString("dir")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg.Log, debug)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openApp loads the configuration and bootstraps the service.
func openApp(cmd *cobra.Command, hooks ...domain.LifecycleHooks) (*cli.App, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.Bootstrap(cmd.Context(), cfg, logger, hooks...)
}

func printer(cmd *cobra.Command) *cli.Printer {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return cli.NewPrinter(cmd.OutOrStdout(), jsonMode)
}
