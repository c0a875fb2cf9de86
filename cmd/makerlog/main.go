// Package main runs the makerlog server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpggio/makerlog/internal/config"
)

var (
	// version is set at build time.
	version = "dev"

	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "makerlog",
	Short: "DIY project discovery and progress tracking server",
	Long: `makerlog forwards project photos to an analysis backend, caches the
generated guides and tracks progress through their steps.

Without a subcommand the transport is taken from configuration.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Transport.Mode == "stdio" {
			return runStdio(cmd.Context(), cfg)
		}
		return runHTTP(cmd.Context(), cfg)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the makerlog version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (overrides MAKERLOG_CONFIG_PATH)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		if err := os.Setenv("MAKERLOG_CONFIG_PATH", configPath); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return config.Config{}, err
	}
	return cfg, nil
}
