// Package cmd defines Cobra command definitions for the sokobot CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agrisoko/sokobot/core/buildinfo"
	"github.com/agrisoko/sokobot/core/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "sokobot",
	Short:         "WhatsApp bot connecting produce sellers with buyers",
	Long:          "Sokobot runs a WhatsApp Cloud API webhook that lets sellers publish produce listings and buyers subscribe, browse, and bid over plain text commands.",
	Version:       buildinfo.String(),
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (defaults to $CONFIG_PATH, then config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
