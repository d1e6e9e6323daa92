package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/axellelanca/clickfix/internal/config"
	"github.com/axellelanca/clickfix/internal/logger"
)

// Cfg is the global variable that will contain the loaded configuration
// It will be accessible to all Cobra commands throughout the application
var Cfg *config.Config

// RootCmd is the base command for the CLI application
// All other commands (run-server, migrate, create-campaign, ...) are added as subcommands
var RootCmd = &cobra.Command{
	Use:   "clickfix",
	Short: "A security-awareness exercise tracker",
	Long: `ClickFix serves fake error pages to exercise targets, tracks the funnel
from page view to payload execution and training, and reports the results
per campaign and client.`,
}

// Execute is the main entry point for the Cobra application
// It is called from 'main.go' and handles command execution and error handling
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Subcommands register themselves via their own init() functions.
	cobra.OnInitialize(initConfig)
}

// initConfig loads the application configuration before any command runs
func initConfig() {
	var err error

	Cfg, err = config.LoadConfig()
	if err != nil {
		logger.Fatalf("Problem loading configuration: %v", err)
	}
	logger.Init(Cfg.Server.Env)
}
