// Package cmd provides the CLI commands for authz-gate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/authzgate/authzgate/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "authz-gate",
	Short: "authz-gate - RBAC+ABAC authorization decision service",
	Long: `authz-gate evaluates authorization requests against role hierarchies
and versioned policies, returning allow/deny decisions with an audit trail.

Quick start:
  1. Create a config file: authz-gate.yaml
  2. Run: authz-gate serve

Configuration:
  Config is loaded from authz-gate.yaml in the current directory,
  $HOME/.authz-gate/, or /etc/authz-gate/.

  Environment variables can override config values with the AUTHZ_GATE_ prefix.
  Example: AUTHZ_GATE_HTTP_ADDR=:9090

Commands:
  serve     Start the decision service
  migrate   Apply the database schema and exit
  version   Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./authz-gate.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
