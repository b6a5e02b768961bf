package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "zabbup",
	Short: "Zabbup - Zabbix configuration backup",
	Long: `Zabbup exports Zabbix configuration objects and stores one artifact per
object in a git repository and/or an S3-compatible bucket.

  - Templates, hosts, maps, media types and the other exportable types
  - YAML, JSON or XML artifacts, optionally encrypted
  - Git commits only when something changed
  - Versioned, retention-locked S3 uploads
  - Scheduled runs with health and metrics endpoints`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warning, error, critical)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log format (text, json)")
}
