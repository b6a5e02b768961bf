package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zabbup-hq/zabbup/pkg/cli"
	"zabbup-hq/zabbup/pkg/telemetry/health"
)

// Build metadata, overridden with -ldflags "-X main.Version=...".
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the zabbup version and the commit and date it was built from.

With --json the output matches the daemon's /version endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := health.NewVersionInfo(Version, GitCommit, BuildDate)
		out := cmd.OutOrStdout()
		if versionJSON {
			return cli.NewFormatter(cli.FormatJSON).FormatTo(out, info)
		}
		_, err := fmt.Fprintf(out, "zabbup %s (commit %s, built %s, %s)\n",
			info.Version, info.Commit, info.BuildTime, info.GoVersion)
		return err
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print version information as JSON")
	rootCmd.AddCommand(versionCmd)
}
