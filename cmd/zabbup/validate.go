package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"zabbup-hq/zabbup/pkg/cli"
	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/security/secrets"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Load and validate the configuration file, resolve every secret reference
and the per-type encryption settings.

Nothing is exported and Zabbix is not contacted.

Examples:
  zabbup validate --config /etc/zabbup/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	mgr, err := secrets.NewManager(&cfg.Secrets, logger)
	if err != nil {
		return cli.NewConfigError(cfgFile, fmt.Errorf("secrets: %w", err))
	}
	defer mgr.Close()

	resolved, err := mgr.ResolveConfig(context.Background(), cfg)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	settings, err := config.Resolve(resolved)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration %s is valid\n", cfgFile)
	fmt.Fprintf(out, "  zabbix:  %s (%s)\n", cfg.Zabbix.URL, cfg.Zabbix.ExportFormat)
	for _, ts := range settings.Enabled() {
		var flags []string
		if ts.Encrypt {
			flags = append(flags, "encrypted")
		}
		if ts.Deterministic {
			flags = append(flags, "deterministic")
		}
		if len(ts.Excludes) > 0 {
			flags = append(flags, fmt.Sprintf("%d excludes", len(ts.Excludes)))
		}
		if len(flags) > 0 {
			fmt.Fprintf(out, "  input:   %s [%s]\n", ts.Type, strings.Join(flags, ", "))
		} else {
			fmt.Fprintf(out, "  input:   %s\n", ts.Type)
		}
	}
	fmt.Fprintf(out, "  outputs: %s\n", enabledOutputs(&cfg.Outputs))
	return nil
}

func enabledOutputs(o *config.OutputsConfig) string {
	var names []string
	if o.Git.Enable {
		names = append(names, "git "+o.Git.Repo)
	}
	if o.S3.Enable {
		names = append(names, "s3 "+o.S3.Bucket)
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
