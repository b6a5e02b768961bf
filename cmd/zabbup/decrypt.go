package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zabbup-hq/zabbup/pkg/cli"
	"zabbup-hq/zabbup/pkg/security/encryption"
	"zabbup-hq/zabbup/pkg/security/secrets"
)

var decryptFlags struct {
	file string
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt an artifact",
	Long: `Print the plaintext of an encrypted artifact using general.encryption_key
from the configuration. Secret references in the key are resolved first.

Examples:
  zabbup decrypt --file hosts/Zabbixserver_10084.yaml > host.yaml`,
	RunE: decryptFile,
}

func init() {
	rootCmd.AddCommand(decryptCmd)

	decryptCmd.Flags().StringVarP(&decryptFlags.file, "file", "f", "", "encrypted artifact to decrypt (required)")
	_ = decryptCmd.MarkFlagRequired("file")
}

func decryptFile(cmd *cobra.Command, args []string) error {
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

	key, err := mgr.Resolve(context.Background(), cfg.General.EncryptionKey)
	if err != nil {
		return cli.NewConfigError(cfgFile, fmt.Errorf("general.encryption_key: %w", err))
	}
	if key == "" {
		return cli.NewConfigError(cfgFile, errors.New("general.encryption_key is not set"))
	}

	data, err := os.ReadFile(decryptFlags.file)
	if err != nil {
		return cli.NewCommandError("decrypt", err)
	}

	plain, err := encryption.Decrypt(data, key)
	if err != nil {
		return cli.NewCommandError("decrypt", fmt.Errorf("%s: %w", decryptFlags.file, err))
	}

	_, err = cmd.OutOrStdout().Write(plain)
	return err
}
