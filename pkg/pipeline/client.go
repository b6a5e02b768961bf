package pipeline

import (
	"context"
	"log/slog"

	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/export"
	"zabbup-hq/zabbup/pkg/zabbix"
)

// Client is the Zabbix API used by a run.
type Client interface {
	export.API
	Connect(ctx context.Context) error
	Version() zabbix.Version
	Logout(ctx context.Context) error
}

// ClientFactory creates the Zabbix client of a run.
type ClientFactory func(cfg *config.ZabbixConfig, logger *slog.Logger) (Client, error)

// NewZabbixClient is the default ClientFactory.
func NewZabbixClient(cfg *config.ZabbixConfig, logger *slog.Logger) (Client, error) {
	client, err := zabbix.NewClient(zabbix.ClientConfig{
		URL:                cfg.URL,
		User:               cfg.Auth.User,
		Password:           cfg.Auth.Password,
		Token:              cfg.Auth.Token,
		Timeout:            cfg.Timeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// effectiveFormat returns the export format to request from a server
// running version. Servers older than 5.4 only export xml.
func effectiveFormat(requested zabbix.ExportFormat, version zabbix.Version) zabbix.ExportFormat {
	if version.Before(5, 4) {
		return zabbix.FormatXML
	}
	return requested
}
