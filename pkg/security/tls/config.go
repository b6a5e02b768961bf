package tls

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"

	"zabbup-hq/zabbup/pkg/config"
)

// ServerConfig builds the TLS configuration of the daemon HTTP server. It
// loads the certificate and keeps reloading it from disk until ctx is
// done. It returns nil when TLS is disabled.
func ServerConfig(ctx context.Context, cfg *config.ServerTLSConfig, logger *slog.Logger) (*tls.Config, error) {
	if cfg == nil {
		return nil, errors.New("tls config cannot be nil")
	}
	if !cfg.Enabled {
		return nil, nil
	}

	reloader := NewCertificateReloader(cfg.CertFile, cfg.KeyFile, cfg.ReloadInterval, logger)
	if err := reloader.Start(ctx); err != nil {
		return nil, err
	}

	// #nosec G402 - MinVersion is validated to 1.2 or 1.3
	return &tls.Config{
		MinVersion:     parseTLSVersion(cfg.MinVersion),
		GetCertificate: reloader.GetCertificateFunc(),
	}, nil
}

// parseTLSVersion maps "1.2" to TLS 1.2 and anything else to TLS 1.3.
func parseTLSVersion(v string) uint16 {
	if v == "1.2" {
		return tls.VersionTLS12
	}
	return tls.VersionTLS13
}
