// Package logging builds the log/slog loggers used across zabbup.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  cfg.General.LogLevel,
//	    Format: cfg.General.LogFormat,
//	})
//
//	ctx = logging.WithRunID(ctx, runID)
//	logging.FromContext(ctx, logger).Info("backup started")
//
// Components derive their own logger with a component attribute:
//
//	logger.With("component", "git")
//
// Attributes named password, token, encryption_key, secret_key, access_key
// or ssh_key_passphrase are always written as [REDACTED].
package logging
