package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"

	"zabbup-hq/zabbup/pkg/zabbix"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "zabbix.url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateGeneral(&cfg.General)...)
	errs = append(errs, validateZabbix(&cfg.Zabbix)...)
	errs = append(errs, validateInputs(&cfg.Inputs)...)
	errs = append(errs, validateGit(&cfg.Outputs.Git)...)
	errs = append(errs, validateS3(&cfg.Outputs.S3)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateDaemon(&cfg.Daemon)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// logLevels lists the accepted log level names, including the aliases of
// the Python logging module used by older configuration files.
var logLevels = map[string]bool{
	"debug":    true,
	"info":     true,
	"warn":     true,
	"warning":  true,
	"error":    true,
	"critical": true,
}

func validateGeneral(cfg *GeneralConfig) []FieldError {
	var errs []FieldError

	if !logLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, FieldError{
			Field:   "general.loglevel",
			Message: fmt.Sprintf("invalid log level %q (must be debug, info, warning, error or critical)", cfg.LogLevel),
		})
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, FieldError{
			Field:   "general.log_format",
			Message: fmt.Sprintf("invalid log format %q (must be text or json)", cfg.LogFormat),
		})
	}

	if cfg.MaxThreads < 1 {
		errs = append(errs, FieldError{
			Field:   "general.max_threads",
			Message: "max threads must be a positive integer",
		})
	}

	return errs
}

func validateZabbix(cfg *ZabbixConfig) []FieldError {
	var errs []FieldError

	if cfg.URL == "" {
		errs = append(errs, FieldError{
			Field:   "zabbix.url",
			Message: "url is required",
		})
	} else if u, err := url.Parse(cfg.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "zabbix.url",
			Message: fmt.Sprintf("invalid url %q (must be an http or https URL)", cfg.URL),
		})
	}

	auth := cfg.Auth
	if auth.Token != "" {
		if auth.User != "" || auth.Password != "" {
			errs = append(errs, FieldError{
				Field:   "zabbix.auth",
				Message: "if token is set, user and password must not be set",
			})
		}
	} else if auth.User == "" || auth.Password == "" {
		errs = append(errs, FieldError{
			Field:   "zabbix.auth",
			Message: "if token is not set, both user and password must be set",
		})
	}

	if !zabbix.ExportFormat(cfg.ExportFormat).Valid() {
		errs = append(errs, FieldError{
			Field:   "zabbix.export_format",
			Message: fmt.Sprintf("invalid export format %q (must be yaml, json or xml)", cfg.ExportFormat),
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "zabbix.timeout",
			Message: "timeout must be positive",
		})
	}

	if cfg.ListLimit < 0 {
		errs = append(errs, FieldError{
			Field:   "zabbix.list_limit",
			Message: "list limit must be non-negative",
		})
	}

	return errs
}

func validateInputs(cfg *InputsConfig) []FieldError {
	var errs []FieldError

	enabled := 0
	for _, t := range cfg.Order {
		tc := cfg.Types[t]
		if tc == nil {
			continue
		}
		if tc.Enable {
			enabled++
		}
		for i, pattern := range tc.Excludes {
			if _, err := regexp.Compile(pattern); err != nil {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("inputs.%s.excludes[%d]", t, i),
					Message: fmt.Sprintf("invalid regular expression: %v", err),
				})
			}
		}
	}

	if enabled == 0 {
		errs = append(errs, FieldError{
			Field:   "inputs",
			Message: "at least one object type must be enabled",
		})
	}

	return errs
}

func validateGit(cfg *GitConfig) []FieldError {
	if !cfg.Enable {
		return nil
	}

	var errs []FieldError

	if cfg.Repo == "" {
		errs = append(errs, FieldError{
			Field:   "outputs.git.repo",
			Message: "repository is required when git output is enabled",
		})
	}

	switch cfg.Auth.Type {
	case "none":
	case "token":
		if cfg.Auth.Token == "" {
			errs = append(errs, FieldError{
				Field:   "outputs.git.auth.token",
				Message: "token is required when auth type is token",
			})
		}
	case "ssh":
		if cfg.Auth.SSHKeyPath == "" {
			errs = append(errs, FieldError{
				Field:   "outputs.git.auth.ssh_key_path",
				Message: "ssh key path is required when auth type is ssh",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "outputs.git.auth.type",
			Message: fmt.Sprintf("invalid auth type %q (must be none, token or ssh)", cfg.Auth.Type),
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "outputs.git.timeout",
			Message: "timeout must be positive",
		})
	}

	return errs
}

func validateS3(cfg *S3Config) []FieldError {
	if !cfg.Enable {
		return nil
	}

	var errs []FieldError

	required := []struct {
		field string
		value string
	}{
		{"outputs.s3.url", cfg.URL},
		{"outputs.s3.access_key", cfg.AccessKey},
		{"outputs.s3.secret_key", cfg.SecretKey},
		{"outputs.s3.bucket", cfg.Bucket},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, FieldError{
				Field:   r.field,
				Message: "field is required when s3 output is enabled",
			})
		}
	}

	if cfg.Lifecycle.Days < 1 {
		errs = append(errs, FieldError{
			Field:   "outputs.s3.lifecycle.days",
			Message: "lifecycle days must be a positive integer",
		})
	}
	if cfg.Retention.Days < 1 {
		errs = append(errs, FieldError{
			Field:   "outputs.s3.retention.days",
			Message: "retention days must be a positive integer",
		})
	}

	return errs
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	if !cfg.IsEnabled() {
		return nil
	}

	var errs []FieldError

	switch cfg.Backend {
	case "sqlite":
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "history.path",
				Message: "path is required for the sqlite backend",
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "history.backend",
			Message: fmt.Sprintf("invalid backend %q (must be sqlite or memory)", cfg.Backend),
		})
	}

	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention_days",
			Message: "retention days must be non-negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if cfg.Metrics.PushgatewayURL != "" {
		if u, err := url.Parse(cfg.Metrics.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.pushgateway_url",
				Message: fmt.Sprintf("invalid url %q", cfg.Metrics.PushgatewayURL),
			})
		}
	}
	if cfg.Metrics.Path != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "path must start with /",
		})
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}

func validateDaemon(cfg *DaemonConfig) []FieldError {
	var errs []FieldError

	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "daemon.schedule",
			Message: fmt.Sprintf("invalid cron expression: %v", err),
		})
	}

	if cfg.StaleAfter < 0 {
		errs = append(errs, FieldError{
			Field:   "daemon.stale_after",
			Message: "stale after must be non-negative",
		})
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "daemon.tls",
				Message: "cert_file and key_file are required when TLS is enabled",
			})
		}
		switch cfg.TLS.MinVersion {
		case "1.2", "1.3":
		default:
			errs = append(errs, FieldError{
				Field:   "daemon.tls.min_version",
				Message: fmt.Sprintf("invalid TLS version %q (must be 1.2 or 1.3)", cfg.TLS.MinVersion),
			})
		}
		if cfg.TLS.ReloadInterval <= 0 {
			errs = append(errs, FieldError{
				Field:   "daemon.tls.reload_interval",
				Message: "reload interval must be positive",
			})
		}
	}

	return errs
}
