package config

import "time"

// Default values for configuration fields.
const (
	// General defaults
	DefaultLogLevel                = "info"
	DefaultLogFormat               = "text"
	DefaultMaxThreads              = 10
	DefaultEncryption              = false
	DefaultEncryptionDeterministic = false

	// Zabbix defaults
	DefaultExportFormat  = "yaml"
	DefaultZabbixTimeout = 30 * time.Second

	// Git output defaults
	DefaultGitDepth         = 1
	DefaultGitCommitMessage = "Exported data"
	DefaultGitAuthorName    = "zabbup"
	DefaultGitAuthorEmail   = "zabbup@localhost"
	DefaultGitAuthType      = "none"
	DefaultGitTimeout       = 5 * time.Minute

	// S3 output defaults
	DefaultS3Region        = "us-east-1"
	DefaultS3Secure        = true
	DefaultS3LifecycleDays = 30
	DefaultS3RetentionDays = 30

	// History defaults
	DefaultHistoryBackend       = "sqlite"
	DefaultHistoryPath          = "data/zabbup.db"
	DefaultHistoryRetentionDays = 90

	// Secrets defaults
	DefaultSecretsEnvPrefix = "ZABBUP_SECRET_"
	DefaultSecretsCacheTTL  = 5 * time.Minute

	// Telemetry defaults
	DefaultMetricsJob         = "zabbup"
	DefaultMetricsPath        = "/metrics"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "zabbup"

	// Daemon defaults
	DefaultDaemonSchedule = "0 2 * * *"
	DefaultTLSMinVersion  = "1.3"
	DefaultTLSReload      = 5 * time.Minute
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
//
// Per-type encryption settings are left unset here; Resolve fills them from
// the general defaults.
func ApplyDefaults(cfg *Config) {
	// General defaults
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = DefaultLogLevel
	}
	if cfg.General.LogFormat == "" {
		cfg.General.LogFormat = DefaultLogFormat
	}
	if cfg.General.MaxThreads == 0 {
		cfg.General.MaxThreads = DefaultMaxThreads
	}
	if cfg.General.Encryption == nil {
		cfg.General.Encryption = boolPtr(DefaultEncryption)
	}
	if cfg.General.EncryptionDeterministic == nil {
		cfg.General.EncryptionDeterministic = boolPtr(DefaultEncryptionDeterministic)
	}

	// Zabbix defaults
	if cfg.Zabbix.ExportFormat == "" {
		cfg.Zabbix.ExportFormat = DefaultExportFormat
	}
	if cfg.Zabbix.Timeout == 0 {
		cfg.Zabbix.Timeout = DefaultZabbixTimeout
	}

	applyGitDefaults(&cfg.Outputs.Git)
	applyS3Defaults(&cfg.Outputs.S3)

	// History defaults
	if cfg.History.Enabled == nil {
		cfg.History.Enabled = boolPtr(true)
	}
	if cfg.History.Backend == "" {
		cfg.History.Backend = DefaultHistoryBackend
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = DefaultHistoryRetentionDays
	}

	// Secrets defaults
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
	if cfg.Secrets.CacheTTL == 0 {
		cfg.Secrets.CacheTTL = DefaultSecretsCacheTTL
	}

	// Telemetry defaults
	if cfg.Telemetry.Metrics.Job == "" {
		cfg.Telemetry.Metrics.Job = DefaultMetricsJob
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}

	// Daemon defaults
	if cfg.Daemon.Schedule == "" {
		cfg.Daemon.Schedule = DefaultDaemonSchedule
	}
	if cfg.Daemon.TLS.MinVersion == "" {
		cfg.Daemon.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Daemon.TLS.ReloadInterval == 0 {
		cfg.Daemon.TLS.ReloadInterval = DefaultTLSReload
	}
}

func applyGitDefaults(cfg *GitConfig) {
	if cfg.Depth == 0 {
		cfg.Depth = DefaultGitDepth
	}
	if cfg.CommitMessage == "" {
		cfg.CommitMessage = DefaultGitCommitMessage
	}
	if cfg.Author.Name == "" {
		cfg.Author.Name = DefaultGitAuthorName
	}
	if cfg.Author.Email == "" {
		cfg.Author.Email = DefaultGitAuthorEmail
	}
	if cfg.Auth.Type == "" {
		cfg.Auth.Type = DefaultGitAuthType
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultGitTimeout
	}
}

func applyS3Defaults(cfg *S3Config) {
	if cfg.Region == "" {
		cfg.Region = DefaultS3Region
	}
	if cfg.Secure == nil {
		cfg.Secure = boolPtr(DefaultS3Secure)
	}
	if cfg.Lifecycle.Days == 0 {
		cfg.Lifecycle.Days = DefaultS3LifecycleDays
	}
	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultS3RetentionDays
	}
}

func boolPtr(b bool) *bool {
	return &b
}
