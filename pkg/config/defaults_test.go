package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input Config
		check func(*testing.T, *Config)
	}{
		{
			name:  "empty config gets all defaults",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.General.LogLevel != DefaultLogLevel {
					t.Errorf("expected log level %q, got %q", DefaultLogLevel, cfg.General.LogLevel)
				}
				if cfg.General.LogFormat != DefaultLogFormat {
					t.Errorf("expected log format %q, got %q", DefaultLogFormat, cfg.General.LogFormat)
				}
				if cfg.General.MaxThreads != DefaultMaxThreads {
					t.Errorf("expected max threads %d, got %d", DefaultMaxThreads, cfg.General.MaxThreads)
				}
				if cfg.General.Encryption == nil || *cfg.General.Encryption {
					t.Error("expected general encryption default false")
				}
				if cfg.General.EncryptionDeterministic == nil || *cfg.General.EncryptionDeterministic {
					t.Error("expected general encryption_deterministic default false")
				}
				if cfg.Zabbix.ExportFormat != DefaultExportFormat {
					t.Errorf("expected export format %q, got %q", DefaultExportFormat, cfg.Zabbix.ExportFormat)
				}
				if cfg.Zabbix.Timeout != DefaultZabbixTimeout {
					t.Errorf("expected timeout %v, got %v", DefaultZabbixTimeout, cfg.Zabbix.Timeout)
				}
				if cfg.Outputs.Git.Depth != DefaultGitDepth {
					t.Errorf("expected git depth %d, got %d", DefaultGitDepth, cfg.Outputs.Git.Depth)
				}
				if cfg.Outputs.Git.CommitMessage != DefaultGitCommitMessage {
					t.Errorf("expected commit message %q, got %q", DefaultGitCommitMessage, cfg.Outputs.Git.CommitMessage)
				}
				if cfg.Outputs.Git.Auth.Type != DefaultGitAuthType {
					t.Errorf("expected git auth type %q, got %q", DefaultGitAuthType, cfg.Outputs.Git.Auth.Type)
				}
				if cfg.Outputs.S3.Secure == nil || !*cfg.Outputs.S3.Secure {
					t.Error("expected s3 secure default true")
				}
				if cfg.Outputs.S3.Lifecycle.Days != DefaultS3LifecycleDays {
					t.Errorf("expected lifecycle days %d, got %d", DefaultS3LifecycleDays, cfg.Outputs.S3.Lifecycle.Days)
				}
				if cfg.Outputs.S3.Retention.Days != DefaultS3RetentionDays {
					t.Errorf("expected retention days %d, got %d", DefaultS3RetentionDays, cfg.Outputs.S3.Retention.Days)
				}
				if cfg.History.Path != DefaultHistoryPath {
					t.Errorf("expected history path %q, got %q", DefaultHistoryPath, cfg.History.Path)
				}
				if cfg.Secrets.EnvPrefix != DefaultSecretsEnvPrefix {
					t.Errorf("expected secrets prefix %q, got %q", DefaultSecretsEnvPrefix, cfg.Secrets.EnvPrefix)
				}
				if cfg.Daemon.Schedule != DefaultDaemonSchedule {
					t.Errorf("expected schedule %q, got %q", DefaultDaemonSchedule, cfg.Daemon.Schedule)
				}
			},
		},
		{
			name: "existing values are preserved",
			input: Config{
				General: GeneralConfig{
					LogLevel:   "debug",
					MaxThreads: 3,
					Encryption: boolPtr(true),
				},
				Zabbix: ZabbixConfig{
					ExportFormat: "json",
					Timeout:      5 * time.Second,
				},
				Outputs: OutputsConfig{
					Git: GitConfig{Depth: -1, CommitMessage: "backup"},
					S3:  S3Config{Secure: boolPtr(false), Lifecycle: S3LifecycleConfig{Days: 7}},
				},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.General.LogLevel != "debug" {
					t.Errorf("expected log level debug, got %q", cfg.General.LogLevel)
				}
				if cfg.General.MaxThreads != 3 {
					t.Errorf("expected max threads 3, got %d", cfg.General.MaxThreads)
				}
				if !*cfg.General.Encryption {
					t.Error("expected explicit general encryption to be preserved")
				}
				if cfg.Zabbix.ExportFormat != "json" {
					t.Errorf("expected export format json, got %q", cfg.Zabbix.ExportFormat)
				}
				if cfg.Zabbix.Timeout != 5*time.Second {
					t.Errorf("expected timeout 5s, got %v", cfg.Zabbix.Timeout)
				}
				if cfg.Outputs.Git.Depth != -1 {
					t.Errorf("expected git depth -1, got %d", cfg.Outputs.Git.Depth)
				}
				if cfg.Outputs.Git.CommitMessage != "backup" {
					t.Errorf("expected commit message backup, got %q", cfg.Outputs.Git.CommitMessage)
				}
				if *cfg.Outputs.S3.Secure {
					t.Error("expected explicit s3 secure=false to be preserved")
				}
				if cfg.Outputs.S3.Lifecycle.Days != 7 {
					t.Errorf("expected lifecycle days 7, got %d", cfg.Outputs.S3.Lifecycle.Days)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			ApplyDefaults(&cfg)
			tt.check(t, &cfg)
		})
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := Config{}
	ApplyDefaults(&cfg)
	first := cfg.General.MaxThreads
	ApplyDefaults(&cfg)

	if cfg.General.MaxThreads != first {
		t.Errorf("ApplyDefaults is not idempotent: %d != %d", cfg.General.MaxThreads, first)
	}
}
