package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"zabbup-hq/zabbup/pkg/zabbix"
)

// EnvPrefix is the prefix of every configuration environment variable.
const EnvPrefix = "ZABBUP_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention ZABBUP_SECTION_FIELD (e.g., ZABBUP_ZABBIX_URL).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
//
// Validation runs once, after the overrides, so a file may leave credentials
// to the environment.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse parses YAML configuration data and applies defaults without
// validating it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format ZABBUP_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// General overrides
	if val := os.Getenv("ZABBUP_GENERAL_LOGLEVEL"); val != "" {
		cfg.General.LogLevel = val
	}
	if val := os.Getenv("ZABBUP_GENERAL_LOG_FORMAT"); val != "" {
		cfg.General.LogFormat = val
	}
	if val := os.Getenv("ZABBUP_GENERAL_DRYRUN"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.General.DryRun = b
		}
	}
	if val := os.Getenv("ZABBUP_GENERAL_MAX_THREADS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.General.MaxThreads = i
		}
	}
	if val := os.Getenv("ZABBUP_GENERAL_ENCRYPTION"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.General.Encryption = boolPtr(b)
		}
	}
	if val := os.Getenv("ZABBUP_GENERAL_ENCRYPTION_KEY"); val != "" {
		cfg.General.EncryptionKey = val
	}
	if val := os.Getenv("ZABBUP_GENERAL_ENCRYPTION_DETERMINISTIC"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.General.EncryptionDeterministic = boolPtr(b)
		}
	}

	// Zabbix overrides
	if val := os.Getenv("ZABBUP_ZABBIX_URL"); val != "" {
		cfg.Zabbix.URL = val
	}
	if val := os.Getenv("ZABBUP_ZABBIX_USER"); val != "" {
		cfg.Zabbix.Auth.User = val
	}
	if val := os.Getenv("ZABBUP_ZABBIX_PASSWORD"); val != "" {
		cfg.Zabbix.Auth.Password = val
	}
	if val := os.Getenv("ZABBUP_ZABBIX_TOKEN"); val != "" {
		cfg.Zabbix.Auth.Token = val
	}
	if val := os.Getenv("ZABBUP_ZABBIX_EXPORT_FORMAT"); val != "" {
		cfg.Zabbix.ExportFormat = val
	}
	if val := os.Getenv("ZABBUP_ZABBIX_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Zabbix.Timeout = d
		}
	}
	if val := os.Getenv("ZABBUP_ZABBIX_LIST_LIMIT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Zabbix.ListLimit = i
		}
	}

	// Input overrides - one set per supported object type
	for _, t := range zabbix.AllObjectTypes() {
		applyInputEnvOverrides(cfg, t)
	}

	// Git output overrides
	if val := os.Getenv("ZABBUP_OUTPUTS_GIT_ENABLE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Outputs.Git.Enable = b
		}
	}
	if val := os.Getenv("ZABBUP_OUTPUTS_GIT_REPO"); val != "" {
		cfg.Outputs.Git.Repo = val
	}
	if val := os.Getenv("ZABBUP_OUTPUTS_GIT_BRANCH"); val != "" {
		cfg.Outputs.Git.Branch = val
	}
	if val := os.Getenv("ZABBUP_OUTPUTS_GIT_AUTH_TYPE"); val != "" {
		cfg.Outputs.Git.Auth.Type = val
	}
	if val := os.Getenv("ZABBUP_OUTPUTS_GIT_AUTH_TOKEN"); val != "" {
		cfg.Outputs.Git.Auth.Token = val
	}
	if val := os.Getenv("ZABBUP_OUTPUTS_GIT_AUTH_SSH_KEY_PATH"); val != "" {
		cfg.Outputs.Git.Auth.SSHKeyPath = val
	}

	// S3 output overrides
	if val := os.Getenv("ZABBUP_OUTPUTS_S3_ENABLE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Outputs.S3.Enable = b
		}
	}
	if val := os.Getenv("ZABBUP_OUTPUTS_S3_URL"); val != "" {
		cfg.Outputs.S3.URL = val
	}
	if val := os.Getenv("ZABBUP_OUTPUTS_S3_ACCESS_KEY"); val != "" {
		cfg.Outputs.S3.AccessKey = val
	}
	if val := os.Getenv("ZABBUP_OUTPUTS_S3_SECRET_KEY"); val != "" {
		cfg.Outputs.S3.SecretKey = val
	}
	if val := os.Getenv("ZABBUP_OUTPUTS_S3_BUCKET"); val != "" {
		cfg.Outputs.S3.Bucket = val
	}
	if val := os.Getenv("ZABBUP_OUTPUTS_S3_BUCKET_PATH"); val != "" {
		cfg.Outputs.S3.BucketPath = val
	}
	if val := os.Getenv("ZABBUP_OUTPUTS_S3_REGION"); val != "" {
		cfg.Outputs.S3.Region = val
	}

	// History overrides
	if val := os.Getenv("ZABBUP_HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}
	if val := os.Getenv("ZABBUP_HISTORY_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.History.RetentionDays = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("ZABBUP_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("ZABBUP_TELEMETRY_METRICS_PUSHGATEWAY_URL"); val != "" {
		cfg.Telemetry.Metrics.PushgatewayURL = val
	}
	if val := os.Getenv("ZABBUP_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("ZABBUP_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}

	// Daemon overrides
	if val := os.Getenv("ZABBUP_DAEMON_SCHEDULE"); val != "" {
		cfg.Daemon.Schedule = val
	}
}

// applyInputEnvOverrides applies overrides for one object type.
// Variables follow the format ZABBUP_INPUTS_<TYPE>_<FIELD>. A type that is
// not declared in the file is declared by its ENABLE variable.
func applyInputEnvOverrides(cfg *Config, t zabbix.ObjectType) {
	prefix := fmt.Sprintf("%sINPUTS_%s_", EnvPrefix, strings.ToUpper(string(t)))

	tc := cfg.Inputs.Get(t)

	if val := os.Getenv(prefix + "ENABLE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			if tc == nil {
				tc = &TypeConfig{}
				cfg.Inputs.Set(t, tc)
			}
			tc.Enable = b
		}
	}
	if tc == nil {
		return
	}

	if val := os.Getenv(prefix + "ENCRYPTION"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			tc.Encryption = boolPtr(b)
		}
	}
	if val := os.Getenv(prefix + "ENCRYPTION_DETERMINISTIC"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			tc.EncryptionDeterministic = boolPtr(b)
		}
	}
}
