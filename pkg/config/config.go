package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"zabbup-hq/zabbup/pkg/zabbix"
)

// Config is the root configuration structure for zabbup.
// It describes where configuration is read from (Zabbix), which object types
// are exported, and where the exported artifacts are written.
type Config struct {
	// General contains run-wide settings and the encryption defaults
	// inherited by every object type.
	General GeneralConfig `yaml:"general"`

	// Zabbix contains the API endpoint and credentials.
	Zabbix ZabbixConfig `yaml:"zabbix"`

	// Inputs contains one entry per exported object type.
	Inputs InputsConfig `yaml:"inputs"`

	// Outputs contains the sink configurations.
	Outputs OutputsConfig `yaml:"outputs"`

	// History contains run history storage settings.
	History HistoryConfig `yaml:"history"`

	// Secrets configures resolution of ${secret:name} references.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry contains metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Daemon contains settings used by "zabbup daemon".
	Daemon DaemonConfig `yaml:"daemon"`
}

// GeneralConfig contains run-wide settings.
type GeneralConfig struct {
	// LogLevel is the minimum log level.
	// Options: "debug", "info", "warning", "error", "critical" (case-insensitive)
	// Default: "info"
	LogLevel string `yaml:"loglevel"`

	// LogFormat selects the log handler.
	// Options: "text", "json"
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// DryRun exports objects but skips every sink.
	// Default: false
	DryRun bool `yaml:"dryrun"`

	// MaxThreads bounds the number of concurrent export calls.
	// Default: 10
	MaxThreads int `yaml:"max_threads"`

	// Encryption is the encryption default for types that leave it unset.
	// Default: false
	Encryption *bool `yaml:"encryption"`

	// EncryptionKey is the passphrase used to derive the encryption key.
	// Required when any enabled type resolves to encrypted output.
	EncryptionKey string `yaml:"encryption_key"`

	// EncryptionDeterministic is the deterministic-mode default for types
	// that leave it unset.
	// Default: false
	EncryptionDeterministic *bool `yaml:"encryption_deterministic"`
}

// ZabbixConfig contains Zabbix API settings.
type ZabbixConfig struct {
	// URL is the Zabbix frontend URL.
	// Example: "https://zabbix.example.com"
	URL string `yaml:"url"`

	// Auth contains the API credentials.
	Auth ZabbixAuthConfig `yaml:"auth"`

	// ExportFormat is the requested export format.
	// Options: "yaml", "json", "xml". Servers older than 5.4 always use "xml".
	// Default: "yaml"
	ExportFormat string `yaml:"export_format"`

	// Timeout bounds every API request.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// ListLimit caps the number of objects listed per type. 0 lists all.
	// Default: 0
	ListLimit int `yaml:"list_limit"`

	// InsecureSkipVerify disables TLS certificate verification.
	// Default: false
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// ZabbixAuthConfig holds either an API token or a user and password.
type ZabbixAuthConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Token is a Zabbix API token (Zabbix 5.4+).
	Token string `yaml:"token"`
}

// TypeConfig contains the settings of one exported object type.
type TypeConfig struct {
	// Enable controls whether the type is exported.
	Enable bool `yaml:"enable"`

	// Encryption overrides general.encryption when set.
	Encryption *bool `yaml:"encryption"`

	// EncryptionDeterministic overrides general.encryption_deterministic
	// when set.
	EncryptionDeterministic *bool `yaml:"encryption_deterministic"`

	// Excludes are regular expressions matched against object names.
	// Any match excludes the object.
	Excludes []string `yaml:"excludes"`
}

// InputsConfig maps object types to their settings and remembers the order
// in which they were declared.
type InputsConfig struct {
	Types map[zabbix.ObjectType]*TypeConfig
	Order []zabbix.ObjectType
}

// Get returns the settings of type t, or nil when t is not declared.
func (c *InputsConfig) Get(t zabbix.ObjectType) *TypeConfig {
	if c.Types == nil {
		return nil
	}
	return c.Types[t]
}

// Set declares or replaces the settings of type t.
func (c *InputsConfig) Set(t zabbix.ObjectType, tc *TypeConfig) {
	if c.Types == nil {
		c.Types = make(map[zabbix.ObjectType]*TypeConfig)
	}
	if _, exists := c.Types[t]; !exists {
		c.Order = append(c.Order, t)
	}
	c.Types[t] = tc
}

// UnmarshalYAML decodes the inputs mapping, keeping declaration order.
func (c *InputsConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: inputs must be a mapping", node.Line)
	}

	c.Types = make(map[zabbix.ObjectType]*TypeConfig, len(node.Content)/2)
	c.Order = nil

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		t := zabbix.ObjectType(keyNode.Value)
		if !t.Valid() {
			return fmt.Errorf("line %d: unknown object type %q", keyNode.Line, keyNode.Value)
		}
		if _, dup := c.Types[t]; dup {
			return fmt.Errorf("line %d: object type %q declared twice", keyNode.Line, keyNode.Value)
		}

		var tc TypeConfig
		if err := valueNode.Decode(&tc); err != nil {
			return fmt.Errorf("inputs.%s: %w", t, err)
		}
		c.Set(t, &tc)
	}
	return nil
}

// MarshalYAML encodes the inputs mapping in declaration order.
func (c InputsConfig) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, t := range c.Order {
		var value yaml.Node
		if err := value.Encode(c.Types[t]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: string(t)},
			&value,
		)
	}
	return node, nil
}

// OutputsConfig contains the sink configurations.
type OutputsConfig struct {
	Git GitConfig `yaml:"git"`
	S3  S3Config  `yaml:"s3"`
}

// GitConfig configures the git output.
type GitConfig struct {
	// Enable controls whether artifacts are committed to git.
	Enable bool `yaml:"enable"`

	// Repo is the repository URL (HTTPS, SSH or a local path).
	Repo string `yaml:"repo"`

	// Branch to clone and push. Empty uses the remote HEAD.
	Branch string `yaml:"branch"`

	// Depth of the clone. A negative value clones the full history.
	// Default: 1
	Depth int `yaml:"depth"`

	// CommitMessage is the message of every backup commit.
	// Default: "Exported data"
	CommitMessage string `yaml:"commit_message"`

	// Author is the commit author.
	Author GitAuthorConfig `yaml:"author"`

	// Auth configures git authentication.
	Auth GitAuthConfig `yaml:"auth"`

	// Timeout bounds the whole git output (clone to push).
	// Default: 5m
	Timeout time.Duration `yaml:"timeout"`
}

// GitAuthorConfig identifies the commit author.
type GitAuthorConfig struct {
	// Default: "zabbup"
	Name string `yaml:"name"`

	// Default: "zabbup@localhost"
	Email string `yaml:"email"`
}

// GitAuthConfig configures git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh", "none"
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication.
	// Required when Type is "token".
	Token string `yaml:"token"`

	// SSHKeyPath for SSH authentication.
	// Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// S3Config configures the S3-compatible object storage output.
type S3Config struct {
	// Enable controls whether artifacts are uploaded.
	Enable bool `yaml:"enable"`

	// URL is the endpoint, with or without scheme.
	// Example: "minio.example.com:9000"
	URL string `yaml:"url"`

	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// Region of the bucket.
	// Default: "us-east-1"
	Region string `yaml:"region"`

	// Secure selects https for URLs given without scheme.
	// Default: true
	Secure *bool `yaml:"secure"`

	// Bucket receives the artifacts. It must have object lock enabled.
	Bucket string `yaml:"bucket"`

	// BucketPath is an optional key prefix.
	BucketPath string `yaml:"bucket_path"`

	Lifecycle S3LifecycleConfig `yaml:"lifecycle"`
	Retention S3RetentionConfig `yaml:"retention"`
}

// S3LifecycleConfig controls expiry of noncurrent object versions.
type S3LifecycleConfig struct {
	// Days after which noncurrent versions expire.
	// Default: 30
	Days int `yaml:"days"`
}

// S3RetentionConfig controls governance retention of uploaded objects.
type S3RetentionConfig struct {
	// Days each upload is retained.
	// Default: 30
	Days int `yaml:"days"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	// Enabled controls whether runs are recorded.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path of the SQLite database.
	// Default: "data/zabbup.db"
	Path string `yaml:"path"`

	// RetentionDays is how long run records are kept. 0 keeps them forever.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`
}

// IsEnabled reports whether run history is enabled.
func (c HistoryConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// SecretsConfig configures ${secret:name} resolution.
type SecretsConfig struct {
	// EnvPrefix is prepended to secret names looked up in the environment.
	// Default: "ZABBUP_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// FileDir is a directory holding one secret per file. Empty disables
	// the file provider.
	FileDir string `yaml:"file_dir"`

	// Watch refreshes cached file secrets when they change.
	// Default: false
	Watch bool `yaml:"watch"`

	// CacheTTL is how long resolved secrets are cached.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls metric collection.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// PushgatewayURL receives the metrics after each run. Empty disables
	// pushing.
	PushgatewayURL string `yaml:"pushgateway_url"`

	// Job is the pushgateway job name.
	// Default: "zabbup"
	Job string `yaml:"job"`

	// ListenAddress serves /metrics in daemon mode. Empty disables it.
	ListenAddress string `yaml:"listen_address"`

	// Path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled controls span export.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of runs traced.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "zabbup"
	ServiceName string `yaml:"service_name"`
}

// DaemonConfig configures scheduled backups.
type DaemonConfig struct {
	// Schedule is a cron expression (five fields or a descriptor such as
	// "@daily").
	// Default: "0 2 * * *"
	Schedule string `yaml:"schedule"`

	// RunOnStart runs a backup immediately when the daemon starts.
	// Default: false
	RunOnStart bool `yaml:"run_on_start"`

	// StaleAfter marks the daemon not ready when the last run finished
	// longer ago than this. Zero disables the check.
	// Default: 0
	StaleAfter time.Duration `yaml:"stale_after"`

	// TLS secures the daemon HTTP server.
	TLS ServerTLSConfig `yaml:"tls"`
}

// ServerTLSConfig configures TLS for the daemon HTTP server.
type ServerTLSConfig struct {
	// Enabled serves HTTPS instead of HTTP.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile and KeyFile are PEM files. Both are required when enabled.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// MinVersion: "1.2" or "1.3".
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the files are checked for renewal.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`
}
