package config

import "zabbup-hq/zabbup/pkg/zabbix"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{
		Zabbix: ZabbixConfig{
			URL:  "https://zabbix.example.com",
			Auth: ZabbixAuthConfig{Token: "test-token"},
		},
	}
	cfg.Inputs.Set(zabbix.Hosts, &TypeConfig{Enable: true})
	ApplyDefaults(&cfg)

	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithInput declares or replaces the settings of an object type.
func (b *ConfigBuilder) WithInput(t zabbix.ObjectType, tc TypeConfig) *ConfigBuilder {
	b.cfg.Inputs.Set(t, &tc)
	return b
}

// WithEncryption sets the general encryption defaults and key.
func (b *ConfigBuilder) WithEncryption(encrypt, deterministic bool, key string) *ConfigBuilder {
	b.cfg.General.Encryption = boolPtr(encrypt)
	b.cfg.General.EncryptionDeterministic = boolPtr(deterministic)
	b.cfg.General.EncryptionKey = key
	return b
}

// WithUserAuth switches Zabbix authentication to user and password.
func (b *ConfigBuilder) WithUserAuth(user, password string) *ConfigBuilder {
	b.cfg.Zabbix.Auth = ZabbixAuthConfig{User: user, Password: password}
	return b
}

// WithGit enables the git output.
func (b *ConfigBuilder) WithGit(repo string) *ConfigBuilder {
	b.cfg.Outputs.Git.Enable = true
	b.cfg.Outputs.Git.Repo = repo
	return b
}

// WithS3 enables the S3 output.
func (b *ConfigBuilder) WithS3(url, bucket string) *ConfigBuilder {
	b.cfg.Outputs.S3.Enable = true
	b.cfg.Outputs.S3.URL = url
	b.cfg.Outputs.S3.Bucket = bucket
	b.cfg.Outputs.S3.AccessKey = "access"
	b.cfg.Outputs.S3.SecretKey = "secret"
	return b
}

// WithMaxThreads sets the export concurrency bound.
func (b *ConfigBuilder) WithMaxThreads(n int) *ConfigBuilder {
	b.cfg.General.MaxThreads = n
	return b
}

// MinimalConfig returns a minimal valid configuration.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
