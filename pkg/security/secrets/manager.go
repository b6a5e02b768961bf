package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/telemetry/logging"
)

// refPattern matches ${secret:name} references.
var refPattern = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Manager resolves secrets through an ordered list of providers.
type Manager struct {
	providers []Provider
	cache     *Cache
	logger    *slog.Logger
	closers   []func() error
}

// NewManager builds the providers described by cfg: the environment
// provider first, then the file provider when a directory is configured.
func NewManager(cfg *config.SecretsConfig, logger *slog.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("secrets config cannot be nil")
	}

	m := NewManagerWithProviders(cfg.CacheTTL, logger, NewEnvProvider(cfg.EnvPrefix))

	if cfg.FileDir != "" {
		fp, err := NewFileProvider(cfg.FileDir, logger)
		if err != nil {
			return nil, err
		}
		m.providers = append(m.providers, fp)

		if cfg.Watch {
			if err := fp.Watch(m.cache.Delete); err != nil {
				return nil, err
			}
			m.closers = append(m.closers, fp.Close)
		}
	}

	return m, nil
}

// NewManagerWithProviders creates a manager over providers, tried in order.
func NewManagerWithProviders(cacheTTL time.Duration, logger *slog.Logger, providers ...Provider) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		providers: providers,
		cache:     NewCache(cacheTTL),
		logger:    logger.With("component", "secrets"),
	}
}

// Get returns the named secret from the cache or the first provider
// holding it.
func (m *Manager) Get(ctx context.Context, name string) (string, error) {
	if value, ok := m.cache.Get(name); ok {
		return value, nil
	}

	var errs []error
	for _, p := range m.providers {
		value, err := p.Lookup(ctx, name)
		if err == nil {
			m.logger.Debug("secret resolved", "name", name, "provider", p.Name())
			m.cache.Set(name, value)
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("secret %q: %s provider: %w", name, p.Name(), err)
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return "", fmt.Errorf("secret %q: %w: no providers configured", name, ErrNotFound)
	}
	return "", fmt.Errorf("secret %q: %w", name, errors.Join(errs...))
}

// Resolve replaces every ${secret:name} reference in s. All unresolved
// references are reported together.
func (m *Manager) Resolve(ctx context.Context, s string) (string, error) {
	var errs []error
	out := refPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := refPattern.FindStringSubmatch(ref)[1]
		value, err := m.Get(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return ref
		}
		return value
	})
	return out, errors.Join(errs...)
}

// ResolveConfig returns a copy of cfg whose credential fields have their
// secret references resolved. cfg itself is not modified.
func (m *Manager) ResolveConfig(ctx context.Context, cfg *config.Config) (*config.Config, error) {
	out := *cfg

	fields := []struct {
		path  string
		value *string
	}{
		{"general.encryption_key", &out.General.EncryptionKey},
		{"zabbix.auth.user", &out.Zabbix.Auth.User},
		{"zabbix.auth.password", &out.Zabbix.Auth.Password},
		{"zabbix.auth.token", &out.Zabbix.Auth.Token},
		{"outputs.git.auth.token", &out.Outputs.Git.Auth.Token},
		{"outputs.git.auth.ssh_key_passphrase", &out.Outputs.Git.Auth.SSHKeyPassphrase},
		{"outputs.s3.access_key", &out.Outputs.S3.AccessKey},
		{"outputs.s3.secret_key", &out.Outputs.S3.SecretKey},
	}

	var errs []error
	for _, f := range fields {
		if !HasReference(*f.value) {
			continue
		}
		resolved, err := m.Resolve(ctx, *f.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.path, err))
			continue
		}
		*f.value = resolved
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &out, nil
}

// Close stops file watchers.
func (m *Manager) Close() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// HasReference reports whether s contains a ${secret:name} reference.
func HasReference(s string) bool {
	return refPattern.MatchString(s)
}
