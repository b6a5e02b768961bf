package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider reads secrets from environment variables.
//
// The variable name is the prefix followed by the upper-cased secret name
// with '-' and '.' replaced by '_'. With the prefix "ZABBUP_SECRET_" the
// secret "zabbix-token" is read from ZABBUP_SECRET_ZABBIX_TOKEN.
type EnvProvider struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnvProvider creates an environment provider using prefix.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix, lookup: os.LookupEnv}
}

// Name returns "env".
func (p *EnvProvider) Name() string {
	return "env"
}

// Lookup returns the variable backing name. An empty variable counts as
// missing.
func (p *EnvProvider) Lookup(ctx context.Context, name string) (string, error) {
	key := p.VarName(name)
	value, ok := p.lookup(key)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: environment variable %s is not set", ErrNotFound, key)
	}
	return value, nil
}

// VarName returns the environment variable holding the secret name.
func (p *EnvProvider) VarName(name string) string {
	r := strings.NewReplacer("-", "_", ".", "_")
	return p.prefix + strings.ToUpper(r.Replace(name))
}
