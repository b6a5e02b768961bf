package config

import (
	"fmt"

	"zabbup-hq/zabbup/pkg/zabbix"
)

// TypeSettings are the effective settings of one object type after
// inheritance from the general defaults.
type TypeSettings struct {
	Type          zabbix.ObjectType
	Enabled       bool
	Encrypt       bool
	Deterministic bool
	Excludes      []string
}

// Resolved is the inheritance-free view of the inputs section.
// It is built once per run by Resolve and never changes afterwards.
type Resolved struct {
	types []TypeSettings
	index map[zabbix.ObjectType]int
	key   string
}

// Types returns the settings of every declared type in declaration order.
func (r *Resolved) Types() []TypeSettings {
	out := make([]TypeSettings, len(r.types))
	copy(out, r.types)
	return out
}

// Enabled returns the settings of the enabled types in declaration order.
func (r *Resolved) Enabled() []TypeSettings {
	var out []TypeSettings
	for _, ts := range r.types {
		if ts.Enabled {
			out = append(out, ts)
		}
	}
	return out
}

// Lookup returns the settings of type t. Undeclared types are reported as
// disabled.
func (r *Resolved) Lookup(t zabbix.ObjectType) (TypeSettings, bool) {
	i, ok := r.index[t]
	if !ok {
		return TypeSettings{Type: t}, false
	}
	return r.types[i], true
}

// EncryptionKey returns the passphrase used for encrypted types.
func (r *Resolved) EncryptionKey() string {
	return r.key
}

// NeedsEncryption reports whether any enabled type is encrypted.
func (r *Resolved) NeedsEncryption() bool {
	for _, ts := range r.types {
		if ts.Enabled && ts.Encrypt {
			return true
		}
	}
	return false
}

// Resolve substitutes the general encryption defaults into every type that
// leaves encryption or encryption_deterministic unset, then returns the
// resulting snapshot.
//
// The substitution is written back into cfg, so running Resolve again is a
// no-op. A type that needs a general default which is itself unset, or an
// enabled encrypted type without an encryption key, yields a ValidationError.
func Resolve(cfg *Config) (*Resolved, error) {
	var errs []FieldError

	general := cfg.General

	r := &Resolved{
		types: make([]TypeSettings, 0, len(cfg.Inputs.Order)),
		index: make(map[zabbix.ObjectType]int, len(cfg.Inputs.Order)),
		key:   general.EncryptionKey,
	}

	for _, t := range cfg.Inputs.Order {
		tc := cfg.Inputs.Types[t]
		if tc == nil {
			continue
		}

		if tc.Encryption == nil {
			if general.Encryption == nil {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("inputs.%s.encryption", t),
					Message: "unset and general.encryption has no default",
				})
			} else {
				tc.Encryption = boolPtr(*general.Encryption)
			}
		}
		if tc.EncryptionDeterministic == nil {
			if general.EncryptionDeterministic == nil {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("inputs.%s.encryption_deterministic", t),
					Message: "unset and general.encryption_deterministic has no default",
				})
			} else {
				tc.EncryptionDeterministic = boolPtr(*general.EncryptionDeterministic)
			}
		}
		if tc.Encryption == nil || tc.EncryptionDeterministic == nil {
			continue
		}

		ts := TypeSettings{
			Type:          t,
			Enabled:       tc.Enable,
			Encrypt:       *tc.Encryption,
			Deterministic: *tc.EncryptionDeterministic,
			Excludes:      append([]string(nil), tc.Excludes...),
		}
		if ts.Enabled && ts.Encrypt && general.EncryptionKey == "" {
			errs = append(errs, FieldError{
				Field:   "general.encryption_key",
				Message: fmt.Sprintf("encryption key is required because inputs.%s is encrypted", t),
			})
		}

		r.index[t] = len(r.types)
		r.types = append(r.types, ts)
	}

	if len(errs) > 0 {
		return nil, ValidationError{Errors: errs}
	}
	return r, nil
}

// NewResolved builds a Resolved snapshot from already effective settings.
// Later duplicates of a type are ignored.
func NewResolved(key string, types ...TypeSettings) *Resolved {
	r := &Resolved{
		types: make([]TypeSettings, 0, len(types)),
		index: make(map[zabbix.ObjectType]int, len(types)),
		key:   key,
	}
	for _, ts := range types {
		if _, dup := r.index[ts.Type]; dup {
			continue
		}
		r.index[ts.Type] = len(r.types)
		r.types = append(r.types, ts)
	}
	return r
}
