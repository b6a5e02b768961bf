package output

import (
	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/export"
	"zabbup-hq/zabbup/pkg/security/encryption"
)

// Encoder turns objects into artifact content according to the resolved
// per-type encryption settings.
type Encoder struct {
	settings *config.Resolved
}

// NewEncoder creates an Encoder for settings.
func NewEncoder(settings *config.Resolved) *Encoder {
	return &Encoder{settings: settings}
}

// Encrypted reports whether artifacts of o's type are encrypted.
func (e *Encoder) Encrypted(o export.Object) bool {
	ts, ok := e.settings.Lookup(o.Type)
	return ok && ts.Encrypt
}

// Encode returns the artifact content of o. Failures are
// *encryption.EncryptionError.
func (e *Encoder) Encode(o export.Object) ([]byte, error) {
	ts, ok := e.settings.Lookup(o.Type)
	if !ok || !ts.Encrypt {
		return []byte(o.Data), nil
	}
	return encryption.Encrypt([]byte(o.Data), e.settings.EncryptionKey(), ts.Deterministic)
}
