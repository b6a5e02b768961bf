package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a provider that does not hold a secret.
var ErrNotFound = errors.New("secret not found")

// Provider retrieves secrets from one backend.
type Provider interface {
	// Name returns the provider name ("env", "file").
	Name() string

	// Lookup returns the value of the named secret. A missing secret is
	// reported with an error wrapping ErrNotFound.
	Lookup(ctx context.Context, name string) (string, error)
}
