package encryption

import "fmt"

// EncryptionError is returned when content cannot be encrypted.
type EncryptionError struct {
	Cause error
}

// Error implements the error interface.
func (e *EncryptionError) Error() string {
	return fmt.Sprintf("encryption failed: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *EncryptionError) Unwrap() error {
	return e.Cause
}

// DecryptionError is returned when a token cannot be authenticated or
// decrypted with the given passphrase.
type DecryptionError struct {
	Cause error
}

// Error implements the error interface.
func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *DecryptionError) Unwrap() error {
	return e.Cause
}
