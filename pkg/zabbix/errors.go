package zabbix

import "fmt"

// RequestError is returned when the Zabbix API answers with a JSON-RPC
// error object.
type RequestError struct {
	Method  string
	Code    int64
	Message string
	Data    string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("zabbix api %s: %s (code %d): %s", e.Method, e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("zabbix api %s: %s (code %d)", e.Method, e.Message, e.Code)
}

// ProcessingError is returned when a call fails before a JSON-RPC answer
// could be interpreted: transport failures, unexpected HTTP status codes and
// malformed responses.
type ProcessingError struct {
	Method string
	Cause  error
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	return fmt.Sprintf("zabbix api %s: %v", e.Method, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// AuthError is returned when connecting or authenticating to the API fails.
type AuthError struct {
	URL   string
	Cause error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("zabbix connection to %s failed: %v", e.URL, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *AuthError) Unwrap() error {
	return e.Cause
}
