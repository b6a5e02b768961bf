package export

import (
	"fmt"

	"zabbup-hq/zabbup/pkg/zabbix"
)

// FetchError is returned when listing or exporting objects of a type fails.
// It wraps the zabbix.RequestError or zabbix.ProcessingError of the call.
type FetchError struct {
	Type zabbix.ObjectType

	// ID is the object id for export failures and empty for list failures.
	ID string

	Op    string
	Cause error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Type, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Type, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *FetchError) Unwrap() error {
	return e.Cause
}
