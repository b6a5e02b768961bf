package output

import "fmt"

// SinkError is returned when a sink fails to write a batch. A failing sink
// does not stop the other sinks of the run.
type SinkError struct {
	Sink string

	// Key is the artifact path or object key involved, if any.
	Key string

	Op    string
	Cause error
}

// Error implements the error interface.
func (e *SinkError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s sink: %s %s: %v", e.Sink, e.Op, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s sink: %s: %v", e.Sink, e.Op, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SinkError) Unwrap() error {
	return e.Cause
}
