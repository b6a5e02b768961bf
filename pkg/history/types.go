package history

import (
	"sort"
	"time"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Sink statuses.
const (
	SinkSuccess = "success"
	SinkFailure = "failure"
	SinkSkipped = "skipped"
)

// Run is the record of one backup run.
type Run struct {
	// ID is the run id also attached to every log line of the run.
	ID string `json:"id"`

	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// Status is StatusSuccess or StatusFailure.
	Status string `json:"status"`

	DryRun bool `json:"dry_run"`

	// Format is the effective export format.
	Format string `json:"format,omitempty"`

	// Objects counts exported objects per type.
	Objects map[string]int `json:"objects,omitempty"`

	// Sinks holds the outcome of every configured sink, in run order.
	Sinks []SinkResult `json:"sinks,omitempty"`

	// Error is the run error message, empty on success.
	Error string `json:"error,omitempty"`
}

// SinkResult is the outcome of one sink within a run.
type SinkResult struct {
	Sink   string `json:"sink"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// TotalObjects returns the number of exported objects across all types.
func (r *Run) TotalObjects() int {
	total := 0
	for _, n := range r.Objects {
		total += n
	}
	return total
}

// clone returns a deep copy of r.
func (r *Run) clone() *Run {
	c := *r
	if r.Objects != nil {
		c.Objects = make(map[string]int, len(r.Objects))
		for k, v := range r.Objects {
			c.Objects[k] = v
		}
	}
	if r.Sinks != nil {
		c.Sinks = append([]SinkResult(nil), r.Sinks...)
	}
	return &c
}

// sortNewestFirst orders runs by start time, most recent first.
func sortNewestFirst(runs []*Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Started.After(runs[j].Started)
	})
}
