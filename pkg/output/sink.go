package output

import (
	"context"

	"zabbup-hq/zabbup/pkg/export"
)

// Sink writes a complete batch to one destination.
//
// Write is called once per run with the full batch and must not modify it.
// Sinks honour their own enable flag and the dry-run flag: both turn Write
// into a logged no-op.
type Sink interface {
	Name() string
	Write(ctx context.Context, batch *export.Batch) error
}
