package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownSignals are the signals that stop a backup run or the daemon.
var ShutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// SetupSignalHandler derives a context from parent that is canceled when
// the process receives one of ShutdownSignals. An in-flight run sees the
// cancellation through its context and stops fetching; sinks that already
// started writing finish on their own timeouts. stop unregisters the
// handler, after which a second signal kills the process as usual.
func SetupSignalHandler(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, ShutdownSignals...)
}
