package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the current metrics to the configured Prometheus Pushgateway,
// replacing the metrics previously pushed for the job.
// It is a no-op when metrics are disabled or no pushgateway is configured.
func (c *Collector) Push(ctx context.Context) error {
	if !c.enabled() || c.config.PushgatewayURL == "" {
		return nil
	}

	err := push.New(c.config.PushgatewayURL, c.config.Job).
		Gatherer(c.registry).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", c.config.PushgatewayURL, err)
	}
	return nil
}
