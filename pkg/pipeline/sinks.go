package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/output"
	"zabbup-hq/zabbup/pkg/output/git"
	"zabbup-hq/zabbup/pkg/output/s3"
)

// SinkFactory builds the sinks of a run. Only enabled sinks are returned.
type SinkFactory func(ctx context.Context, outputs *config.OutputsConfig, dryRun bool, encoder *output.Encoder, logger *slog.Logger) ([]output.Sink, error)

// NewSinks is the default SinkFactory. Sinks are returned in a fixed
// order: git, then s3.
func NewSinks(ctx context.Context, outputs *config.OutputsConfig, dryRun bool, encoder *output.Encoder, logger *slog.Logger) ([]output.Sink, error) {
	var sinks []output.Sink

	if outputs.Git.Enable {
		sink, err := git.NewSink(&outputs.Git, dryRun, encoder, logger)
		if err != nil {
			return nil, fmt.Errorf("git output: %w", err)
		}
		sinks = append(sinks, sink)
	}

	if outputs.S3.Enable {
		sink, err := s3.NewSink(ctx, &outputs.S3, dryRun, encoder, logger)
		if err != nil {
			return nil, fmt.Errorf("s3 output: %w", err)
		}
		sinks = append(sinks, sink)
	}

	return sinks, nil
}
