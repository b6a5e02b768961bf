package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/export"
	"zabbup-hq/zabbup/pkg/output"
	"zabbup-hq/zabbup/pkg/telemetry/logging"
)

// SinkName identifies the git sink in logs, metrics and errors.
const SinkName = "git"

// tempDirRoot is the parent of the temporary clones. Empty means the
// system temporary directory.
var tempDirRoot = ""

// Sink commits a batch to a git repository.
//
// Each Write clones the repository, replaces its whole content with the
// batch artifacts and pushes a commit only when something changed, so
// repeated runs over unchanged configuration leave the history untouched.
type Sink struct {
	cfg     *config.GitConfig
	dryRun  bool
	encoder *output.Encoder
	auth    AuthProvider
	logger  *slog.Logger
}

// NewSink creates a git sink. The auth provider is only built when the sink
// is enabled.
func NewSink(cfg *config.GitConfig, dryRun bool, encoder *output.Encoder, logger *slog.Logger) (*Sink, error) {
	if cfg == nil {
		return nil, errors.New("git config cannot be nil")
	}
	if encoder == nil {
		return nil, errors.New("encoder cannot be nil")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Sink{
		cfg:     cfg,
		dryRun:  dryRun,
		encoder: encoder,
		logger:  logger.With("component", SinkName),
	}

	if cfg.Enable {
		if cfg.Repo == "" {
			return nil, errors.New("repository URL cannot be empty")
		}
		auth, err := NewAuthProvider(&cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to create auth provider: %w", err)
		}
		s.auth = auth
	}

	return s, nil
}

// Name returns the sink name.
func (s *Sink) Name() string {
	return SinkName
}

// Write replaces the repository content with the batch and pushes the
// change. Failures are returned as *output.SinkError.
func (s *Sink) Write(ctx context.Context, batch *export.Batch) error {
	logger := logging.FromContext(ctx, s.logger)

	if !s.cfg.Enable {
		logger.Debug("git output disabled")
		return nil
	}
	if s.dryRun {
		logger.Info("dry run enabled, skipping git output")
		return nil
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	auth, err := s.auth.GetAuth()
	if err != nil {
		return s.fail("auth", "", err)
	}

	tmp, err := os.MkdirTemp(tempDirRoot, "zabbup-git-")
	if err != nil {
		return s.fail("create temp dir", "", err)
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			logger.Warn("failed to remove temporary clone", "path", tmp, "error", err)
		}
	}()

	logger.Info("exporting to git", "repo", s.cfg.Repo, "branch", s.cfg.Branch, "auth", s.auth.Type())

	ws, err := openWorkspace(ctx, s.cfg, auth, filepath.Join(tmp, "repo"))
	if err != nil {
		return s.fail("clone", "", err)
	}
	if ws.initialized {
		logger.Warn("remote repository is empty, creating initial commit")
	}

	removed, err := ws.clear()
	if err != nil {
		return s.fail("clear", "", err)
	}
	logger.Debug("cleared working copy", "files", removed)

	for _, o := range batch.Objects {
		rel := output.ArtifactPath(o, batch.Format)
		data, err := s.encoder.Encode(o)
		if err != nil {
			return s.fail("encode", rel, err)
		}
		if err := ws.writeFile(rel, data); err != nil {
			return s.fail("write", rel, err)
		}
	}

	status, err := ws.stage()
	if err != nil {
		return s.fail("stage", "", err)
	}
	if status.IsClean() {
		logger.Info("no changes to commit")
		return nil
	}
	logger.Debug("changes to commit", "files", len(status), "status", status.String())

	hash, err := ws.commit(s.cfg.CommitMessage, s.cfg.Author)
	if err != nil {
		return s.fail("commit", "", err)
	}
	if err := ws.push(ctx, auth); err != nil {
		return s.fail("push", "", err)
	}

	logger.Info("pushed backup commit", "commit", hash.String(), "files", len(status))
	return nil
}

func (s *Sink) fail(op, key string, err error) error {
	return &output.SinkError{Sink: SinkName, Op: op, Key: key, Cause: err}
}
