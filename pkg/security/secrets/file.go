package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"zabbup-hq/zabbup/pkg/telemetry/logging"
)

// FileProvider reads secrets from a directory holding one file per secret,
// as mounted by Kubernetes or Docker secrets. The file name is the secret
// name; surrounding whitespace is trimmed. Files must be mode 0600 or 0400.
type FileProvider struct {
	dir    string
	logger *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileProvider creates a provider reading from dir.
func NewFileProvider(dir string, logger *slog.Logger) (*FileProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path is not a directory: %s", dir)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &FileProvider{
		dir:    dir,
		logger: logger.With("component", "secrets.file"),
	}, nil
}

// Name returns "file".
func (p *FileProvider) Name() string {
	return "file"
}

// Lookup reads the file named after the secret.
func (p *FileProvider) Lookup(ctx context.Context, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid secret name %q", name)
	}

	path := filepath.Join(p.dir, name)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: no file %s", ErrNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret path is not a regular file: %s", path)
	}
	if mode := info.Mode().Perm(); mode != 0o600 && mode != 0o400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", path, mode)
	}

	// #nosec G304 - name is a single path element inside dir
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Watch calls onChange with the secret name whenever a file in the
// directory is written, created, removed or renamed. It returns once the
// watcher is registered; events are delivered until Close.
func (p *FileProvider) Watch(onChange func(name string)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.watcher != nil {
		return errors.New("secrets directory is already watched")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(p.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch secrets directory: %w", err)
	}

	p.watcher = watcher
	p.done = make(chan struct{})
	go p.watchLoop(watcher, p.done, onChange)

	p.logger.Info("watching secrets directory", "path", p.dir)
	return nil
}

func (p *FileProvider) watchLoop(w *fsnotify.Watcher, done chan struct{}, onChange func(string)) {
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op&relevant == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			p.logger.Debug("secret file changed", "file", name, "op", event.Op.String())
			onChange(name)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			p.logger.Error("secrets watcher error", "error", err)

		case <-done:
			return
		}
	}
}

// Close stops watching. It is safe to call on a provider that never
// watched.
func (p *FileProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.watcher == nil {
		return nil
	}
	close(p.done)
	err := p.watcher.Close()
	p.watcher = nil
	return err
}
