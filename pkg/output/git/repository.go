package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"zabbup-hq/zabbup/pkg/config"
)

// defaultBranch names the first branch of a repository created for an
// empty remote when no branch is configured.
const defaultBranch = "main"

// workspace is a temporary working copy of the backup repository.
type workspace struct {
	dir  string
	repo *gogit.Repository
	wt   *gogit.Worktree

	// initialized is true when the remote was empty and the working copy
	// was created locally.
	initialized bool
}

// openWorkspace clones cfg.Repo into dir. An empty remote yields a fresh
// repository whose origin points at the remote.
func openWorkspace(ctx context.Context, cfg *config.GitConfig, auth transport.AuthMethod, dir string) (*workspace, error) {
	cloneOpts := &gogit.CloneOptions{
		URL:  cfg.Repo,
		Auth: auth,
	}
	if cfg.Depth > 0 {
		cloneOpts.Depth = cfg.Depth
	}
	if cfg.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(cfg.Branch)
		cloneOpts.SingleBranch = true
	}

	repo, err := gogit.PlainCloneContext(ctx, dir, false, cloneOpts)
	initialized := false
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		repo, err = initWorkspace(cfg, dir)
		initialized = true
	}
	if err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	return &workspace{dir: dir, repo: repo, wt: wt, initialized: initialized}, nil
}

func initWorkspace(cfg *config.GitConfig, dir string) (*gogit.Repository, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("failed to reset clone directory: %w", err)
	}

	branch := cfg.Branch
	if branch == "" {
		branch = defaultBranch
	}

	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(branch),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init repository: %w", err)
	}

	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: gogit.DefaultRemoteName,
		URLs: []string{cfg.Repo},
	}); err != nil {
		return nil, fmt.Errorf("failed to create remote: %w", err)
	}

	return repo, nil
}

// clear removes every tracked file from the worktree and the index.
// It returns the number of removed files.
func (w *workspace) clear() (int, error) {
	idx, err := w.repo.Storer.Index()
	if err != nil {
		return 0, fmt.Errorf("failed to read index: %w", err)
	}

	names := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		names = append(names, e.Name)
	}

	for _, name := range names {
		if _, err := w.wt.Remove(name); err != nil {
			return 0, fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return len(names), nil
}

// writeFile writes data to the slash separated path rel.
func (w *workspace) writeFile(rel string, data []byte) error {
	full := filepath.Join(w.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

// stage adds every change, deletions included, and returns the status.
func (w *workspace) stage() (gogit.Status, error) {
	if err := w.wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return nil, fmt.Errorf("failed to stage changes: %w", err)
	}
	status, err := w.wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to compute status: %w", err)
	}
	return status, nil
}

func (w *workspace) commit(message string, author config.GitAuthorConfig) (plumbing.Hash, error) {
	return w.wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		},
	})
}

func (w *workspace) push(ctx context.Context, auth transport.AuthMethod) error {
	err := w.repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: gogit.DefaultRemoteName,
		Auth:       auth,
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}
