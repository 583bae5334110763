// Package git runs the git binary on behalf of the file repository. Commits
// are serialized across processes with a lock file in the work tree.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLockName is the lock file created in the work tree while a commit
// is in progress.
const DefaultLockName = ".recall.lock"

// DefaultLockTimeout bounds how long Lock waits for another process.
const DefaultLockTimeout = 10 * time.Second

const lockRetry = 10 * time.Millisecond

// ErrLockTimeout is returned when the lock could not be acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for git lock")

// Client executes git in WorkDir.
type Client struct {
	WorkDir     string
	Logger      *slog.Logger
	LockTimeout time.Duration // zero waits forever
}

// NewClient returns a client for workDir. A nil logger disables logging.
func NewClient(workDir string, logger *slog.Logger) *Client {
	return &Client{WorkDir: workDir, Logger: logger, LockTimeout: DefaultLockTimeout}
}

// IsInstalled reports whether a git binary is on PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Lock creates the lock file exclusively, retrying while another process
// holds it. The returned func releases the lock.
func (c *Client) Lock() (func(), error) {
	path := filepath.Join(c.WorkDir, DefaultLockName)
	var deadline <-chan time.Time
	if c.LockTimeout > 0 {
		timer := time.NewTimer(c.LockTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL, 0o666)
		switch {
		case err == nil:
			_ = f.Close()
			return func() { _ = os.Remove(path) }, nil
		case !errors.Is(err, os.ErrExist):
			return nil, fmt.Errorf("create lock %s: %w", path, err)
		}

		select {
		case <-deadline:
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, path)
		case <-time.After(lockRetry):
		}
	}
}

// Run executes git with args and returns its trimmed combined output.
// Callers that mutate the repository hold Lock around it.
func (c *Client) Run(args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("git", "args", args, "dir", c.WorkDir)
	}
	cmd := exec.Command("git", args...)
	cmd.Dir = c.WorkDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, bytesTrim(out))
	}
	return bytesTrim(out), nil
}

func bytesTrim(b []byte) string {
	return strings.TrimSpace(string(b))
}

// IsRepo reports whether WorkDir is inside a git work tree.
func (c *Client) IsRepo() bool {
	out, err := c.Run("rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Init runs git init; it is safe on an existing repository.
func (c *Client) Init() error {
	_, err := c.Run("init")
	return err
}

// Add stages paths relative to WorkDir.
func (c *Client) Add(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := c.Run(append([]string{"add", "--"}, paths...)...)
	return err
}

// Commit commits the index with msg.
func (c *Client) Commit(msg string) error {
	_, err := c.Run("commit", "-m", msg)
	return err
}

// Status is git status --porcelain; empty means a clean tree.
func (c *Client) Status() (string, error) {
	return c.Run("status", "--porcelain")
}

// HasStagedChanges reports whether the index differs from HEAD.
func (c *Client) HasStagedChanges() (bool, error) {
	_, err := c.Run("diff", "--cached", "--quiet")
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return false, nil
	case errors.As(err, &exitErr) && exitErr.ExitCode() == 1:
		return true, nil
	default:
		return false, err
	}
}

// CommitFiles stages paths and commits them with msg under the lock. It
// reports false without committing when nothing changed.
func (c *Client) CommitFiles(msg string, paths ...string) (bool, error) {
	unlock, err := c.Lock()
	if err != nil {
		return false, err
	}
	defer unlock()

	if err := c.Add(paths...); err != nil {
		return false, err
	}
	if staged, err := c.HasStagedChanges(); err != nil || !staged {
		return false, err
	}
	if err := c.Commit(msg); err != nil {
		return false, err
	}
	return true, nil
}
