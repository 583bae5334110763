// Package fs stores the recall document in a single JSON or YAML file,
// optionally versioned with git, and resolves note links against a vault
// directory of markdown files.
package fs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/git"
)

// Repository implements core.Repository on top of a data file.
type Repository struct {
	Path   string
	git    *git.Client
	config Config

	serializers map[string]Serializer

	mu            sync.RWMutex
	lastHash      [sha256.Size]byte
	watcherActive bool
	lastLoad      *time.Time
	lastSave      *time.Time
	saves         int
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string // data file, e.g. ".recall/recall.json"
	MustExist    bool   // fail Initialize when the data file is missing
	ReadOnly     bool
	Versioning   bool // commit the data file after every save
	AutoInit     bool // git init the data directory when Versioning is on
	Logger       *slog.Logger
	ErrorHandler func(error)
	Serializers  map[string]Serializer // defaults to DefaultSerializers
}

// NewRepository creates a new file-backed repository.
func NewRepository(config Config) *Repository {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Serializers == nil {
		config.Serializers = DefaultSerializers()
	}
	path := config.Path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Repository{
		Path:        path,
		git:         git.NewClient(filepath.Dir(path), config.Logger),
		config:      config,
		serializers: config.Serializers,
	}
}

func (r *Repository) dir() string {
	return filepath.Dir(r.Path)
}

// Initialize performs the necessary setup for the repository (mkdir, git init,
// empty data file).
func (r *Repository) Initialize(ctx context.Context) error {
	if _, err := SerializerFor(r.serializers, r.Path); err != nil {
		return err
	}

	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data file does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("data file is a directory: %s", r.Path)
		}
	} else if !r.config.ReadOnly {
		if err := os.MkdirAll(r.dir(), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if r.config.Versioning && !r.config.ReadOnly {
		if err := r.initGit(); err != nil {
			return err
		}
	}

	if r.config.ReadOnly {
		return nil
	}
	if _, err := os.Stat(r.Path); os.IsNotExist(err) {
		// An empty document gives the watcher a file to follow.
		return r.Save(context.WithValue(ctx, core.ChangeReasonKey, "initialize"), core.Document{})
	}
	return nil
}

func (r *Repository) initGit() error {
	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}
	if !r.git.IsRepo() {
		if !r.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", r.dir())
		}
		if err := r.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
	}
	mod, err := r.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	if mod {
		if _, err := r.git.CommitFiles(git.FormatCommitMessage(git.CommitTypeChore, "recall", "ignore lock file", ""), ".gitignore"); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}
	return nil
}

// ensureIgnore keeps the git lock file and temp files out of version control.
func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.dir(), ".gitignore")
	entries := []string{git.DefaultLockName, TempFilePrefix + "*"}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	var buf bytes.Buffer
	buf.Write(content)
	if len(content) > 0 && !bytes.HasSuffix(content, []byte("\n")) {
		buf.WriteByte('\n')
	}
	for _, e := range missing {
		buf.WriteString(e + "\n")
	}
	return true, writeFileAtomic(ignorePath, buf.Bytes(), 0644)
}

// Load reads the document. A missing data file is an empty document.
func (r *Repository) Load(ctx context.Context) (core.Document, error) {
	s, err := SerializerFor(r.serializers, r.Path)
	if err != nil {
		return core.Document{}, err
	}

	data, err := os.ReadFile(r.Path)
	if errors.Is(err, os.ErrNotExist) {
		return core.Document{}, nil
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to read %s: %w", r.Path, err)
	}

	doc, err := s.Parse(bytes.NewReader(data))
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to parse %s: %w", r.Path, err)
	}

	now := time.Now()
	r.mu.Lock()
	r.lastHash = sha256.Sum256(data)
	r.lastLoad = &now
	r.mu.Unlock()

	r.config.Logger.Debug("document loaded", "path", r.Path, "bytes", len(data))
	return doc, nil
}

// Save serializes the document and writes it atomically. With versioning
// enabled the file is committed, using the change reason from ctx as the
// commit subject.
func (r *Repository) Save(ctx context.Context, doc core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	s, err := SerializerFor(r.serializers, r.Path)
	if err != nil {
		return err
	}

	data, err := s.Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	// Record the hash first so the watcher recognizes its own write.
	hash := sha256.Sum256(data)
	r.mu.Lock()
	r.lastHash = hash
	r.mu.Unlock()

	if err := writeFileAtomic(r.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	now := time.Now()
	r.mu.Lock()
	r.lastSave = &now
	r.saves++
	r.mu.Unlock()

	if r.config.Versioning {
		reason, ok := core.ChangeReason(ctx)
		if !ok {
			reason = "update " + filepath.Base(r.Path)
		}
		msg := git.FormatCommitMessage(git.CommitTypeChore, "recall", reason, "")
		if _, err := r.git.CommitFiles(msg, filepath.Base(r.Path)); err != nil {
			return fmt.Errorf("failed to commit %s: %w", r.Path, err)
		}
	}
	return nil
}

// isOwnWrite reports whether the file content matches the last document
// this repository read or wrote.
func (r *Repository) isOwnWrite() bool {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return false
	}
	hash := sha256.Sum256(data)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return hash == r.lastHash
}

func (r *Repository) handleError(err error) {
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
		return
	}
	r.config.Logger.Error("repository error", "error", err)
}
