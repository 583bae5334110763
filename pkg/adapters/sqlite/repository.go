// Package sqlite stores the recall document in a SQLite database. Every save
// appends a revision; the latest revision is the current document and older
// ones are kept as history up to a configurable depth.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/recall/pkg/adapters/fs"
	"github.com/aretw0/recall/pkg/core"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// DefaultKeep is the number of revisions retained when Config.Keep is zero.
const DefaultKeep = 50

// Config holds the configuration for the SQLite repository.
type Config struct {
	Path     string // database file, e.g. ".recall/recall.db"
	Keep     int    // revisions retained after each save
	ReadOnly bool
	Logger   *slog.Logger
}

// Revision describes one stored version of the document.
type Revision struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Reason    string    `json:"reason"`
	Size      int       `json:"size"`
}

// Repository implements core.Repository on top of a SQLite database.
type Repository struct {
	config Config
	codec  *fs.JSONSerializer

	mu sync.Mutex
	db *sql.DB
}

// NewRepository creates a repository. The database is opened lazily by
// Initialize or the first Load/Save.
func NewRepository(config Config) *Repository {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Keep <= 0 {
		config.Keep = DefaultKeep
	}
	if abs, err := filepath.Abs(config.Path); err == nil {
		config.Path = abs
	}
	// Revisions are stored compact; the file adapter's wire format is reused
	// so a revision can be exported as a data file verbatim.
	return &Repository{config: config, codec: &fs.JSONSerializer{}}
}

// errMissing reports a read-only repository whose database does not exist.
var errMissing = errors.New("database does not exist")

// Initialize creates the database and applies migrations.
func (r *Repository) Initialize(ctx context.Context) error {
	_, err := r.open(ctx)
	if errors.Is(err, errMissing) {
		return nil
	}
	return err
}

func (r *Repository) open(ctx context.Context) (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return r.db, nil
	}

	if r.config.ReadOnly {
		if _, err := os.Stat(r.config.Path); os.IsNotExist(err) {
			return nil, errMissing
		}
	} else if err := os.MkdirAll(filepath.Dir(r.config.Path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	dsn := r.config.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := verifyWALMode(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.config.Logger.Debug("database opened", "path", r.config.Path)
	r.db = db
	return db, nil
}

// Close releases the database handle. The repository reopens it on demand.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// Load returns the latest revision. An empty database is an empty document.
func (r *Repository) Load(ctx context.Context) (core.Document, error) {
	db, err := r.open(ctx)
	if errors.Is(err, errMissing) {
		return core.Document{}, nil
	}
	if err != nil {
		return core.Document{}, err
	}

	var body string
	err = db.QueryRowContext(ctx, `SELECT body FROM revisions ORDER BY id DESC LIMIT 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, nil
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("load latest revision: %w", err)
	}
	return r.decode(body)
}

// Save appends a revision unless the document equals the latest one, then
// prunes history beyond Config.Keep. The change reason carried by ctx is
// stored with the revision.
func (r *Repository) Save(ctx context.Context, doc core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	db, err := r.open(ctx)
	if err != nil {
		return err
	}

	data, err := r.codec.Serialize(doc)
	if err != nil {
		return fmt.Errorf("serialize document: %w", err)
	}
	body := string(data)
	reason, _ := core.ChangeReason(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var latest string
	err = tx.QueryRowContext(ctx, `SELECT body FROM revisions ORDER BY id DESC LIMIT 1`).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read latest revision: %w", err)
	}
	if err == nil && latest == body {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO revisions (created_at, reason, body) VALUES (?, ?, ?)`,
		time.Now().UnixMilli(), reason, body,
	); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM revisions WHERE id NOT IN (SELECT id FROM revisions ORDER BY id DESC LIMIT ?)`,
		r.config.Keep,
	); err != nil {
		return fmt.Errorf("prune revisions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.config.Logger.Debug("revision saved", "reason", reason, "bytes", len(body))
	return nil
}

// History lists stored revisions, newest first. A non-positive limit lists all.
func (r *Repository) History(ctx context.Context, limit int) ([]Revision, error) {
	db, err := r.open(ctx)
	if errors.Is(err, errMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, created_at, reason, length(body) FROM revisions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var rev Revision
		var created int64
		if err := rows.Scan(&rev.ID, &created, &rev.Reason, &rev.Size); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		rev.CreatedAt = time.UnixMilli(created)
		out = append(out, rev)
	}
	return out, rows.Err()
}

// At returns the document stored in revision id.
func (r *Repository) At(ctx context.Context, id int64) (core.Document, error) {
	db, err := r.open(ctx)
	if errors.Is(err, errMissing) {
		return core.Document{}, core.ErrNotFound
	}
	if err != nil {
		return core.Document{}, err
	}

	var body string
	err = db.QueryRowContext(ctx, `SELECT body FROM revisions WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, fmt.Errorf("revision %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("load revision %d: %w", id, err)
	}
	return r.decode(body)
}

func (r *Repository) decode(body string) (core.Document, error) {
	doc, err := r.codec.Parse(strings.NewReader(body))
	if err != nil {
		return core.Document{}, fmt.Errorf("decode revision: %w", err)
	}
	return doc, nil
}

var _ core.Repository = (*Repository)(nil)
