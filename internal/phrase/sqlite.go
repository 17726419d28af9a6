package phrase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const timeLayout = time.RFC3339Nano

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens the database at path, creating parent directories, and
// applies pending migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create phrase database directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an open, migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save inserts or updates a phrase by name.
func (s *SQLiteStore) Save(ctx context.Context, p *Phrase) error {
	if err := p.Validate(); err != nil {
		return err
	}

	now := s.now()
	id := p.ID
	if id == "" {
		id = uuid.New().String()
	}

	var created string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO phrases (id, folder, name, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		     folder = excluded.folder,
		     content = excluded.content,
		     updated_at = excluded.updated_at
		 RETURNING id, created_at`,
		id, p.Folder, p.Name, p.Content, now.Format(timeLayout), now.Format(timeLayout),
	).Scan(&p.ID, &created)
	if err != nil {
		return fmt.Errorf("failed to save phrase %q: %w", p.Name, err)
	}

	if p.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return fmt.Errorf("phrase %q: bad created_at: %w", p.Name, err)
	}
	p.UpdatedAt = now
	return nil
}

// Get returns the phrase called name.
func (s *SQLiteStore) Get(ctx context.Context, name string) (*Phrase, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, folder, name, content, created_at, updated_at FROM phrases WHERE name = ?`,
		name,
	)

	p, err := scanPhrase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get phrase %q: %w", name, err)
	}
	return p, nil
}

// List returns phrases in folder, or all phrases when folder is empty.
func (s *SQLiteStore) List(ctx context.Context, folder string) ([]*Phrase, error) {
	query := `SELECT id, folder, name, content, created_at, updated_at FROM phrases`
	var args []any
	if folder != "" {
		query += ` WHERE folder = ?`
		args = append(args, folder)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list phrases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var phrases []*Phrase
	for rows.Next() {
		p, err := scanPhrase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan phrase: %w", err)
		}
		phrases = append(phrases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list phrases: %w", err)
	}
	return phrases, nil
}

// Delete removes the phrase called name.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM phrases WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete phrase %q: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete phrase %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPhrase(row scanner) (*Phrase, error) {
	p := &Phrase{}
	var created, updated string
	if err := row.Scan(&p.ID, &p.Folder, &p.Name, &p.Content, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if p.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("bad created_at for %q: %w", p.Name, err)
	}
	if p.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("bad updated_at for %q: %w", p.Name, err)
	}
	return p, nil
}
