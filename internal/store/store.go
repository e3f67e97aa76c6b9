// Package store persists tracked uploads, category mappings, and the
// guest credential in a local SQLite database. The store is the source
// of truth for everything the tool reports; it never talks to the
// network.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofileup/gofileup/internal/model"
	_ "github.com/mutecomm/go-sqlcipher/v4"
)

const schema = `
-- gofileup tracking schema v1

CREATE TABLE IF NOT EXISTS files (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    size            INTEGER NOT NULL DEFAULT 0,
    mime_type       TEXT,
    uploaded_at     TEXT NOT NULL,
    upload_duration REAL NOT NULL DEFAULT 0,
    upload_speed    REAL NOT NULL DEFAULT 0,
    download_link   TEXT NOT NULL,
    folder_id       TEXT,
    folder_code     TEXT,
    category        TEXT NOT NULL DEFAULT '',
    account_id      TEXT
);
CREATE INDEX IF NOT EXISTS idx_files_category ON files(category);
CREATE INDEX IF NOT EXISTS idx_files_uploaded_at ON files(uploaded_at);

CREATE TABLE IF NOT EXISTS categories (
    name            TEXT PRIMARY KEY,
    folder_id       TEXT NOT NULL,
    folder_code     TEXT,
    created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key             TEXT PRIMARY KEY,
    value           TEXT NOT NULL
);
`

const (
	settingAccountID = "guest_account_id"
	settingToken     = "guest_token"
)

// Store wraps the SQLite tracking database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if necessary) the database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{db: db}, nil
}

// Init creates the schema if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- File operations ---

// SaveFile inserts a tracked file. The id is server-assigned and must
// be unique.
func (s *Store) SaveFile(ctx context.Context, f *model.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO files (id, name, size, mime_type, uploaded_at, upload_duration,
		                   upload_speed, download_link, folder_id, folder_code, category, account_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		f.ID, f.Name, f.Size, f.MimeType,
		f.UploadedAt.UTC().Format(time.RFC3339Nano),
		f.Duration.Seconds(), f.Speed,
		f.DownloadLink, f.FolderID, f.FolderCode, f.Category, f.AccountID)
	if err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

const fileColumns = `id, name, size, mime_type, uploaded_at, upload_duration,
	upload_speed, download_link, folder_id, folder_code, category, account_id`

func scanFile(scan func(dest ...any) error) (*model.FileRecord, error) {
	var f model.FileRecord
	var uploadedAt string
	var durationSecs float64
	var mimeType, folderID, folderCode, accountID sql.NullString
	err := scan(
		&f.ID, &f.Name, &f.Size, &mimeType, &uploadedAt, &durationSecs,
		&f.Speed, &f.DownloadLink, &folderID, &folderCode, &f.Category, &accountID)
	if err != nil {
		return nil, err
	}
	f.UploadedAt, err = time.Parse(time.RFC3339Nano, uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse uploaded_at for %s: %w", f.ID, err)
	}
	f.Duration = time.Duration(durationSecs * float64(time.Second))
	f.MimeType = mimeType.String
	f.FolderID = folderID.String
	f.FolderCode = folderCode.String
	f.AccountID = accountID.String
	return &f, nil
}

// FileByID retrieves one tracked file, or nil if absent.
func (s *Store) FileByID(ctx context.Context, id string) (*model.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id = ?`, id)
	f, err := scanFile(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

func (s *Store) queryFiles(ctx context.Context, query string, args ...any) ([]*model.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*model.FileRecord
	for rows.Next() {
		f, err := scanFile(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// AllFiles returns every tracked file, oldest first.
func (s *Store) AllFiles(ctx context.Context) ([]*model.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryFiles(ctx, `SELECT `+fileColumns+` FROM files ORDER BY uploaded_at ASC, id ASC`)
}

// FilesByCategory returns tracked files whose category matches name
// case-insensitively.
func (s *Store) FilesByCategory(ctx context.Context, name string) ([]*model.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryFiles(ctx,
		`SELECT `+fileColumns+` FROM files WHERE category = ? COLLATE NOCASE ORDER BY uploaded_at ASC, id ASC`,
		name)
}

// FilesByName returns tracked files with the exact given name.
func (s *Store) FilesByName(ctx context.Context, name string) ([]*model.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryFiles(ctx,
		`SELECT `+fileColumns+` FROM files WHERE name = ? ORDER BY uploaded_at ASC, id ASC`,
		name)
}

// DeleteFile removes one tracked file. Returns whether a row existed.
func (s *Store) DeleteFile(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Category operations ---

// SaveCategory inserts or replaces a category mapping.
func (s *Store) SaveCategory(ctx context.Context, c *model.CategoryMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT OR REPLACE INTO categories (name, folder_id, folder_code, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.Name, c.FolderID, c.FolderCode, c.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// CategoryByName retrieves a mapping by exact name, or nil if absent.
func (s *Store) CategoryByName(ctx context.Context, name string) (*model.CategoryMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT name, folder_id, folder_code, created_at FROM categories WHERE name = ?`, name)

	var c model.CategoryMapping
	var folderCode sql.NullString
	var createdAt string
	err := row.Scan(&c.Name, &c.FolderID, &folderCode, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	c.FolderCode = folderCode.String
	c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for category %s: %w", c.Name, err)
	}
	return &c, nil
}

// Categories returns every mapping ordered by name.
func (s *Store) Categories(ctx context.Context) ([]*model.CategoryMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, folder_id, folder_code, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var cats []*model.CategoryMapping
	for rows.Next() {
		var c model.CategoryMapping
		var folderCode sql.NullString
		var createdAt string
		if err := rows.Scan(&c.Name, &c.FolderID, &folderCode, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.FolderCode = folderCode.String
		c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for category %s: %w", c.Name, err)
		}
		cats = append(cats, &c)
	}
	return cats, rows.Err()
}

// RemoveCategory deletes one mapping by exact name. Files keeping that
// category label are untouched. Returns whether a row existed.
func (s *Store) RemoveCategory(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("failed to remove category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Credential operations ---

// Credential returns the stored guest credential, or nil if none has
// been provisioned yet.
func (s *Store) Credential(ctx context.Context) (*model.AccountCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cred model.AccountCredential
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, settingAccountID).Scan(&cred.AccountID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, settingToken).Scan(&cred.Token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &cred, nil
}

// SaveCredential stores the guest credential, replacing any previous
// one. Both keys are written in one transaction.
func (s *Store) SaveCredential(ctx context.Context, cred *model.AccountCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	defer tx.Rollback()

	for key, value := range map[string]string{
		settingAccountID: cred.AccountID,
		settingToken:     cred.Token,
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("failed to save credential: %w", err)
		}
	}
	return tx.Commit()
}

// ResetCredential removes the stored guest credential. Tracked files
// keep their account_id for history.
func (s *Store) ResetCredential(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM settings WHERE key IN (?, ?)`, settingAccountID, settingToken)
	if err != nil {
		return fmt.Errorf("failed to reset credential: %w", err)
	}
	return nil
}
