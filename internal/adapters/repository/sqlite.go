package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/okian/focusforge/internal/domain/progress"
)

// Username and password bounds enforced at registration.
const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 8
	maxPasswordLen = 128
)

// SQLiteStore persists accounts in a sqlite database. Snapshots are kept
// as a JSON column in the wire shape, decoded tolerantly on the way out.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS accounts (
  username TEXT PRIMARY KEY,
  password_hash TEXT NOT NULL,
  progress TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}
	return nil
}

// normalizeUsername lowercases and trims; usernames are case-insensitive.
func normalizeUsername(username string) string {
	return strings.TrimSpace(strings.ToLower(username))
}

func validateCredentials(username, password string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return fmt.Errorf("%w: username must be %d-%d characters", ErrInvalidInput, minUsernameLen, maxUsernameLen)
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return fmt.Errorf("%w: password must be %d-%d characters", ErrInvalidInput, minPasswordLen, maxPasswordLen)
	}
	return nil
}

// CreateAccount registers username with a fresh zero snapshot.
func (s *SQLiteStore) CreateAccount(ctx context.Context, username, password string) error {
	username = normalizeUsername(username)
	if err := validateCredentials(username, password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	raw, err := progress.DefaultSnapshot().Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	const stmt = `
INSERT INTO accounts (username, password_hash, progress, created_at, updated_at)
VALUES (?, ?, ?, ?, ?);
`
	if _, err := s.db.ExecContext(ctx, stmt, username, string(hash), string(raw), now, now); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") ||
			strings.Contains(strings.ToLower(err.Error()), "constraint") {
			return ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Authenticate verifies credentials and returns the account.
func (s *SQLiteStore) Authenticate(ctx context.Context, username, password string) (Account, error) {
	username = normalizeUsername(username)

	var hash, raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash, progress FROM accounts WHERE username = ?`, username,
	).Scan(&hash, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, fmt.Errorf("query account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Account{}, ErrInvalidCredentials
	}

	snap, err := progress.DecodeSnapshot([]byte(raw))
	if err != nil {
		// A corrupt stored snapshot must not lock the user out.
		snap = progress.DefaultSnapshot()
	}
	return Account{Username: username, Snapshot: snap}, nil
}

// LoadSnapshot returns the stored snapshot for username.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, username string) (progress.Snapshot, error) {
	username = normalizeUsername(username)

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT progress FROM accounts WHERE username = ?`, username,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return progress.DefaultSnapshot(), ErrNotFound
	}
	if err != nil {
		return progress.DefaultSnapshot(), fmt.Errorf("query snapshot: %w", err)
	}

	snap, err := progress.DecodeSnapshot([]byte(raw))
	if err != nil {
		return progress.DefaultSnapshot(), nil
	}
	return snap, nil
}

// SaveSnapshot overwrites the stored snapshot wholesale.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, username string, snap progress.Snapshot) error {
	username = normalizeUsername(username)

	raw, err := progress.Sanitize(snap).Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET progress = ?, updated_at = ? WHERE username = ?`,
		string(raw), now, username,
	)
	if err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of registered accounts.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0
	}
	return count
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}
