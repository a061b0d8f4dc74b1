package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tkilaker/wikitok/internal/models"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS preferences (
		user_id    TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS likes (
		user_id    TEXT NOT NULL,
		article_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, article_id)
	);

	CREATE INDEX IF NOT EXISTS idx_likes_user_created ON likes (user_id, created_at);
`

// SQLiteFile is the database file name inside the data directory
const SQLiteFile = "wikitok.db"

// SQLite is the on-device backend
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens (or creates) the database file in dataDir
func NewSQLite(ctx context.Context, dataDir string) (*SQLite, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, SQLiteFile)
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetPreferences retrieves the preference blob of a user
func (s *SQLite) GetPreferences(ctx context.Context, userID string) (models.UserPreference, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM preferences WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserPreference{}, ErrNotFound
	}
	if err != nil {
		return models.UserPreference{}, fmt.Errorf("failed to get preferences: %w", err)
	}

	var pref models.UserPreference
	if err := json.Unmarshal([]byte(raw), &pref); err != nil {
		return models.UserPreference{}, fmt.Errorf("failed to decode preferences: %w", err)
	}

	return pref, nil
}

// SavePreferences replaces the preference blob of a user
func (s *SQLite) SavePreferences(ctx context.Context, userID string, pref models.UserPreference) error {
	raw, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	query := `
		INSERT INTO preferences (user_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, userID, string(raw), s.now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	return nil
}

// AddLike stores a like; liking twice is a no-op
func (s *SQLite) AddLike(ctx context.Context, userID, articleID string) error {
	query := `INSERT OR IGNORE INTO likes (user_id, article_id, created_at) VALUES (?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, userID, articleID, s.now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to add like: %w", err)
	}

	return nil
}

// RemoveLike deletes a like if present
func (s *SQLite) RemoveLike(ctx context.Context, userID, articleID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM likes WHERE user_id = ? AND article_id = ?`, userID, articleID); err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}

	return nil
}

// ListLikes retrieves the likes of a user, oldest first
func (s *SQLite) ListLikes(ctx context.Context, userID string) ([]Like, error) {
	query := `
		SELECT user_id, article_id, created_at
		FROM likes
		WHERE user_id = ?
		ORDER BY created_at ASC, rowid ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query likes: %w", err)
	}
	defer rows.Close()

	likes := []Like{}
	for rows.Next() {
		var like Like
		var createdAt int64
		if err := rows.Scan(&like.UserID, &like.ArticleID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		like.CreatedAt = time.UnixMilli(createdAt)
		likes = append(likes, like)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating likes: %w", err)
	}

	return likes, nil
}
