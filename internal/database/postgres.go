package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tkilaker/wikitok/internal/models"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS preferences (
		user_id    TEXT PRIMARY KEY,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS likes (
		user_id    TEXT NOT NULL,
		article_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, article_id)
	);

	CREATE INDEX IF NOT EXISTS idx_likes_user_created ON likes (user_id, created_at);
`

// Postgres is the remote backend shared by every installation
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to Postgres and creates the schema
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool
func (db *Postgres) Close() error {
	db.pool.Close()
	return nil
}

// GetPreferences retrieves the preference blob of a user
func (db *Postgres) GetPreferences(ctx context.Context, userID string) (models.UserPreference, error) {
	query := `SELECT data FROM preferences WHERE user_id = $1`

	var raw []byte
	err := db.pool.QueryRow(ctx, query, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.UserPreference{}, ErrNotFound
	}
	if err != nil {
		return models.UserPreference{}, fmt.Errorf("failed to get preferences: %w", err)
	}

	var pref models.UserPreference
	if err := json.Unmarshal(raw, &pref); err != nil {
		return models.UserPreference{}, fmt.Errorf("failed to decode preferences: %w", err)
	}

	return pref, nil
}

// SavePreferences replaces the preference blob of a user
func (db *Postgres) SavePreferences(ctx context.Context, userID string, pref models.UserPreference) error {
	raw, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	query := `
		INSERT INTO preferences (user_id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`

	if _, err := db.pool.Exec(ctx, query, userID, string(raw)); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	return nil
}

// AddLike stores a like; liking twice is a no-op
func (db *Postgres) AddLike(ctx context.Context, userID, articleID string) error {
	query := `
		INSERT INTO likes (user_id, article_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, article_id) DO NOTHING
	`

	if _, err := db.pool.Exec(ctx, query, userID, articleID); err != nil {
		return fmt.Errorf("failed to add like: %w", err)
	}

	return nil
}

// RemoveLike deletes a like if present
func (db *Postgres) RemoveLike(ctx context.Context, userID, articleID string) error {
	query := `DELETE FROM likes WHERE user_id = $1 AND article_id = $2`

	if _, err := db.pool.Exec(ctx, query, userID, articleID); err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}

	return nil
}

// ListLikes retrieves the likes of a user, oldest first
func (db *Postgres) ListLikes(ctx context.Context, userID string) ([]Like, error) {
	query := `
		SELECT user_id, article_id, created_at
		FROM likes
		WHERE user_id = $1
		ORDER BY created_at ASC, article_id ASC
	`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query likes: %w", err)
	}
	defer rows.Close()

	likes := []Like{}
	for rows.Next() {
		var like Like
		if err := rows.Scan(&like.UserID, &like.ArticleID, &like.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		likes = append(likes, like)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating likes: %w", err)
	}

	return likes, nil
}
