package database

import "time"

// Like records that a user liked an article
type Like struct {
	UserID    string    `db:"user_id"`
	ArticleID string    `db:"article_id"`
	CreatedAt time.Time `db:"created_at"`
}
