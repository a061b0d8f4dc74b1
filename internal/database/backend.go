package database

import (
	"context"
	"errors"

	"github.com/tkilaker/wikitok/internal/models"
)

// ErrNotFound is returned when a user has no stored preferences
var ErrNotFound = errors.New("not found")

// Backend persists user preferences and likes
type Backend interface {
	GetPreferences(ctx context.Context, userID string) (models.UserPreference, error)
	SavePreferences(ctx context.Context, userID string, pref models.UserPreference) error

	AddLike(ctx context.Context, userID, articleID string) error
	RemoveLike(ctx context.Context, userID, articleID string) error
	ListLikes(ctx context.Context, userID string) ([]Like, error)

	Close() error
}
