package database

import (
	"context"
	"errors"
	"log"

	"github.com/tkilaker/wikitok/internal/models"
)

// Fallback tries the primary backend first and falls back to the
// secondary one whenever the primary fails. A missing preference record
// counts as a failure so a device that was offline still finds its data.
type Fallback struct {
	primary   Backend
	secondary Backend
}

// NewFallback wraps primary with secondary
func NewFallback(primary, secondary Backend) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) GetPreferences(ctx context.Context, userID string) (models.UserPreference, error) {
	pref, err := f.primary.GetPreferences(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Printf("Primary store failed to get preferences, using fallback: %v", err)
	}
	return f.secondary.GetPreferences(ctx, userID)
}

func (f *Fallback) SavePreferences(ctx context.Context, userID string, pref models.UserPreference) error {
	if err := f.primary.SavePreferences(ctx, userID, pref); err != nil {
		log.Printf("Primary store failed to save preferences, using fallback: %v", err)
		return f.secondary.SavePreferences(ctx, userID, pref)
	}
	return nil
}

func (f *Fallback) AddLike(ctx context.Context, userID, articleID string) error {
	if err := f.primary.AddLike(ctx, userID, articleID); err != nil {
		log.Printf("Primary store failed to add like, using fallback: %v", err)
		return f.secondary.AddLike(ctx, userID, articleID)
	}
	return nil
}

func (f *Fallback) RemoveLike(ctx context.Context, userID, articleID string) error {
	if err := f.primary.RemoveLike(ctx, userID, articleID); err != nil {
		log.Printf("Primary store failed to remove like, using fallback: %v", err)
		return f.secondary.RemoveLike(ctx, userID, articleID)
	}
	return nil
}

func (f *Fallback) ListLikes(ctx context.Context, userID string) ([]Like, error) {
	likes, err := f.primary.ListLikes(ctx, userID)
	if err == nil {
		return likes, nil
	}
	log.Printf("Primary store failed to list likes, using fallback: %v", err)
	return f.secondary.ListLikes(ctx, userID)
}

// Close closes both backends
func (f *Fallback) Close() error {
	return errors.Join(f.primary.Close(), f.secondary.Close())
}
