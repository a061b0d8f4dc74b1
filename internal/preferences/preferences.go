// Package preferences stores the per-user language, topic and zapping
// settings as a single blob.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/samber/lo"
	"github.com/tkilaker/wikitok/internal/database"
	"github.com/tkilaker/wikitok/internal/models"
)

// ErrUnsupportedLanguage is returned by SetLanguage for languages without an endpoint
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Service reads and updates user preferences
type Service struct {
	store database.Backend
}

// NewService creates a preference service on top of store
func NewService(store database.Backend) *Service {
	return &Service{store: store}
}

// Get returns the stored preferences, persisting the defaults on first use
func (s *Service) Get(ctx context.Context, userID string) (models.UserPreference, error) {
	pref, err := s.store.GetPreferences(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		pref = models.DefaultPreference()
		if err := s.store.SavePreferences(ctx, userID, pref); err != nil {
			log.Printf("Failed to persist default preferences for %s: %v", userID, err)
		}
		return pref, nil
	}
	if err != nil {
		return models.UserPreference{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	return normalize(pref), nil
}

// SetLanguage updates the feed language
func (s *Service) SetLanguage(ctx context.Context, userID string, lang models.Language) (models.UserPreference, error) {
	if !lang.IsSupported() {
		return models.UserPreference{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	return s.update(ctx, userID, func(pref *models.UserPreference) {
		pref.Language = lang
	})
}

// SetTopics replaces the selected topics. An empty selection restores the defaults.
func (s *Service) SetTopics(ctx context.Context, userID string, topics []models.Topic) (models.UserPreference, error) {
	cleaned := lo.Uniq(lo.FilterMap(topics, func(topic models.Topic, _ int) (models.Topic, bool) {
		topic = strings.TrimSpace(topic)
		return topic, topic != ""
	}))
	if len(cleaned) == 0 {
		cleaned = models.DefaultPreference().Topics
	}

	return s.update(ctx, userID, func(pref *models.UserPreference) {
		pref.Topics = cleaned
	})
}

// SetZappingMode toggles random browsing
func (s *Service) SetZappingMode(ctx context.Context, userID string, enabled bool) (models.UserPreference, error) {
	return s.update(ctx, userID, func(pref *models.UserPreference) {
		pref.ZappingMode = enabled
	})
}

func (s *Service) update(ctx context.Context, userID string, apply func(*models.UserPreference)) (models.UserPreference, error) {
	pref, err := s.Get(ctx, userID)
	if err != nil {
		return models.UserPreference{}, err
	}

	apply(&pref)

	if err := s.store.SavePreferences(ctx, userID, pref); err != nil {
		return models.UserPreference{}, fmt.Errorf("failed to save preferences: %w", err)
	}

	return pref, nil
}

func normalize(pref models.UserPreference) models.UserPreference {
	if !pref.Language.IsSupported() {
		pref.Language = models.DefaultLanguage
	}
	if pref.Topics == nil {
		pref.Topics = []models.Topic{}
	}
	return pref
}
