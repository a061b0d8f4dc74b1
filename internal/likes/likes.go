// Package likes keeps track of the articles each user liked.
package likes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/tkilaker/wikitok/internal/database"
)

// ErrEmptyArticleID is returned when an operation is called without an article id
var ErrEmptyArticleID = errors.New("article id is empty")

// Service manages likes per user id
type Service struct {
	store database.Backend
}

// NewService creates a like service on top of store
func NewService(store database.Backend) *Service {
	return &Service{store: store}
}

// Add likes an article; liking it again is a no-op
func (s *Service) Add(ctx context.Context, userID, articleID string) error {
	articleID, err := clean(articleID)
	if err != nil {
		return err
	}

	if err := s.store.AddLike(ctx, userID, articleID); err != nil {
		return fmt.Errorf("failed to like %s: %w", articleID, err)
	}
	return nil
}

// Remove unlikes an article
func (s *Service) Remove(ctx context.Context, userID, articleID string) error {
	articleID, err := clean(articleID)
	if err != nil {
		return err
	}

	if err := s.store.RemoveLike(ctx, userID, articleID); err != nil {
		return fmt.Errorf("failed to unlike %s: %w", articleID, err)
	}
	return nil
}

// Records returns the like records of a user, oldest first
func (s *Service) Records(ctx context.Context, userID string) ([]database.Like, error) {
	records, err := s.store.ListLikes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	return records, nil
}

// List returns the liked article ids of a user, oldest first
func (s *Service) List(ctx context.Context, userID string) ([]string, error) {
	records, err := s.Records(ctx, userID)
	if err != nil {
		return nil, err
	}

	return lo.Map(records, func(like database.Like, _ int) string {
		return like.ArticleID
	}), nil
}

// IsLiked reports whether the user liked the article
func (s *Service) IsLiked(ctx context.Context, userID, articleID string) (bool, error) {
	articleID, err := clean(articleID)
	if err != nil {
		return false, err
	}

	ids, err := s.List(ctx, userID)
	if err != nil {
		return false, err
	}
	return lo.Contains(ids, articleID), nil
}

func clean(articleID string) (string, error) {
	articleID = strings.TrimSpace(articleID)
	if articleID == "" {
		return "", ErrEmptyArticleID
	}
	return articleID, nil
}
