package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/tkilaker/wikitok/internal/aggregator"
	"github.com/tkilaker/wikitok/internal/database"
	"github.com/tkilaker/wikitok/internal/likes"
	"github.com/tkilaker/wikitok/internal/models"
	"github.com/tkilaker/wikitok/internal/preferences"
)

// storedPreferences loads the user's preferences, falling back to the
// defaults so the feed keeps working when storage is unavailable
func (s *Server) storedPreferences(r *http.Request) models.UserPreference {
	pref, err := s.preferences.Get(r.Context(), s.userID(r))
	if err != nil {
		log.Printf("Failed to load preferences, using defaults: %v", err)
		return models.DefaultPreference()
	}
	return pref
}

// language picks the lang query parameter over the stored preference
func language(r *http.Request, pref models.UserPreference) models.Language {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return models.ParseLanguage(lang)
	}
	return pref.Language
}

// handleArticles serves the next feed batch
func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pref := s.storedPreferences(r)

	topics := pref.Topics
	if query.Has("topics") {
		topics = lo.Compact(lo.Map(strings.Split(query.Get("topics"), ","), func(t string, _ int) string {
			return strings.TrimSpace(t)
		}))
	}

	offset, err := strconv.Atoi(query.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	zapping := pref.ZappingMode
	if v, err := strconv.ParseBool(query.Get("zapping")); err == nil {
		zapping = v
	}

	articles := s.feed.FetchArticles(r.Context(), language(r, pref), topics, offset, zapping)
	writeJSON(w, http.StatusOK, articles)
}

// handleArticle serves a single article for the reader view
func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pref := s.storedPreferences(r)

	article, err := s.feed.GetArticle(r.Context(), id, language(r, pref))
	if errors.Is(err, aggregator.ErrArticleNotFound) {
		http.Error(w, fmt.Sprintf("Article not found: %s", id), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch article: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

// handleFeatured serves today's featured articles
func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	pref := s.storedPreferences(r)
	writeJSON(w, http.StatusOK, s.feed.Featured(r.Context(), language(r, pref)))
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	pref, err := s.preferences.Get(r.Context(), s.userID(r))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load preferences: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Language string `json:"language"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	lang := models.Language(strings.ToLower(strings.TrimSpace(body.Language)))
	pref, err := s.preferences.SetLanguage(r.Context(), s.userID(r), lang)
	if errors.Is(err, preferences.ErrUnsupportedLanguage) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to save preferences: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

func (s *Server) handleSetTopics(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Topics []string `json:"topics"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	pref, err := s.preferences.SetTopics(r.Context(), s.userID(r), body.Topics)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to save preferences: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

func (s *Server) handleSetZapping(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ZappingMode bool `json:"zappingMode"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	pref, err := s.preferences.SetZappingMode(r.Context(), s.userID(r), body.ZappingMode)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to save preferences: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

func (s *Server) handleListLikes(w http.ResponseWriter, r *http.Request) {
	ids, err := s.likes.List(r.Context(), s.userID(r))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch likes: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// handleLikedArticles serves the liked-articles feed
func (s *Server) handleLikedArticles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ids, err := s.likes.List(ctx, s.userID(r))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch likes: %v", err), http.StatusInternalServerError)
		return
	}

	pref := s.storedPreferences(r)
	writeJSON(w, http.StatusOK, s.feed.LikedArticles(ctx, ids, language(r, pref)))
}

// handleIsLiked reports whether the user liked one article
func (s *Server) handleIsLiked(w http.ResponseWriter, r *http.Request) {
	liked, err := s.likes.IsLiked(r.Context(), s.userID(r), chi.URLParam(r, "id"))
	if errors.Is(err, likes.ErrEmptyArticleID) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch likes: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	s.changeLike(w, r, s.likes.Add)
}

func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	s.changeLike(w, r, s.likes.Remove)
}

func (s *Server) changeLike(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, userID, articleID string) error) {
	err := apply(r.Context(), s.userID(r), chi.URLParam(r, "id"))
	if errors.Is(err, likes.ErrEmptyArticleID) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to update like: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRSS exports the liked articles as RSS
func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := s.likes.Records(ctx, s.userID(r))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch likes: %v", err), http.StatusInternalServerError)
		return
	}

	ids := lo.Map(records, func(like database.Like, _ int) string { return like.ArticleID })
	pref := s.storedPreferences(r)
	articles := s.feed.LikedArticles(ctx, ids, language(r, pref))

	feed, err := GenerateRSSFeed(articles, records, s.config)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate feed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(feed))
}
