package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tkilaker/wikitok/internal/config"
	"github.com/tkilaker/wikitok/internal/likes"
	"github.com/tkilaker/wikitok/internal/models"
	"github.com/tkilaker/wikitok/internal/preferences"
)

// UserIDHeader lets a client act as a specific user
const UserIDHeader = "X-User-ID"

// Feed produces the articles served by the API
type Feed interface {
	FetchArticles(ctx context.Context, lang models.Language, topics []models.Topic, offset int, zappingMode bool) []models.Article
	GetArticle(ctx context.Context, id string, lang models.Language) (models.Article, error)
	LikedArticles(ctx context.Context, ids []string, lang models.Language) []models.Article
	Featured(ctx context.Context, lang models.Language) []models.Article
}

// Server represents the HTTP server
type Server struct {
	router        *chi.Mux
	feed          Feed
	preferences   *preferences.Service
	likes         *likes.Service
	config        *config.Config
	defaultUserID string
}

// New creates a new server instance. Requests without a user header act
// as defaultUserID.
func New(feed Feed, prefs *preferences.Service, likeSvc *likes.Service, cfg *config.Config, defaultUserID string) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		feed:          feed,
		preferences:   prefs,
		likes:         likeSvc,
		config:        cfg,
		defaultUserID: defaultUserID,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(60 * time.Second))

	// Routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/articles", s.handleArticles)
		r.Get("/articles/{id}", s.handleArticle)
		r.Get("/featured", s.handleFeatured)

		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences/language", s.handleSetLanguage)
		r.Put("/preferences/topics", s.handleSetTopics)
		r.Put("/preferences/zapping", s.handleSetZapping)

		r.Get("/likes", s.handleListLikes)
		r.Get("/likes/articles", s.handleLikedArticles)
		r.Get("/likes/{id}", s.handleIsLiked)
		r.Put("/likes/{id}", s.handleLike)
		r.Delete("/likes/{id}", s.handleUnlike)
	})
	s.router.Get("/rss.xml", s.handleRSS)

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Router returns the Chi router
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// userID returns the user a request acts as
func (s *Server) userID(r *http.Request) string {
	if id := r.Header.Get(UserIDHeader); id != "" {
		return id
	}
	return s.defaultUserID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
