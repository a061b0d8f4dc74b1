package database

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/tkilaker/wikitok/internal/models"
)

var errUnavailable = errors.New("connection refused")

// brokenBackend fails every call, like an unreachable server.
type brokenBackend struct {
	calls  int
	closed bool
}

func (b *brokenBackend) GetPreferences(context.Context, string) (models.UserPreference, error) {
	b.calls++
	return models.UserPreference{}, errUnavailable
}

func (b *brokenBackend) SavePreferences(context.Context, string, models.UserPreference) error {
	b.calls++
	return errUnavailable
}

func (b *brokenBackend) AddLike(context.Context, string, string) error {
	b.calls++
	return errUnavailable
}

func (b *brokenBackend) RemoveLike(context.Context, string, string) error {
	b.calls++
	return errUnavailable
}

func (b *brokenBackend) ListLikes(context.Context, string) ([]Like, error) {
	b.calls++
	return nil, errUnavailable
}

func (b *brokenBackend) Close() error {
	b.closed = true
	return nil
}

func TestFallbackUsesSecondaryWhenPrimaryFails(t *testing.T) {
	primary := &brokenBackend{}
	secondary := newTestSQLite(t)
	store := NewFallback(primary, secondary)
	ctx := context.Background()

	pref := models.DefaultPreference()
	pref.ZappingMode = true
	if err := store.SavePreferences(ctx, "u1", pref); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}
	got, err := store.GetPreferences(ctx, "u1")
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if !got.ZappingMode {
		t.Error("GetPreferences() did not read the fallback copy")
	}

	if err := store.AddLike(ctx, "u1", "Mars"); err != nil {
		t.Fatalf("AddLike() error = %v", err)
	}
	likes, err := store.ListLikes(ctx, "u1")
	if err != nil {
		t.Fatalf("ListLikes() error = %v", err)
	}
	if len(likes) != 1 {
		t.Fatalf("len(ListLikes()) = %d, want 1", len(likes))
	}
	if err := store.RemoveLike(ctx, "u1", "Mars"); err != nil {
		t.Fatalf("RemoveLike() error = %v", err)
	}

	if primary.calls != 6 {
		t.Errorf("primary calls = %d, want 6", primary.calls)
	}
}

func TestFallbackPrefersPrimary(t *testing.T) {
	primary := newTestSQLite(t)
	secondary := newTestSQLite(t)
	store := NewFallback(primary, secondary)
	ctx := context.Background()

	if err := store.AddLike(ctx, "u1", "Mars"); err != nil {
		t.Fatalf("AddLike() error = %v", err)
	}

	if likes, _ := primary.ListLikes(ctx, "u1"); len(likes) != 1 {
		t.Errorf("primary likes = %d, want 1", len(likes))
	}
	if likes, _ := secondary.ListLikes(ctx, "u1"); len(likes) != 0 {
		t.Errorf("secondary likes = %d, want 0", len(likes))
	}
}

func TestFallbackReadsSecondaryWhenPrimaryHasNoRecord(t *testing.T) {
	primary := newTestSQLite(t)
	secondary := newTestSQLite(t)
	ctx := context.Background()

	pref := models.DefaultPreference()
	pref.Language = models.LanguageTurkish
	if err := secondary.SavePreferences(ctx, "u1", pref); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}

	got, err := NewFallback(primary, secondary).GetPreferences(ctx, "u1")
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if got.Language != models.LanguageTurkish {
		t.Errorf("Language = %q, want %q", got.Language, models.LanguageTurkish)
	}
}

func TestFallbackCloseClosesBoth(t *testing.T) {
	primary := &brokenBackend{}
	secondary := &brokenBackend{}

	if err := NewFallback(primary, secondary).Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !primary.closed || !secondary.closed {
		t.Error("Close() did not close both backends")
	}
}

func TestPostgresBackend(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := NewPostgres(ctx, url)
	if err != nil {
		t.Fatalf("NewPostgres() error = %v", err)
	}
	defer db.Close()

	user := "test-" + t.Name()
	defer db.RemoveLike(ctx, user, "Mars")

	if err := db.SavePreferences(ctx, user, models.DefaultPreference()); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}
	if _, err := db.GetPreferences(ctx, user); err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if err := db.AddLike(ctx, user, "Mars"); err != nil {
		t.Fatalf("AddLike() error = %v", err)
	}
	likes, err := db.ListLikes(ctx, user)
	if err != nil {
		t.Fatalf("ListLikes() error = %v", err)
	}
	if len(likes) != 1 {
		t.Errorf("len(ListLikes()) = %d, want 1", len(likes))
	}
}
