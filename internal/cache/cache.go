package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tkilaker/wikitok/internal/models"
)

// Store caches hydrated page details between fetches
type Store interface {
	Get(ctx context.Context, key string) (models.PageDetails, bool)
	Set(ctx context.Context, key string, details models.PageDetails)
}

// Key builds the cache key for a page lookup. Id and title lookups live in
// separate key spaces since a title may consist of digits only.
func Key(lang models.Language, page models.PageRef) string {
	if page.PageID > 0 {
		return fmt.Sprintf("wikitok:details:%s:id:%d", lang, page.PageID)
	}
	return fmt.Sprintf("wikitok:details:%s:title:%s", lang, page.Title)
}

type entry struct {
	details  models.PageDetails
	storedAt time.Time
}

// Memory is an in-process Store with a fixed retention
type Memory struct {
	mu        sync.RWMutex
	entries   map[string]entry
	retention time.Duration
	now       func() time.Time
}

// NewMemory creates an in-memory cache whose entries expire after retention
func NewMemory(retention time.Duration) *Memory {
	return &Memory{
		entries:   make(map[string]entry),
		retention: retention,
		now:       time.Now,
	}
}

func (c *Memory) Get(_ context.Context, key string) (models.PageDetails, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || c.expired(e) {
		return models.PageDetails{}, false
	}
	return e.details, true
}

func (c *Memory) Set(_ context.Context, key string, details models.PageDetails) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{details: details, storedAt: c.now()}
}

// Cleanup drops expired entries and returns how many were removed
func (c *Memory) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// size returns the number of entries, expired or not
func (c *Memory) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Memory) expired(e entry) bool {
	return c.now().Sub(e.storedAt) > c.retention
}
