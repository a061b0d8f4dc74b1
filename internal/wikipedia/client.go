package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tkilaker/wikitok/internal/models"
)

// DefaultEndpoint is the action API of each language edition
const DefaultEndpoint = "https://%s.wikipedia.org/w/api.php"

const defaultUserAgent = "wikitok/1.0 (https://github.com/tkilaker/wikitok)"

// Config configures a Client. Zero values fall back to the defaults below.
type Config struct {
	// Endpoint is either a format string with one %s for the language code,
	// or a fixed URL used for every language.
	Endpoint   string
	UserAgent  string
	HTTPClient *http.Client

	SearchTimeout time.Duration // default 10s
	ListTimeout   time.Duration // default 10s
	DetailTimeout time.Duration // default 5s
	ReadTimeout   time.Duration // default 10s
}

// Client wraps the read-only Wikipedia endpoints used by the feed.
// Every operation degrades to an empty value instead of failing the caller;
// the returned error only describes what went wrong.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client

	searchTimeout time.Duration
	listTimeout   time.Duration
	detailTimeout time.Duration
	readTimeout   time.Duration

	now   func() time.Time
	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a new Wikipedia client
func New(cfg Config) *Client {
	c := &Client{
		endpoint:      cfg.Endpoint,
		userAgent:     cfg.UserAgent,
		httpClient:    cfg.HTTPClient,
		searchTimeout: cfg.SearchTimeout,
		listTimeout:   cfg.ListTimeout,
		detailTimeout: cfg.DetailTimeout,
		readTimeout:   cfg.ReadTimeout,
		now:           time.Now,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.searchTimeout <= 0 {
		c.searchTimeout = 10 * time.Second
	}
	if c.listTimeout <= 0 {
		c.listTimeout = 10 * time.Second
	}
	if c.detailTimeout <= 0 {
		c.detailTimeout = 5 * time.Second
	}
	if c.readTimeout <= 0 {
		c.readTimeout = 10 * time.Second
	}

	return c
}

// endpointFor returns the API URL for a language
func (c *Client) endpointFor(lang models.Language) string {
	if strings.Contains(c.endpoint, "%s") {
		return fmt.Sprintf(c.endpoint, lang)
	}
	return c.endpoint
}

// getJSON performs a GET against the action API and decodes the body into out
func (c *Client) getJSON(ctx context.Context, lang models.Language, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("origin", "*")

	reqURL := c.endpointFor(lang) + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", params.Get("action"), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("wikipedia returned status %d for %s", resp.StatusCode, params.Get("action"))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", params.Get("action"), err)
	}

	return nil
}

// randomInstant returns a point in time within the last year
func (c *Client) randomInstant() time.Time {
	c.rngMu.Lock()
	offset := c.rng.Int63n(int64(365 * 24 * time.Hour))
	c.rngMu.Unlock()
	return c.now().Add(-time.Duration(offset)).UTC()
}
