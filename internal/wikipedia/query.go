package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/tkilaker/wikitok/internal/models"
)

// SortMode selects how category members are traversed
type SortMode int

const (
	// SortRandomTimestamp starts the listing at a random instant of the last year
	SortRandomTimestamp SortMode = iota
	// SortNewest lists the most recently added members first
	SortNewest
)

type categoryMembersResponse struct {
	Query struct {
		CategoryMembers []struct {
			PageID int64  `json:"pageid"`
			Title  string `json:"title"`
		} `json:"categorymembers"`
	} `json:"query"`
}

type randomResponse struct {
	Query struct {
		Random []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"random"`
	} `json:"query"`
}

type pagesResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID    int64   `json:"pageid"`
			Title     string  `json:"title"`
			Extract   string  `json:"extract"`
			Missing   *string `json:"missing"`
			Thumbnail *struct {
				Source string `json:"source"`
			} `json:"thumbnail"`
			Categories []struct {
				Title string `json:"title"`
			} `json:"categories"`
		} `json:"pages"`
	} `json:"query"`
}

// OpenSearch searches article titles. The result is empty, never nil, on any failure.
func (c *Client) OpenSearch(ctx context.Context, term string, lang models.Language, limit int) (models.SearchResult, error) {
	result := models.SearchResult{Titles: []string{}, URLs: []string{}}

	ctx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", term)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("namespace", "0")

	// [term, [titles], [descriptions], [urls]]
	var raw []json.RawMessage
	if err := c.getJSON(ctx, lang, params, &raw); err != nil {
		return result, err
	}
	if len(raw) < 4 {
		return result, fmt.Errorf("unexpected opensearch response with %d elements", len(raw))
	}

	var titles, urls []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return result, fmt.Errorf("failed to decode opensearch titles: %w", err)
	}
	if err := json.Unmarshal(raw[3], &urls); err != nil {
		return result, fmt.Errorf("failed to decode opensearch urls: %w", err)
	}

	// keep the arrays parallel
	n := min(len(titles), len(urls))
	result.Titles = titles[:n]
	result.URLs = urls[:n]
	return result, nil
}

// CategoryMembers lists pages of a category. The result is empty, never nil, on any failure.
func (c *Client) CategoryMembers(ctx context.Context, category string, lang models.Language, limit int, mode SortMode) ([]models.PageRef, error) {
	refs := []models.PageRef{}

	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "categorymembers")
	params.Set("cmtitle", category)
	params.Set("cmtype", "page")
	params.Set("cmnamespace", "0")
	params.Set("cmlimit", strconv.Itoa(limit))
	params.Set("cmsort", "timestamp")

	switch mode {
	case SortRandomTimestamp:
		params.Set("cmdir", "newer")
		params.Set("cmstart", c.randomInstant().Format(time.RFC3339))
	default:
		params.Set("cmdir", "desc")
	}

	var resp categoryMembersResponse
	if err := c.getJSON(ctx, lang, params, &resp); err != nil {
		return refs, err
	}

	for _, m := range resp.Query.CategoryMembers {
		refs = append(refs, models.PageRef{PageID: m.PageID, Title: m.Title})
	}
	return refs, nil
}

// RandomPages draws uniformly random articles. The result is empty, never nil, on any failure.
func (c *Client) RandomPages(ctx context.Context, lang models.Language, limit int) ([]models.PageRef, error) {
	refs := []models.PageRef{}

	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "random")
	params.Set("rnnamespace", "0")
	params.Set("rnlimit", strconv.Itoa(limit))

	var resp randomResponse
	if err := c.getJSON(ctx, lang, params, &resp); err != nil {
		return refs, err
	}

	for _, p := range resp.Query.Random {
		refs = append(refs, models.PageRef{PageID: p.ID, Title: p.Title})
	}
	return refs, nil
}

// PageDetails fetches the intro extract and thumbnail of a page. Pages with
// a page id are looked up by id, all others by title, so a title made of
// digits is never mistaken for an id. ImageURL is always set, falling back
// to a default image even when the lookup fails.
func (c *Client) PageDetails(ctx context.Context, page models.PageRef, lang models.Language) (models.PageDetails, error) {
	details := models.PageDetails{ImageURL: models.DefaultThumbnail}

	ctx, cancel := context.WithTimeout(ctx, c.detailTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|pageimages|categories")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("pithumbsize", "500")
	params.Set("cllimit", "50")
	params.Set("redirects", "1")
	if page.PageID > 0 {
		params.Set("pageids", strconv.FormatInt(page.PageID, 10))
	} else {
		params.Set("titles", page.Title)
	}

	var resp pagesResponse
	if err := c.getJSON(ctx, lang, params, &resp); err != nil {
		return details, err
	}

	// map order is random; sort ids so the pick is stable
	keys := make([]string, 0, len(resp.Query.Pages))
	for k := range resp.Query.Pages {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		page := resp.Query.Pages[k]
		if page.Missing != nil {
			continue
		}

		details.Title = page.Title
		details.Content = page.Extract
		details.Snippet = models.Snippet(page.Extract)

		if page.Thumbnail != nil && page.Thumbnail.Source != "" {
			details.ImageURL = page.Thumbnail.Source
			details.Original = true
			return details, nil
		}

		categories := make([]string, 0, len(page.Categories))
		for _, cat := range page.Categories {
			categories = append(categories, cat.Title)
		}
		if topic, ok := InferTopic(categories); ok {
			details.ImageURL = models.TopicThumbnails[topic]
		}
		return details, nil
	}

	return details, fmt.Errorf("page %q not found", page.Key())
}
