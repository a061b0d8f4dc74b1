package wikipedia

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/tkilaker/wikitok/internal/models"
)

// FeaturedFeed returns the articles linked from the featured-article Atom feed.
// Each entry describes one day; the featured article is the first bold link
// of its summary.
func (c *Client) FeaturedFeed(ctx context.Context, lang models.Language, limit int) ([]models.PageRef, error) {
	refs := []models.PageRef{}

	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("action", "featuredfeed")
	params.Set("feed", "featured")
	params.Set("feedformat", "atom")
	feedURL := c.endpointFor(lang) + "?" + params.Encode()

	parser := gofeed.NewParser()
	parser.Client = c.httpClient
	parser.UserAgent = c.userAgent

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return refs, fmt.Errorf("failed to parse featured feed: %w", err)
	}

	// newest first
	for i := len(feed.Items) - 1; i >= 0 && len(refs) < limit; i-- {
		item := feed.Items[i]
		summary := item.Description
		if summary == "" {
			summary = item.Content
		}
		title, ok := featuredTitle(summary)
		if !ok {
			continue
		}
		refs = append(refs, models.PageRef{Title: title})
	}

	return refs, nil
}

// featuredTitle extracts the article title from the first bold wiki link
func featuredTitle(summary string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(summary))
	if err != nil {
		return "", false
	}

	var title string
	for _, selector := range []string{"b a[href]", "a[href]"} {
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			u, err := url.Parse(href)
			if err != nil || !strings.Contains(u.Path, "/wiki/") {
				return true
			}
			name, err := url.PathUnescape(path.Base(u.Path))
			if err != nil || name == "" || strings.Contains(name, ":") {
				return true
			}
			title = models.DisplayTitle(name)
			return false
		})
		if title != "" {
			break
		}
	}

	return title, title != ""
}
