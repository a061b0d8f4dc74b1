package aggregator

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/tkilaker/wikitok/internal/models"
	"github.com/tkilaker/wikitok/internal/terms"
	"golang.org/x/sync/errgroup"
)

// GetArticle loads a single article for the reader view. id is either a
// numeric page id or a (possibly URL-encoded) title.
func (a *Aggregator) GetArticle(ctx context.Context, id string, lang models.Language) (models.Article, error) {
	if !lang.IsSupported() {
		lang = models.DefaultLanguage
	}

	page, numeric := lookupRef(id)

	details, err := a.details(ctx, page, lang)
	if details.Title == "" && details.Content == "" {
		if err == nil {
			err = fmt.Errorf("empty page %q", page.Key())
		}
		return models.Article{}, fmt.Errorf("%w: %v", ErrArticleNotFound, err)
	}

	article := models.Article{
		Content:          details.Content,
		Snippet:          details.Snippet,
		ImageURL:         details.ImageURL,
		Language:         lang,
		Topics:           []models.Topic{},
		HasOriginalImage: details.HasOriginalImage(),
	}

	if numeric {
		article.ID = id
		article.Title = details.Title
		if article.Title == "" {
			article.Title = id
		}
		article.URL = models.ArticleURLByID(lang, id)
	} else {
		article.ID = page.Title
		article.Title = models.DisplayTitle(page.Title)
		article.URL = models.ArticleURL(lang, page.Title)
	}

	if reader, ok := a.source.(FullTextReader); ok {
		full, err := reader.ReadArticle(ctx, article.URL)
		if err != nil {
			log.Printf("Error reading full text of %q: %v", article.Title, err)
		} else if len(full) > len(article.Content) {
			article.Content = full
		}
	}

	return article, nil
}

// LikedArticles hydrates liked article ids, preserving their order. Entries
// whose lookup fails are left out.
func (a *Aggregator) LikedArticles(ctx context.Context, ids []string, lang models.Language) []models.Article {
	if !lang.IsSupported() {
		lang = models.DefaultLanguage
	}

	results := make([]*models.Article, len(ids))

	var g errgroup.Group
	g.SetLimit(a.detailConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			defer recoverLookup("liked article " + id)

			page, numeric := lookupRef(id)

			details, err := a.details(ctx, page, lang)
			if err != nil {
				return nil
			}

			article := models.Article{
				ID:               id,
				Title:            models.DisplayTitle(page.Title),
				Content:          details.Content,
				Snippet:          details.Snippet,
				ImageURL:         details.ImageURL,
				Language:         lang,
				Topics:           []models.Topic{},
				URL:              models.ArticleURL(lang, page.Title),
				HasOriginalImage: details.HasOriginalImage(),
			}
			if numeric {
				article.Title = details.Title
				article.URL = models.ArticleURLByID(lang, id)
			}
			results[i] = &article
			return nil
		})
	}
	g.Wait()

	return lo.FilterMap(results, func(art *models.Article, _ int) (models.Article, bool) {
		if art == nil {
			return models.Article{}, false
		}
		return *art, true
	})
}

// Featured returns a batch built from the featured-article feed, or an
// empty batch when the source has no such feed.
func (a *Aggregator) Featured(ctx context.Context, lang models.Language) (articles []models.Article) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic while fetching featured articles: %v", r)
			articles = []models.Article{}
		}
	}()

	if !lang.IsSupported() {
		lang = models.DefaultLanguage
	}

	featured, ok := a.source.(FeaturedSource)
	if !ok {
		return []models.Article{}
	}

	refs, err := featured.FeaturedFeed(ctx, lang, a.batchSize)
	if err != nil {
		log.Printf("Error fetching featured feed: %v", err)
	}
	if len(refs) == 0 {
		return []models.Article{}
	}

	candidates := tag(dedupe(refs), []models.Topic{terms.FeaturedTopic})
	return a.finalize(a.hydrate(ctx, lang, candidates))
}

// lookupRef turns an article id into a page reference. Ids made of digits
// are page ids; anything else is a title, possibly URL-encoded.
func lookupRef(id string) (models.PageRef, bool) {
	if isNumeric(id) {
		if pageID, err := strconv.ParseInt(id, 10, 64); err == nil && pageID > 0 {
			return models.PageRef{PageID: pageID}, true
		}
	}

	title := id
	if decoded, err := url.PathUnescape(id); err == nil {
		title = decoded
	}
	return models.PageRef{Title: title}, false
}

func isNumeric(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}
