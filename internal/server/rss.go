package server

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/samber/lo"
	"github.com/tkilaker/wikitok/internal/config"
	"github.com/tkilaker/wikitok/internal/database"
	"github.com/tkilaker/wikitok/internal/models"
)

// GenerateRSSFeed creates an RSS feed from liked articles, newest like first
func GenerateRSSFeed(articles []models.Article, records []database.Like, cfg *config.Config) (string, error) {
	now := time.Now()

	feed := &feeds.Feed{
		Title:       cfg.FeedTitle,
		Link:        &feeds.Link{Href: cfg.FeedLink},
		Description: cfg.FeedDescription,
		Author:      &feeds.Author{Name: cfg.FeedAuthor},
		Created:     now,
	}

	likedAt := lo.SliceToMap(records, func(like database.Like) (string, time.Time) {
		return like.ArticleID, like.CreatedAt
	})

	// Convert articles to feed items
	feed.Items = make([]*feeds.Item, 0, len(articles))
	for i := len(articles) - 1; i >= 0; i-- {
		article := articles[i]
		item := &feeds.Item{
			Title:       article.Title,
			Link:        &feeds.Link{Href: article.URL},
			Id:          article.URL,
			Description: article.Snippet,
			Created:     now,
		}

		if created, ok := likedAt[article.ID]; ok {
			item.Created = created
		}

		if article.HasOriginalImage {
			item.Enclosure = &feeds.Enclosure{Url: article.ImageURL, Type: imageType(article.ImageURL), Length: "0"}
		}

		feed.Items = append(feed.Items, item)
	}

	// Generate RSS 2.0 format
	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("failed to generate RSS: %w", err)
	}

	return rss, nil
}

// imageType guesses the MIME type of an image from its file extension
func imageType(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	return mime.TypeByExtension(strings.ToLower(path.Ext(u.Path)))
}
