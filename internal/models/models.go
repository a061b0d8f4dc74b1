package models

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// Language is a supported Wikipedia language edition
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageTurkish Language = "tr"
)

// DefaultLanguage is used when a stored or requested language is not supported
const DefaultLanguage = LanguageEnglish

// SupportedLanguages lists every language the feed can be served in
var SupportedLanguages = []Language{LanguageEnglish, LanguageTurkish}

// IsSupported reports whether the language has a Wikipedia endpoint configured
func (l Language) IsSupported() bool {
	return lo.Contains(SupportedLanguages, l)
}

// ParseLanguage returns the language for s, or DefaultLanguage when s is unknown
func ParseLanguage(s string) Language {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if !lang.IsSupported() {
		return DefaultLanguage
	}
	return lang
}

// Topic is a topic label, always stored in English
type Topic = string

// RandomTopic tags articles produced by zapping mode
const RandomTopic Topic = "random"

// DefaultTopics are offered on first launch and restored when a user clears every topic
var DefaultTopics = []Topic{"History", "Science", "Technology", "Art", "Geography"}

// ArticleFetchLimit caps the number of articles returned per batch
const ArticleFetchLimit = 10

// SnippetLength is the number of characters kept from the content for the snippet
const SnippetLength = 150

// Article is a normalized Wikipedia article ready for the feed
type Article struct {
	// ID is either a numeric page id or the article title, depending on how
	// the article was fetched.
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	Snippet          string   `json:"snippet"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	Language         Language `json:"language"`
	Topics           []Topic  `json:"topics"`
	URL              string   `json:"url"`
	HasOriginalImage bool     `json:"hasOriginalImage"`
}

// UserPreference is persisted as a single JSON blob per user
type UserPreference struct {
	Language    Language `json:"language"`
	Topics      []Topic  `json:"topics"`
	ZappingMode bool     `json:"zappingMode"`
}

// DefaultPreference returns the preferences used before the user changes anything
func DefaultPreference() UserPreference {
	topics := make([]Topic, len(DefaultTopics))
	copy(topics, DefaultTopics)
	return UserPreference{
		Language:    DefaultLanguage,
		Topics:      topics,
		ZappingMode: false,
	}
}

// PageRef identifies a page before its details are fetched
type PageRef struct {
	PageID int64
	Title  string
	// URL is set when the source already returned a canonical link.
	URL string
}

// Key returns the identity used for deduplication and as the article id
func (p PageRef) Key() string {
	if p.PageID > 0 {
		return fmt.Sprintf("%d", p.PageID)
	}
	return p.Title
}

// SearchResult holds the parallel title and URL arrays of an open search
type SearchResult struct {
	Titles []string
	URLs   []string
}

// PageDetails is the hydrated content of a single page
type PageDetails struct {
	Title    string `json:"title,omitempty"`
	Content  string `json:"content"`
	Snippet  string `json:"snippet"`
	ImageURL string `json:"imageUrl"`
	// Original is true when ImageURL came from the page itself.
	Original bool `json:"original"`
}

// HasOriginalImage reports whether ImageURL came from the page itself and is
// not a placeholder
func (d PageDetails) HasOriginalImage() bool {
	return d.Original && HasOriginalImage(d.ImageURL)
}

// Snippet truncates content to SnippetLength runes, adding an ellipsis when cut
func Snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= SnippetLength {
		return content
	}
	return string(runes[:SnippetLength]) + "..."
}

// ArticleURL builds the canonical article URL from a title
func ArticleURL(lang Language, title string) string {
	path := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s", lang, path)
}

// ArticleURLByID builds the article URL when only the numeric page id is known
func ArticleURLByID(lang Language, pageID string) string {
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/?curid=%s", lang, pageID)
}

// DisplayTitle replaces underscores with spaces
func DisplayTitle(title string) string {
	return strings.ReplaceAll(title, "_", " ")
}
