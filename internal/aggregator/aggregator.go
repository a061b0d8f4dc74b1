package aggregator

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/tkilaker/wikitok/internal/cache"
	"github.com/tkilaker/wikitok/internal/models"
	"github.com/tkilaker/wikitok/internal/terms"
	"github.com/tkilaker/wikitok/internal/wikipedia"
	"golang.org/x/sync/errgroup"
)

// ErrArticleNotFound is returned by GetArticle when the page does not exist
var ErrArticleNotFound = errors.New("article not found")

// Source is the subset of the Wikipedia client the aggregator depends on
type Source interface {
	OpenSearch(ctx context.Context, term string, lang models.Language, limit int) (models.SearchResult, error)
	CategoryMembers(ctx context.Context, category string, lang models.Language, limit int, mode wikipedia.SortMode) ([]models.PageRef, error)
	RandomPages(ctx context.Context, lang models.Language, limit int) ([]models.PageRef, error)
	PageDetails(ctx context.Context, page models.PageRef, lang models.Language) (models.PageDetails, error)
}

// FeaturedSource is implemented by sources that expose the featured-article feed
type FeaturedSource interface {
	FeaturedFeed(ctx context.Context, lang models.Language, limit int) ([]models.PageRef, error)
}

// FullTextReader is implemented by sources that can return a full article body
type FullTextReader interface {
	ReadArticle(ctx context.Context, articleURL string) (string, error)
}

// Config tunes the aggregator. Zero values fall back to defaults.
type Config struct {
	Cache cache.Store
	Rand  *rand.Rand

	FanOutTimeout   time.Duration // category + search race, default 15s
	FallbackTimeout time.Duration // second title search, default 10s
	FeaturedTimeout time.Duration // search when no topics are selected, default 10s

	BatchSize         int // default models.ArticleFetchLimit
	SearchLimit       int // results per category or search call, default 10
	RandomLimit       int // random pages requested in zapping mode, default 20
	MaxCandidates     int // pages hydrated per topic batch, default 20
	DetailConcurrency int // parallel detail lookups, default 10
}

// Aggregator assembles feed batches from Wikipedia
type Aggregator struct {
	source Source
	cache  cache.Store

	rngMu sync.Mutex
	rng   *rand.Rand

	fanOutTimeout   time.Duration
	fallbackTimeout time.Duration
	featuredTimeout time.Duration

	batchSize         int
	searchLimit       int
	randomLimit       int
	hydrateLimit      int
	maxCandidates     int
	detailConcurrency int
}

// New creates a new aggregator over source
func New(source Source, cfg Config) *Aggregator {
	a := &Aggregator{
		source:            source,
		cache:             cfg.Cache,
		rng:               cfg.Rand,
		fanOutTimeout:     cfg.FanOutTimeout,
		fallbackTimeout:   cfg.FallbackTimeout,
		featuredTimeout:   cfg.FeaturedTimeout,
		batchSize:         cfg.BatchSize,
		searchLimit:       cfg.SearchLimit,
		randomLimit:       cfg.RandomLimit,
		maxCandidates:     cfg.MaxCandidates,
		detailConcurrency: cfg.DetailConcurrency,
	}

	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if a.fanOutTimeout <= 0 {
		a.fanOutTimeout = 15 * time.Second
	}
	if a.fallbackTimeout <= 0 {
		a.fallbackTimeout = 10 * time.Second
	}
	if a.featuredTimeout <= 0 {
		a.featuredTimeout = 10 * time.Second
	}
	if a.batchSize <= 0 {
		a.batchSize = models.ArticleFetchLimit
	}
	if a.searchLimit <= 0 {
		a.searchLimit = 10
	}
	if a.randomLimit <= 0 || a.randomLimit > 20 {
		a.randomLimit = 20
	}
	// zapping hydrates at most this many random pages
	a.hydrateLimit = min(a.randomLimit, 10)
	if a.maxCandidates <= 0 {
		a.maxCandidates = 2 * a.batchSize
	}
	if a.detailConcurrency <= 0 {
		a.detailConcurrency = 10
	}

	return a
}

// candidate is a page waiting for its details
type candidate struct {
	ref    models.PageRef
	topics []models.Topic
}

// FetchArticles returns the next batch for the feed. It never fails: any
// error along the way is logged and an empty batch is returned instead.
// offset only tells the caller whether to append or replace; every call
// samples afresh.
func (a *Aggregator) FetchArticles(ctx context.Context, lang models.Language, topics []models.Topic, offset int, zappingMode bool) (articles []models.Article) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic while fetching articles: %v", r)
			articles = []models.Article{}
		}
	}()

	if !lang.IsSupported() {
		log.Printf("Unsupported language %q, using %s", lang, models.DefaultLanguage)
		lang = models.DefaultLanguage
	}

	log.Printf("Fetching articles (language=%s, topics=%v, offset=%d, zapping=%t)", lang, topics, offset, zappingMode)

	var candidates []candidate
	switch {
	case zappingMode:
		candidates = a.randomCandidates(ctx, lang)
	case len(topics) > 0:
		candidates = a.topicCandidates(ctx, lang, topics)
	default:
		candidates = a.featuredCandidates(ctx, lang)
	}

	if len(candidates) == 0 {
		log.Printf("No articles found (language=%s, topics=%v)", lang, topics)
		return []models.Article{}
	}

	return a.finalize(a.hydrate(ctx, lang, candidates))
}

// randomCandidates draws random pages for zapping mode
func (a *Aggregator) randomCandidates(ctx context.Context, lang models.Language) []candidate {
	refs, err := a.source.RandomPages(ctx, lang, a.randomLimit)
	if err != nil {
		log.Printf("Error fetching random pages: %v", err)
	}

	refs = dedupe(refs)
	if len(refs) > a.hydrateLimit {
		refs = refs[:a.hydrateLimit]
	}
	return tag(refs, []models.Topic{models.RandomTopic})
}

// topicCandidates races a category listing against a title search for one
// randomly chosen topic, falling back to a plain search when both come back empty.
func (a *Aggregator) topicCandidates(ctx context.Context, lang models.Language, topics []models.Topic) []candidate {
	topic := topics[a.intn(len(topics))]
	label := terms.Translate(topic, lang)
	picked := a.pick(terms.Expand(label, lang), 2)
	term := picked[0]

	log.Printf("Searching topic %q with terms %v", topic, picked)

	refs := a.searchAndCategory(ctx, lang, term)
	if len(refs) == 0 {
		log.Printf("No results for %q, falling back to title search", term)
		fallbackCtx, cancel := context.WithTimeout(ctx, a.fallbackTimeout)
		refs = a.search(fallbackCtx, lang, term)
		cancel()
	}

	refs = dedupe(refs)
	if len(refs) > a.maxCandidates {
		refs = refs[:a.maxCandidates]
	}
	return tag(refs, []models.Topic{topic})
}

// searchAndCategory runs both lookups for term under one shared deadline.
// If the deadline passes, both results are discarded.
func (a *Aggregator) searchAndCategory(ctx context.Context, lang models.Language, term string) []models.PageRef {
	fanCtx, cancel := context.WithTimeout(ctx, a.fanOutTimeout)
	defer cancel()

	var (
		wg           sync.WaitGroup
		categoryRefs []models.PageRef
		searchRefs   []models.PageRef
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer recoverLookup("category members")
		category := terms.CategoryPrefix(lang) + term
		refs, err := a.source.CategoryMembers(fanCtx, category, lang, a.searchLimit, a.sortMode())
		if err != nil {
			log.Printf("Error fetching members of %s: %v", category, err)
		}
		categoryRefs = lo.Map(refs, func(r models.PageRef, _ int) models.PageRef {
			if r.URL == "" {
				r.URL = models.ArticleURL(lang, r.Title)
			}
			return r
		})
	}()
	go func() {
		defer wg.Done()
		defer recoverLookup("title search")
		searchRefs = a.search(fanCtx, lang, term)
	}()
	wg.Wait()

	if errors.Is(fanCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		log.Printf("Lookups for %q exceeded %v, discarding results", term, a.fanOutTimeout)
		return nil
	}

	return append(categoryRefs, searchRefs...)
}

// featuredCandidates searches a single featured-derived term when the user has no topics
func (a *Aggregator) featuredCandidates(ctx context.Context, lang models.Language) []candidate {
	label := terms.Translate(terms.FeaturedTopic, lang)
	term := a.pick(terms.Expand(label, lang), 1)[0]

	searchCtx, cancel := context.WithTimeout(ctx, a.featuredTimeout)
	defer cancel()

	refs := dedupe(a.search(searchCtx, lang, term))
	return tag(refs, []models.Topic{terms.FeaturedTopic})
}

// search runs an open search and turns its hits into page refs keyed by title
func (a *Aggregator) search(ctx context.Context, lang models.Language, term string) []models.PageRef {
	result, err := a.source.OpenSearch(ctx, term, lang, a.searchLimit)
	if err != nil {
		log.Printf("Error searching %q: %v", term, err)
	}

	refs := make([]models.PageRef, 0, len(result.URLs))
	for i, u := range result.URLs {
		title := titleFromURL(u)
		if title == "" && i < len(result.Titles) {
			title = result.Titles[i]
		}
		if title == "" {
			continue
		}
		refs = append(refs, models.PageRef{Title: title, URL: u})
	}
	return refs
}

// hydrate looks up details for every candidate in parallel, preserving order
func (a *Aggregator) hydrate(ctx context.Context, lang models.Language, candidates []candidate) []models.Article {
	articles := make([]models.Article, len(candidates))

	var g errgroup.Group
	g.SetLimit(a.detailConcurrency)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Recovered from panic while hydrating %q: %v", c.ref.Key(), r)
					articles[i] = buildArticle(lang, c, models.PageDetails{ImageURL: models.DefaultThumbnail})
				}
			}()
			details, _ := a.details(ctx, c.ref, lang)
			articles[i] = buildArticle(lang, c, details)
			return nil
		})
	}
	g.Wait()

	return articles
}

// details returns page details from the cache or the source. Details are
// always usable; err reports whether they came from a failed lookup.
func (a *Aggregator) details(ctx context.Context, page models.PageRef, lang models.Language) (models.PageDetails, error) {
	key := cache.Key(lang, page)
	if a.cache != nil {
		if d, ok := a.cache.Get(ctx, key); ok {
			return d, nil
		}
	}

	d, err := a.source.PageDetails(ctx, page, lang)
	if d.ImageURL == "" {
		d.ImageURL = models.DefaultThumbnail
	}
	if err != nil {
		log.Printf("Error fetching details for %q: %v", page.Key(), err)
		return d, err
	}

	if a.cache != nil {
		a.cache.Set(ctx, key, d)
	}
	return d, nil
}

// finalize puts articles with their own image first, trims to the batch
// size and shuffles what is left
func (a *Aggregator) finalize(articles []models.Article) []models.Article {
	ordered := partitionByImage(articles)
	if len(ordered) > a.batchSize {
		ordered = ordered[:a.batchSize]
	}
	a.shuffle(ordered)
	return ordered
}

func buildArticle(lang models.Language, c candidate, d models.PageDetails) models.Article {
	title := models.DisplayTitle(c.ref.Title)
	if title == "" {
		title = d.Title
	}
	articleURL := c.ref.URL
	if articleURL == "" {
		articleURL = models.ArticleURL(lang, c.ref.Title)
	}

	return models.Article{
		ID:               c.ref.Key(),
		Title:            title,
		Content:          d.Content,
		Snippet:          d.Snippet,
		ImageURL:         d.ImageURL,
		Language:         lang,
		Topics:           c.topics,
		URL:              articleURL,
		HasOriginalImage: d.HasOriginalImage(),
	}
}

// dedupe removes repeated pages, keeping the last occurrence of each key
func dedupe(refs []models.PageRef) []models.PageRef {
	last := make(map[string]int, len(refs))
	for i, r := range refs {
		last[r.Key()] = i
	}
	return lo.Filter(refs, func(r models.PageRef, i int) bool {
		return last[r.Key()] == i
	})
}

// partitionByImage is a stable partition: original images first
func partitionByImage(articles []models.Article) []models.Article {
	withImage := lo.Filter(articles, func(a models.Article, _ int) bool { return a.HasOriginalImage })
	without := lo.Filter(articles, func(a models.Article, _ int) bool { return !a.HasOriginalImage })
	return append(withImage, without...)
}

func recoverLookup(name string) {
	if r := recover(); r != nil {
		log.Printf("Recovered from panic during %s: %v", name, r)
	}
}

func tag(refs []models.PageRef, topics []models.Topic) []candidate {
	return lo.Map(refs, func(r models.PageRef, _ int) candidate {
		return candidate{ref: r, topics: topics}
	})
}

// titleFromURL returns the page title of an article URL
func titleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}
	if title, ok := strings.CutPrefix(u.Path, "/wiki/"); ok {
		return title
	}
	return path.Base(u.Path)
}

func (a *Aggregator) sortMode() wikipedia.SortMode {
	if a.intn(2) == 0 {
		return wikipedia.SortRandomTimestamp
	}
	return wikipedia.SortNewest
}

func (a *Aggregator) intn(n int) int {
	a.rngMu.Lock()
	defer a.rngMu.Unlock()
	return a.rng.Intn(n)
}

func (a *Aggregator) pick(candidates []string, n int) []string {
	a.rngMu.Lock()
	defer a.rngMu.Unlock()
	return terms.PickRandom(a.rng, candidates, n)
}

func (a *Aggregator) shuffle(articles []models.Article) {
	a.rngMu.Lock()
	defer a.rngMu.Unlock()
	terms.Shuffle(a.rng, articles)
}
