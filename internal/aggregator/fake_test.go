package aggregator

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/tkilaker/wikitok/internal/models"
	"github.com/tkilaker/wikitok/internal/wikipedia"
)

var errUnavailable = errors.New("unavailable")

// fakeSource records calls and serves canned responses
type fakeSource struct {
	mu sync.Mutex

	searchResult  models.SearchResult
	searchResults []models.SearchResult // served in order before searchResult
	category      []models.PageRef
	random        []models.PageRef
	details       map[string]models.PageDetails
	failDetails   map[string]bool
	featured      []models.PageRef
	fullText      string

	failAll       bool
	panicAll      bool
	blockSearch   bool
	blockCategory bool

	searchTerms    []string
	categoryTitles []string
	randomCalls    int
	detailLookups  []string
	detailPages    []models.PageRef
	readURLs       []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		details:     make(map[string]models.PageDetails),
		failDetails: make(map[string]bool),
	}
}

func (f *fakeSource) OpenSearch(ctx context.Context, term string, lang models.Language, limit int) (models.SearchResult, error) {
	f.mu.Lock()
	f.searchTerms = append(f.searchTerms, term)
	block, fail, panicking := f.blockSearch, f.failAll, f.panicAll
	var result models.SearchResult
	if len(f.searchResults) > 0 {
		result = f.searchResults[0]
		f.searchResults = f.searchResults[1:]
	} else {
		result = f.searchResult
	}
	f.mu.Unlock()

	empty := models.SearchResult{Titles: []string{}, URLs: []string{}}
	if panicking {
		panic("search exploded")
	}
	if fail {
		return empty, errUnavailable
	}
	if block {
		<-ctx.Done()
		return empty, ctx.Err()
	}
	return result, nil
}

func (f *fakeSource) CategoryMembers(ctx context.Context, category string, lang models.Language, limit int, mode wikipedia.SortMode) ([]models.PageRef, error) {
	f.mu.Lock()
	f.categoryTitles = append(f.categoryTitles, category)
	block, fail, panicking := f.blockCategory, f.failAll, f.panicAll
	refs := f.category
	f.mu.Unlock()

	if panicking {
		panic("category exploded")
	}
	if fail {
		return []models.PageRef{}, errUnavailable
	}
	if block {
		<-ctx.Done()
		return []models.PageRef{}, ctx.Err()
	}
	return refs, nil
}

func (f *fakeSource) RandomPages(ctx context.Context, lang models.Language, limit int) ([]models.PageRef, error) {
	f.mu.Lock()
	f.randomCalls++
	fail, panicking := f.failAll, f.panicAll
	refs := f.random
	f.mu.Unlock()

	if panicking {
		panic("random exploded")
	}
	if fail {
		return []models.PageRef{}, errUnavailable
	}
	if len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (f *fakeSource) PageDetails(ctx context.Context, page models.PageRef, lang models.Language) (models.PageDetails, error) {
	titleOrID := page.Key()

	f.mu.Lock()
	f.detailLookups = append(f.detailLookups, titleOrID)
	f.detailPages = append(f.detailPages, page)
	fail, panicking := f.failAll || f.failDetails[titleOrID], f.panicAll
	d, ok := f.details[titleOrID]
	f.mu.Unlock()

	if panicking {
		panic("details exploded")
	}
	if fail {
		return models.PageDetails{ImageURL: models.DefaultThumbnail}, errUnavailable
	}
	if !ok {
		return models.PageDetails{
			Title:    titleOrID,
			Content:  "About " + titleOrID,
			Snippet:  "About " + titleOrID,
			ImageURL: models.DefaultThumbnail,
		}, nil
	}
	return d, nil
}

func (f *fakeSource) FeaturedFeed(ctx context.Context, lang models.Language, limit int) ([]models.PageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return []models.PageRef{}, errUnavailable
	}
	return f.featured, nil
}

func (f *fakeSource) ReadArticle(ctx context.Context, articleURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readURLs = append(f.readURLs, articleURL)
	if f.fullText == "" {
		return "", errUnavailable
	}
	return f.fullText, nil
}

func (f *fakeSource) counts() (search, category, random, details int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searchTerms), len(f.categoryTitles), f.randomCalls, len(f.detailLookups)
}

// basicSource only implements Source, without the optional extensions
type basicSource struct{ f *fakeSource }

func (b basicSource) OpenSearch(ctx context.Context, term string, lang models.Language, limit int) (models.SearchResult, error) {
	return b.f.OpenSearch(ctx, term, lang, limit)
}

func (b basicSource) CategoryMembers(ctx context.Context, category string, lang models.Language, limit int, mode wikipedia.SortMode) ([]models.PageRef, error) {
	return b.f.CategoryMembers(ctx, category, lang, limit, mode)
}

func (b basicSource) RandomPages(ctx context.Context, lang models.Language, limit int) ([]models.PageRef, error) {
	return b.f.RandomPages(ctx, lang, limit)
}

func (b basicSource) PageDetails(ctx context.Context, page models.PageRef, lang models.Language) (models.PageDetails, error) {
	return b.f.PageDetails(ctx, page, lang)
}

func pageRefs(start, n int) []models.PageRef {
	refs := make([]models.PageRef, n)
	for i := range refs {
		id := start + i
		refs[i] = models.PageRef{PageID: int64(id), Title: "Page " + strconv.Itoa(id)}
	}
	return refs
}

func searchHits(titles ...string) models.SearchResult {
	r := models.SearchResult{Titles: titles, URLs: make([]string, len(titles))}
	for i, t := range titles {
		r.URLs[i] = models.ArticleURL(models.LanguageEnglish, t)
	}
	return r
}
