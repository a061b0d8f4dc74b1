package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tkilaker/wikitok/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		Endpoint:      srv.URL,
		SearchTimeout: 200 * time.Millisecond,
		ListTimeout:   200 * time.Millisecond,
		DetailTimeout: 200 * time.Millisecond,
		ReadTimeout:   200 * time.Millisecond,
	})
}

func blockingHandler(w http.ResponseWriter, r *http.Request) {
	<-r.Context().Done()
}

func TestOpenSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "opensearch" || q.Get("search") != "Physics" || q.Get("origin") != "*" {
			t.Errorf("unexpected query %v", q)
		}
		w.Write([]byte(`["Physics",["Physics","Physics of magnetism"],["",""],["https://en.wikipedia.org/wiki/Physics","https://en.wikipedia.org/wiki/Physics_of_magnetism"]]`))
	})

	got, err := c.OpenSearch(context.Background(), "Physics", models.LanguageEnglish, 10)
	if err != nil {
		t.Fatalf("OpenSearch error: %v", err)
	}
	if len(got.Titles) != 2 || len(got.URLs) != 2 {
		t.Fatalf("OpenSearch = %+v; want 2 titles and 2 urls", got)
	}
	if got.URLs[1] != "https://en.wikipedia.org/wiki/Physics_of_magnetism" {
		t.Fatalf("unexpected url %q", got.URLs[1])
	}
}

func TestOpenSearchFailsSoft(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`["Physics",`))
		}},
		{"short array", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`["Physics",[]]`))
		}},
		{"timeout", blockingHandler},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client := newTestClient(t, c.handler)
			start := time.Now()
			got, err := client.OpenSearch(context.Background(), "Physics", models.LanguageEnglish, 10)
			if err == nil {
				t.Fatal("expected an error describing the failure")
			}
			if got.Titles == nil || got.URLs == nil || len(got.Titles) != 0 || len(got.URLs) != 0 {
				t.Fatalf("OpenSearch = %+v; want empty non-nil result", got)
			}
			if elapsed := time.Since(start); elapsed > 2*time.Second {
				t.Fatalf("OpenSearch took %v; timeout not honored", elapsed)
			}
		})
	}
}

func TestCategoryMembers(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("list") != "categorymembers" || q.Get("cmtitle") != "Category:Physics" {
			t.Errorf("unexpected query %v", q)
		}
		seen = append(seen, q.Get("cmdir")+"|"+q.Get("cmstart"))
		w.Write([]byte(`{"query":{"categorymembers":[{"pageid":1,"ns":0,"title":"Force"},{"pageid":2,"ns":0,"title":"Mass"}]}}`))
	})

	refs, err := c.CategoryMembers(context.Background(), "Category:Physics", models.LanguageEnglish, 10, SortRandomTimestamp)
	if err != nil {
		t.Fatalf("CategoryMembers error: %v", err)
	}
	if len(refs) != 2 || refs[0].PageID != 1 || refs[1].Title != "Mass" {
		t.Fatalf("CategoryMembers = %+v", refs)
	}

	if _, err := c.CategoryMembers(context.Background(), "Category:Physics", models.LanguageEnglish, 10, SortNewest); err != nil {
		t.Fatalf("CategoryMembers error: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(seen))
	}
	random := strings.SplitN(seen[0], "|", 2)
	if random[0] != "newer" || random[1] == "" {
		t.Fatalf("random sort sent %q; want cmdir=newer with a cmstart", seen[0])
	}
	start, err := time.Parse(time.RFC3339, random[1])
	if err != nil {
		t.Fatalf("cmstart %q is not RFC3339: %v", random[1], err)
	}
	if age := time.Since(start); age < 0 || age > 366*24*time.Hour {
		t.Fatalf("cmstart %v is not within the last year", start)
	}
	if seen[1] != "desc|" {
		t.Fatalf("newest sort sent %q; want cmdir=desc without cmstart", seen[1])
	}
}

func TestListOperationsTimeout(t *testing.T) {
	c := newTestClient(t, blockingHandler)

	start := time.Now()
	refs, err := c.CategoryMembers(context.Background(), "Category:Art", models.LanguageEnglish, 10, SortNewest)
	if err == nil || refs == nil || len(refs) != 0 {
		t.Fatalf("CategoryMembers = %v, %v; want empty slice and error", refs, err)
	}
	refs, err = c.RandomPages(context.Background(), models.LanguageEnglish, 10)
	if err == nil || refs == nil || len(refs) != 0 {
		t.Fatalf("RandomPages = %v, %v; want empty slice and error", refs, err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("list operations took %v; timeouts not honored", elapsed)
	}
}

func TestRandomPages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("rnlimit") != "5" {
			t.Errorf("rnlimit = %q; want 5", r.URL.Query().Get("rnlimit"))
		}
		w.Write([]byte(`{"batchcomplete":"","query":{"random":[{"id":10,"ns":0,"title":"Ankara"},{"id":11,"ns":0,"title":"Izmir"}]}}`))
	})

	refs, err := c.RandomPages(context.Background(), models.LanguageTurkish, 5)
	if err != nil {
		t.Fatalf("RandomPages error: %v", err)
	}
	if len(refs) != 2 || refs[0].PageID != 10 || refs[0].Title != "Ankara" {
		t.Fatalf("RandomPages = %+v", refs)
	}
}

func TestPageDetails(t *testing.T) {
	long := strings.Repeat("a", 200)

	cases := []struct {
		name         string
		id           string
		body         string
		wantImage    string
		wantOriginal bool
		wantErr      bool
		wantSnippet  string
	}{
		{
			name:         "thumbnail",
			id:           "Mona Lisa",
			body:         `{"query":{"pages":{"70889":{"pageid":70889,"title":"Mona Lisa","extract":"A portrait.","thumbnail":{"source":"https://upload.wikimedia.org/mona.jpg"}}}}}`,
			wantImage:    "https://upload.wikimedia.org/mona.jpg",
			wantOriginal: true,
			wantSnippet:  "A portrait.",
		},
		{
			name:        "topic from categories",
			id:          "Battle of Hastings",
			body:        `{"query":{"pages":{"5":{"pageid":5,"title":"Battle of Hastings","extract":"` + long + `","categories":[{"title":"Category:1066 in England"},{"title":"Category:Battles involving England"}]}}}}`,
			wantImage:   models.TopicThumbnails["History"],
			wantSnippet: strings.Repeat("a", 150) + "...",
		},
		{
			name:      "no thumbnail no category",
			id:        "Obscure",
			body:      `{"query":{"pages":{"6":{"pageid":6,"title":"Obscure","extract":""}}}}`,
			wantImage: models.DefaultThumbnail,
		},
		{
			name:      "missing page",
			id:        "Nope",
			body:      `{"query":{"pages":{"-1":{"ns":0,"title":"Nope","missing":""}}}}`,
			wantImage: models.DefaultThumbnail,
			wantErr:   true,
		},
		{
			name:      "malformed",
			id:        "Broken",
			body:      `{"query":`,
			wantImage: models.DefaultThumbnail,
			wantErr:   true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("titles") != c.id {
					t.Errorf("titles = %q; want %q", r.URL.Query().Get("titles"), c.id)
				}
				w.Write([]byte(c.body))
			})

			got, err := client.PageDetails(context.Background(), models.PageRef{Title: c.id}, models.LanguageEnglish)
			if (err != nil) != c.wantErr {
				t.Fatalf("PageDetails error = %v; wantErr %v", err, c.wantErr)
			}
			if got.ImageURL != c.wantImage {
				t.Fatalf("ImageURL = %q; want %q", got.ImageURL, c.wantImage)
			}
			if got.Original != c.wantOriginal {
				t.Fatalf("Original = %v; want %v", got.Original, c.wantOriginal)
			}
			if got.Snippet != c.wantSnippet {
				t.Fatalf("Snippet = %q; want %q", got.Snippet, c.wantSnippet)
			}
		})
	}
}

func TestPageDetailsByNumericID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("pageids") != "736" || q.Get("titles") != "" {
			t.Errorf("expected pageids lookup, got %v", q)
		}
		w.Write([]byte(`{"query":{"pages":{"736":{"pageid":736,"title":"Albert Einstein","extract":"Physicist."}}}}`))
	})

	got, err := c.PageDetails(context.Background(), models.PageRef{PageID: 736}, models.LanguageEnglish)
	if err != nil {
		t.Fatalf("PageDetails error: %v", err)
	}
	if got.Title != "Albert Einstein" || got.Content != "Physicist." {
		t.Fatalf("PageDetails = %+v", got)
	}
}

func TestPageDetailsDigitTitleIsLookedUpByTitle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("titles") != "1453" || q.Get("pageids") != "" {
			t.Errorf("expected titles lookup, got %v", q)
		}
		w.Write([]byte(`{"query":{"pages":{"45123":{"pageid":45123,"title":"1453","extract":"Year of the fall of Constantinople."}}}}`))
	})

	got, err := c.PageDetails(context.Background(), models.PageRef{Title: "1453"}, models.LanguageEnglish)
	if err != nil {
		t.Fatalf("PageDetails error: %v", err)
	}
	if got.Content != "Year of the fall of Constantinople." {
		t.Fatalf("PageDetails = %+v", got)
	}
}

func TestPageDetailsTimeoutKeepsDefaultImage(t *testing.T) {
	c := newTestClient(t, blockingHandler)

	start := time.Now()
	got, err := c.PageDetails(context.Background(), models.PageRef{Title: "Slow"}, models.LanguageEnglish)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if got.ImageURL != models.DefaultThumbnail || got.Content != "" || got.Snippet != "" {
		t.Fatalf("PageDetails = %+v; want default image and empty text", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("PageDetails took %v; timeout not honored", elapsed)
	}
}

func TestCallerCancellation(t *testing.T) {
	c := newTestClient(t, blockingHandler)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := c.OpenSearch(ctx, "anything", models.LanguageEnglish, 5)
	if err == nil || len(got.Titles) != 0 {
		t.Fatalf("OpenSearch with cancelled context = %+v, %v", got, err)
	}
}

func TestEndpointPerLanguage(t *testing.T) {
	c := New(Config{})
	if got := c.endpointFor(models.LanguageTurkish); got != "https://tr.wikipedia.org/w/api.php" {
		t.Fatalf("endpointFor(tr) = %q", got)
	}
	fixed := New(Config{Endpoint: "http://localhost:9999/api.php"})
	if got := fixed.endpointFor(models.LanguageTurkish); got != "http://localhost:9999/api.php" {
		t.Fatalf("fixed endpoint = %q", got)
	}
}
