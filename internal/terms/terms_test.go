package terms

import (
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/tkilaker/wikitok/internal/models"
)

func TestExpandKeepsTopicFirst(t *testing.T) {
	cases := []struct {
		topic    string
		lang     models.Language
		wantMore bool
	}{
		{"History", models.LanguageEnglish, true},
		{"science", models.LanguageEnglish, true},
		{"Tarih", models.LanguageTurkish, true},
		{"Coğrafya", models.LanguageTurkish, true},
		{"Basket weaving", models.LanguageEnglish, false},
		{"History", models.Language("de"), false},
	}

	for _, c := range cases {
		t.Run(c.topic+"/"+string(c.lang), func(t *testing.T) {
			got := Expand(c.topic, c.lang)
			if len(got) == 0 || got[0] != c.topic {
				t.Fatalf("Expand(%q, %q)[0] = %v; want %q first", c.topic, c.lang, got, c.topic)
			}
			if c.wantMore && len(got) < 2 {
				t.Fatalf("Expand(%q, %q) = %v; want related terms", c.topic, c.lang, got)
			}
			if !c.wantMore && len(got) != 1 {
				t.Fatalf("Expand(%q, %q) = %v; want only the topic", c.topic, c.lang, got)
			}
		})
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	a := Expand("Art", models.LanguageEnglish)
	b := Expand("Art", models.LanguageEnglish)
	if len(a) != len(b) {
		t.Fatalf("Expand returned different lengths: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Expand differs at %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	if got := Translate("History", models.LanguageTurkish); got != "Tarih" {
		t.Fatalf("Translate(History, tr) = %q; want Tarih", got)
	}
	if got := Translate("History", models.LanguageEnglish); got != "History" {
		t.Fatalf("Translate(History, en) = %q; want History", got)
	}
	if got := Translate("Cooking", models.LanguageTurkish); got != "Cooking" {
		t.Fatalf("Translate(Cooking, tr) = %q; want passthrough", got)
	}
	if got := Translate(FeaturedTopic, models.LanguageTurkish); got != "Seçkin" {
		t.Fatalf("Translate(featured, tr) = %q; want Seçkin", got)
	}
	// every translated label must itself expand
	for _, topic := range models.DefaultTopics {
		tr := Translate(topic, models.LanguageTurkish)
		if len(Expand(tr, models.LanguageTurkish)) < 2 {
			t.Fatalf("Turkish label %q for %q has no related terms", tr, topic)
		}
	}
}

func TestCategoryPrefix(t *testing.T) {
	if got := CategoryPrefix(models.LanguageTurkish); got != "Kategori:" {
		t.Fatalf("CategoryPrefix(tr) = %q", got)
	}
	if got := CategoryPrefix(models.Language("xx")); got != "Category:" {
		t.Fatalf("CategoryPrefix(xx) = %q; want English fallback", got)
	}
}

func TestPickRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	terms := []string{"a", "b", "c", "d", "e"}

	cases := []struct {
		count int
		want  int
	}{
		{0, 0},
		{-1, 0},
		{1, 1},
		{2, 2},
		{5, 5},
		{9, 5},
	}

	for _, c := range cases {
		got := PickRandom(rng, terms, c.count)
		if len(got) != c.want {
			t.Fatalf("PickRandom(count=%d) returned %d items; want %d", c.count, len(got), c.want)
		}
		if len(lo.Uniq(got)) != len(got) {
			t.Fatalf("PickRandom(count=%d) returned duplicates: %v", c.count, got)
		}
		for _, term := range got {
			if !lo.Contains(terms, term) {
				t.Fatalf("PickRandom returned %q which is not an input term", term)
			}
		}
	}

	if terms[0] != "a" || terms[4] != "e" {
		t.Fatalf("PickRandom mutated its input: %v", terms)
	}

	if got := PickRandom(rng, nil, 3); len(got) != 0 {
		t.Fatalf("PickRandom(nil) = %v; want empty", got)
	}
}

func TestShuffleCoversEveryPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := make(map[string]int)
	for i := 0; i < 6000; i++ {
		s := []string{"x", "y", "z"}
		Shuffle(rng, s)
		seen[s[0]+s[1]+s[2]]++
	}
	if len(seen) != 6 {
		t.Fatalf("Shuffle produced %d distinct permutations of 3 items; want 6", len(seen))
	}
	for perm, n := range seen {
		if n < 800 || n > 1200 {
			t.Fatalf("permutation %s seen %d times out of 6000; distribution looks biased", perm, n)
		}
	}
}
