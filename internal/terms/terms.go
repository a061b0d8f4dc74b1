// Package terms expands topic labels into related search terms so that
// repeated fetches for the same topic land on different articles.
package terms

import (
	"math/rand"
	"strings"

	"github.com/tkilaker/wikitok/internal/models"
)

// FeaturedTopic is searched when the user has no topics selected
const FeaturedTopic = "featured"

var related = map[models.Language]map[string][]string{
	models.LanguageEnglish: {
		"history":    {"Ancient history", "Middle Ages", "Renaissance", "Industrial Revolution", "World War II", "Ottoman Empire", "Roman Empire"},
		"science":    {"Physics", "Chemistry", "Biology", "Astronomy", "Genetics", "Quantum mechanics", "Evolution"},
		"technology": {"Computer science", "Artificial intelligence", "Internet", "Robotics", "Semiconductor", "Software engineering", "Telecommunications"},
		"art":        {"Painting", "Sculpture", "Architecture", "Impressionism", "Renaissance art", "Photography", "Modern art"},
		"geography":  {"Mountains", "Rivers", "Islands", "Deserts", "Volcanoes", "National parks", "Lakes"},
		"featured":   {"Featured articles", "Good articles", "Vital articles", "Today's featured article"},
	},
	models.LanguageTurkish: {
		"tarih":     {"Antik Çağ", "Orta Çağ", "Osmanlı İmparatorluğu", "Roma İmparatorluğu", "Birinci Dünya Savaşı", "Kurtuluş Savaşı", "Selçuklular"},
		"bilim":     {"Fizik", "Kimya", "Biyoloji", "Astronomi", "Genetik", "Kuantum mekaniği", "Evrim"},
		"teknoloji": {"Bilgisayar bilimi", "Yapay zekâ", "İnternet", "Robotik", "Yarı iletken", "Yazılım mühendisliği", "Telekomünikasyon"},
		"sanat":     {"Resim", "Heykel", "Mimari", "Minyatür", "Hat sanatı", "Fotoğraf", "Modern sanat"},
		"coğrafya":  {"Dağlar", "Nehirler", "Adalar", "Çöller", "Volkanlar", "Millî parklar", "Göller"},
		"seçkin":    {"Seçkin maddeler", "Kaliteli maddeler", "Seçkin içerik"},
	},
}

var translations = map[models.Language]map[string]string{
	models.LanguageTurkish: {
		"History":    "Tarih",
		"Science":    "Bilim",
		"Technology": "Teknoloji",
		"Art":        "Sanat",
		"Geography":  "Coğrafya",
		"featured":   "Seçkin",
	},
}

var categoryPrefixes = map[models.Language]string{
	models.LanguageEnglish: "Category:",
	models.LanguageTurkish: "Kategori:",
}

// Expand returns topic followed by the hand-picked related terms for the
// language. Unknown topics expand to themselves only.
func Expand(topic string, lang models.Language) []string {
	out := []string{topic}
	table, ok := related[lang]
	if !ok {
		return out
	}
	extra := table[strings.ToLower(topic)]
	return append(out, extra...)
}

// Translate returns the topic label in the target language. English labels
// pass through unchanged, as do topics missing from the dictionary.
func Translate(topic string, lang models.Language) string {
	if dict, ok := translations[lang]; ok {
		if translated, ok := dict[topic]; ok {
			return translated
		}
	}
	return topic
}

// CategoryPrefix returns the namespace prefix for category pages
func CategoryPrefix(lang models.Language) string {
	if prefix, ok := categoryPrefixes[lang]; ok {
		return prefix
	}
	return categoryPrefixes[models.DefaultLanguage]
}

// PickRandom returns min(count, len(terms)) distinct positions of terms in
// random order. The input slice is left untouched.
func PickRandom(rng *rand.Rand, terms []string, count int) []string {
	if count <= 0 || len(terms) == 0 {
		return []string{}
	}
	picked := make([]string, len(terms))
	copy(picked, terms)
	Shuffle(rng, picked)
	if count > len(picked) {
		count = len(picked)
	}
	return picked[:count]
}

// Shuffle permutes s in place with Fisher-Yates
func Shuffle[T any](rng *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
