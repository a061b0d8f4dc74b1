package wikipedia

import (
	"strings"
	"unicode"

	"github.com/tkilaker/wikitok/internal/models"
)

// topicKeywords are whole words looked for in category titles, both languages
var topicKeywords = map[models.Topic][]string{
	"History": {
		"history", "historical", "histories", "war", "wars", "battles", "empire", "empires", "dynasty", "dynasties", "century", "ancient", "medieval",
		"tarih", "tarihi", "savaş", "savaşlar", "savaşları", "imparatorluğu", "hanedanı", "yüzyıl",
	},
	"Science": {
		"science", "sciences", "scientific", "physics", "chemistry", "biology", "astronomy", "mathematics", "genetics", "scientists",
		"bilim", "bilimi", "fizik", "kimya", "biyoloji", "astronomi", "matematik",
	},
	"Technology": {
		"technology", "technologies", "computing", "computer", "computers", "software", "engineering", "electronics", "internet", "inventions",
		"teknoloji", "teknolojisi", "bilgisayar", "yazılım", "mühendislik", "elektronik", "icatlar",
	},
	"Art": {
		"art", "arts", "artworks", "painting", "paintings", "painters", "sculpture", "sculptures", "artists", "museums",
		"sanat", "sanatı", "resim", "resimler", "ressamlar", "heykel", "heykeller", "sanatçılar", "müzeler",
	},
	"Geography": {
		"geography", "mountains", "rivers", "islands", "lakes", "countries", "cities", "deserts", "volcanoes", "regions",
		"coğrafya", "coğrafyası", "dağlar", "dağları", "nehirler", "nehirleri", "adalar", "göller", "ülkeler", "şehirler", "iller",
	},
}

// InferTopic guesses a default topic from category titles. Topics are
// checked in DefaultTopics order, categories in the order given.
func InferTopic(categories []string) (models.Topic, bool) {
	for _, topic := range models.DefaultTopics {
		keywords := topicKeywords[topic]
		for _, category := range categories {
			if matchesAny(categoryWords(category), keywords) {
				return topic, true
			}
		}
	}
	return "", false
}

func categoryWords(category string) map[string]struct{} {
	if i := strings.Index(category, ":"); i >= 0 {
		category = category[i+1:]
	}
	words := strings.FieldsFunc(strings.ToLower(category), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func matchesAny(words map[string]struct{}, keywords []string) bool {
	for _, kw := range keywords {
		if _, ok := words[kw]; ok {
			return true
		}
	}
	return false
}
