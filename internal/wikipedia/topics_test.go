package wikipedia

import "testing"

func TestInferTopic(t *testing.T) {
	cases := []struct {
		name       string
		categories []string
		want       string
		ok         bool
	}{
		{"english history", []string{"Category:Battles involving England"}, "History", true},
		{"turkish geography", []string{"Kategori:Türkiye'deki dağlar"}, "Geography", true},
		{"art not artificial", []string{"Category:Artificial neural networks"}, "", false},
		{"science", []string{"Category:Living people", "Category:Theoretical physics"}, "Science", true},
		{"topic order wins", []string{"Category:Painting", "Category:History of painting"}, "History", true},
		{"none", []string{"Category:Living people"}, "", false},
		{"empty", nil, "", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := InferTopic(c.categories)
			if ok != c.ok || got != c.want {
				t.Fatalf("InferTopic(%v) = %q, %v; want %q, %v", c.categories, got, ok, c.want, c.ok)
			}
		})
	}
}
