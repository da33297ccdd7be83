package recommend

import "sort"

const maxTitleRunes = 100

// Product is a search result with extracted attributes.
type Product struct {
	Title         string
	Snippet       string
	Price         *int
	Rating        *float64
	Link          string
	ImageURL      *string
	PreferredSite bool
}

// Item is one product in a recommendation response.
type Item struct {
	Title    string   `json:"title"`
	Price    *int     `json:"price"`
	Link     string   `json:"link"`
	ImageURL *string  `json:"imageUrl"`
	Rating   *float64 `json:"rating"`
	Ad       bool     `json:"ad"`
}

// Group is one keyword group in a recommendation response.
type Group struct {
	Group    string `json:"group"`
	Required bool   `json:"required"`
	Items    []Item `json:"items"`
}

// NewProduct extracts price, rating and storefront flag from a search result.
func NewProduct(r SearchResult) Product {
	text := r.Title + " " + r.Snippet
	return Product{
		Title:         r.Title,
		Snippet:       r.Snippet,
		Price:         ExtractPrice(text),
		Rating:        ExtractRating(text),
		Link:          r.Link,
		ImageURL:      r.ImageURL,
		PreferredSite: IsStorefront(r.Link),
	}
}

// Score is 100 for storefronts, plus 50 with a price, plus ten times the rating.
func Score(p Product) float64 {
	var score float64
	if p.PreferredSite {
		score += 100
	}
	if p.Price != nil {
		score += 50
	}
	if p.Rating != nil {
		score += *p.Rating * 10
	}
	return score
}

// Rank orders products by descending score, keeping search order for ties,
// and returns the first limit as response items.
func Rank(products []Product, limit int) []Item {
	sorted := make([]Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Score(sorted[i]) > Score(sorted[j])
	})

	if limit > len(sorted) {
		limit = len(sorted)
	}

	items := make([]Item, 0, limit)
	for _, p := range sorted[:limit] {
		items = append(items, Item{
			Title:    truncateRunes(p.Title, maxTitleRunes),
			Price:    p.Price,
			Link:     p.Link,
			ImageURL: p.ImageURL,
			Rating:   p.Rating,
		})
	}
	return items
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
