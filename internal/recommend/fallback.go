package recommend

import (
	"fmt"
	"net/url"
)

const fallbackKeywords = 2

// FallbackItems builds search links for the first two keywords of g.
func FallbackItems(g KeywordGroup) []Item {
	n := len(g.Keywords)
	if n > fallbackKeywords {
		n = fallbackKeywords
	}

	items := make([]Item, 0, n)
	for _, kw := range g.Keywords[:n] {
		items = append(items, Item{
			Title: fmt.Sprintf("%s - 네이버쇼핑에서 검색", kw),
			Link:  "https://search.shopping.naver.com/search/all?query=" + url.QueryEscape(kw),
		})
	}
	return items
}

// FallbackGroups builds a fallback response for every group.
func FallbackGroups(groups []KeywordGroup) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{Group: g.Name, Required: g.Required, Items: FallbackItems(g)}
	}
	return out
}
