package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/cswnn/Capstone-Homefix2/internal/domain"
	"github.com/cswnn/Capstone-Homefix2/internal/metrics"
)

// SearchResult is one raw web search hit.
type SearchResult struct {
	Title    string  `json:"title"`
	Snippet  string  `json:"snippet"`
	Link     string  `json:"link"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Searcher queries a web search API.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// GoogleConfig configures GoogleSearcher.
type GoogleConfig struct {
	APIKey   string
	EngineID string
	// Endpoint overrides the API base URL.
	Endpoint string
}

// GoogleSearcher uses the Custom Search JSON API with safe search on.
type GoogleSearcher struct {
	svc      *customsearch.Service
	engineID string
}

// NewGoogleSearcher creates a Custom Search client.
func NewGoogleSearcher(ctx context.Context, cfg GoogleConfig) (*GoogleSearcher, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, fmt.Errorf("search API key and engine id are required")
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create custom search service: %w", err)
	}
	return &GoogleSearcher{svc: svc, engineID: cfg.EngineID}, nil
}

// Search runs one query and returns at most limit results.
func (g *GoogleSearcher) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	start := time.Now()
	res, err := g.svc.Cse.List().
		Q(query).
		Cx(g.engineID).
		Num(int64(limit)).
		Safe("active").
		Context(ctx).
		Do()
	metrics.ObserveExternalCall("search", start, err)
	if err != nil {
		return nil, domain.SearchError("custom search request failed", err)
	}

	out := make([]SearchResult, 0, len(res.Items))
	for _, item := range res.Items {
		out = append(out, SearchResult{
			Title:    item.Title,
			Snippet:  item.Snippet,
			Link:     item.Link,
			ImageURL: imageFromPagemap(item.Pagemap),
		})
	}
	return out, nil
}

// imageFromPagemap prefers cse_image[0].src and falls back to the first
// og:image meta tag.
func imageFromPagemap(raw []byte) *string {
	if len(raw) == 0 {
		return nil
	}
	var pagemap map[string][]map[string]interface{}
	if err := json.Unmarshal(raw, &pagemap); err != nil {
		return nil
	}

	if images, ok := pagemap["cse_image"]; ok {
		if len(images) == 0 {
			return nil
		}
		if src, ok := images[0]["src"].(string); ok {
			return &src
		}
		return nil
	}

	for _, meta := range pagemap["metatags"] {
		if v, ok := meta["og:image"]; ok {
			if s, ok := v.(string); ok {
				return &s
			}
			return nil
		}
	}
	return nil
}

var _ Searcher = (*GoogleSearcher)(nil)
