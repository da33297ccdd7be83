package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cswnn/Capstone-Homefix2/internal/cache"
	"github.com/cswnn/Capstone-Homefix2/internal/metrics"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

// QuerySuffix is appended to every keyword to bias results towards shops.
const QuerySuffix = " 구매 가격 리뷰"

// CacheNamespace is the cache namespace holding search results.
const CacheNamespace = "search"

// Config tunes the pipeline.
type Config struct {
	PerKeyword int
	PerGroup   int
	CacheTTL   time.Duration
	// Timeout bounds each keyword search. Zero means the request context only.
	Timeout time.Duration
}

// Pipeline produces grouped product recommendations.
type Pipeline struct {
	searcher Searcher
	cache    cache.Client
	cfg      Config
	logger   *observability.Logger
}

// NewPipeline creates a pipeline. A nil searcher means no credentials are
// configured and every group is served from fallback links. A nil cache
// disables result caching.
func NewPipeline(searcher Searcher, c cache.Client, cfg Config, logger *observability.Logger) *Pipeline {
	if cfg.PerKeyword <= 0 {
		cfg.PerKeyword = 5
	}
	if cfg.PerGroup <= 0 {
		cfg.PerGroup = 2
	}
	return &Pipeline{searcher: searcher, cache: c, cfg: cfg, logger: logger.WithOperation("recommend")}
}

// Recommend returns the keyword groups for problem with their best products.
func (p *Pipeline) Recommend(ctx context.Context, problem, location string) []Group {
	groups := GroupsFor(problem, location)

	if p.searcher == nil {
		p.logger.Info().Str("problem", problem).Msg("search credentials missing, serving fallback links")
		metrics.SearchFallbacks.WithLabelValues("no_credentials").Add(float64(len(groups)))
		return FallbackGroups(groups)
	}

	out := make([]Group, len(groups))
	for i, g := range groups {
		products := p.searchGroup(ctx, g)

		var items []Item
		if len(products) > 0 {
			items = Rank(products, p.cfg.PerGroup)
		} else {
			metrics.SearchFallbacks.WithLabelValues("no_results").Inc()
			items = FallbackItems(g)
		}
		out[i] = Group{Group: g.Name, Required: g.Required, Items: items}
	}
	return out
}

// searchGroup queries every keyword concurrently and concatenates the
// results in keyword order. Failed keywords contribute nothing.
func (p *Pipeline) searchGroup(ctx context.Context, g KeywordGroup) []Product {
	perKeyword := make([][]SearchResult, len(g.Keywords))

	var eg errgroup.Group
	for i, kw := range g.Keywords {
		i, kw := i, kw
		eg.Go(func() error {
			results, err := p.search(ctx, kw+QuerySuffix)
			if err != nil {
				p.logger.Warn().Err(err).Str("keyword", kw).Msg("product search failed")
				return nil
			}
			perKeyword[i] = results
			return nil
		})
	}
	_ = eg.Wait()

	var products []Product
	for _, results := range perKeyword {
		for _, r := range results {
			products = append(products, NewProduct(r))
		}
	}
	return products
}

func (p *Pipeline) search(ctx context.Context, query string) ([]SearchResult, error) {
	key := cache.HashedKey(CacheNamespace, query)

	if p.cache != nil {
		data, err := p.cache.Get(ctx, key)
		if err == nil {
			var cached []SearchResult
			if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			p.logger.Warn().Err(err).Msg("search cache read failed")
		}
	}

	searchCtx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	results, err := p.searcher.Search(searchCtx, query, p.cfg.PerKeyword)
	if err != nil {
		return nil, err
	}

	if p.cache != nil && len(results) > 0 && p.cfg.CacheTTL > 0 {
		if data, err := json.Marshal(results); err == nil {
			if err := p.cache.Set(ctx, key, data, p.cfg.CacheTTL); err != nil {
				p.logger.Warn().Err(err).Msg("search cache write failed")
			}
		}
	}
	return results, nil
}
