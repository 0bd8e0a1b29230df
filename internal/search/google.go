package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fashionbot/internal/domain"
	"fashionbot/internal/metrics"
	"fashionbot/internal/provider"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const searchTimeout = 15 * time.Second

// Google resolves item names to image URLs via the Custom Search JSON API.
// Queries are paced through a rate limiter to protect the daily quota, and
// resolved URLs are kept in an in-process TTL cache.
type Google struct {
	apiKey  string
	cx      string
	apiBase string
	client  *http.Client
	limiter *rate.Limiter
	cache   *gocache.Cache
	logger  *slog.Logger
}

type GoogleConfig struct {
	APIKey        string
	CX            string
	APIBase       string // default: https://www.googleapis.com/customsearch/v1
	RatePerMinute int    // 0 = unlimited
	CacheTTL      time.Duration
	Logger        *slog.Logger
}

func NewGoogle(cfg GoogleConfig) *Google {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://www.googleapis.com/customsearch/v1"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RatePerMinute))
	}

	var resultCache *gocache.Cache
	if cfg.CacheTTL > 0 {
		resultCache = gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	return &Google{
		apiKey:  cfg.APIKey,
		cx:      cfg.CX,
		apiBase: cfg.APIBase,
		client:  provider.SharedHTTPClient(searchTimeout),
		limiter: rate.NewLimiter(limit, 1),
		cache:   resultCache,
		logger:  cfg.Logger,
	}
}

// Resolve looks up one image per non-blank query, strictly sequentially
// and in input order. Blank queries are skipped; a failed or empty lookup
// is logged and omitted so the remaining queries still resolve. Callers
// correlate results by the Query field, not by position.
func (g *Google) Resolve(ctx context.Context, queries []string) []domain.ImageResult {
	var results []domain.ImageResult

	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			g.logger.Warn("empty query received, skipping image search")
			continue
		}

		metrics.ImageLookups.Inc()
		link, err := g.lookup(ctx, q)
		if err != nil {
			metrics.ImageMisses.Inc()
			g.logger.Error("image lookup failed", "query", q, "err", err)
			continue
		}
		results = append(results, domain.ImageResult{Query: q, URL: link})
	}

	return results
}

// lookup fetches the top-ranked image link for one query.
func (g *Google) lookup(ctx context.Context, query string) (string, error) {
	if g.cache != nil {
		if v, ok := g.cache.Get(query); ok {
			metrics.ImageCacheHits.Inc()
			g.logger.Debug("image cache hit", "query", query)
			return v.(string), nil
		}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.cx)
	params.Set("q", query)
	params.Set("searchType", "image")
	params.Set("num", "1")

	buildReq := func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, "GET", g.apiBase+"?"+params.Encode(), nil)
	}

	resp, err := provider.DoWithRetry(ctx, g.client, provider.SearchRetryPolicy, buildReq, g.logger)
	if err != nil {
		return "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("search returned %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(sr.Items) == 0 {
		return "", fmt.Errorf("no images found")
	}

	link := sr.Items[0].Link
	if g.cache != nil {
		g.cache.SetDefault(query, link)
	}
	return link, nil
}

// Custom Search JSON API response (only the consumed fields).
type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	Link string `json:"link"`
}
