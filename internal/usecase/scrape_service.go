package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shopclip/backend/internal/domain"
	"github.com/shopclip/backend/internal/scraper"
)

// ScrapeServiceConfig holds configuration for the scrape service
type ScrapeServiceConfig struct {
	CacheTTL time.Duration
}

// ScrapeService turns a website URL into a list of products.
// Flow: validate -> detect platform -> cache -> static fetch -> headless fetch -> extract -> cache.
// Any acquisition failure yields demo data flagged scrape_failed.
type ScrapeService struct {
	cache    domain.CacheRepository
	static   domain.PageFetcher
	headless domain.PageFetcher
	cacheTTL time.Duration
	newRand  func() scraper.Rand
}

// NewScrapeService creates a scrape service. cache and headless may be nil.
func NewScrapeService(
	cache domain.CacheRepository,
	static domain.PageFetcher,
	headless domain.PageFetcher,
	config ScrapeServiceConfig,
) *ScrapeService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	return &ScrapeService{
		cache:    cache,
		static:   static,
		headless: headless,
		cacheTTL: cacheTTL,
		newRand: func() scraper.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// ScrapeWebsite analyses rawURL. Only an invalid URL is returned as an error;
// every other failure produces a fallback result with Status scrape_failed.
func (s *ScrapeService) ScrapeWebsite(ctx context.Context, rawURL, category string) (*domain.ScrapeResult, error) {
	cleanURL, err := scraper.CleanAndValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	platform := scraper.DetectPlatform(cleanURL)
	cacheKey := scrapeCacheKey(cleanURL, category)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		cached.Cached = true
		log.Debug("scrape cache hit", "url", cleanURL, "category", category)
		return cached, nil
	}

	rnd := s.newRand()
	result, err := s.scrapeLive(ctx, cleanURL, platform, rnd)
	if err != nil {
		log.Warn("scrape failed, serving demo data", "url", cleanURL, "platform", platform, "err", err)
		fallback := scraper.FallbackData(cleanURL, category, rnd)
		fallback.Error = err.Error()
		fallback.Platform = platform
		return fallback, nil
	}

	result.ScrapedAt = time.Now()
	result.SourceURL = cleanURL
	result.Platform = platform
	result.Status = domain.StatusOK

	log.Info("scrape finished", "url", cleanURL, "platform", platform, "method", result.Method, "products", len(result.Products))

	// Empty pages are not cached.
	if len(result.Products) > 0 {
		if err := s.setInCache(ctx, cacheKey, result); err != nil {
			log.Warn("scrape cache write failed", "key", cacheKey, "err", err)
		}
	}
	return result, nil
}

// scrapeLive fetches the page statically, falling back to the headless
// browser for platforms that may render client-side.
func (s *ScrapeService) scrapeLive(ctx context.Context, pageURL string, platform domain.Platform, rnd scraper.Rand) (*domain.ScrapeResult, error) {
	method := domain.MethodHTTP
	page, err := s.static.Fetch(ctx, pageURL)
	if err != nil {
		if platform.PrefersStaticFetch() || s.headless == nil || ctx.Err() != nil {
			return nil, err
		}
		log.Info("static fetch failed, trying headless browser", "url", pageURL, "err", err)

		var headlessErr error
		page, headlessErr = s.headless.Fetch(ctx, pageURL)
		if headlessErr != nil {
			return nil, errors.Join(err, headlessErr)
		}
		method = domain.MethodBrowser
	}

	base := page.URL
	if base == "" {
		base = pageURL
	}
	result, err := scraper.Extract(page.HTML, base, platform, rnd)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", pageURL, err)
	}
	result.Method = method
	return result, nil
}

// Invalidate drops the cached result for url and category. An invalid URL
// has nothing cached and is not an error.
func (s *ScrapeService) Invalidate(ctx context.Context, rawURL, category string) error {
	if s.cache == nil {
		return nil
	}
	cleanURL, err := scraper.CleanAndValidateURL(rawURL)
	if err != nil {
		return nil
	}
	return s.cache.Delete(ctx, scrapeCacheKey(cleanURL, category))
}

// scrapeCacheKey builds "scrape:{url}:{category}"; the URL is already normalised
func scrapeCacheKey(cleanURL, category string) string {
	return fmt.Sprintf("scrape:%s:%s", cleanURL, strings.ToLower(strings.TrimSpace(category)))
}

func (s *ScrapeService) getFromCache(ctx context.Context, key string) (*domain.ScrapeResult, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var result domain.ScrapeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return &result, nil
}

func (s *ScrapeService) setInCache(ctx context.Context, key string, result *domain.ScrapeResult) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
