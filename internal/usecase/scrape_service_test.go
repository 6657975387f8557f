package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopclip/backend/internal/domain"
	"github.com/shopclip/backend/internal/infrastructure/fetcher"
	"github.com/shopclip/backend/internal/scraper"
)

func shopifyPage(n int) string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Boutique Lin - Accueil</title></head><body>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<div class="product-card"><a href="/products/%d"><img src="/cdn/%d.jpg"></a>
<h3 class="product-title">Chemise %d</h3><span class="price">%d,50 €</span></div>`, i, i, i, 20+i)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func newTestScrapeService(cache domain.CacheRepository, static, headless domain.PageFetcher) *ScrapeService {
	svc := NewScrapeService(cache, static, headless, ScrapeServiceConfig{})
	svc.newRand = func() scraper.Rand { return rand.New(rand.NewSource(1)) }
	return svc
}

func TestNewScrapeService(t *testing.T) {
	t.Run("creates service with default values", func(t *testing.T) {
		svc := NewScrapeService(nil, &MockPageFetcher{}, nil, ScrapeServiceConfig{})
		if svc.cacheTTL != time.Hour {
			t.Errorf("cacheTTL = %v, want 1h", svc.cacheTTL)
		}
	})

	t.Run("creates service with custom values", func(t *testing.T) {
		svc := NewScrapeService(nil, &MockPageFetcher{}, nil, ScrapeServiceConfig{CacheTTL: 5 * time.Minute})
		if svc.cacheTTL != 5*time.Minute {
			t.Errorf("cacheTTL = %v, want 5m", svc.cacheTTL)
		}
	})
}

func TestScrapeWebsite_InvalidURL(t *testing.T) {
	static := &MockPageFetcher{}
	svc := newTestScrapeService(nil, static, nil)

	result, err := svc.ScrapeWebsite(context.Background(), "exa mple.com", "fashion")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
	assert.Equal(t, "URL invalide: https://exa mple.com", err.Error())
	assert.Empty(t, static.calls)
}

func TestScrapeWebsite_ShopifyFixture(t *testing.T) {
	cache := NewMockCacheRepository()
	static := &MockPageFetcher{html: shopifyPage(6)}
	svc := newTestScrapeService(cache, static, nil)

	result, err := svc.ScrapeWebsite(context.Background(), "demo.myshopify.com", "fashion")

	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(result.Products), 3)
	assert.NotEqual(t, domain.MethodFallback, result.Method)
	assert.Equal(t, domain.MethodHTTP, result.Method)
	assert.Equal(t, domain.StatusOK, result.Status)
	assert.Equal(t, domain.PlatformShopify, result.Platform)
	assert.Equal(t, "https://demo.myshopify.com", result.SourceURL)
	assert.False(t, result.ScrapedAt.IsZero())
	assert.False(t, result.Cached)
	assert.Empty(t, result.Error)
	assert.Equal(t, []string{"https://demo.myshopify.com"}, static.calls)

	p := result.Products[0]
	assert.Equal(t, "Chemise 0", p.Name)
	assert.InDelta(t, 20.5, p.Price, 0.0001)
	assert.Equal(t, "https://demo.myshopify.com/cdn/0.jpg", p.Image)
	assert.Equal(t, "https://demo.myshopify.com/products/0", p.URL)
	assert.False(t, p.IsDemo)

	assert.True(t, cache.setCalled)
	_, ok := cache.data["scrape:https://demo.myshopify.com:fashion"]
	assert.True(t, ok, "result should be cached under the normalised key")
}

func TestScrapeWebsite_CacheHit(t *testing.T) {
	cache := NewMockCacheRepository()
	cached := domain.ScrapeResult{
		Products:   []domain.ScrapedProduct{{ID: "p1", Name: "Sac"}},
		TotalFound: 1,
		Method:     domain.MethodHTTP,
		Status:     domain.StatusOK,
		SourceURL:  "https://shop.example.com",
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)
	cache.data["scrape:https://shop.example.com:beauty"] = data

	static := &MockPageFetcher{err: errors.New("must not be called")}
	svc := newTestScrapeService(cache, static, nil)

	result, err := svc.ScrapeWebsite(context.Background(), "  shop.example.com ", " Beauty ")

	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, "Sac", result.Products[0].Name)
	assert.Empty(t, static.calls)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheRepository()
	static := &MockPageFetcher{html: shopifyPage(3)}
	svc := newTestScrapeService(cache, static, nil)

	_, err := svc.ScrapeWebsite(ctx, "demo.myshopify.com", "Home")
	require.NoError(t, err)
	require.Contains(t, cache.data, "scrape:https://demo.myshopify.com:home")

	require.NoError(t, svc.Invalidate(ctx, "demo.myshopify.com", "home"))
	assert.NotContains(t, cache.data, "scrape:https://demo.myshopify.com:home")

	result, err := svc.ScrapeWebsite(ctx, "demo.myshopify.com", "Home")
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Len(t, static.calls, 2)

	assert.NoError(t, svc.Invalidate(ctx, "exa mple.com", ""), "invalid URL has nothing cached")
	assert.NoError(t, newTestScrapeService(nil, static, nil).Invalidate(ctx, "demo.myshopify.com", ""))
}

func TestScrapeWebsite_CorruptCacheEntryIsIgnored(t *testing.T) {
	cache := NewMockCacheRepository()
	cache.data["scrape:https://demo.myshopify.com:"] = []byte("{not json")
	svc := newTestScrapeService(cache, &MockPageFetcher{html: shopifyPage(4)}, nil)

	result, err := svc.ScrapeWebsite(context.Background(), "https://demo.myshopify.com", "")

	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Len(t, result.Products, 4)
}

func TestScrapeWebsite_NetworkFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := fetcher.NewClient(fetcher.Config{Timeout: time.Second, RetryBackoff: time.Millisecond})
	cache := NewMockCacheRepository()
	svc := newTestScrapeService(cache, client, nil)

	result, err := svc.ScrapeWebsite(context.Background(), addr, "sports")

	require.NoError(t, err)
	assert.Equal(t, domain.MethodFallback, result.Method)
	assert.Equal(t, domain.StatusScrapeFailed, result.Status)
	assert.True(t, result.Failed())
	assert.NotEmpty(t, result.Error)
	assert.GreaterOrEqual(t, len(result.Products), 4)
	assert.LessOrEqual(t, len(result.Products), 6)
	for _, p := range result.Products {
		assert.True(t, p.IsDemo)
	}
	assert.False(t, cache.setCalled, "fallback data must not be cached")
}

func TestScrapeWebsite_HTTPErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := fetcher.NewClient(fetcher.Config{Timeout: time.Second})
	svc := newTestScrapeService(nil, client, nil)

	result, err := svc.ScrapeWebsite(context.Background(), server.URL, "")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusScrapeFailed, result.Status)
	assert.Contains(t, result.Error, "HTTP 403")
}

func TestScrapeWebsite_HeadlessPass(t *testing.T) {
	t.Run("generic site uses headless browser after static failure", func(t *testing.T) {
		static := &MockPageFetcher{err: domain.ErrFetchFailed}
		headless := &MockPageFetcher{html: `<html><body>
<article><h2>Vélo</h2><img src="/velo.jpg"><span class="price">399 €</span></article>
<article><h2>Casque</h2><img src="/casque.jpg"><span class="price">49 €</span></article>
<article><h2>Gourde</h2><img src="/gourde.jpg"><span class="price">9 €</span></article>
</body></html>`}
		svc := newTestScrapeService(nil, static, headless)

		result, err := svc.ScrapeWebsite(context.Background(), "https://velo.example.fr", "sports")

		require.NoError(t, err)
		assert.Equal(t, domain.MethodBrowser, result.Method)
		assert.Equal(t, domain.StatusOK, result.Status)
		assert.Len(t, result.Products, 3)
		assert.Len(t, headless.calls, 1)
	})

	t.Run("shopify never uses headless browser", func(t *testing.T) {
		static := &MockPageFetcher{err: domain.ErrFetchFailed}
		headless := &MockPageFetcher{html: shopifyPage(5)}
		svc := newTestScrapeService(nil, static, headless)

		result, err := svc.ScrapeWebsite(context.Background(), "https://demo.myshopify.com", "")

		require.NoError(t, err)
		assert.Equal(t, domain.MethodFallback, result.Method)
		assert.Equal(t, domain.PlatformShopify, result.Platform)
		assert.Empty(t, headless.calls)
	})

	t.Run("both passes failing falls back with both errors", func(t *testing.T) {
		static := &MockPageFetcher{err: errors.New("static boom")}
		headless := &MockPageFetcher{err: errors.New("headless boom")}
		svc := newTestScrapeService(nil, static, headless)

		result, err := svc.ScrapeWebsite(context.Background(), "https://www.fnac.com", "")

		require.NoError(t, err)
		assert.Equal(t, domain.StatusScrapeFailed, result.Status)
		assert.Contains(t, result.Error, "static boom")
		assert.Contains(t, result.Error, "headless boom")
	})
}

func TestScrapeWebsite_EmptyPageIsNotCached(t *testing.T) {
	cache := NewMockCacheRepository()
	svc := newTestScrapeService(cache, &MockPageFetcher{html: "<html><body><p>Bientôt</p></body></html>"}, nil)

	result, err := svc.ScrapeWebsite(context.Background(), "https://example.com", "")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, result.Status)
	assert.Empty(t, result.Products)
	assert.False(t, cache.setCalled)
}

func TestScrapeWebsite_CacheWriteFailureIsIgnored(t *testing.T) {
	cache := NewMockCacheRepository()
	cache.setError = domain.ErrCacheUnavailable
	svc := newTestScrapeService(cache, &MockPageFetcher{html: shopifyPage(3)}, nil)

	result, err := svc.ScrapeWebsite(context.Background(), "https://demo.myshopify.com", "")

	require.NoError(t, err)
	assert.Len(t, result.Products, 3)
}

func TestScrapeCacheKey(t *testing.T) {
	assert.Equal(t, "scrape:https://a.com:fashion", scrapeCacheKey("https://a.com", " Fashion "))
	assert.Equal(t, "scrape:https://a.com:", scrapeCacheKey("https://a.com", ""))
}
