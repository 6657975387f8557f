package domain

import "time"

// Platform is the heuristic guess of the e-commerce engine behind a site
type Platform string

const (
	PlatformShopify      Platform = "shopify"
	PlatformWooCommerce  Platform = "woocommerce"
	PlatformPrestaShop   Platform = "prestashop"
	PlatformMagento      Platform = "magento"
	PlatformFrenchRetail Platform = "french_retail"
	PlatformGeneric      Platform = "generic"
)

// PrefersStaticFetch reports whether the platform renders its catalogue
// server-side, in which case the headless pass is never attempted.
func (p Platform) PrefersStaticFetch() bool {
	return p == PlatformShopify || p == PlatformWooCommerce
}

// ScrapeMethod records how a result was obtained
type ScrapeMethod string

const (
	MethodHTTP     ScrapeMethod = "http"
	MethodBrowser  ScrapeMethod = "browser"
	MethodFallback ScrapeMethod = "fallback"
)

// ScrapeStatus distinguishes live results from demo filler
type ScrapeStatus string

const (
	StatusOK           ScrapeStatus = "ok"
	StatusScrapeFailed ScrapeStatus = "scrape_failed"
)

// Selectors holds comma-separated CSS selector candidates, most specific first
type Selectors struct {
	ProductContainer string
	Name             string
	Price            string
	Image            string
	Link             string
}

// ScrapedProduct is a product-like node extracted from a page (or fabricated as demo data)
type ScrapedProduct struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	URL         string    `json:"url"`
	Category    string    `json:"category"`
	InStock     bool      `json:"inStock"`
	ScrapedAt   time.Time `json:"scrapedAt,omitempty"`
	IsGeneric   bool      `json:"isGeneric,omitempty"`
	IsDemo      bool      `json:"isDemo,omitempty"`
}

// PageMetadata describes the scraped page itself
type PageMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SiteName    string `json:"siteName"`
}

// ScrapeResult is the outcome of one ScrapeWebsite call
type ScrapeResult struct {
	Products   []ScrapedProduct `json:"products"`
	TotalFound int              `json:"totalFound"`
	Method     ScrapeMethod     `json:"method"`
	Metadata   PageMetadata     `json:"metadata"`
	ScrapedAt  time.Time        `json:"scrapedAt"`
	SourceURL  string           `json:"sourceUrl"`
	Platform   Platform         `json:"platform"`
	Status     ScrapeStatus     `json:"status"`
	Error      string           `json:"error,omitempty"`
	Cached     bool             `json:"cached,omitempty"`
}

// Failed reports whether live acquisition failed and the products are demo filler
func (r *ScrapeResult) Failed() bool {
	return r.Status == StatusScrapeFailed
}

// ScrapeRequest represents a scrape request body
type ScrapeRequest struct {
	URL      string `json:"url" binding:"required"`
	Category string `json:"category,omitempty"`
}

// Page is a fetched HTML document
type Page struct {
	URL  string
	HTML []byte
}
