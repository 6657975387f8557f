package scraper

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/shopclip/backend/internal/domain"
)

const (
	maxContainerProducts = 50 // stop walking containers once this many products are kept
	maxResultProducts    = 30
	minPlatformProducts  = 3 // below this the generic image pass runs
	maxGenericProducts   = 10
	maxNameRunes         = 100
	maxGenericNameRunes  = 50

	defaultSiteName = "Site E-commerce"
)

// imageAttrs are read in order; lazy-loading themes keep the real source in data-*.
var imageAttrs = []string{"src", "data-src", "data-lazy-src"}

// Extract parses html and collects product-like nodes using the selector set
// of the given platform, falling back to a generic <img> pass when fewer than
// three products are found. Method, platform and timestamps are left for the
// caller to fill in.
func Extract(html []byte, pageURL string, platform domain.Platform, rnd Rand) (*domain.ScrapeResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	origin := Origin(pageURL)
	sel := SelectorsFor(platform)
	now := time.Now()

	products := make([]domain.ScrapedProduct, 0, maxResultProducts)
	doc.Find(sel.ProductContainer).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(products) >= maxContainerProducts {
			return false
		}
		if p, ok := extractProduct(s, sel, origin, now, rnd); ok {
			products = append(products, p)
		}
		return true
	})

	if len(products) < minPlatformProducts {
		products = append(products, extractGenericProducts(doc, pageURL, origin, products, now, rnd)...)
	}

	total := len(products)
	if len(products) > maxResultProducts {
		products = products[:maxResultProducts]
	}

	return &domain.ScrapeResult{
		Products:   products,
		TotalFound: total,
		Metadata:   extractMetadata(doc),
	}, nil
}

func extractProduct(s *goquery.Selection, sel domain.Selectors, origin string, now time.Time, rnd Rand) (domain.ScrapedProduct, bool) {
	name := normSpace(s.Find(sel.Name).First().Text())
	if name == "" {
		return domain.ScrapedProduct{}, false
	}
	image := imageSource(s.Find(sel.Image).First())
	if image == "" {
		return domain.ScrapedProduct{}, false
	}

	priceText := normSpace(s.Find(sel.Price).First().Text())
	link := strings.TrimSpace(s.Find(sel.Link).First().AttrOr("href", ""))
	// WooCommerce wraps the whole card in the link itself.
	if link == "" && goquery.NodeName(s) == "a" {
		link = strings.TrimSpace(s.AttrOr("href", ""))
	}

	name = truncateRunes(name, maxNameRunes)
	return domain.ScrapedProduct{
		ID:          fmt.Sprintf("scraped_%d_%s", now.UnixMilli(), randomToken(rnd, 9)),
		Name:        name,
		Description: name + " - Produit trouvé automatiquement",
		Price:       ExtractPriceFromText(priceText, rnd),
		Image:       MakeAbsoluteURL(image, origin),
		URL:         MakeAbsoluteURL(link, origin),
		Category:    "general",
		InStock:     true,
		ScrapedAt:   now,
	}, true
}

// extractGenericProducts scans <img> tags that look like product shots and
// turns their alt text into product names. Images already collected are skipped.
func extractGenericProducts(doc *goquery.Document, pageURL, origin string, existing []domain.ScrapedProduct, now time.Time, rnd Rand) []domain.ScrapedProduct {
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.Image] = true
	}

	var out []domain.ScrapedProduct
	for _, selector := range GenericImageSelectors {
		if len(out) >= maxGenericProducts {
			break
		}
		doc.Find(selector).EachWithBreak(func(_ int, img *goquery.Selection) bool {
			if len(out) >= maxGenericProducts {
				return false
			}
			src := imageSource(img)
			alt := normSpace(img.AttrOr("alt", ""))
			if src == "" || utf8.RuneCountInString(alt) <= 2 {
				return true
			}
			image := MakeAbsoluteURL(src, origin)
			if seen[image] {
				return true
			}
			seen[image] = true

			out = append(out, domain.ScrapedProduct{
				ID:          fmt.Sprintf("generic_%d_%d", now.UnixMilli(), len(out)),
				Name:        truncateRunes(alt, maxGenericNameRunes),
				Description: "Produit " + alt,
				Price:       float64(rnd.Intn(200) + 20),
				Image:       image,
				URL:         pageURL,
				Category:    "general",
				InStock:     true,
				ScrapedAt:   now,
				IsGeneric:   true,
			})
			return true
		})
	}
	return out
}

func extractMetadata(doc *goquery.Document) domain.PageMetadata {
	title := normSpace(doc.Find("title").First().Text())
	description := strings.TrimSpace(doc.Find(`meta[name="description"]`).First().AttrOr("content", ""))

	siteName := strings.TrimSpace(doc.Find(`meta[property="og:site_name"]`).First().AttrOr("content", ""))
	if siteName == "" {
		siteName = strings.TrimSpace(strings.SplitN(title, "-", 2)[0])
	}
	if siteName == "" {
		siteName = defaultSiteName
	}

	return domain.PageMetadata{
		Title:       title,
		Description: description,
		SiteName:    siteName,
	}
}

func imageSource(img *goquery.Selection) string {
	for _, attr := range imageAttrs {
		v := strings.TrimSpace(img.AttrOr(attr, ""))
		if v != "" && !strings.HasPrefix(v, "data:") {
			return v
		}
	}
	return ""
}

func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomToken(rnd Rand, n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(base36[rnd.Intn(len(base36))])
	}
	return b.String()
}
