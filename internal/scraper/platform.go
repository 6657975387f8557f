package scraper

import (
	"net/url"
	"strings"

	"github.com/shopclip/backend/internal/domain"
)

// platformRules are checked in order; the first rule with a needle found in
// the hostname wins.
var platformRules = []struct {
	platform domain.Platform
	needles  []string
}{
	{domain.PlatformShopify, []string{"shopify", "myshopify.com"}},
	{domain.PlatformWooCommerce, []string{"woocommerce", "wc-api"}},
	{domain.PlatformPrestaShop, []string{"prestashop"}},
	{domain.PlatformMagento, []string{"magento"}},
	{domain.PlatformFrenchRetail, []string{"cdiscount", "fnac", "darty", "boulanger"}},
}

// DetectPlatform guesses the e-commerce engine from hostname substrings.
// Pure string matching, never fails: anything unrecognised is generic.
func DetectPlatform(rawURL string) domain.Platform {
	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.PlatformGeneric
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return domain.PlatformGeneric
	}

	for _, rule := range platformRules {
		for _, needle := range rule.needles {
			if strings.Contains(host, needle) {
				return rule.platform
			}
		}
	}
	return domain.PlatformGeneric
}
