package scraper

import (
	"fmt"
	"time"

	"github.com/shopclip/backend/internal/domain"
)

const defaultDemoCategory = "electronics"

// demoCatalogue holds the placeholder product names shown per category
var demoCatalogue = map[string][]string{
	"fashion":     {"T-shirt Premium", "Jean Skinny", "Sneakers Tendance", "Veste d'Hiver"},
	"electronics": {"Smartphone Pro", "Casque Bluetooth", "Tablette HD", "Montre Connectée"},
	"beauty":      {"Crème Hydratante", "Rouge à Lèvres", "Parfum Elite", "Masque Visage"},
	"home":        {"Coussin Design", "Lampe LED", "Tapis Moderne", "Cadre Photo"},
	"sports":      {"Chaussures Running", "T-shirt Sport", "Sac de Sport", "Montre Fitness"},
}

// FallbackData fabricates demo products for the given category. Every product
// is flagged IsDemo and the result carries StatusScrapeFailed.
func FallbackData(rawURL, category string, rnd Rand) *domain.ScrapeResult {
	names, ok := demoCatalogue[category]
	if !ok {
		names = demoCatalogue[defaultDemoCategory]
	}
	productCategory := category
	if productCategory == "" {
		productCategory = "general"
	}

	now := time.Now()
	products := make([]domain.ScrapedProduct, 0, len(names))
	for i, name := range names {
		products = append(products, domain.ScrapedProduct{
			ID:          fmt.Sprintf("demo_%d_%d", now.UnixMilli(), i),
			Name:        name,
			Description: name + " de qualité premium avec livraison rapide",
			Price:       float64(rnd.Intn(200) + 30),
			Image:       fmt.Sprintf("https://picsum.photos/400/400?random=%d_%d", now.UnixMilli(), i),
			URL:         rawURL,
			Category:    productCategory,
			InStock:     true,
			ScrapedAt:   now,
			IsDemo:      true,
		})
	}

	return &domain.ScrapeResult{
		Products:   products,
		TotalFound: len(products),
		Method:     domain.MethodFallback,
		Metadata: domain.PageMetadata{
			Title:       "Site E-commerce de Démonstration",
			Description: "Données de démonstration pour test",
			SiteName:    "Demo Store",
		},
		ScrapedAt: now,
		SourceURL: rawURL,
		Platform:  domain.PlatformGeneric,
		Status:    domain.StatusScrapeFailed,
	}
}
