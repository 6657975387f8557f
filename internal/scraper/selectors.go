package scraper

import "github.com/shopclip/backend/internal/domain"

var genericSelectors = domain.Selectors{
	ProductContainer: `[class*="product"], [class*="item"], .card, article`,
	Name:             `h1, h2, h3, h4, [class*="title"], [class*="name"]`,
	Price:            `[class*="price"], [class*="cost"], [class*="euro"], [class*="amount"]`,
	Image:            `img`,
	Link:             `a`,
}

// selectorTable maps a platform guess to the DOM queries used to locate
// product fields. Platforms without an entry use genericSelectors.
var selectorTable = map[domain.Platform]domain.Selectors{
	domain.PlatformShopify: {
		ProductContainer: `.product-item, .product, .grid__item, .product-card`,
		Name:             `.product-title, .product__title, .product-item__title, h3`,
		Price:            `.price, .product-price, .money, .product__price`,
		Image:            `.product-item__image img, .product__image img, img`,
		Link:             `.product-item__link, .product__link, a`,
	},
	domain.PlatformWooCommerce: {
		ProductContainer: `.product, .woocommerce-LoopProduct-link, .type-product`,
		Name:             `.woocommerce-loop-product__title, .product-title, h2`,
		Price:            `.price, .woocommerce-Price-amount, .amount`,
		Image:            `.wp-post-image, .attachment-woocommerce_thumbnail, img`,
		Link:             `.woocommerce-loop-product__link, a`,
	},
	domain.PlatformPrestaShop: {
		ProductContainer: `.product-miniature, .ajax_block_product, .js-product-miniature`,
		Name:             `.product-title, .product-name, h3, h2`,
		Price:            `.price, .product-price, .content_price`,
		Image:            `.thumbnail-container img, .product-thumbnail img, img`,
		Link:             `.product-title a, .product-thumbnail, a`,
	},
	domain.PlatformMagento: {
		ProductContainer: `.product-item, .item.product, .products-grid .item`,
		Name:             `.product-item-link, .product-item-name, .product-name, h2`,
		Price:            `.price-box .price, .price, [data-price-type="finalPrice"]`,
		Image:            `.product-image-photo, .product-image img, img`,
		Link:             `.product-item-link, .product-item-photo, a`,
	},
	domain.PlatformGeneric: genericSelectors,
}

// GenericImageSelectors drive the second pass over <img> tags when the
// platform selectors find too few products.
var GenericImageSelectors = []string{
	`img[alt*="produit"], img[alt*="product"]`,
	`img[src*="product"], img[src*="item"]`,
	`[class*="product"] img`,
	`.card img, .item img`,
}

// SelectorsFor returns the selector set for a platform, defaulting to generic
func SelectorsFor(p domain.Platform) domain.Selectors {
	if s, ok := selectorTable[p]; ok {
		return s
	}
	return genericSelectors
}
