package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque JSON documents so memory and redis backends behave alike.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// PageFetcher retrieves the HTML of a page
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Scraper analyses a website and returns the products found on it
type Scraper interface {
	ScrapeWebsite(ctx context.Context, url, category string) (*ScrapeResult, error)
	// Invalidate drops any cached result so the next scrape goes live
	Invalidate(ctx context.Context, url, category string) error
}

// UserRepository defines persistence for accounts
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, user *User) error
}

// ProjectRepository defines persistence for projects; every lookup is scoped to the owner
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, userID, id string) (*Project, error)
	ListByUser(ctx context.Context, userID string) ([]*Project, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	ExistsByName(ctx context.Context, userID, name string) (bool, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, userID, id string) error
}

// TokenIssuer signs and verifies session tokens
type TokenIssuer interface {
	Issue(user *User) (string, error)
	Parse(token string) (*TokenClaims, error)
}
