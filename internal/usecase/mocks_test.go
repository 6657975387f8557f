package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopclip/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string][]byte
	getError  error
	setError  error
	getCalled bool
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string][]byte),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// MockPageFetcher is a mock implementation of domain.PageFetcher
type MockPageFetcher struct {
	html  string
	err   error
	calls []string
}

func (m *MockPageFetcher) Fetch(ctx context.Context, url string) (*domain.Page, error) {
	m.calls = append(m.calls, url)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Page{URL: url, HTML: []byte(m.html)}, nil
}

// MockScraper is a mock implementation of domain.Scraper
type MockScraper struct {
	result      *domain.ScrapeResult
	err         error
	calls       int
	invalidated []string
}

func (m *MockScraper) ScrapeWebsite(ctx context.Context, url, category string) (*domain.ScrapeResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *MockScraper) Invalidate(ctx context.Context, url, category string) error {
	m.invalidated = append(m.invalidated, url)
	return nil
}

// MockUserRepository is an in-memory domain.UserRepository
type MockUserRepository struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	createErr error
	nextID    int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == strings.ToLower(user.Email) {
			return domain.ErrEmailTaken
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.Email = strings.ToLower(user.Email)
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

// MockProjectRepository is an in-memory domain.ProjectRepository
type MockProjectRepository struct {
	projects []*domain.Project
	nextID   int
	// updateErrAt fails the n-th Update call (1-based) when set
	updateErrAt int
	updates     int
}

func (m *MockProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	m.nextID++
	p.ID = fmt.Sprintf("proj-%d", m.nextID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cp := *p
	m.projects = append(m.projects, &cp)
	return nil
}

func (m *MockProjectRepository) GetByID(ctx context.Context, userID, id string) (*domain.Project, error) {
	for _, p := range m.projects {
		if p.ID == id && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (m *MockProjectRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	var out []*domain.Project
	for i := len(m.projects) - 1; i >= 0; i-- {
		if m.projects[i].UserID == userID {
			cp := *m.projects[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockProjectRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	n := 0
	for _, p := range m.projects {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *MockProjectRepository) ExistsByName(ctx context.Context, userID, name string) (bool, error) {
	for _, p := range m.projects {
		if p.UserID == userID && strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name)) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	m.updates++
	if m.updates == m.updateErrAt {
		return errors.New("database is locked")
	}
	for i, existing := range m.projects {
		if existing.ID == p.ID && existing.UserID == p.UserID {
			p.UpdatedAt = time.Now()
			cp := *p
			m.projects[i] = &cp
			return nil
		}
	}
	return domain.ErrProjectNotFound
}

func (m *MockProjectRepository) Delete(ctx context.Context, userID, id string) error {
	for i, p := range m.projects {
		if p.ID == id && p.UserID == userID {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			return nil
		}
	}
	return domain.ErrProjectNotFound
}
