package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/shopclip/backend/internal/domain"
)

const (
	defaultProductPageSize = 20
	maxProductPageSize     = 100
)

var defaultTargetPlatforms = []string{"instagram", "tiktok", "youtube"}

// ProjectServiceConfig holds project quota settings
type ProjectServiceConfig struct {
	// EarlyAccountCutoff is the last account number that gets EarlyQuota
	EarlyAccountCutoff int
	EarlyQuota         int
	StandardQuota      int
}

// ProjectService manages a user's projects and their product analyses
type ProjectService struct {
	projects domain.ProjectRepository
	scraper  domain.Scraper
	config   ProjectServiceConfig
}

// NewProjectService creates a new project service with dependencies
func NewProjectService(projects domain.ProjectRepository, sc domain.Scraper, config ProjectServiceConfig) *ProjectService {
	if config.EarlyAccountCutoff == 0 {
		config.EarlyAccountCutoff = 100
	}
	if config.EarlyQuota == 0 {
		config.EarlyQuota = 50
	}
	if config.StandardQuota == 0 {
		config.StandardQuota = 10
	}
	return &ProjectService{projects: projects, scraper: sc, config: config}
}

// QuotaLimit returns how many projects the user may own
func (s *ProjectService) QuotaLimit(user *domain.User) int {
	if user.AccountNumber <= s.config.EarlyAccountCutoff {
		return s.config.EarlyQuota
	}
	return s.config.StandardQuota
}

func (s *ProjectService) quota(user *domain.User, used int) domain.Quota {
	limit := s.QuotaLimit(user)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return domain.Quota{Used: used, Limit: limit, Remaining: remaining}
}

// Create validates the request, checks quota and name uniqueness, then
// analyses the website before storing the project. An unreachable or
// malformed website still creates the project, marked analysis_failed.
func (s *ProjectService) Create(ctx context.Context, user *domain.User, req *domain.CreateProjectRequest) (*domain.Project, error) {
	if req == nil {
		return nil, domain.ErrInvalidRequest
	}
	name := strings.TrimSpace(req.Name)
	website := strings.TrimSpace(req.Website)
	category := strings.TrimSpace(req.Category)

	var details []string
	if n := utf8.RuneCountInString(name); n < 3 || n > 100 {
		details = append(details, "name doit contenir entre 3 et 100 caractères")
	}
	if website == "" {
		details = append(details, "website est requis")
	}
	if category == "" {
		details = append(details, "category est requis")
	}
	if len(details) > 0 {
		return nil, &domain.ValidationError{Details: details}
	}

	used, err := s.projects.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	if q := s.quota(user, used); q.Remaining == 0 {
		return nil, &domain.QuotaError{Quota: q}
	}

	exists, err := s.projects.ExistsByName(ctx, user.ID, name)
	if err != nil {
		return nil, fmt.Errorf("check project name: %w", err)
	}
	if exists {
		return nil, domain.ErrProjectNameExists
	}

	style := user.Settings.DefaultStyle
	if style == "" {
		style = domain.DefaultUserSettings().DefaultStyle
	}
	now := time.Now()
	project := &domain.Project{
		UserID:      user.ID,
		Name:        name,
		Website:     website,
		Category:    category,
		Description: strings.TrimSpace(req.Description),
		Status:      domain.ProjectCreated,
		Products:    []domain.ScrapedProduct{},
		Settings: domain.ProjectSettings{
			AutoGenerate:    false,
			DefaultStyle:    style,
			TargetPlatforms: append([]string(nil), defaultTargetPlatforms...),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.analyse(ctx, project)

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	log.Info("project created", "user", user.Email, "project", project.Name, "status", project.Status, "products", len(project.Products))
	return project, nil
}

// analyse scrapes the project website and records the outcome on the project.
// Demo filler from a failed scrape is never stored as the project's products.
// It reports how many products the project had before.
func (s *ProjectService) analyse(ctx context.Context, project *domain.Project) int {
	before := len(project.Products)
	result, err := s.scraper.ScrapeWebsite(ctx, project.Website, project.Category)
	switch {
	case err != nil:
		project.Status = domain.ProjectAnalysisFailed
		project.Error = err.Error()
	case result.Failed():
		project.Status = domain.ProjectAnalysisFailed
		project.Error = result.Error
	default:
		scrapedAt := time.Now()
		project.Products = result.Products
		if project.Products == nil {
			project.Products = []domain.ScrapedProduct{}
		}
		project.Status = domain.ProjectAnalyzed
		project.Error = ""
		project.Stats.TotalProducts = len(project.Products)
		project.Stats.LastScrapedAt = &scrapedAt
	}
	if project.Status == domain.ProjectAnalysisFailed {
		log.Warn("project analysis failed", "project", project.Name, "website", project.Website, "err", project.Error)
	}
	return before
}

// List returns the user's projects newest first along with their quota
func (s *ProjectService) List(ctx context.Context, user *domain.User) ([]*domain.Project, domain.Quota, error) {
	projects, err := s.projects.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, domain.Quota{}, err
	}
	if projects == nil {
		projects = []*domain.Project{}
	}
	return projects, s.quota(user, len(projects)), nil
}

// Get returns one of the user's projects
func (s *ProjectService) Get(ctx context.Context, user *domain.User, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, user.ID, id)
}

// Update applies the non-nil fields of req. Settings are merged key by key.
func (s *ProjectService) Update(ctx context.Context, user *domain.User, id string, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	if req == nil {
		return nil, domain.ErrInvalidRequest
	}
	project, err := s.projects.GetByID(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if n := utf8.RuneCountInString(name); n < 3 || n > 100 {
			return nil, &domain.ValidationError{Details: []string{"name doit contenir entre 3 et 100 caractères"}}
		}
		if !strings.EqualFold(name, project.Name) {
			exists, err := s.projects.ExistsByName(ctx, user.ID, name)
			if err != nil {
				return nil, fmt.Errorf("check project name: %w", err)
			}
			if exists {
				return nil, domain.ErrProjectNameExists
			}
		}
		project.Name = name
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	if len(req.Settings) > 0 {
		merged, err := mergeSettings(project.Settings, req.Settings)
		if err != nil {
			return nil, err
		}
		project.Settings = merged
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// mergeSettings overlays patch onto current using the JSON field names
func mergeSettings(current domain.ProjectSettings, patch map[string]interface{}) (domain.ProjectSettings, error) {
	raw, err := json.Marshal(current)
	if err != nil {
		return current, err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return current, err
	}
	for k, v := range patch {
		fields[k] = v
	}

	raw, err = json.Marshal(fields)
	if err != nil {
		return current, err
	}
	var merged domain.ProjectSettings
	if err := json.Unmarshal(raw, &merged); err != nil {
		return current, &domain.ValidationError{Details: []string{"settings invalides: " + err.Error()}}
	}
	return merged, nil
}

// Delete removes one of the user's projects and returns what was deleted
func (s *ProjectService) Delete(ctx context.Context, user *domain.User, id string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	if err := s.projects.Delete(ctx, user.ID, id); err != nil {
		return nil, err
	}
	log.Info("project deleted", "user", user.Email, "project", project.Name)
	return project, nil
}

// Refresh re-analyses the project website. A failed scrape keeps the
// previous products and marks the project analysis_failed.
func (s *ProjectService) Refresh(ctx context.Context, user *domain.User, id string) (*domain.RefreshResult, error) {
	project, err := s.projects.GetByID(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}

	previous := project.Status
	project.Status = domain.ProjectAnalyzing
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	if err := s.scraper.Invalidate(ctx, project.Website, project.Category); err != nil {
		log.Warn("scrape cache invalidation failed", "project", project.Name, "err", err)
	}

	before := s.analyse(ctx, project)
	if err := s.projects.Update(ctx, project); err != nil {
		s.restoreStatus(ctx, project.UserID, project.ID, previous)
		return nil, err
	}

	newProducts := 0
	if project.Status == domain.ProjectAnalyzed {
		newProducts = len(project.Products) - before
	}
	return &domain.RefreshResult{
		Project:       project,
		NewProducts:   newProducts,
		TotalProducts: len(project.Products),
	}, nil
}

// restoreStatus puts back the status a failed refresh overwrote with
// analyzing. Products and stats stay as last stored.
func (s *ProjectService) restoreStatus(ctx context.Context, userID, id string, status domain.ProjectStatus) {
	project, err := s.projects.GetByID(ctx, userID, id)
	if err != nil {
		log.Error("restore project status", "project", id, "err", err)
		return
	}
	project.Status = status
	if err := s.projects.Update(ctx, project); err != nil {
		log.Error("restore project status", "project", id, "err", err)
	}
}

// Products returns a filtered page of the project's products
func (s *ProjectService) Products(ctx context.Context, user *domain.User, id string, q domain.ProductQuery) (*domain.ProductPage, error) {
	project, err := s.projects.GetByID(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultProductPageSize
	}
	if limit > maxProductPageSize {
		limit = maxProductPageSize
	}

	category := strings.TrimSpace(q.Category)
	search := strings.ToLower(strings.TrimSpace(q.Search))

	filtered := make([]domain.ScrapedProduct, 0, len(project.Products))
	for _, p := range project.Products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if !matchesSearch(p, search) {
			continue
		}
		filtered = append(filtered, p)
	}

	// Pages past the end are clamped before multiplying so huge page
	// numbers cannot overflow the offset.
	start := len(filtered)
	if page-1 <= len(filtered)/limit {
		start = min((page-1)*limit, len(filtered))
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	return &domain.ProductPage{
		Products: filtered[start:end],
		Pagination: domain.Pagination{
			Page:  page,
			Limit: limit,
			Total: len(filtered),
			Pages: int(math.Ceil(float64(len(filtered)) / float64(limit))),
		},
	}, nil
}
