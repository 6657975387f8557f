package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/shopclip/backend/internal/domain"
)

const previewProductCount = 5

// AuthUsecase is the account surface the handlers need
type AuthUsecase interface {
	Authenticator
	Signup(ctx context.Context, req *domain.SignupRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error
}

// ProjectUsecase is the project surface the handlers need
type ProjectUsecase interface {
	Create(ctx context.Context, user *domain.User, req *domain.CreateProjectRequest) (*domain.Project, error)
	List(ctx context.Context, user *domain.User) ([]*domain.Project, domain.Quota, error)
	Get(ctx context.Context, user *domain.User, id string) (*domain.Project, error)
	Update(ctx context.Context, user *domain.User, id string, req *domain.UpdateProjectRequest) (*domain.Project, error)
	Delete(ctx context.Context, user *domain.User, id string) (*domain.Project, error)
	Refresh(ctx context.Context, user *domain.User, id string) (*domain.RefreshResult, error)
	Products(ctx context.Context, user *domain.User, id string, q domain.ProductQuery) (*domain.ProductPage, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scraper  domain.Scraper
	auth     AuthUsecase
	projects ProjectUsecase
}

// NewHandler creates a new HTTP handler
func NewHandler(scraper domain.Scraper, auth AuthUsecase, projects ProjectUsecase) *Handler {
	return &Handler{
		scraper:  scraper,
		auth:     auth,
		projects: projects,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "shopclip-backend",
		"version": "1.0.0",
	})
}

// Scrape analyses a website and returns the products found on it.
// A failed live scrape still answers 200 with status "scrape_failed".
func (h *Handler) Scrape(c *gin.Context) {
	var req domain.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Données invalides",
			Code:    CodeValidation,
			Details: []string{"url est requis"},
		})
		return
	}

	result, err := h.scraper.ScrapeWebsite(c.Request.Context(), req.URL, req.Category)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// projectPreview trims the product list of create and refresh answers
type projectPreview struct {
	*domain.Project
	Products      []domain.ScrapedProduct `json:"products"`
	ProductsCount int                     `json:"productsCount"`
}

func previewOf(p *domain.Project) projectPreview {
	products := p.Products
	if len(products) > previewProductCount {
		products = products[:previewProductCount]
	}
	if products == nil {
		products = []domain.ScrapedProduct{}
	}
	return projectPreview{Project: p, Products: products, ProductsCount: len(p.Products)}
}

// ListProjects returns the caller's projects with their quota
func (h *Handler) ListProjects(c *gin.Context) {
	projects, quota, err := h.projects.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"total":    len(projects),
		"quota":    quota,
	})
}

// CreateProject creates a project and analyses its website
func (h *Handler) CreateProject(c *gin.Context) {
	var req domain.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	user := currentUser(c)
	project, err := h.projects.Create(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Info("project analysed", "account", user.AccountNumber, "project", project.ID, "status", project.Status)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Projet créé avec succès",
		"project": previewOf(project),
	})
}

// GetProject returns one project in full
func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateProject patches name, description and settings
func (h *Handler) UpdateProject(c *gin.Context) {
	var req domain.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	project, err := h.projects.Update(c.Request.Context(), currentUser(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Projet mis à jour avec succès",
		"project": project,
	})
}

// DeleteProject removes a project
func (h *Handler) DeleteProject(c *gin.Context) {
	project, err := h.projects.Delete(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Projet supprimé avec succès",
		"deletedProject": gin.H{
			"id":   project.ID,
			"name": project.Name,
		},
	})
}

// RefreshProject re-analyses the project website
func (h *Handler) RefreshProject(c *gin.Context) {
	res, err := h.projects.Refresh(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if res.Project.Status == domain.ProjectAnalysisFailed {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Erreur lors du rafraîchissement",
			"code":    CodeRefreshFailed,
			"details": res.Project.Error,
			"project": previewOf(res.Project),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Analyse rafraîchie avec succès",
		"project": previewOf(res.Project),
		"changes": gin.H{
			"newProducts":   res.NewProducts,
			"totalProducts": res.TotalProducts,
		},
	})
}

// ListProducts pages through a project's products.
// Query: page, limit, category, search.
func (h *Handler) ListProducts(c *gin.Context) {
	q := domain.ProductQuery{
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	page, err := h.projects.Products(c.Request.Context(), currentUser(c), c.Param("id"), q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   page.Products,
		"pagination": page.Pagination,
		"filters": gin.H{
			"category": q.Category,
			"search":   q.Search,
		},
	})
}

// queryInt returns 0 for a missing or malformed parameter
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
