package domain

import "time"

// ProjectStatus tracks where a project is in its analysis lifecycle
type ProjectStatus string

const (
	ProjectCreated        ProjectStatus = "created"
	ProjectAnalyzing      ProjectStatus = "analyzing"
	ProjectAnalyzed       ProjectStatus = "analyzed"
	ProjectAnalysisFailed ProjectStatus = "analysis_failed"
)

// ProjectSettings are per-project generation preferences
type ProjectSettings struct {
	AutoGenerate    bool     `json:"autoGenerate"`
	DefaultStyle    string   `json:"defaultStyle"`
	TargetPlatforms []string `json:"targetPlatforms"`
}

// ProjectStats summarises the last analysis
type ProjectStats struct {
	TotalProducts   int        `json:"totalProducts"`
	VideosGenerated int        `json:"videosGenerated"`
	LastScrapedAt   *time.Time `json:"lastScrapedAt"`
}

// Project is a website a user wants to analyse
type Project struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Name        string           `json:"name"`
	Website     string           `json:"website"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Status      ProjectStatus    `json:"status"`
	Error       string           `json:"error,omitempty"`
	Products    []ScrapedProduct `json:"products"`
	Settings    ProjectSettings  `json:"settings"`
	Stats       ProjectStats     `json:"stats"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Quota describes a user's project allowance
type Quota struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// CreateProjectRequest represents a project creation request
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Website     string `json:"website"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// UpdateProjectRequest carries the mutable project fields; nil means unchanged
type UpdateProjectRequest struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Settings    map[string]interface{} `json:"settings,omitempty"`
}

// ProductQuery filters and paginates a project's products
type ProductQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

// Pagination describes a page of results
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ProductPage is one page of a project's products
type ProductPage struct {
	Products   []ScrapedProduct `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

// RefreshResult reports what changed after re-analysing a project
type RefreshResult struct {
	Project       *Project `json:"project"`
	NewProducts   int      `json:"newProducts"`
	TotalProducts int      `json:"totalProducts"`
}
