package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopclip/backend/internal/domain"
)

const projectColumns = `id, user_id, name, website, category, description, status, error, products, settings, stats, created_at, updated_at`

// ProjectRepository stores projects; every read and write is scoped to the owner
type ProjectRepository struct {
	db *sql.DB
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type projectDocs struct {
	products, settings, stats string
}

func encodeProject(p *domain.Project) (projectDocs, error) {
	products := p.Products
	if products == nil {
		products = []domain.ScrapedProduct{}
	}
	pb, err := json.Marshal(products)
	if err != nil {
		return projectDocs{}, fmt.Errorf("projects: encode products: %w", err)
	}
	sb, err := json.Marshal(p.Settings)
	if err != nil {
		return projectDocs{}, fmt.Errorf("projects: encode settings: %w", err)
	}
	tb, err := json.Marshal(p.Stats)
	if err != nil {
		return projectDocs{}, fmt.Errorf("projects: encode stats: %w", err)
	}
	return projectDocs{products: string(pb), settings: string(sb), stats: string(tb)}, nil
}

// Create inserts project, assigning an ID and timestamps when missing.
// A second project with the same name (case-insensitive) for the same user
// returns domain.ErrProjectNameExists.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	docs, err := encodeProject(p)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, name, name_key, website, category, description, status, error,
		                       products, settings, stats, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, nameKey(p.Name), p.Website, p.Category, p.Description, string(p.Status), p.Error,
		docs.products, docs.settings, docs.stats, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrProjectNameExists
	}
	if err != nil {
		return fmt.Errorf("projects: insert: %w", err)
	}
	return nil
}

// GetByID loads a project owned by userID or returns domain.ErrProjectNotFound
func (r *ProjectRepository) GetByID(ctx context.Context, userID, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND user_id = ?`, id, userID)
	return scanProject(row)
}

// ListByUser returns the user's projects, newest first
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("projects: list: %w", err)
	}
	defer rows.Close()

	projects := []*domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("projects: list: %w", err)
	}
	return projects, nil
}

// CountByUser returns how many projects the user owns
func (r *ProjectRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("projects: count: %w", err)
	}
	return n, nil
}

// ExistsByName reports whether the user already has a project with this name
func (r *ProjectRepository) ExistsByName(ctx context.Context, userID, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE user_id = ? AND name_key = ?`, userID, nameKey(name)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("projects: exists: %w", err)
	}
	return n > 0, nil
}

// Update persists every mutable field and bumps UpdatedAt
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	p.UpdatedAt = time.Now()
	docs, err := encodeProject(p)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE projects
		    SET name = ?, name_key = ?, website = ?, category = ?, description = ?, status = ?, error = ?,
		        products = ?, settings = ?, stats = ?, updated_at = ?
		  WHERE id = ? AND user_id = ?`,
		p.Name, nameKey(p.Name), p.Website, p.Category, p.Description, string(p.Status), p.Error,
		docs.products, docs.settings, docs.stats, formatTime(p.UpdatedAt), p.ID, p.UserID,
	)
	if isUniqueViolation(err) {
		return domain.ErrProjectNameExists
	}
	if err != nil {
		return fmt.Errorf("projects: update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// Delete removes a project owned by userID
func (r *ProjectRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("projects: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p                         domain.Project
		status                    string
		products, settings, stats string
		createdAt, updatedAt      string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Website, &p.Category, &p.Description, &status, &p.Error,
		&products, &settings, &stats, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("projects: scan: %w", err)
	}

	p.Status = domain.ProjectStatus(status)
	if err := json.Unmarshal([]byte(products), &p.Products); err != nil {
		return nil, fmt.Errorf("projects: decode products: %w", err)
	}
	if err := json.Unmarshal([]byte(settings), &p.Settings); err != nil {
		return nil, fmt.Errorf("projects: decode settings: %w", err)
	}
	if err := json.Unmarshal([]byte(stats), &p.Stats); err != nil {
		return nil, fmt.Errorf("projects: decode stats: %w", err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("projects: created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("projects: updated_at: %w", err)
	}
	return &p, nil
}
