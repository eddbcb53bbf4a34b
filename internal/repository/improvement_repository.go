package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/leveling-api/internal/models"
)

// ImprovementRepository manages persistence for improvement requests.
type ImprovementRepository struct {
	db *sqlx.DB
}

// NewImprovementRepository constructs a new repository.
func NewImprovementRepository(db *sqlx.DB) *ImprovementRepository {
	return &ImprovementRepository{db: db}
}

// statusOrder puts actionable requests before settled ones.
const statusOrder = `CASE status
WHEN 'in_progress' THEN 0
WHEN 'open' THEN 1
WHEN 'resolved' THEN 2
ELSE 3
END`

// List returns improvement requests, actionable ones first and newest within
// each status.
func (r *ImprovementRepository) List(ctx context.Context, filter models.ImprovementFilter) ([]models.Improvement, int, error) {
	base := "FROM improvement_requests"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.UserID != "" {
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	whereClause := strings.Join(where, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size
	query := fmt.Sprintf(`SELECT id, user_id, status, title, description, created_at
%s WHERE %s ORDER BY %s, created_at DESC LIMIT %d OFFSET %d`, base, whereClause, statusOrder, size, offset)
	var improvements []models.Improvement
	if err := r.db.SelectContext(ctx, &improvements, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list improvements: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count improvements: %w", err)
	}
	return improvements, total, nil
}

// FindByID returns a single improvement request by identifier.
func (r *ImprovementRepository) FindByID(ctx context.Context, id string) (*models.Improvement, error) {
	const query = `SELECT id, user_id, status, title, description, created_at FROM improvement_requests WHERE id = $1 LIMIT 1`
	var improvement models.Improvement
	if err := r.db.GetContext(ctx, &improvement, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find improvement: %w", err)
	}
	return &improvement, nil
}

// Create inserts a new improvement request.
func (r *ImprovementRepository) Create(ctx context.Context, improvement *models.Improvement) error {
	if improvement.ID == "" {
		improvement.ID = uuid.NewString()
	}
	if improvement.CreatedAt.IsZero() {
		improvement.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO improvement_requests (id, user_id, status, title, description, created_at)
VALUES (:id, :user_id, :status, :title, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, improvement); err != nil {
		return fmt.Errorf("create improvement: %w", err)
	}
	return nil
}

// Update modifies an existing improvement request.
func (r *ImprovementRepository) Update(ctx context.Context, improvement *models.Improvement) error {
	query := `UPDATE improvement_requests SET status = :status, title = :title, description = :description
WHERE id = :id AND user_id = :user_id`
	if _, err := r.db.NamedExecContext(ctx, query, improvement); err != nil {
		return fmt.Errorf("update improvement: %w", err)
	}
	return nil
}

// Delete removes an improvement request.
func (r *ImprovementRepository) Delete(ctx context.Context, id, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM improvement_requests WHERE id = $1 AND user_id = $2", id, userID); err != nil {
		return fmt.Errorf("delete improvement: %w", err)
	}
	return nil
}
