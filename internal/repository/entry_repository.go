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

// EntryRepository manages persistence for logged sessions.
type EntryRepository struct {
	db *sqlx.DB
}

// NewEntryRepository constructs a new repository.
func NewEntryRepository(db *sqlx.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

const entryDetailColumns = `e.id, e.user_id, e.activity_id, e.start_at, e.end_at, e.duration_min, e.origin, e.notes, e.created_at, e.updated_at,
a.title AS activity_title, a.category, a.polarity, a.base_units, a.weights, a.caps`

// List returns entries joined with their activity, per provided filter.
func (r *EntryRepository) List(ctx context.Context, filter models.EntryFilter) ([]models.EntryDetail, int, error) {
	base := "FROM entries e JOIN activities a ON a.id = e.activity_id"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.UserID != "" {
		where = append(where, fmt.Sprintf("e.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.ActivityID != "" {
		where = append(where, fmt.Sprintf("e.activity_id = $%d", len(args)+1))
		args = append(args, filter.ActivityID)
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("e.end_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("e.start_at < $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.Origin != nil {
		where = append(where, fmt.Sprintf("e.origin = $%d", len(args)+1))
		args = append(args, *filter.Origin)
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
	query := fmt.Sprintf(`SELECT %s
%s WHERE %s ORDER BY e.start_at DESC, e.created_at DESC LIMIT %d OFFSET %d`, entryDetailColumns, base, whereClause, size, offset)
	var entries []models.EntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}
	return entries, total, nil
}

// FindByID returns a single entry with its activity detail.
func (r *EntryRepository) FindByID(ctx context.Context, id string) (*models.EntryDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries e JOIN activities a ON a.id = e.activity_id WHERE e.id = $1 LIMIT 1`, entryDetailColumns)
	var entry models.EntryDetail
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find entry: %w", err)
	}
	return &entry, nil
}

// ListDetailTouching returns every entry of a user whose span overlaps
// [from, to), joined with the activity fields aggregation needs. Ordered by
// start time ascending so replays are deterministic.
func (r *EntryRepository) ListDetailTouching(ctx context.Context, userID string, from, to time.Time) ([]models.EntryDetail, error) {
	query := fmt.Sprintf(`SELECT %s
FROM entries e JOIN activities a ON a.id = e.activity_id
WHERE e.user_id = $1 AND e.start_at < $3 AND e.end_at >= $2
ORDER BY e.start_at ASC, e.created_at ASC`, entryDetailColumns)
	var entries []models.EntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("list entries touching window: %w", err)
	}
	return entries, nil
}

// ListAllDetail returns the full per-user history in chronological order.
// Used by progression rebuilds.
func (r *EntryRepository) ListAllDetail(ctx context.Context, userID string) ([]models.EntryDetail, error) {
	query := fmt.Sprintf(`SELECT %s
FROM entries e JOIN activities a ON a.id = e.activity_id
WHERE e.user_id = $1
ORDER BY e.start_at ASC, e.created_at ASC`, entryDetailColumns)
	var entries []models.EntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("list entry history: %w", err)
	}
	return entries, nil
}

// Create inserts a new entry.
func (r *EntryRepository) Create(ctx context.Context, entry *models.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	query := `INSERT INTO entries (id, user_id, activity_id, start_at, end_at, duration_min, origin, notes, created_at, updated_at)
VALUES (:id, :user_id, :activity_id, :start_at, :end_at, :duration_min, :origin, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// Update modifies an existing entry.
func (r *EntryRepository) Update(ctx context.Context, entry *models.Entry) error {
	entry.UpdatedAt = time.Now().UTC()
	query := `UPDATE entries SET activity_id = :activity_id, start_at = :start_at, end_at = :end_at, duration_min = :duration_min, origin = :origin, notes = :notes, updated_at = :updated_at
WHERE id = :id AND user_id = :user_id`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return nil
}

// Delete removes an entry.
func (r *EntryRepository) Delete(ctx context.Context, id, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM entries WHERE id = $1 AND user_id = $2", id, userID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}
