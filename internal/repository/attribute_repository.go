package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/leveling-api/internal/models"
)

// AttributeRepository manages attribute constants and per-user progression
// state.
type AttributeRepository struct {
	db *sqlx.DB
}

// NewAttributeRepository constructs a new repository.
func NewAttributeRepository(db *sqlx.DB) *AttributeRepository {
	return &AttributeRepository{db: db}
}

// ListConfigs returns every attribute constant row.
func (r *AttributeRepository) ListConfigs(ctx context.Context) ([]models.AttributeConfig, error) {
	const query = `SELECT key, unit, points_per_unit, daily_saturation, threshold_min, threshold_max FROM attribute_configs ORDER BY key ASC`
	var configs []models.AttributeConfig
	if err := r.db.SelectContext(ctx, &configs, query); err != nil {
		return nil, fmt.Errorf("list attribute configs: %w", err)
	}
	return configs, nil
}

// FindConfig returns one attribute constant row by key.
func (r *AttributeRepository) FindConfig(ctx context.Context, key string) (*models.AttributeConfig, error) {
	const query = `SELECT key, unit, points_per_unit, daily_saturation, threshold_min, threshold_max FROM attribute_configs WHERE key = $1 LIMIT 1`
	var config models.AttributeConfig
	if err := r.db.GetContext(ctx, &config, query, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attribute config: %w", err)
	}
	return &config, nil
}

// UpsertConfig writes an attribute constant row.
func (r *AttributeRepository) UpsertConfig(ctx context.Context, config *models.AttributeConfig) error {
	const query = `INSERT INTO attribute_configs (key, unit, points_per_unit, daily_saturation, threshold_min, threshold_max)
VALUES (:key, :unit, :points_per_unit, :daily_saturation, :threshold_min, :threshold_max)
ON CONFLICT (key) DO UPDATE SET unit = EXCLUDED.unit, points_per_unit = EXCLUDED.points_per_unit, daily_saturation = EXCLUDED.daily_saturation, threshold_min = EXCLUDED.threshold_min, threshold_max = EXCLUDED.threshold_max`
	if _, err := r.db.NamedExecContext(ctx, query, config); err != nil {
		return fmt.Errorf("upsert attribute config: %w", err)
	}
	return nil
}

// ListProgress returns the persisted progression state of one user.
func (r *AttributeRepository) ListProgress(ctx context.Context, userID string) ([]models.AttributeProgress, error) {
	const query = `SELECT user_id, attribute, tier, subtier, rp, last_update, promoted_at FROM attribute_progress WHERE user_id = $1 ORDER BY attribute ASC`
	var progress []models.AttributeProgress
	if err := r.db.SelectContext(ctx, &progress, query, userID); err != nil {
		return nil, fmt.Errorf("list attribute progress: %w", err)
	}
	return progress, nil
}

// UpsertProgress writes one attribute progression row.
func (r *AttributeRepository) UpsertProgress(ctx context.Context, progress *models.AttributeProgress) error {
	const query = `INSERT INTO attribute_progress (user_id, attribute, tier, subtier, rp, last_update, promoted_at)
VALUES (:user_id, :attribute, :tier, :subtier, :rp, :last_update, :promoted_at)
ON CONFLICT (user_id, attribute) DO UPDATE SET tier = EXCLUDED.tier, subtier = EXCLUDED.subtier, rp = EXCLUDED.rp, last_update = EXCLUDED.last_update, promoted_at = EXCLUDED.promoted_at`
	if _, err := r.db.NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("upsert attribute progress: %w", err)
	}
	return nil
}

// ReplaceProgress swaps the full progression state of a user inside a
// transaction. Used after rebuilds so readers never see a half-written set.
func (r *AttributeRepository) ReplaceProgress(ctx context.Context, userID string, progress []models.AttributeProgress) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace progress: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM attribute_progress WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("clear attribute progress: %w", err)
	}
	const insert = `INSERT INTO attribute_progress (user_id, attribute, tier, subtier, rp, last_update, promoted_at)
VALUES (:user_id, :attribute, :tier, :subtier, :rp, :last_update, :promoted_at)`
	for i := range progress {
		progress[i].UserID = userID
		if _, err := tx.NamedExecContext(ctx, insert, &progress[i]); err != nil {
			return fmt.Errorf("insert attribute progress: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace progress: %w", err)
	}
	return nil
}

// DeleteProgress resets the progression state of a user.
func (r *AttributeRepository) DeleteProgress(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM attribute_progress WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("delete attribute progress: %w", err)
	}
	return nil
}
