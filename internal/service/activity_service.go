package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/internal/dto"
	"github.com/noah-isme/leveling-api/internal/engine"
	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
)

type activityRepository interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error)
	FindByID(ctx context.Context, id string) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id, userID string) error
	CountEntries(ctx context.Context, id string) (int, error)
}

// ActivityService manages the per-user activity catalog.
type ActivityService struct {
	repo      activityRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(repo activityRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ActivityService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the activities of a user.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error) {
	activities, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	return activities, total, nil
}

// Get returns one activity owned by the user.
func (s *ActivityService) Get(ctx context.Context, userID, id string) (*models.Activity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	if activity.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
	}
	return activity, nil
}

// Create defines a new catalog activity.
func (s *ActivityService) Create(ctx context.Context, userID string, req dto.CreateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	polarity := req.Polarity
	if polarity == "" {
		polarity = engine.PolarityPositive
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	activity := &models.Activity{
		UserID:    userID,
		Title:     req.Title,
		Category:  models.NormalizeCategory(req.Category),
		Polarity:  polarity,
		BaseUnits: req.BaseUnits,
		Weights:   models.WeightMap(req.Weights),
		Caps:      models.WeightMap(req.Caps),
		Active:    active,
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}

	s.invalidate(ctx, userID)
	return activity, nil
}

// Update edits a catalog activity. Weight changes do not rewrite history by
// themselves; callers schedule a progression rebuild when that matters.
func (s *ActivityService) Update(ctx context.Context, userID, id string, req dto.UpdateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	activity, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		activity.Title = *req.Title
	}
	if req.Category != nil {
		activity.Category = models.NormalizeCategory(*req.Category)
	}
	if req.Polarity != nil {
		activity.Polarity = *req.Polarity
	}
	if req.BaseUnits != nil {
		activity.BaseUnits = req.BaseUnits
	}
	if req.Weights != nil {
		activity.Weights = models.WeightMap(req.Weights)
	}
	if req.Caps != nil {
		activity.Caps = models.WeightMap(req.Caps)
	}
	if req.Active != nil {
		activity.Active = *req.Active
	}

	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
	}

	s.invalidate(ctx, userID)
	return activity, nil
}

// Delete removes an activity that has no logged entries.
func (s *ActivityService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	entries, err := s.repo.CountEntries(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check activity usage")
	}
	if entries > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("activity has %d logged entries; delete them first or deactivate the activity", entries))
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}

	s.invalidate(ctx, userID)
	return nil
}

func (s *ActivityService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("analytics:*:%s:*", userID))
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("progress:%s*", userID))
}
