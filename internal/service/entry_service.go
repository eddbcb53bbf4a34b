package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/internal/dto"
	"github.com/noah-isme/leveling-api/internal/engine"
	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
)

type entryRepository interface {
	List(ctx context.Context, filter models.EntryFilter) ([]models.EntryDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.EntryDetail, error)
	Create(ctx context.Context, entry *models.Entry) error
	Update(ctx context.Context, entry *models.Entry) error
	Delete(ctx context.Context, id, userID string) error
}

type entryActivityRepository interface {
	FindByID(ctx context.Context, id string) (*models.Activity, error)
}

type rebuildScheduler interface {
	Schedule(userID string)
}

// EntryService manages logged sessions. Every write schedules a progression
// rebuild and invalidates the reporting cache, so derived state follows the
// history instead of drifting from it.
type EntryService struct {
	repo       entryRepository
	activities entryActivityRepository
	scheduler  rebuildScheduler
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewEntryService constructs an EntryService.
func NewEntryService(repo entryRepository, activities entryActivityRepository, scheduler rebuildScheduler, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EntryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EntryService{repo: repo, activities: activities, scheduler: scheduler, cache: cache, validator: validate, logger: logger}
}

// List returns entries of a user joined with their activity.
func (s *EntryService) List(ctx context.Context, filter models.EntryFilter) ([]models.EntryDetail, int, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entries")
	}
	return entries, total, nil
}

// Get returns one entry owned by the user.
func (s *EntryService) Get(ctx context.Context, userID, id string) (*models.EntryDetail, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load entry")
	}
	if entry.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
	}
	return entry, nil
}

// Create logs a session and schedules the derived-state refresh.
func (s *EntryService) Create(ctx context.Context, userID string, req dto.CreateEntryRequest) (*models.EntryDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entry payload")
	}
	if !req.EndAt.After(req.StartAt) {
		return nil, appErrors.Clone(appErrors.ErrInvalidPeriod, "")
	}

	activity, err := s.activities.FindByID(ctx, req.ActivityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	if activity.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
	}
	if !activity.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "activity is inactive")
	}

	origin := req.Origin
	if origin == "" {
		origin = engine.OriginManual
	}

	entry := &models.Entry{
		UserID:      userID,
		ActivityID:  activity.ID,
		StartAt:     req.StartAt.UTC(),
		EndAt:       req.EndAt.UTC(),
		DurationMin: durationMinutes(req.StartAt, req.EndAt),
		Origin:      origin,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create entry")
	}

	s.afterWrite(ctx, userID)
	return s.Get(ctx, userID, entry.ID)
}

// Update edits a logged session anywhere in the history.
func (s *EntryService) Update(ctx context.Context, userID, id string, req dto.UpdateEntryRequest) (*models.EntryDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entry payload")
	}

	detail, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	entry := detail.Entry

	if req.ActivityID != nil && *req.ActivityID != entry.ActivityID {
		activity, err := s.activities.FindByID(ctx, *req.ActivityID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
		}
		if activity.UserID != userID {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		entry.ActivityID = activity.ID
	}
	if req.StartAt != nil {
		entry.StartAt = req.StartAt.UTC()
	}
	if req.EndAt != nil {
		entry.EndAt = req.EndAt.UTC()
	}
	if !entry.EndAt.After(entry.StartAt) {
		return nil, appErrors.Clone(appErrors.ErrInvalidPeriod, "")
	}
	entry.DurationMin = durationMinutes(entry.StartAt, entry.EndAt)
	if req.Origin != nil {
		entry.Origin = *req.Origin
	}
	if req.Notes != nil {
		entry.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, &entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update entry")
	}

	s.afterWrite(ctx, userID)
	return s.Get(ctx, userID, id)
}

// Delete removes a logged session.
func (s *EntryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete entry")
	}
	s.afterWrite(ctx, userID)
	return nil
}

func (s *EntryService) afterWrite(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("analytics:*:%s:*", userID))
	}
	if s.scheduler != nil {
		s.scheduler.Schedule(userID)
	}
}

func durationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}
