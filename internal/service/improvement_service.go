package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/internal/dto"
	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
)

type improvementRepository interface {
	List(ctx context.Context, filter models.ImprovementFilter) ([]models.Improvement, int, error)
	FindByID(ctx context.Context, id string) (*models.Improvement, error)
	Create(ctx context.Context, improvement *models.Improvement) error
	Update(ctx context.Context, improvement *models.Improvement) error
	Delete(ctx context.Context, id, userID string) error
}

// ImprovementService manages user-filed improvement requests.
type ImprovementService struct {
	repo      improvementRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewImprovementService constructs an ImprovementService.
func NewImprovementService(repo improvementRepository, validate *validator.Validate, logger *zap.Logger) *ImprovementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ImprovementService{repo: repo, validator: validate, logger: logger}
}

// List returns the improvement requests of a user, actionable ones first.
func (s *ImprovementService) List(ctx context.Context, filter models.ImprovementFilter) ([]models.Improvement, int, error) {
	improvements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list improvements")
	}
	return improvements, total, nil
}

// Get returns one improvement request owned by the user.
func (s *ImprovementService) Get(ctx context.Context, userID, id string) (*models.Improvement, error) {
	improvement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "improvement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load improvement")
	}
	if improvement.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "improvement not found")
	}
	return improvement, nil
}

// Create files a new improvement request, open by default.
func (s *ImprovementService) Create(ctx context.Context, userID string, req dto.CreateImprovementRequest) (*models.Improvement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid improvement payload")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "improvement title must not be blank")
	}
	status := req.Status
	if status == "" {
		status = models.ImprovementOpen
	}

	improvement := &models.Improvement{
		UserID:      userID,
		Status:      status,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.repo.Create(ctx, improvement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create improvement")
	}
	return improvement, nil
}

// Update patches an improvement request.
func (s *ImprovementService) Update(ctx context.Context, userID, id string, req dto.UpdateImprovementRequest) (*models.Improvement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid improvement payload")
	}

	improvement, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "improvement title must not be blank")
		}
		improvement.Title = title
	}
	if req.Description != nil {
		improvement.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		improvement.Status = *req.Status
	}

	if err := s.repo.Update(ctx, improvement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update improvement")
	}
	return improvement, nil
}

// Delete removes an improvement request.
func (s *ImprovementService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete improvement")
	}
	return nil
}
