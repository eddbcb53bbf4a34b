package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/internal/dto"
	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
)

type attributeConfigRepository interface {
	ListConfigs(ctx context.Context) ([]models.AttributeConfig, error)
	UpsertConfig(ctx context.Context, config *models.AttributeConfig) error
}

// AttributeService manages the attribute constants table.
type AttributeService struct {
	repo      attributeConfigRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttributeService constructs an AttributeService.
func NewAttributeService(repo attributeConfigRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttributeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttributeService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns every attribute constant row.
func (s *AttributeService) List(ctx context.Context) ([]models.AttributeConfig, error) {
	configs, err := s.repo.ListConfigs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attribute configs")
	}
	return configs, nil
}

// Upsert writes one attribute constant row. Constants changes only affect
// results computed afterwards; users rebuild to restate history.
func (s *AttributeService) Upsert(ctx context.Context, req dto.UpsertAttributeConfigRequest) (*models.AttributeConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attribute config payload")
	}
	if req.ThresholdMax < req.ThresholdMin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "threshold_max must not be below threshold_min")
	}

	config := &models.AttributeConfig{
		Key:             req.Key,
		Unit:            req.Unit,
		PointsPerUnit:   req.PointsPerUnit,
		DailySaturation: req.DailySaturation,
		ThresholdMin:    req.ThresholdMin,
		ThresholdMax:    req.ThresholdMax,
	}
	if err := s.repo.UpsertConfig(ctx, config); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert attribute config")
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "progress:*")
	}
	return config, nil
}
