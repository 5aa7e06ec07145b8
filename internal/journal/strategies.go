package journal

import (
	"context"
	"errors"
	"fmt"

	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StrategyService manages the strategy master catalog. Names are unique
// within an organization and a strategy cannot be deleted while trades
// reference it.
type StrategyService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewStrategyService creates a new StrategyService.
func NewStrategyService(db *gorm.DB, log *zap.Logger) *StrategyService {
	return &StrategyService{db: db, log: log}
}

// StrategyInput carries the editable fields of a strategy. Rules is stored
// opaquely; its shape is owned by the client.
type StrategyInput struct {
	Name        string
	Description string
	Rules       map[string]any
}

// Create adds a strategy to the organization's catalog.
func (s *StrategyService) Create(ctx context.Context, orgID uint, in StrategyInput) (*models.Strategy, error) {
	var existing models.Strategy
	err := s.db.WithContext(ctx).
		Where("name = ? AND organization_id = ?", in.Name, orgID).
		First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("strategy name %q: %w", in.Name, ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	strategy := models.Strategy{
		Name:           in.Name,
		Description:    in.Description,
		Rules:          in.Rules,
		OrganizationID: orgID,
	}
	if err := s.db.WithContext(ctx).Create(&strategy).Error; err != nil {
		return nil, fmt.Errorf("failed to create strategy: %w", err)
	}

	s.log.Info("Strategy created", zap.Uint("strategy_id", strategy.ID), zap.String("name", strategy.Name))
	return &strategy, nil
}

// List returns the organization's strategies ordered by name.
func (s *StrategyService) List(ctx context.Context, orgID uint) ([]models.Strategy, error) {
	var strategies []models.Strategy
	err := s.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("name asc").
		Find(&strategies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	return strategies, nil
}

// Get returns one strategy.
func (s *StrategyService) Get(ctx context.Context, orgID, id uint) (*models.Strategy, error) {
	var strategy models.Strategy
	err := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&strategy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("strategy %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &strategy, nil
}

// Update amends a strategy, re-checking name uniqueness on change.
func (s *StrategyService) Update(ctx context.Context, orgID, id uint, in StrategyInput) (*models.Strategy, error) {
	strategy, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" && in.Name != strategy.Name {
		var clash models.Strategy
		err := s.db.WithContext(ctx).
			Where("name = ? AND organization_id = ? AND id <> ?", in.Name, orgID, id).
			First(&clash).Error
		if err == nil {
			return nil, fmt.Errorf("strategy name %q: %w", in.Name, ErrConflict)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		strategy.Name = in.Name
	}
	if in.Description != "" {
		strategy.Description = in.Description
	}
	if in.Rules != nil {
		strategy.Rules = in.Rules
	}

	if err := s.db.WithContext(ctx).Save(strategy).Error; err != nil {
		return nil, fmt.Errorf("failed to update strategy: %w", err)
	}
	return strategy, nil
}

// Delete removes a strategy unless trades or backtest trades still
// reference it.
func (s *StrategyService) Delete(ctx context.Context, orgID, id uint) error {
	if _, err := s.Get(ctx, orgID, id); err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Trade{}).Where("strategy_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("strategy %d: %w", id, ErrReferenced)
	}
	if err := s.db.WithContext(ctx).Model(&models.BacktestTrade{}).Where("strategy_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("strategy %d: %w", id, ErrReferenced)
	}

	return s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&models.Strategy{}).Error
}
