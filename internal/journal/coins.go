package journal

import (
	"context"
	"errors"
	"fmt"

	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CoinService manages the coin master catalog. Symbols are unique within an
// organization and a coin cannot be deleted while trades reference it.
type CoinService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewCoinService creates a new CoinService.
func NewCoinService(db *gorm.DB, log *zap.Logger) *CoinService {
	return &CoinService{db: db, log: log}
}

// CoinInput carries the editable fields of a coin.
type CoinInput struct {
	Name        string
	Symbol      string
	Description string
}

// Create adds a coin to the organization's catalog.
func (s *CoinService) Create(ctx context.Context, orgID uint, in CoinInput) (*models.Coin, error) {
	var existing models.Coin
	err := s.db.WithContext(ctx).
		Where("symbol = ? AND organization_id = ?", in.Symbol, orgID).
		First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("coin symbol %q: %w", in.Symbol, ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	coin := models.Coin{
		Name:           in.Name,
		Symbol:         in.Symbol,
		Description:    in.Description,
		OrganizationID: orgID,
	}
	if err := s.db.WithContext(ctx).Create(&coin).Error; err != nil {
		return nil, fmt.Errorf("failed to create coin: %w", err)
	}

	s.log.Info("Coin created", zap.Uint("coin_id", coin.ID), zap.String("symbol", coin.Symbol))
	return &coin, nil
}

// List returns the organization's coins ordered by name.
func (s *CoinService) List(ctx context.Context, orgID uint) ([]models.Coin, error) {
	var coins []models.Coin
	err := s.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("name asc").
		Find(&coins).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list coins: %w", err)
	}
	return coins, nil
}

// Get returns one coin.
func (s *CoinService) Get(ctx context.Context, orgID, id uint) (*models.Coin, error) {
	var coin models.Coin
	err := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&coin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("coin %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &coin, nil
}

// Update amends a coin, re-checking symbol uniqueness on change.
func (s *CoinService) Update(ctx context.Context, orgID, id uint, in CoinInput) (*models.Coin, error) {
	coin, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if in.Symbol != "" && in.Symbol != coin.Symbol {
		var clash models.Coin
		err := s.db.WithContext(ctx).
			Where("symbol = ? AND organization_id = ? AND id <> ?", in.Symbol, orgID, id).
			First(&clash).Error
		if err == nil {
			return nil, fmt.Errorf("coin symbol %q: %w", in.Symbol, ErrConflict)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		coin.Symbol = in.Symbol
	}
	if in.Name != "" {
		coin.Name = in.Name
	}
	if in.Description != "" {
		coin.Description = in.Description
	}

	if err := s.db.WithContext(ctx).Save(coin).Error; err != nil {
		return nil, fmt.Errorf("failed to update coin: %w", err)
	}
	return coin, nil
}

// Delete removes a coin unless trades or backtest trades still reference it.
func (s *CoinService) Delete(ctx context.Context, orgID, id uint) error {
	if _, err := s.Get(ctx, orgID, id); err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Trade{}).Where("coin_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("coin %d: %w", id, ErrReferenced)
	}
	if err := s.db.WithContext(ctx).Model(&models.BacktestTrade{}).Where("coin_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("coin %d: %w", id, ErrReferenced)
	}

	return s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&models.Coin{}).Error
}
