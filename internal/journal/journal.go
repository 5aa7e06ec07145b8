// Package journal implements the organization-scoped services behind the
// API: trade lifecycle, backtest records, and the coin/strategy masters.
// Every query is scoped by organization id; callers obtain that id from the
// authenticated request context.
package journal

import (
	"context"
	"errors"
	"fmt"

	"trade-journal-go/internal/models"

	"gorm.io/gorm"
)

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

func paginate(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// coinInOrg verifies the coin exists and belongs to the organization.
func coinInOrg(ctx context.Context, db *gorm.DB, orgID, coinID uint) error {
	var coin models.Coin
	err := db.WithContext(ctx).Where("id = ? AND organization_id = ?", coinID, orgID).First(&coin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("coin %d: %w", coinID, ErrNotFound)
	}
	return err
}

// strategyInOrg verifies the strategy exists and belongs to the organization.
func strategyInOrg(ctx context.Context, db *gorm.DB, orgID, strategyID uint) error {
	var strategy models.Strategy
	err := db.WithContext(ctx).Where("id = ? AND organization_id = ?", strategyID, orgID).First(&strategy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("strategy %d: %w", strategyID, ErrNotFound)
	}
	return err
}
