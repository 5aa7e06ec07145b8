package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trade-journal-go/internal/analytics"
	"trade-journal-go/internal/metrics"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TradeService manages the position lifecycle: create OPEN, update while
// OPEN, exit to CLOSED exactly once, delete any time.
type TradeService struct {
	db   *gorm.DB
	log  *zap.Logger
	fees metrics.Fees
}

// NewTradeService creates a new TradeService.
func NewTradeService(db *gorm.DB, log *zap.Logger, fees metrics.Fees) *TradeService {
	return &TradeService{db: db, log: log, fees: fees}
}

// CreateTradeInput carries the fields of a new trade. All prices and sizes
// are validated as positive at the HTTP boundary.
type CreateTradeInput struct {
	TradeDate          time.Time
	TradeTime          string
	AvgEntry           float64
	StopLoss           float64
	StopLossPercentage float64
	Quantity           float64
	Amount             float64
	Notes              string
	CoinID             uint
	StrategyID         uint
}

// Create records a new OPEN trade. Direction is derived from entry vs stop
// and persisted immediately; all exit-derived fields stay unset.
func (s *TradeService) Create(ctx context.Context, orgID, userID uint, in CreateTradeInput) (*models.Trade, error) {
	if err := coinInOrg(ctx, s.db, orgID, in.CoinID); err != nil {
		return nil, err
	}
	if err := strategyInOrg(ctx, s.db, orgID, in.StrategyID); err != nil {
		return nil, err
	}

	trade := models.Trade{
		TradeDate:          in.TradeDate,
		TradeTime:          in.TradeTime,
		AvgEntry:           in.AvgEntry,
		StopLoss:           in.StopLoss,
		StopLossPercentage: in.StopLossPercentage,
		Quantity:           in.Quantity,
		Amount:             in.Amount,
		Status:             models.TradeStatusOpen,
		Direction:          string(metrics.DirectionOf(in.AvgEntry, in.StopLoss)),
		Notes:              in.Notes,
		CoinID:             in.CoinID,
		StrategyID:         in.StrategyID,
		OrganizationID:     orgID,
		CreatedByID:        userID,
		UpdatedByID:        userID,
	}

	if err := s.db.WithContext(ctx).Create(&trade).Error; err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	s.log.Info("Trade created",
		zap.Uint("trade_id", trade.ID),
		zap.Uint("org_id", orgID),
		zap.String("direction", trade.Direction))

	return s.load(ctx, orgID, trade.ID)
}

// ListTradesInput holds the filters, pagination and sorting of a list query.
// Zero values mean "no filter".
type ListTradesInput struct {
	Status     string
	CoinID     uint
	StrategyID uint
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

// Columns accepted for sorting list queries.
var tradeSortColumns = map[string]bool{
	"trade_date":  true,
	"created_at":  true,
	"profit_loss": true,
	"amount":      true,
	"id":          true,
}

// List returns one page of trades matching the filters.
func (s *TradeService) List(ctx context.Context, orgID uint, in ListTradesInput) ([]models.Trade, Pagination, error) {
	q := s.db.WithContext(ctx).Model(&models.Trade{}).Where("organization_id = ?", orgID)

	if in.Status != "" {
		q = q.Where("status = ?", in.Status)
	}
	if in.CoinID != 0 {
		q = q.Where("coin_id = ?", in.CoinID)
	}
	if in.StrategyID != 0 {
		q = q.Where("strategy_id = ?", in.StrategyID)
	}
	if in.DateFrom != nil {
		q = q.Where("trade_date >= ?", *in.DateFrom)
	}
	if in.DateTo != nil {
		q = q.Where("trade_date <= ?", *in.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count trades: %w", err)
	}

	page := paginate(in.Page, in.Limit, total)

	sortBy := in.SortBy
	if !tradeSortColumns[sortBy] {
		sortBy = "trade_date"
	}
	order := "desc"
	if in.SortOrder == "asc" {
		order = "asc"
	}

	var trades []models.Trade
	err := q.Preload("Coin").Preload("Strategy").
		Order(fmt.Sprintf("%s %s", sortBy, order)).
		Offset((page.Page - 1) * page.Limit).
		Limit(page.Limit).
		Find(&trades).Error
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list trades: %w", err)
	}

	return trades, page, nil
}

// TradeDetail is a trade together with its derived metrics. For open trades
// the derived figures are a preview; nothing is persisted until exit.
type TradeDetail struct {
	models.Trade
	Derived metrics.TradeMetrics `json:"derived"`
}

// Get returns one trade with its derived metrics.
func (s *TradeService) Get(ctx context.Context, orgID, id uint) (*TradeDetail, error) {
	trade, err := s.load(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	derived := metrics.ComputeTradeMetrics(metrics.TradeInput{
		AvgEntry:           trade.AvgEntry,
		StopLoss:           trade.StopLoss,
		StopLossPercentage: trade.StopLossPercentage,
		Amount:             trade.Amount,
		AvgExit:            trade.AvgExit,
		TradeDate:          trade.TradeDate,
		ExitDate:           trade.ExitDate,
	}, s.fees)

	return &TradeDetail{Trade: *trade, Derived: derived}, nil
}

// UpdateTradeInput holds the fields that may change while a trade is OPEN.
// Nil pointers leave the stored value untouched.
type UpdateTradeInput struct {
	TradeDate          *time.Time
	TradeTime          *string
	AvgEntry           *float64
	StopLoss           *float64
	StopLossPercentage *float64
	Quantity           *float64
	Amount             *float64
	Notes              *string
	CoinID             *uint
	StrategyID         *uint
}

// Update amends an OPEN trade. Closed trades are immutable.
func (s *TradeService) Update(ctx context.Context, orgID, userID, id uint, in UpdateTradeInput) (*models.Trade, error) {
	trade, err := s.load(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if trade.IsClosed() {
		return nil, fmt.Errorf("update trade %d: %w", id, ErrTradeClosed)
	}

	if in.CoinID != nil {
		if err := coinInOrg(ctx, s.db, orgID, *in.CoinID); err != nil {
			return nil, err
		}
	}
	if in.StrategyID != nil {
		if err := strategyInOrg(ctx, s.db, orgID, *in.StrategyID); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{"updated_by_id": userID}
	if in.TradeDate != nil {
		updates["trade_date"] = *in.TradeDate
	}
	if in.TradeTime != nil {
		updates["trade_time"] = *in.TradeTime
	}
	if in.Quantity != nil {
		updates["quantity"] = *in.Quantity
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if in.CoinID != nil {
		updates["coin_id"] = *in.CoinID
	}
	if in.StrategyID != nil {
		updates["strategy_id"] = *in.StrategyID
	}

	// Direction follows the effective entry/stop pair.
	entry, stop := trade.AvgEntry, trade.StopLoss
	if in.AvgEntry != nil {
		entry = *in.AvgEntry
		updates["avg_entry"] = entry
	}
	if in.StopLoss != nil {
		stop = *in.StopLoss
		updates["stop_loss"] = stop
	}
	if in.AvgEntry != nil || in.StopLoss != nil {
		updates["direction"] = string(metrics.DirectionOf(entry, stop))
	}
	if in.StopLossPercentage != nil {
		updates["stop_loss_percentage"] = *in.StopLossPercentage
	}
	if in.Amount != nil {
		updates["amount"] = *in.Amount
	}

	err = s.db.WithContext(ctx).Model(&models.Trade{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}

	return s.load(ctx, orgID, id)
}

// ExitTradeInput holds the exit details supplied when closing a trade.
type ExitTradeInput struct {
	AvgExit  float64
	ExitDate time.Time
	ExitTime string
	Notes    *string
}

// Exit closes an OPEN trade, computing and persisting commission, P&L and
// duration. The status transition runs as a conditional update on OPEN so
// two concurrent exits cannot both succeed.
func (s *TradeService) Exit(ctx context.Context, orgID, userID, id uint, in ExitTradeInput) (*models.Trade, error) {
	trade, err := s.load(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if trade.IsClosed() {
		return nil, fmt.Errorf("exit trade %d: %w", id, ErrTradeClosed)
	}
	if in.ExitDate.Before(trade.TradeDate) {
		return nil, fmt.Errorf("exit trade %d: %w", id, ErrInvalidExitDate)
	}

	m := metrics.ComputeTradeMetrics(metrics.TradeInput{
		AvgEntry:           trade.AvgEntry,
		StopLoss:           trade.StopLoss,
		StopLossPercentage: trade.StopLossPercentage,
		Amount:             trade.Amount,
		AvgExit:            &in.AvgExit,
		TradeDate:          trade.TradeDate,
		ExitDate:           &in.ExitDate,
	}, s.fees)

	updates := map[string]any{
		"avg_exit":               in.AvgExit,
		"exit_date":              in.ExitDate,
		"exit_time":              in.ExitTime,
		"status":                 models.TradeStatusClosed,
		"commission":             *m.Commission,
		"profit_loss":            *m.ProfitLoss,
		"profit_loss_percentage": *m.ProfitLossPercentage,
		"duration":               *m.Duration,
		"updated_by_id":          userID,
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}

	res := s.db.WithContext(ctx).Model(&models.Trade{}).
		Where("id = ? AND organization_id = ? AND status = ?", id, orgID, models.TradeStatusOpen).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to exit trade: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race: another request closed the trade first.
		return nil, fmt.Errorf("exit trade %d: %w", id, ErrTradeClosed)
	}

	s.log.Info("Trade closed",
		zap.Uint("trade_id", id),
		zap.Uint("org_id", orgID),
		zap.Float64("profit_loss", *m.ProfitLoss))

	return s.load(ctx, orgID, id)
}

// Delete removes a trade of any status.
func (s *TradeService) Delete(ctx context.Context, orgID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&models.Trade{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete trade: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("trade %d: %w", id, ErrNotFound)
	}
	return nil
}

// AnalyticsFilter narrows the trade set fed to the aggregator.
type AnalyticsFilter struct {
	CoinID     uint
	StrategyID uint
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Analytics aggregates the organization's trades into performance
// statistics. Trades are ordered by id so best/worst tie-breaks are stable.
func (s *TradeService) Analytics(ctx context.Context, orgID uint, f AnalyticsFilter) (*analytics.Report, error) {
	q := s.db.WithContext(ctx).Model(&models.Trade{}).Where("organization_id = ?", orgID)

	if f.CoinID != 0 {
		q = q.Where("coin_id = ?", f.CoinID)
	}
	if f.StrategyID != 0 {
		q = q.Where("strategy_id = ?", f.StrategyID)
	}
	if f.DateFrom != nil {
		q = q.Where("trade_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("trade_date <= ?", *f.DateTo)
	}

	var trades []models.Trade
	if err := q.Preload("Coin").Preload("Strategy").Order("id asc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to load trades for analytics: %w", err)
	}

	report := analytics.Aggregate(trades)
	return &report, nil
}

// load fetches one trade with its associations, scoped to the organization.
func (s *TradeService) load(ctx context.Context, orgID, id uint) (*models.Trade, error) {
	var trade models.Trade
	err := s.db.WithContext(ctx).
		Preload("Coin").Preload("Strategy").
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&trade).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("trade %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &trade, nil
}
