package models

import (
	"time"

	"gorm.io/gorm"
)

// Trade status values. A trade is created OPEN and transitions to CLOSED
// exactly once, when it is exited.
const (
	TradeStatusOpen   = "OPEN"
	TradeStatusClosed = "CLOSED"
)

// Trade is one position lifecycle record in the journal.
//
// While the trade is OPEN all exit-derived fields (AvgExit, ExitDate,
// ExitTime, Commission, ProfitLoss, ProfitLossPercentage, Duration) are nil.
// They are set together when the trade is closed and never change afterwards.
type Trade struct {
	gorm.Model
	TradeDate time.Time `gorm:"not null" json:"tradeDate"`
	TradeTime string    `gorm:"not null" json:"tradeTime"` // HH:MM:SS

	AvgEntry           float64 `gorm:"not null" json:"avgEntry"`
	StopLoss           float64 `gorm:"not null" json:"stopLoss"`
	StopLossPercentage float64 `gorm:"not null" json:"stopLossPercentage"`
	Quantity           float64 `gorm:"not null" json:"quantity"`
	Amount             float64 `gorm:"not null" json:"amount"`

	Status    string `gorm:"not null;default:OPEN" json:"status"`
	Direction string `gorm:"not null" json:"direction"` // Long or Short, derived at create/update

	AvgExit              *float64   `json:"avgExit,omitempty"`
	ExitDate             *time.Time `json:"exitDate,omitempty"`
	ExitTime             *string    `json:"exitTime,omitempty"`
	Commission           *float64   `json:"commission,omitempty"`
	ProfitLoss           *float64   `json:"profitLoss,omitempty"`
	ProfitLossPercentage *float64   `json:"profitLossPercentage,omitempty"`
	Duration             *int       `json:"duration,omitempty"` // whole days, rounded up

	Notes string `json:"notes,omitempty"`

	CoinID     uint     `gorm:"not null;index" json:"coinId"`
	Coin       Coin     `json:"coin,omitempty"`
	StrategyID uint     `gorm:"not null;index" json:"strategyId"`
	Strategy   Strategy `json:"strategy,omitempty"`

	OrganizationID uint `gorm:"not null;index" json:"organizationId"`
	CreatedByID    uint `json:"createdById"`
	UpdatedByID    uint `json:"updatedById"`
}

// IsClosed reports whether the trade has been exited.
func (t *Trade) IsClosed() bool {
	return t.Status == TradeStatusClosed
}
