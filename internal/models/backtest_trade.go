package models

import (
	"time"

	"gorm.io/gorm"
)

// BacktestTrade is a hypothetical trade recorded to evaluate a strategy
// without live capital. Entry, stop and exit are all known upfront, so
// there is no open/closed lifecycle; direction and the R-multiple are
// derived at create time and recomputed whenever a level changes.
type BacktestTrade struct {
	gorm.Model
	TradeDate time.Time `gorm:"not null" json:"tradeDate"`
	TradeTime string    `gorm:"not null" json:"tradeTime"` // HH:MM:SS

	Entry    float64 `gorm:"not null" json:"entry"`
	StopLoss float64 `gorm:"not null" json:"stopLoss"`
	Exit     float64 `gorm:"not null" json:"exit"`

	Direction string  `gorm:"not null" json:"direction"`
	RValue    float64 `gorm:"not null" json:"rValue"` // reward-to-risk multiple, 4 decimals

	Notes string `json:"notes,omitempty"`

	CoinID     uint     `gorm:"not null;index" json:"coinId"`
	Coin       Coin     `json:"coin,omitempty"`
	StrategyID uint     `gorm:"not null;index" json:"strategyId"`
	Strategy   Strategy `json:"strategy,omitempty"`

	OrganizationID uint `gorm:"not null;index" json:"organizationId"`
	CreatedByID    uint `json:"createdById"`
	UpdatedByID    uint `json:"updatedById"`
}
