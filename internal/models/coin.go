package models

import "gorm.io/gorm"

// Coin represents a tradable coin, unique per organization by symbol.
type Coin struct {
	gorm.Model
	Name           string `gorm:"not null" json:"name"`
	Symbol         string `gorm:"uniqueIndex:idx_org_symbol;not null" json:"symbol"`
	Description    string `json:"description,omitempty"`
	OrganizationID uint   `gorm:"uniqueIndex:idx_org_symbol;not null" json:"organizationId"`
}
