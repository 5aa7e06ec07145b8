package models

import "gorm.io/gorm"

// Strategy represents a trading strategy, unique per organization by name.
// Rules is a schema-less document: its shape varies by strategy type
// (indicator lists, fib levels, timeframes) and is stored opaquely.
type Strategy struct {
	gorm.Model
	Name           string         `gorm:"uniqueIndex:idx_org_name;not null" json:"name"`
	Description    string         `json:"description,omitempty"`
	Rules          map[string]any `gorm:"serializer:json" json:"rules,omitempty"`
	OrganizationID uint           `gorm:"uniqueIndex:idx_org_name;not null" json:"organizationId"`
}
