package models

import "gorm.io/gorm"

// Organization is the tenant boundary. Every coin, strategy and trade
// belongs to exactly one organization and is never shared across tenants.
type Organization struct {
	gorm.Model
	Name string `gorm:"not null" json:"name"`
}
