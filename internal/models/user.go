package models

import "gorm.io/gorm"

// User is a member of an organization. The password is stored as a bcrypt hash.
type User struct {
	gorm.Model
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string `gorm:"not null" json:"-"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	OrganizationID uint   `gorm:"not null" json:"organizationId"`
}
