package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole classifies an account within the team hierarchy.
type UserRole string

const (
	// RoleFBO is a field operator who completes challenges and submits bonuses.
	RoleFBO UserRole = "fbo"
	// RoleManager reviews the validations of their own reporting hierarchy.
	RoleManager UserRole = "manager"
	// RoleMarraine is a super-manager who may act on any hierarchy.
	RoleMarraine UserRole = "marraine"
)

// User represents an account. Passwords are stored as bcrypt hashes only.
// ManagerID links a member to their direct manager; the reporting hierarchy
// is the transitive closure of that link.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:64;not null" json:"name"`
	Email        string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         UserRole       `gorm:"size:16;not null;default:'fbo'" json:"role"`
	ManagerID    *uint          `gorm:"index" json:"manager_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsReviewer reports whether the user may review validations and bonuses.
func (u *User) IsReviewer() bool {
	return u.Role == RoleManager || u.Role == RoleMarraine
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
