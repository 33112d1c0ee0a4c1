package models

import "time"

// Campaign is a time-boxed challenge campaign created by a manager.
// Campaigns are archived rather than destroyed so historical validations
// stay intact.
type Campaign struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	StartDate      time.Time `gorm:"not null" json:"start_date"`
	EndDate        time.Time `gorm:"not null" json:"end_date"`
	Archived       bool      `gorm:"default:false" json:"archived"`
	BonusesEnabled bool      `gorm:"default:true" json:"bonuses_enabled"`
	CreatedBy      uint      `gorm:"index;not null" json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ContainsDate reports whether t falls inside the campaign window (inclusive).
func (c *Campaign) ContainsDate(t time.Time) bool {
	return !t.Before(c.StartDate) && !t.After(c.EndDate)
}
