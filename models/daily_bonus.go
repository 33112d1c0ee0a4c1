package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyBonus is an extra amount declared by a participant for one day of a
// campaign. Only bonuses a reviewer approved count toward earnings.
type DailyBonus struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	CampaignID uint             `gorm:"index;not null" json:"campaign_id"`
	UserID     uint             `gorm:"index;not null" json:"user_id"`
	BonusDate  time.Time        `gorm:"not null" json:"bonus_date"`
	Amount     decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"amount"`
	ProofURL   string           `gorm:"size:512" json:"proof_url"`
	Status     ValidationStatus `gorm:"size:16;not null;default:'pending'" json:"status"`
	Comment    string           `gorm:"type:text" json:"comment"`
	ReviewedBy *uint            `json:"reviewed_by"`
	ReviewedAt *time.Time       `json:"reviewed_at"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Campaign   Campaign         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
