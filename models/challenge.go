package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Challenge is a daily challenge inside a campaign, worth a fixed payout.
type Challenge struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CampaignID  uint            `gorm:"index;not null" json:"campaign_id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Date        time.Time       `gorm:"not null" json:"date"`
	ValueEuro   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"value_euro"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Campaign    Campaign        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// UserAction records a participant completing a challenge. At most one row
// exists per (challenge, user) pair.
type UserAction struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ChallengeID uint       `gorm:"uniqueIndex:idx_actions_challenge_user;not null" json:"challenge_id"`
	UserID      uint       `gorm:"uniqueIndex:idx_actions_challenge_user;not null" json:"user_id"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	ProofRef    string     `gorm:"size:36" json:"proof_ref"`
	ProofURL    string     `gorm:"size:512" json:"proof_url"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Challenge   Challenge  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
