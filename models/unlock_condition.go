package models

import "time"

// MaxConditionDescriptionLen bounds the free text a manager may enter.
const MaxConditionDescriptionLen = 500

// UnlockCondition is one textual condition a participant must satisfy before
// their final payout is unlocked. DisplayOrder is kept as a dense 1..N
// sequence per campaign for stable rendering and numbering.
type UnlockCondition struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CampaignID   uint      `gorm:"uniqueIndex:idx_conditions_campaign_order,priority:1;not null" json:"campaign_id"`
	Description  string    `gorm:"size:500;not null" json:"description"`
	DisplayOrder int       `gorm:"uniqueIndex:idx_conditions_campaign_order,priority:2;not null" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
