package models

import "time"

// ValidationStatus is the aggregate review status of a campaign validation.
type ValidationStatus string

const (
	StatusPending  ValidationStatus = "pending"
	StatusApproved ValidationStatus = "approved"
	StatusRejected ValidationStatus = "rejected"
)

// Valid reports whether s is a known status value.
func (s ValidationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransition centralizes the status transition table. Every transition
// between valid statuses is currently allowed: review is a manual override
// tool, re-opening an approved record is legitimate. Future restrictions
// belong here and nowhere else.
func CanTransition(from, to ValidationStatus) bool {
	return from.Valid() && to.Valid()
}

// CampaignValidation is the single review record for one participant in one
// campaign. At most one row exists per (campaign, user) pair; rows are created
// lazily the first time a reviewer's dashboard sees the participant and are
// never hard-deleted.
type CampaignValidation struct {
	ID          uint                          `gorm:"primaryKey" json:"id"`
	CampaignID  uint                          `gorm:"uniqueIndex:idx_validations_campaign_user;not null" json:"campaign_id"`
	UserID      uint                          `gorm:"uniqueIndex:idx_validations_campaign_user;not null" json:"user_id"`
	Status      ValidationStatus              `gorm:"size:16;not null;default:'pending'" json:"status"`
	Comment     string                        `gorm:"type:text" json:"comment"`
	ValidatedBy *uint                         `json:"validated_by"`
	ValidatedAt *time.Time                    `json:"validated_at"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
	User        User                          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Conditions  []CampaignValidationCondition `gorm:"foreignKey:ValidationID;constraint:OnDelete:CASCADE;" json:"conditions"`
}

// CampaignValidationCondition is one checklist entry linking a validation to
// an unlock condition. Entries are seeded in lock-step with their parent, one
// per unlock condition the campaign had at creation time, and are toggled
// independently of the parent's aggregate status.
type CampaignValidationCondition struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ValidationID uint            `gorm:"uniqueIndex:idx_checklist_validation_condition;not null" json:"validation_id"`
	ConditionID  uint            `gorm:"uniqueIndex:idx_checklist_validation_condition;not null" json:"condition_id"`
	IsFulfilled  bool            `gorm:"default:false" json:"is_fulfilled"`
	FulfilledBy  *uint           `json:"fulfilled_by"`
	FulfilledAt  *time.Time      `json:"fulfilled_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Condition    UnlockCondition `gorm:"foreignKey:ConditionID;constraint:OnDelete:CASCADE;" json:"condition"`
}
