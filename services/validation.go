package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/defis-ete/backend/models"
)

var (
	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = errors.New("invalid validation status")
	// ErrTransitionNotAllowed is returned when the transition table rejects
	// a status change.
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	// ErrChecklistIncomplete is returned when the checklist policy blocks an
	// approval while entries remain unfulfilled.
	ErrChecklistIncomplete = errors.New("all unlock conditions must be fulfilled before approval")
)

// EnsureValidation returns the validation record for (campaign, user),
// creating it with status pending on first view. The insert is guarded by the
// unique (campaign_id, user_id) index so concurrent first views settle on a
// single row. The checklist is seeded in the same transaction, one entry per
// unlock condition the campaign currently has; conditions added to the
// campaign later are seeded on the next call.
func EnsureValidation(db *gorm.DB, campaignID, userID uint) (*models.CampaignValidation, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		v := models.CampaignValidation{
			CampaignID: campaignID,
			UserID:     userID,
			Status:     models.StatusPending,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&v).Error; err != nil {
			return err
		}
		// Re-read: on conflict the in-memory struct has no ID.
		if err := tx.Where("campaign_id = ? AND user_id = ?", campaignID, userID).First(&v).Error; err != nil {
			return err
		}

		var conditions []models.UnlockCondition
		if err := tx.Where("campaign_id = ?", campaignID).
			Order("display_order ASC").
			Find(&conditions).Error; err != nil {
			return err
		}
		for _, cond := range conditions {
			entry := models.CampaignValidationCondition{
				ValidationID: v.ID,
				ConditionID:  cond.ID,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetValidation(db, campaignID, userID)
}

// GetValidation loads an existing validation with its checklist, ordered by
// the conditions' display order.
func GetValidation(db *gorm.DB, campaignID, userID uint) (*models.CampaignValidation, error) {
	var v models.CampaignValidation
	err := db.Where("campaign_id = ? AND user_id = ?", campaignID, userID).
		Preload("Conditions", func(tx *gorm.DB) *gorm.DB {
			return tx.Joins("JOIN unlock_conditions ON unlock_conditions.id = campaign_validation_conditions.condition_id").
				Order("unlock_conditions.display_order ASC")
		}).
		Preload("Conditions.Condition").
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ApplyStatus transitions the aggregate status of a validation. All six
// transitions between valid statuses are legal (manual override tool); the
// rule lives in models.CanTransition. Reviewer identity and timestamp are
// recorded when leaving pending and cleared when returning to it. When
// requireChecklist is set, approval is refused while any checklist entry is
// unfulfilled.
func ApplyStatus(db *gorm.DB, v *models.CampaignValidation, to models.ValidationStatus, comment string, reviewerID uint, requireChecklist bool) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if !models.CanTransition(v.Status, to) {
		return ErrTransitionNotAllowed
	}
	if requireChecklist && to == models.StatusApproved {
		var unfulfilled int64
		if err := db.Model(&models.CampaignValidationCondition{}).
			Where("validation_id = ? AND is_fulfilled = ?", v.ID, false).
			Count(&unfulfilled).Error; err != nil {
			return err
		}
		if unfulfilled > 0 {
			return ErrChecklistIncomplete
		}
	}

	v.Status = to
	v.Comment = comment
	if to == models.StatusPending {
		v.ValidatedBy = nil
		v.ValidatedAt = nil
	} else {
		now := time.Now()
		v.ValidatedBy = &reviewerID
		v.ValidatedAt = &now
	}
	return db.Save(v).Error
}

// ToggleChecklistEntry flips one checklist entry. Fulfiller identity and
// timestamp are stamped on false→true and cleared on true→false. The parent
// validation's aggregate status is deliberately left untouched: approval is a
// distinct, explicit reviewer action.
func ToggleChecklistEntry(db *gorm.DB, entry *models.CampaignValidationCondition, fulfilled bool, reviewerID uint) error {
	entry.IsFulfilled = fulfilled
	if fulfilled {
		now := time.Now()
		entry.FulfilledBy = &reviewerID
		entry.FulfilledAt = &now
	} else {
		entry.FulfilledBy = nil
		entry.FulfilledAt = nil
	}
	return db.Save(entry).Error
}
