package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/defis-ete/backend/models"
)

// ErrBadConditionDescription is returned for an empty or oversized
// condition description.
var ErrBadConditionDescription = errors.New("condition description must be non-empty and at most 500 characters")

// ListConditions returns the campaign's unlock conditions in display order.
func ListConditions(db *gorm.DB, campaignID uint) ([]models.UnlockCondition, error) {
	var conditions []models.UnlockCondition
	err := db.Where("campaign_id = ?", campaignID).
		Order("display_order ASC").
		Find(&conditions).Error
	return conditions, err
}

// ReplaceConditions transactionally replaces the full ordered condition set
// of a campaign (delete-then-insert). Display order is recomputed as a dense
// 1..N sequence from the incoming list order, so reordering never leaves gaps
// or duplicates. Checklist entries of the removed conditions are cascaded
// away; entries for the new set are re-seeded lazily on the next dashboard
// view.
func ReplaceConditions(db *gorm.DB, campaignID uint, descriptions []string) ([]models.UnlockCondition, error) {
	cleaned := make([]string, 0, len(descriptions))
	for _, d := range descriptions {
		d = strings.TrimSpace(d)
		if d == "" || len([]rune(d)) > models.MaxConditionDescriptionLen {
			return nil, ErrBadConditionDescription
		}
		cleaned = append(cleaned, d)
	}

	var result []models.UnlockCondition
	err := db.Transaction(func(tx *gorm.DB) error {
		var oldIDs []uint
		if err := tx.Model(&models.UnlockCondition{}).
			Where("campaign_id = ?", campaignID).
			Pluck("id", &oldIDs).Error; err != nil {
			return err
		}
		if len(oldIDs) > 0 {
			if err := tx.Where("condition_id IN ?", oldIDs).
				Delete(&models.CampaignValidationCondition{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", oldIDs).
				Delete(&models.UnlockCondition{}).Error; err != nil {
				return err
			}
		}
		for i, d := range cleaned {
			cond := models.UnlockCondition{
				CampaignID:   campaignID,
				Description:  d,
				DisplayOrder: i + 1,
			}
			if err := tx.Create(&cond).Error; err != nil {
				return err
			}
			result = append(result, cond)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteCondition removes one condition, cascades its checklist entries and
// renumbers the campaign's remaining conditions back to a dense 1..N
// sequence.
func DeleteCondition(db *gorm.DB, conditionID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var cond models.UnlockCondition
		if err := tx.First(&cond, conditionID).Error; err != nil {
			return err
		}
		if err := tx.Where("condition_id = ?", cond.ID).
			Delete(&models.CampaignValidationCondition{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&cond).Error; err != nil {
			return err
		}

		var remaining []models.UnlockCondition
		if err := tx.Where("campaign_id = ?", cond.CampaignID).
			Order("display_order ASC").
			Find(&remaining).Error; err != nil {
			return err
		}
		for i := range remaining {
			if remaining[i].DisplayOrder != i+1 {
				if err := tx.Model(&remaining[i]).
					Update("display_order", i+1).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
