package services

import (
	"math"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/defis-ete/backend/models"
)

// EarningsSnapshot is the derived earnings view joined onto a validation for
// display. It is recomputed on every fetch and never persisted or cached.
type EarningsSnapshot struct {
	CampaignEarnings     decimal.Decimal `json:"campaign_earnings"`
	TotalBonusAmount     decimal.Decimal `json:"total_bonus_amount"`
	TotalEarnings        decimal.Decimal `json:"total_earnings"`
	CompletedChallenges  int             `json:"completed_challenges"`
	TotalChallenges      int             `json:"total_challenges"`
	CompletionPercentage int             `json:"completion_percentage"`
}

// ComputeEarnings sums the payouts of every challenge the participant
// completed in the campaign plus their approved daily bonuses. Amounts are
// summed as decimals; floats never touch the money path.
func ComputeEarnings(db *gorm.DB, campaignID, userID uint) (EarningsSnapshot, error) {
	var snap EarningsSnapshot
	snap.CampaignEarnings = decimal.Zero
	snap.TotalBonusAmount = decimal.Zero

	var totalChallenges int64
	if err := db.Model(&models.Challenge{}).
		Where("campaign_id = ?", campaignID).
		Count(&totalChallenges).Error; err != nil {
		return snap, err
	}
	snap.TotalChallenges = int(totalChallenges)

	var values []decimal.Decimal
	if err := db.Model(&models.UserAction{}).
		Joins("JOIN challenges ON challenges.id = user_actions.challenge_id").
		Where("challenges.campaign_id = ? AND user_actions.user_id = ? AND user_actions.completed = ?", campaignID, userID, true).
		Pluck("challenges.value_euro", &values).Error; err != nil {
		return snap, err
	}
	snap.CompletedChallenges = len(values)
	for _, v := range values {
		snap.CampaignEarnings = snap.CampaignEarnings.Add(v)
	}

	var bonuses []decimal.Decimal
	if err := db.Model(&models.DailyBonus{}).
		Where("campaign_id = ? AND user_id = ? AND status = ?", campaignID, userID, models.StatusApproved).
		Pluck("amount", &bonuses).Error; err != nil {
		return snap, err
	}
	for _, b := range bonuses {
		snap.TotalBonusAmount = snap.TotalBonusAmount.Add(b)
	}

	snap.TotalEarnings = snap.CampaignEarnings.Add(snap.TotalBonusAmount)
	if snap.TotalChallenges > 0 {
		snap.CompletionPercentage = int(math.Round(float64(snap.CompletedChallenges) * 100 / float64(snap.TotalChallenges)))
	}
	return snap, nil
}
