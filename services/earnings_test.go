package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/testutil"
)

func seedChallenge(t *testing.T, db *gorm.DB, campaignID uint, day int, value string) models.Challenge {
	t.Helper()
	ch := models.Challenge{
		CampaignID: campaignID,
		Title:      "Défi du jour",
		Date:       time.Date(2026, 7, day, 0, 0, 0, 0, time.UTC),
		ValueEuro:  decimal.RequireFromString(value),
	}
	require.NoError(t, db.Create(&ch).Error)
	return ch
}

func completeChallenge(t *testing.T, db *gorm.DB, challengeID, userID uint) {
	t.Helper()
	now := time.Now()
	action := models.UserAction{
		ChallengeID: challengeID,
		UserID:      userID,
		Completed:   true,
		CompletedAt: &now,
	}
	require.NoError(t, db.Create(&action).Error)
}

func TestComputeEarningsSumsChallengesAndApprovedBonuses(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 0)

	var challenges []models.Challenge
	for day := 1; day <= 5; day++ {
		challenges = append(challenges, seedChallenge(t, db, campaign.ID, day, "2.00"))
	}
	for _, ch := range challenges[:4] {
		completeChallenge(t, db, ch.ID, member.ID)
	}

	approved := models.DailyBonus{
		CampaignID: campaign.ID,
		UserID:     member.ID,
		BonusDate:  time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.RequireFromString("5.00"),
		Status:     models.StatusApproved,
	}
	require.NoError(t, db.Create(&approved).Error)

	pending := models.DailyBonus{
		CampaignID: campaign.ID,
		UserID:     member.ID,
		BonusDate:  time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.RequireFromString("99.00"),
		Status:     models.StatusPending,
	}
	require.NoError(t, db.Create(&pending).Error)

	snap, err := ComputeEarnings(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, 5, snap.TotalChallenges)
	require.Equal(t, 4, snap.CompletedChallenges)
	require.Equal(t, 80, snap.CompletionPercentage)
	require.True(t, snap.CampaignEarnings.Equal(decimal.RequireFromString("8.00")), "got %s", snap.CampaignEarnings)
	require.True(t, snap.TotalBonusAmount.Equal(decimal.RequireFromString("5.00")), "got %s", snap.TotalBonusAmount)
	require.True(t, snap.TotalEarnings.Equal(decimal.RequireFromString("13.00")), "got %s", snap.TotalEarnings)
}

func TestComputeEarningsIgnoresRejectedBonuses(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 0)

	rejected := models.DailyBonus{
		CampaignID: campaign.ID,
		UserID:     member.ID,
		BonusDate:  time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.RequireFromString("12.50"),
		Status:     models.StatusRejected,
	}
	require.NoError(t, db.Create(&rejected).Error)

	snap, err := ComputeEarnings(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.True(t, snap.TotalBonusAmount.IsZero())
	require.True(t, snap.TotalEarnings.IsZero())
}

func TestComputeEarningsEmptyCampaign(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 0)

	snap, err := ComputeEarnings(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, 0, snap.TotalChallenges)
	require.Equal(t, 0, snap.CompletedChallenges)
	require.Equal(t, 0, snap.CompletionPercentage)
	require.True(t, snap.TotalEarnings.IsZero())
}

func TestComputeEarningsDoesNotCountOtherUsers(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 0)

	other := models.User{Name: "Bob", Email: "bob@example.com", Role: models.RoleFBO}
	require.NoError(t, db.Create(&other).Error)

	ch := seedChallenge(t, db, campaign.ID, 1, "3.50")
	completeChallenge(t, db, ch.ID, other.ID)

	snap, err := ComputeEarnings(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, 0, snap.CompletedChallenges)
	require.True(t, snap.CampaignEarnings.IsZero())
}
