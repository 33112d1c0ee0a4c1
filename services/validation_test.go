package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/testutil"
)

func seedCampaignWithConditions(t *testing.T, db *gorm.DB, conditionCount int) (models.Campaign, models.User) {
	t.Helper()

	manager := models.User{Name: "Claire", Email: "claire@example.com", Role: models.RoleManager}
	require.NoError(t, db.Create(&manager).Error)

	member := models.User{Name: "Alice", Email: "alice@example.com", Role: models.RoleFBO, ManagerID: &manager.ID}
	require.NoError(t, db.Create(&member).Error)

	campaign := models.Campaign{
		Name:      "Défis de juillet",
		StartDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC),
		CreatedBy: manager.ID,
	}
	require.NoError(t, db.Create(&campaign).Error)

	for i := 1; i <= conditionCount; i++ {
		cond := models.UnlockCondition{
			CampaignID:   campaign.ID,
			Description:  "Condition",
			DisplayOrder: i,
		}
		require.NoError(t, db.Create(&cond).Error)
	}
	return campaign, member
}

func TestEnsureValidationCreatesPendingWithChecklist(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 3)

	v, err := EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, v.Status)
	require.Nil(t, v.ValidatedBy)
	require.Nil(t, v.ValidatedAt)
	require.Len(t, v.Conditions, 3)
	for _, entry := range v.Conditions {
		require.False(t, entry.IsFulfilled)
	}
}

func TestEnsureValidationIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 2)

	first, err := EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)
	second, err := EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.CampaignValidation{}).
		Where("campaign_id = ? AND user_id = ?", campaign.ID, member.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEnsureValidationSeedsLateConditions(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 1)

	v, err := EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.Len(t, v.Conditions, 1)

	late := models.UnlockCondition{CampaignID: campaign.ID, Description: "Ajoutée plus tard", DisplayOrder: 2}
	require.NoError(t, db.Create(&late).Error)

	v, err = EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.Len(t, v.Conditions, 2)
}

func TestApplyStatusApproveStampsReviewer(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 0)

	v, err := EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)

	err = ApplyStatus(db, v, models.StatusApproved, "bravo", 42, false)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, v.Status)
	require.NotNil(t, v.ValidatedBy)
	require.EqualValues(t, 42, *v.ValidatedBy)
	require.NotNil(t, v.ValidatedAt)
	require.Equal(t, "bravo", v.Comment)
}

func TestApplyStatusBackToPendingClearsReviewer(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 0)

	v, err := EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.NoError(t, ApplyStatus(db, v, models.StatusRejected, "manque une preuve", 7, false))

	require.NoError(t, ApplyStatus(db, v, models.StatusPending, "", 7, false))
	require.Equal(t, models.StatusPending, v.Status)
	require.Nil(t, v.ValidatedBy)
	require.Nil(t, v.ValidatedAt)
}

func TestApplyStatusRejectsUnknownStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 0)

	v, err := EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)

	err = ApplyStatus(db, v, models.ValidationStatus("validated"), "", 7, false)
	require.ErrorIs(t, err, ErrInvalidStatus)
	require.Equal(t, models.StatusPending, v.Status)
}

func TestApplyStatusChecklistPolicyBlocksApproval(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 2)

	v, err := EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)

	err = ApplyStatus(db, v, models.StatusApproved, "", 7, true)
	require.ErrorIs(t, err, ErrChecklistIncomplete)

	for i := range v.Conditions {
		require.NoError(t, ToggleChecklistEntry(db, &v.Conditions[i], true, 7))
	}
	require.NoError(t, ApplyStatus(db, v, models.StatusApproved, "", 7, true))
	require.Equal(t, models.StatusApproved, v.Status)
}

func TestToggleChecklistEntryLeavesParentStatusAlone(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 2)

	v, err := EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)

	for i := range v.Conditions {
		require.NoError(t, ToggleChecklistEntry(db, &v.Conditions[i], true, 9))
		require.NotNil(t, v.Conditions[i].FulfilledBy)
		require.NotNil(t, v.Conditions[i].FulfilledAt)
	}

	reloaded, err := GetValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, reloaded.Status)

	require.NoError(t, ToggleChecklistEntry(db, &reloaded.Conditions[0], false, 9))
	require.Nil(t, reloaded.Conditions[0].FulfilledBy)
	require.Nil(t, reloaded.Conditions[0].FulfilledAt)
}

func TestGetValidationOrdersChecklistByDisplayOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 0)

	// Insert out of order on purpose.
	for _, order := range []int{3, 1, 2} {
		cond := models.UnlockCondition{CampaignID: campaign.ID, Description: "Condition", DisplayOrder: order}
		require.NoError(t, db.Create(&cond).Error)
	}

	v, err := EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.Len(t, v.Conditions, 3)
	for i, entry := range v.Conditions {
		require.Equal(t, i+1, entry.Condition.DisplayOrder)
	}
}
