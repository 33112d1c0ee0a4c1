package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/testutil"
)

func TestReplaceConditionsAssignsDenseOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, _ := seedCampaignWithConditions(t, db, 0)

	conds, err := ReplaceConditions(db, campaign.ID, []string{"Première", "Deuxième", "Troisième"})
	require.NoError(t, err)
	require.Len(t, conds, 3)
	for i, c := range conds {
		require.Equal(t, i+1, c.DisplayOrder)
	}

	// Replacing again reorders from scratch.
	conds, err = ReplaceConditions(db, campaign.ID, []string{"Troisième", "Première"})
	require.NoError(t, err)
	require.Len(t, conds, 2)
	require.Equal(t, "Troisième", conds[0].Description)
	require.Equal(t, 1, conds[0].DisplayOrder)
	require.Equal(t, 2, conds[1].DisplayOrder)

	var total int64
	require.NoError(t, db.Model(&models.UnlockCondition{}).Where("campaign_id = ?", campaign.ID).Count(&total).Error)
	require.EqualValues(t, 2, total)
}

func TestReplaceConditionsRejectsBadDescriptions(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, _ := seedCampaignWithConditions(t, db, 0)

	_, err := ReplaceConditions(db, campaign.ID, []string{"ok", "   "})
	require.ErrorIs(t, err, ErrBadConditionDescription)

	tooLong := strings.Repeat("x", models.MaxConditionDescriptionLen+1)
	_, err = ReplaceConditions(db, campaign.ID, []string{tooLong})
	require.ErrorIs(t, err, ErrBadConditionDescription)

	// Nothing was written.
	var total int64
	require.NoError(t, db.Model(&models.UnlockCondition{}).Where("campaign_id = ?", campaign.ID).Count(&total).Error)
	require.EqualValues(t, 0, total)
}

func TestReplaceConditionsCascadesChecklistEntries(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, member := seedCampaignWithConditions(t, db, 2)

	v, err := EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.Len(t, v.Conditions, 2)

	_, err = ReplaceConditions(db, campaign.ID, []string{"Nouvelle"})
	require.NoError(t, err)

	var entries int64
	require.NoError(t, db.Model(&models.CampaignValidationCondition{}).
		Where("validation_id = ?", v.ID).Count(&entries).Error)
	require.EqualValues(t, 0, entries)

	// The next view re-seeds against the new condition set.
	v, err = EnsureValidation(db, campaign.ID, member.ID)
	require.NoError(t, err)
	require.Len(t, v.Conditions, 1)
	require.Equal(t, "Nouvelle", v.Conditions[0].Condition.Description)
}

func TestDeleteConditionRenumbersRemaining(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign, _ := seedCampaignWithConditions(t, db, 0)

	conds, err := ReplaceConditions(db, campaign.ID, []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	require.NoError(t, DeleteCondition(db, conds[1].ID))

	remaining, err := ListConditions(db, campaign.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 3)
	require.Equal(t, []string{"a", "c", "d"}, []string{remaining[0].Description, remaining[1].Description, remaining[2].Description})
	for i, c := range remaining {
		require.Equal(t, i+1, c.DisplayOrder)
	}
}
