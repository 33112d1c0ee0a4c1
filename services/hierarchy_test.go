package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/testutil"
)

func seedUser(t *testing.T, db *gorm.DB, name string, role models.UserRole, managerID *uint) models.User {
	t.Helper()
	u := models.User{Name: name, Email: name + "@example.com", Role: role, ManagerID: managerID}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestTeamMemberIDsWalksIndirectReports(t *testing.T) {
	db := testutil.NewTestDB(t)

	top := seedUser(t, db, "top", models.RoleManager, nil)
	mid := seedUser(t, db, "mid", models.RoleManager, &top.ID)
	leaf1 := seedUser(t, db, "leaf1", models.RoleFBO, &mid.ID)
	leaf2 := seedUser(t, db, "leaf2", models.RoleFBO, &mid.ID)
	seedUser(t, db, "outsider", models.RoleFBO, nil)

	ids, err := TeamMemberIDs(db, top.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{mid.ID, leaf1.ID, leaf2.ID}, ids)
	require.NotContains(t, ids, top.ID)
}

func TestInHierarchy(t *testing.T) {
	db := testutil.NewTestDB(t)

	top := seedUser(t, db, "top", models.RoleManager, nil)
	mid := seedUser(t, db, "mid", models.RoleManager, &top.ID)
	leaf := seedUser(t, db, "leaf", models.RoleFBO, &mid.ID)
	outsider := seedUser(t, db, "outsider", models.RoleFBO, nil)

	in, err := InHierarchy(db, top.ID, leaf.ID)
	require.NoError(t, err)
	require.True(t, in)

	in, err = InHierarchy(db, mid.ID, top.ID)
	require.NoError(t, err)
	require.False(t, in)

	in, err = InHierarchy(db, top.ID, outsider.ID)
	require.NoError(t, err)
	require.False(t, in)
}

func TestCanReviewRoles(t *testing.T) {
	db := testutil.NewTestDB(t)

	marraine := seedUser(t, db, "marraine", models.RoleMarraine, nil)
	manager := seedUser(t, db, "manager", models.RoleManager, nil)
	member := seedUser(t, db, "member", models.RoleFBO, &manager.ID)
	stranger := seedUser(t, db, "stranger", models.RoleFBO, nil)

	ok, err := CanReview(db, &marraine, stranger.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = CanReview(db, &manager, member.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = CanReview(db, &manager, stranger.ID)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = CanReview(db, &member, manager.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestScopedParticipantIDs(t *testing.T) {
	db := testutil.NewTestDB(t)

	marraine := seedUser(t, db, "marraine", models.RoleMarraine, nil)
	manager := seedUser(t, db, "manager", models.RoleManager, nil)
	member := seedUser(t, db, "member", models.RoleFBO, &manager.ID)

	ids, err := ScopedParticipantIDs(db, &marraine)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{manager.ID, member.ID}, ids)

	ids, err = ScopedParticipantIDs(db, &manager)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{member.ID}, ids)
}

func TestTeamMemberIDsSurvivesCycle(t *testing.T) {
	db := testutil.NewTestDB(t)

	a := seedUser(t, db, "a", models.RoleManager, nil)
	b := seedUser(t, db, "b", models.RoleManager, &a.ID)
	// Corrupt data: a reports to b, forming a loop.
	require.NoError(t, db.Model(&a).Update("manager_id", b.ID).Error)

	ids, err := TeamMemberIDs(db, a.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{b.ID}, ids)
}
