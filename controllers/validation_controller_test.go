package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/defis-ete/backend/middleware"
	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newReviewerContext(t *testing.T, method string, body interface{}, caller models.User, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(method, "/", &buf)
	ctx.Request.Header.Set("Content-Type", "application/json")
	ctx.Params = params
	ctx.Set(middleware.ContextUserIDKey, caller.ID)
	ctx.Set(middleware.ContextUserNameKey, caller.Name)
	ctx.Set(middleware.ContextUserRoleKey, caller.Role)
	return ctx, w
}

func seedReviewScenario(t *testing.T, db *gorm.DB) (models.User, models.User, models.Campaign) {
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
	return manager, member, campaign
}

func TestUpdateValidationStatusRejectsUnknownStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	manager, member, campaign := seedReviewScenario(t, db)
	ctrl := NewValidationController(db)

	body := map[string]interface{}{"campaign_id": campaign.ID, "status": "validated"}
	ctx, w := newReviewerContext(t, http.MethodPatch, body, manager,
		gin.Params{{Key: "userId", Value: fmt.Sprint(member.ID)}})

	ctrl.UpdateValidationStatus(ctx)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateValidationStatusForbiddenOutsideHierarchy(t *testing.T) {
	db := testutil.NewTestDB(t)
	manager, _, campaign := seedReviewScenario(t, db)

	outsider := models.User{Name: "Zoé", Email: "zoe@example.com", Role: models.RoleFBO}
	require.NoError(t, db.Create(&outsider).Error)

	ctrl := NewValidationController(db)
	body := map[string]interface{}{"campaign_id": campaign.ID, "status": "approved"}
	ctx, w := newReviewerContext(t, http.MethodPatch, body, manager,
		gin.Params{{Key: "userId", Value: fmt.Sprint(outsider.ID)}})

	ctrl.UpdateValidationStatus(ctx)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateValidationStatusUnknownUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	manager, _, campaign := seedReviewScenario(t, db)

	marraine := models.User{Name: "Sophie", Email: "sophie@example.com", Role: models.RoleMarraine}
	require.NoError(t, db.Create(&marraine).Error)
	_ = manager

	ctrl := NewValidationController(db)
	body := map[string]interface{}{"campaign_id": campaign.ID, "status": "approved"}
	ctx, w := newReviewerContext(t, http.MethodPatch, body, marraine,
		gin.Params{{Key: "userId", Value: "9999"}})

	ctrl.UpdateValidationStatus(ctx)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateValidationStatusApprovesAndIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	manager, member, campaign := seedReviewScenario(t, db)
	ctrl := NewValidationController(db)

	body := map[string]interface{}{"campaign_id": campaign.ID, "status": "approved", "comment": "bravo"}
	ctx, w := newReviewerContext(t, http.MethodPatch, body, manager,
		gin.Params{{Key: "userId", Value: fmt.Sprint(member.ID)}})
	ctrl.UpdateValidationStatus(ctx)
	require.Equal(t, http.StatusOK, w.Code)

	// Approving an approved record again is a no-op, not an error.
	ctx, w = newReviewerContext(t, http.MethodPatch, body, manager,
		gin.Params{{Key: "userId", Value: fmt.Sprint(member.ID)}})
	ctrl.UpdateValidationStatus(ctx)
	require.Equal(t, http.StatusOK, w.Code)

	var v models.CampaignValidation
	require.NoError(t, db.Where("campaign_id = ? AND user_id = ?", campaign.ID, member.ID).First(&v).Error)
	require.Equal(t, models.StatusApproved, v.Status)
	require.NotNil(t, v.ValidatedBy)
	require.EqualValues(t, manager.ID, *v.ValidatedBy)

	var count int64
	require.NoError(t, db.Model(&models.CampaignValidation{}).
		Where("campaign_id = ? AND user_id = ?", campaign.ID, member.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestGetValidationForbiddenForOutsideManager(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, member, campaign := seedReviewScenario(t, db)

	otherManager := models.User{Name: "Marc", Email: "marc@example.com", Role: models.RoleManager}
	require.NoError(t, db.Create(&otherManager).Error)

	ctrl := NewValidationController(db)
	ctx, w := newReviewerContext(t, http.MethodGet, nil, otherManager, gin.Params{
		{Key: "id", Value: fmt.Sprint(campaign.ID)},
		{Key: "userId", Value: fmt.Sprint(member.ID)},
	})

	ctrl.GetValidation(ctx)
	require.Equal(t, http.StatusForbidden, w.Code)
}
