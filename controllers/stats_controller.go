package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/utils"
)

// StatsController serves the admin dashboard counters.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns global counts: users per role, campaigns, and validations
// broken down by status. Cached briefly since the dashboard polls it.
func (s *StatsController) GetStats(ctx *gin.Context) {
	const cacheKey = "cache:stats:global"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var totalUsers, totalManagers, totalCampaigns, activeCampaigns int64
	if err := s.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to count users")
		return
	}
	if err := s.db.Model(&models.User{}).Where("role IN ?", []models.UserRole{models.RoleManager, models.RoleMarraine}).Count(&totalManagers).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to count users")
		return
	}
	if err := s.db.Model(&models.Campaign{}).Count(&totalCampaigns).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to count campaigns")
		return
	}
	if err := s.db.Model(&models.Campaign{}).Where("archived = ?", false).Count(&activeCampaigns).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to count campaigns")
		return
	}

	byStatus := map[models.ValidationStatus]int64{
		models.StatusPending:  0,
		models.StatusApproved: 0,
		models.StatusRejected: 0,
	}
	rows := []struct {
		Status models.ValidationStatus
		Total  int64
	}{}
	if err := s.db.Model(&models.CampaignValidation{}).
		Select("status, COUNT(*) AS total").
		Group("status").Scan(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to count validations")
		return
	}
	for _, row := range rows {
		byStatus[row.Status] = row.Total
	}

	payload := gin.H{
		"total_users":          totalUsers,
		"total_reviewers":      totalManagers,
		"total_campaigns":      totalCampaigns,
		"active_campaigns":     activeCampaigns,
		"validations_by_status": gin.H{
			"pending":  byStatus[models.StatusPending],
			"approved": byStatus[models.StatusApproved],
			"rejected": byStatus[models.StatusRejected],
		},
	}
	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Minute)
	utils.Success(ctx, payload)
}
