package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/services"
	"github.com/defis-ete/backend/utils"
)

// UnlockConditionController manages the ordered list of textual conditions a
// participant must satisfy to unlock their final payout.
type UnlockConditionController struct {
	db *gorm.DB
}

// NewUnlockConditionController creates a new controller instance.
func NewUnlockConditionController(db *gorm.DB) *UnlockConditionController {
	return &UnlockConditionController{db: db}
}

// ListConditions returns the campaign's unlock conditions in display order.
func (u *UnlockConditionController) ListConditions(ctx *gin.Context) {
	campaignID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid campaign id")
		return
	}

	cacheKey := fmt.Sprintf("cache:campaign:%d:conditions", campaignID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var campaign models.Campaign
	if err := u.db.First(&campaign, campaignID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load campaign")
		return
	}

	conditions, err := services.ListConditions(u.db, campaignID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to list conditions")
		return
	}

	payload := gin.H{"items": conditions}
	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// ReplaceConditions replaces the full ordered condition set of a campaign.
// Display order is renumbered to a dense 1..N sequence from the request order.
func (u *UnlockConditionController) ReplaceConditions(ctx *gin.Context) {
	type item struct {
		Description string `json:"description" binding:"required"`
	}
	type request struct {
		Conditions []item `json:"conditions" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request payload")
		return
	}

	campaignID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid campaign id")
		return
	}

	var campaign models.Campaign
	if err := u.db.First(&campaign, campaignID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load campaign")
		return
	}

	descriptions := make([]string, 0, len(req.Conditions))
	for _, it := range req.Conditions {
		descriptions = append(descriptions, utils.Sanitize(it.Description))
	}

	conditions, err := services.ReplaceConditions(u.db, campaignID, descriptions)
	if err != nil {
		if errors.Is(err, services.ErrBadConditionDescription) {
			utils.Error(ctx, http.StatusBadRequest, 40032, err.Error())
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to replace conditions")
		return
	}

	utils.InvalidateByPrefix(fmt.Sprintf("cache:campaign:%d:conditions", campaignID))
	utils.Success(ctx, gin.H{"items": conditions})
}

// DeleteCondition removes one condition; its checklist entries cascade away
// and the remaining conditions are renumbered densely.
func (u *UnlockConditionController) DeleteCondition(ctx *gin.Context) {
	conditionID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid condition id")
		return
	}

	var cond models.UnlockCondition
	if err := u.db.First(&cond, conditionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "condition not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load condition")
		return
	}

	if err := services.DeleteCondition(u.db, conditionID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to delete condition")
		return
	}

	utils.InvalidateByPrefix(fmt.Sprintf("cache:campaign:%d:conditions", cond.CampaignID))
	utils.Success(ctx, gin.H{"message": "condition deleted"})
}
