package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/utils"
)

// CampaignController manages campaign CRUD. Campaigns are archived, never
// destroyed, so historical validations survive.
type CampaignController struct {
	db *gorm.DB
}

// NewCampaignController creates a new CampaignController instance.
func NewCampaignController(db *gorm.DB) *CampaignController {
	return &CampaignController{db: db}
}

type campaignRequest struct {
	Name           string `json:"name" binding:"required,min=1,max=255"`
	Description    string `json:"description"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
	BonusesEnabled *bool  `json:"bonuses_enabled"`
}

// CreateCampaign creates a campaign owned by the calling reviewer.
func (c *CampaignController) CreateCampaign(ctx *gin.Context) {
	var req campaignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	start, end, ok := parseCampaignWindow(req.StartDate, req.EndDate)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40021, "start/end dates must be YYYY-MM-DD with start before end")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	campaign := models.Campaign{
		Name:           utils.Sanitize(strings.TrimSpace(req.Name)),
		Description:    utils.Sanitize(req.Description),
		StartDate:      start,
		EndDate:        end,
		BonusesEnabled: req.BonusesEnabled == nil || *req.BonusesEnabled,
		CreatedBy:      userID,
	}
	if campaign.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40022, "name cannot be empty")
		return
	}

	if err := c.db.Create(&campaign).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create campaign")
		return
	}

	utils.InvalidateByPrefix("cache:campaigns:list:")
	utils.Success(ctx, gin.H{"campaign": campaign})
}

// ListCampaigns returns paginated campaigns, active first. Archived ones are
// included only when ?archived=true.
func (c *CampaignController) ListCampaigns(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	includeArchived := ctx.Query("archived") == "true"

	cacheKey := fmt.Sprintf("cache:campaigns:list:archived=%t:page=%d:size=%d", includeArchived, page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	query := c.db.Model(&models.Campaign{}).Order("start_date DESC")
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count campaigns")
		return
	}

	var campaigns []models.Campaign
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&campaigns).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list campaigns")
		return
	}

	payload := gin.H{
		"items": campaigns,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// GetCampaign returns a single campaign by id.
func (c *CampaignController) GetCampaign(ctx *gin.Context) {
	var campaign models.Campaign
	if err := c.db.First(&campaign, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load campaign")
		return
	}
	utils.Success(ctx, gin.H{"campaign": campaign})
}

// UpdateCampaign applies administrative edits to a campaign.
func (c *CampaignController) UpdateCampaign(ctx *gin.Context) {
	var req campaignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}

	start, end, ok := parseCampaignWindow(req.StartDate, req.EndDate)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40021, "start/end dates must be YYYY-MM-DD with start before end")
		return
	}

	var campaign models.Campaign
	if err := c.db.First(&campaign, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load campaign")
		return
	}

	campaign.Name = utils.Sanitize(strings.TrimSpace(req.Name))
	campaign.Description = utils.Sanitize(req.Description)
	campaign.StartDate = start
	campaign.EndDate = end
	if req.BonusesEnabled != nil {
		campaign.BonusesEnabled = *req.BonusesEnabled
	}
	if campaign.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40022, "name cannot be empty")
		return
	}

	if err := c.db.Save(&campaign).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to update campaign")
		return
	}

	utils.InvalidateByPrefix("cache:campaigns:list:")
	utils.Success(ctx, gin.H{"campaign": campaign})
}

// ArchiveCampaign soft-archives a campaign so it drops out of active lists
// while its validations stay queryable.
func (c *CampaignController) ArchiveCampaign(ctx *gin.Context) {
	var campaign models.Campaign
	if err := c.db.First(&campaign, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load campaign")
		return
	}

	if err := c.db.Model(&campaign).Update("archived", true).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to archive campaign")
		return
	}

	utils.InvalidateByPrefix("cache:campaigns:list:")
	utils.Success(ctx, gin.H{"campaign": campaign})
}

func parseCampaignWindow(startStr, endStr string) (time.Time, time.Time, bool) {
	start, err := time.ParseInLocation("2006-01-02", startStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.ParseInLocation("2006-01-02", endStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	// End of day so the last date is inclusive.
	end = end.Add(24*time.Hour - time.Second)
	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
