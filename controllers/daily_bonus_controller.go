package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/services"
	"github.com/defis-ete/backend/utils"
)

// DailyBonusController handles ad-hoc bonus declarations: participants submit
// them with a proof link, reviewers approve or reject them. Only approved
// bonuses count toward earnings.
type DailyBonusController struct {
	db *gorm.DB
}

// NewDailyBonusController creates a new DailyBonusController instance.
func NewDailyBonusController(db *gorm.DB) *DailyBonusController {
	return &DailyBonusController{db: db}
}

// SubmitBonus records a bonus declaration for the calling user.
func (d *DailyBonusController) SubmitBonus(ctx *gin.Context) {
	type request struct {
		CampaignID uint   `json:"campaign_id" binding:"required"`
		BonusDate  string `json:"bonus_date" binding:"required"`
		Amount     string `json:"amount" binding:"required"`
		ProofURL   string `json:"proof_url"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var campaign models.Campaign
	if err := d.db.First(&campaign, req.CampaignID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load campaign")
		return
	}
	if campaign.Archived {
		utils.Error(ctx, http.StatusConflict, 40960, "campaign is archived")
		return
	}
	if !campaign.BonusesEnabled {
		utils.Error(ctx, http.StatusConflict, 40970, "bonuses are disabled for this campaign")
		return
	}

	bonusDate, err := time.ParseInLocation("2006-01-02", req.BonusDate, time.Local)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, "bonus_date must be YYYY-MM-DD")
		return
	}
	if !campaign.ContainsDate(bonusDate) {
		utils.Error(ctx, http.StatusBadRequest, 40072, "bonus_date is outside the campaign window")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() || amount.IsZero() {
		utils.Error(ctx, http.StatusBadRequest, 40073, "amount must be a positive decimal")
		return
	}

	bonus := models.DailyBonus{
		CampaignID: req.CampaignID,
		UserID:     userID,
		BonusDate:  bonusDate,
		Amount:     amount.Round(2),
		ProofURL:   utils.Sanitize(req.ProofURL),
		Status:     models.StatusPending,
	}
	if err := d.db.Create(&bonus).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to save bonus")
		return
	}

	utils.Success(ctx, gin.H{"bonus": bonus})
}

// ListMyBonuses returns the calling user's bonus declarations for a campaign.
func (d *DailyBonusController) ListMyBonuses(ctx *gin.Context) {
	campaignID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40074, "invalid campaign id")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var bonuses []models.DailyBonus
	if err := d.db.Where("campaign_id = ? AND user_id = ?", campaignID, userID).
		Order("bonus_date ASC, id ASC").Find(&bonuses).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to list bonuses")
		return
	}

	utils.Success(ctx, gin.H{"items": bonuses})
}

// ListTeamBonuses returns the bonus declarations of the caller's hierarchy for
// a campaign, pending first.
func (d *DailyBonusController) ListTeamBonuses(ctx *gin.Context) {
	campaignID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40074, "invalid campaign id")
		return
	}

	caller, ok := actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	ids, err := services.ScopedParticipantIDs(d.db, caller)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to resolve hierarchy")
		return
	}
	if len(ids) == 0 {
		utils.Success(ctx, gin.H{"items": []models.DailyBonus{}})
		return
	}

	var bonuses []models.DailyBonus
	if err := d.db.Where("campaign_id = ? AND user_id IN ?", campaignID, ids).
		Order("CASE status WHEN 'pending' THEN 0 ELSE 1 END, bonus_date ASC").
		Find(&bonuses).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to list bonuses")
		return
	}

	utils.Success(ctx, gin.H{"items": bonuses})
}

// ReviewBonus approves or rejects a single bonus declaration.
func (d *DailyBonusController) ReviewBonus(ctx *gin.Context) {
	type request struct {
		Status  string `json:"status" binding:"required"`
		Comment string `json:"comment"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40075, "invalid request payload")
		return
	}

	status := models.ValidationStatus(req.Status)
	if !status.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40076, "status must be pending, approved or rejected")
		return
	}

	bonusID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40077, "invalid bonus id")
		return
	}

	var bonus models.DailyBonus
	if err := d.db.First(&bonus, bonusID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40470, "bonus not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to load bonus")
		return
	}

	caller, ok := actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	allowed, err := services.CanReview(d.db, caller, bonus.UserID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to resolve hierarchy")
		return
	}
	if !allowed {
		utils.Error(ctx, http.StatusForbidden, 40350, "user is outside your hierarchy")
		return
	}

	now := time.Now()
	bonus.Status = status
	bonus.Comment = utils.Sanitize(req.Comment)
	if status == models.StatusPending {
		bonus.ReviewedBy = nil
		bonus.ReviewedAt = nil
	} else {
		bonus.ReviewedBy = &caller.ID
		bonus.ReviewedAt = &now
	}

	if err := d.db.Save(&bonus).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to update bonus")
		return
	}

	utils.Success(ctx, gin.H{"bonus": bonus})
}
