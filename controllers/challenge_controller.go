package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/utils"
)

// ChallengeController manages the daily challenges of a campaign and the
// per-user completion records they generate.
type ChallengeController struct {
	db *gorm.DB
}

// NewChallengeController creates a new ChallengeController instance.
func NewChallengeController(db *gorm.DB) *ChallengeController {
	return &ChallengeController{db: db}
}

type challengeRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"`
	ValueEuro   string `json:"value_euro" binding:"required"`
}

// CreateChallenge adds a challenge to a campaign. The euro value travels as a
// string so no float ever touches the amount.
func (h *ChallengeController) CreateChallenge(ctx *gin.Context) {
	var req challengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	campaignID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid campaign id")
		return
	}

	var campaign models.Campaign
	if err := h.db.First(&campaign, campaignID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load campaign")
		return
	}
	if campaign.Archived {
		utils.Error(ctx, http.StatusConflict, 40960, "campaign is archived")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40062, "date must be YYYY-MM-DD")
		return
	}
	if !campaign.ContainsDate(date) {
		utils.Error(ctx, http.StatusBadRequest, 40063, "date is outside the campaign window")
		return
	}

	value, err := decimal.NewFromString(req.ValueEuro)
	if err != nil || value.IsNegative() {
		utils.Error(ctx, http.StatusBadRequest, 40064, "value_euro must be a non-negative decimal")
		return
	}

	challenge := models.Challenge{
		CampaignID:  campaignID,
		Title:       utils.Sanitize(strings.TrimSpace(req.Title)),
		Description: utils.Sanitize(req.Description),
		Date:        date,
		ValueEuro:   value.Round(2),
	}
	if challenge.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40065, "title cannot be empty")
		return
	}

	if err := h.db.Create(&challenge).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to create challenge")
		return
	}

	utils.InvalidateByPrefix(fmt.Sprintf("cache:campaign:%d:challenges", campaignID))
	utils.Success(ctx, gin.H{"challenge": challenge})
}

// ListChallenges returns a campaign's challenges in date order, each annotated
// with the caller's own completion state.
func (h *ChallengeController) ListChallenges(ctx *gin.Context) {
	campaignID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid campaign id")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var campaign models.Campaign
	if err := h.db.First(&campaign, campaignID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load campaign")
		return
	}

	var challenges []models.Challenge
	if err := h.db.Where("campaign_id = ?", campaignID).Order("date ASC, id ASC").Find(&challenges).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to list challenges")
		return
	}

	var actions []models.UserAction
	if err := h.db.Where("user_id = ? AND challenge_id IN (?)",
		userID,
		h.db.Model(&models.Challenge{}).Select("id").Where("campaign_id = ?", campaignID),
	).Find(&actions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to load completions")
		return
	}

	byChallenge := make(map[uint]models.UserAction, len(actions))
	for _, a := range actions {
		byChallenge[a.ChallengeID] = a
	}

	type challengeView struct {
		models.Challenge
		Completed   bool       `json:"completed"`
		CompletedAt *time.Time `json:"completed_at"`
		ProofURL    string     `json:"proof_url"`
	}

	views := make([]challengeView, 0, len(challenges))
	for _, ch := range challenges {
		view := challengeView{Challenge: ch}
		if a, found := byChallenge[ch.ID]; found {
			view.Completed = a.Completed
			view.CompletedAt = a.CompletedAt
			view.ProofURL = a.ProofURL
		}
		views = append(views, view)
	}

	utils.Success(ctx, gin.H{"items": views})
}

// CompleteChallenge marks a challenge done for the calling user. Repeating the
// call updates the existing record instead of duplicating it.
func (h *ChallengeController) CompleteChallenge(ctx *gin.Context) {
	type request struct {
		Completed *bool  `json:"completed" binding:"required"`
		ProofURL  string `json:"proof_url"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40066, "invalid request payload")
		return
	}

	challengeID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40067, "invalid challenge id")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var challenge models.Challenge
	if err := h.db.First(&challenge, challengeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40460, "challenge not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to load challenge")
		return
	}

	var campaign models.Campaign
	if err := h.db.First(&campaign, challenge.CampaignID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load campaign")
		return
	}
	if campaign.Archived {
		utils.Error(ctx, http.StatusConflict, 40960, "campaign is archived")
		return
	}

	now := time.Now()
	action := models.UserAction{
		ChallengeID: challengeID,
		UserID:      userID,
		Completed:   *req.Completed,
		ProofRef:    uuid.NewString(),
		ProofURL:    utils.Sanitize(req.ProofURL),
	}
	if action.Completed {
		action.CompletedAt = &now
	}

	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "challenge_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "proof_url"}),
	}).Create(&action).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to record completion")
		return
	}

	var saved models.UserAction
	if err := h.db.Where("challenge_id = ? AND user_id = ?", challengeID, userID).First(&saved).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to record completion")
		return
	}

	utils.Success(ctx, gin.H{"action": saved})
}
