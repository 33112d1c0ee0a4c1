package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/defis-ete/backend/config"
	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/services"
	"github.com/defis-ete/backend/utils"
)

// ValidationController is the review surface: reviewers list, inspect and
// transition campaign validations, and toggle individual checklist entries.
type ValidationController struct {
	db *gorm.DB
}

// NewValidationController creates a new ValidationController instance.
func NewValidationController(db *gorm.DB) *ValidationController {
	return &ValidationController{db: db}
}

type checklistItemView struct {
	ID          uint       `json:"id"`
	ConditionID uint       `json:"condition_id"`
	Description string     `json:"description"`
	IsFulfilled bool       `json:"is_fulfilled"`
	FulfilledBy *uint      `json:"fulfilled_by"`
	FulfilledAt *time.Time `json:"fulfilled_at"`
}

type validationView struct {
	ID          uint                    `json:"id"`
	CampaignID  uint                    `json:"campaign_id"`
	UserID      uint                    `json:"user_id"`
	UserName    string                  `json:"user_name"`
	UserEmail   string                  `json:"user_email"`
	Status      models.ValidationStatus `json:"status"`
	Comment     string                  `json:"comment"`
	ValidatedBy *uint                   `json:"validated_by"`
	ValidatedAt *time.Time              `json:"validated_at"`
	services.EarningsSnapshot
	Checklist []checklistItemView `json:"checklist"`
}

func (v *ValidationController) buildView(user models.User, record *models.CampaignValidation) (validationView, error) {
	snap, err := services.ComputeEarnings(v.db, record.CampaignID, record.UserID)
	if err != nil {
		return validationView{}, err
	}

	view := validationView{
		ID:               record.ID,
		CampaignID:       record.CampaignID,
		UserID:           record.UserID,
		UserName:         user.Name,
		UserEmail:        user.Email,
		Status:           record.Status,
		Comment:          record.Comment,
		ValidatedBy:      record.ValidatedBy,
		ValidatedAt:      record.ValidatedAt,
		EarningsSnapshot: snap,
		Checklist:        make([]checklistItemView, 0, len(record.Conditions)),
	}
	for _, entry := range record.Conditions {
		view.Checklist = append(view.Checklist, checklistItemView{
			ID:          entry.ID,
			ConditionID: entry.ConditionID,
			Description: entry.Condition.Description,
			IsFulfilled: entry.IsFulfilled,
			FulfilledBy: entry.FulfilledBy,
			FulfilledAt: entry.FulfilledAt,
		})
	}
	return view, nil
}

// ListValidations returns one validation per participant in the caller's
// hierarchy for the campaign, creating missing records lazily with a seeded
// checklist. Ordered by participant name; earnings are recomputed per row.
func (v *ValidationController) ListValidations(ctx *gin.Context) {
	campaignID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid campaign id")
		return
	}

	var campaign models.Campaign
	if err := v.db.First(&campaign, campaignID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load campaign")
		return
	}

	caller, ok := actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	ids, err := services.ScopedParticipantIDs(v.db, caller)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to resolve hierarchy")
		return
	}
	ids = utils.UniqueUint(ids)
	if len(ids) == 0 {
		utils.Success(ctx, gin.H{"items": []validationView{}})
		return
	}

	var participants []models.User
	if err := v.db.Where("id IN ?", ids).Order("name ASC").Find(&participants).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load participants")
		return
	}

	views := make([]validationView, 0, len(participants))
	for _, participant := range participants {
		record, err := services.EnsureValidation(v.db, campaignID, participant.ID)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load validation")
			return
		}
		view, err := v.buildView(participant, record)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to compute earnings")
			return
		}
		views = append(views, view)
	}

	utils.Success(ctx, gin.H{"items": views})
}

// GetValidation returns the single validation for one participant, used to
// populate the review modal.
func (v *ValidationController) GetValidation(ctx *gin.Context) {
	campaignID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid campaign id")
		return
	}
	userID, ok := parseID(ctx.Param("userId"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid user id")
		return
	}

	caller, ok := actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	allowed, err := services.CanReview(v.db, caller, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to resolve hierarchy")
		return
	}
	if !allowed {
		utils.Error(ctx, http.StatusForbidden, 40350, "user is outside your hierarchy")
		return
	}

	var participant models.User
	if err := v.db.First(&participant, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40450, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to load user")
		return
	}

	var campaign models.Campaign
	if err := v.db.First(&campaign, campaignID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load campaign")
		return
	}

	record, err := services.EnsureValidation(v.db, campaignID, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load validation")
		return
	}

	view, err := v.buildView(participant, record)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to compute earnings")
		return
	}
	utils.Success(ctx, gin.H{"validation": view})
}

// GetMyValidation is the participant-facing read-only summary: earnings plus
// the validation record if a reviewer has already opened it.
func (v *ValidationController) GetMyValidation(ctx *gin.Context) {
	campaignID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid campaign id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var campaign models.Campaign
	if err := v.db.First(&campaign, campaignID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load campaign")
		return
	}

	snap, err := services.ComputeEarnings(v.db, campaignID, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to compute earnings")
		return
	}

	payload := gin.H{"earnings": snap}
	if record, err := services.GetValidation(v.db, campaignID, userID); err == nil {
		var me models.User
		if err := v.db.First(&me, userID).Error; err == nil {
			if view, err := v.buildView(me, record); err == nil {
				payload["validation"] = view
			}
		}
	}
	utils.Success(ctx, payload)
}

// UpdateValidationStatus transitions the aggregate status of a participant's
// validation. Re-opening is allowed: this is a manual override tool, not a
// locked workflow.
func (v *ValidationController) UpdateValidationStatus(ctx *gin.Context) {
	type request struct {
		CampaignID uint   `json:"campaign_id" binding:"required"`
		Status     string `json:"status" binding:"required"`
		Comment    string `json:"comment"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid request payload")
		return
	}

	status := models.ValidationStatus(req.Status)
	if !status.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40053, "status must be pending, approved or rejected")
		return
	}

	userID, ok := parseID(ctx.Param("userId"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid user id")
		return
	}

	caller, ok := actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	allowed, err := services.CanReview(v.db, caller, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to resolve hierarchy")
		return
	}
	if !allowed {
		utils.Error(ctx, http.StatusForbidden, 40350, "user is outside your hierarchy")
		return
	}

	var participant models.User
	if err := v.db.First(&participant, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40450, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to load user")
		return
	}

	var campaign models.Campaign
	if err := v.db.First(&campaign, req.CampaignID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load campaign")
		return
	}

	record, err := services.EnsureValidation(v.db, req.CampaignID, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load validation")
		return
	}

	cfg := config.Get()
	err = services.ApplyStatus(v.db, record, status, utils.Sanitize(req.Comment), caller.ID, cfg.RequireChecklistForApproval)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChecklistIncomplete):
			utils.Error(ctx, http.StatusConflict, 40950, err.Error())
		case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrTransitionNotAllowed):
			utils.Error(ctx, http.StatusBadRequest, 40054, err.Error())
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to update validation")
		}
		return
	}

	// Best-effort notification when the review outcome lands; never blocks
	// the response.
	if status != models.StatusPending {
		go notifyValidationOutcome(participant, campaign, status)
	}

	view, err := v.buildView(participant, record)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to compute earnings")
		return
	}
	utils.Success(ctx, gin.H{"validation": view})
}

// UpdateChecklistEntry toggles one checklist entry. The parent validation's
// aggregate status is never touched here: approval stays an explicit action.
func (v *ValidationController) UpdateChecklistEntry(ctx *gin.Context) {
	type request struct {
		IsFulfilled *bool `json:"is_fulfilled" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40055, "invalid request payload")
		return
	}

	entryID, ok := parseID(ctx.Param("entryId"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40056, "invalid checklist entry id")
		return
	}

	var entry models.CampaignValidationCondition
	if err := v.db.First(&entry, entryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40451, "checklist entry not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50057, "failed to load checklist entry")
		return
	}

	var record models.CampaignValidation
	if err := v.db.First(&record, entry.ValidationID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load validation")
		return
	}

	caller, ok := actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	allowed, err := services.CanReview(v.db, caller, record.UserID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to resolve hierarchy")
		return
	}
	if !allowed {
		utils.Error(ctx, http.StatusForbidden, 40350, "user is outside your hierarchy")
		return
	}

	if err := services.ToggleChecklistEntry(v.db, &entry, *req.IsFulfilled, caller.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50058, "failed to update checklist entry")
		return
	}

	utils.Success(ctx, gin.H{"entry": entry})
}

func notifyValidationOutcome(participant models.User, campaign models.Campaign, status models.ValidationStatus) {
	defer func() { _ = recover() }()
	if participant.Email == "" {
		return
	}
	subject := fmt.Sprintf("Votre validation « %s » est %s", campaign.Name, frStatus(status))
	body := fmt.Sprintf("Bonjour %s,\n\nVotre participation à la campagne « %s » a été %s par votre manager.\n\nL'équipe Défis de l'été",
		participant.Name, campaign.Name, frStatus(status))
	if err := utils.SendMail(participant.Email, subject, body); err != nil && utils.Sugar != nil {
		utils.Sugar.Debugf("validation mail to %s skipped: %v", participant.Email, err)
	}
}

func frStatus(status models.ValidationStatus) string {
	switch status {
	case models.StatusApproved:
		return "validée"
	case models.StatusRejected:
		return "refusée"
	default:
		return "en attente"
	}
}
