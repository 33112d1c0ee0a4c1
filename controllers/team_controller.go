package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/defis-ete/backend/config"
	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/services"
	"github.com/defis-ete/backend/utils"
)

// TeamController exposes the reporting hierarchy: listing a reviewer's team,
// issuing invite codes and reassigning members between managers.
type TeamController struct {
	db *gorm.DB
}

// NewTeamController creates a new TeamController instance.
func NewTeamController(db *gorm.DB) *TeamController {
	return &TeamController{db: db}
}

// ListTeam returns every member of the caller's hierarchy, direct and
// indirect, ordered by name. A marraine sees all users.
func (t *TeamController) ListTeam(ctx *gin.Context) {
	caller, ok := actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	ids, err := services.ScopedParticipantIDs(t.db, caller)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to resolve team")
		return
	}
	ids = utils.UniqueUint(ids)
	if len(ids) == 0 {
		utils.Success(ctx, gin.H{"items": []models.User{}})
		return
	}

	var members []models.User
	if err := t.db.Where("id IN ?", ids).Order("name ASC").Find(&members).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to list team")
		return
	}

	utils.Success(ctx, gin.H{"items": members})
}

// CreateInvite issues a one-time registration code binding the new member to
// the caller's team.
func (t *TeamController) CreateInvite(ctx *gin.Context) {
	type request struct {
		TeamName string `json:"team_name"`
	}
	var req request
	_ = ctx.ShouldBindJSON(&req) // body optional

	callerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cfg := config.Get()
	ttl := time.Duration(cfg.InviteCodeTTLHours) * time.Hour
	code, err := utils.CreateInvite(utils.Invite{ManagerID: callerID, TeamName: req.TeamName}, ttl)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to create invite")
		return
	}

	utils.Success(ctx, gin.H{
		"code":       code,
		"expires_in": ttl.String(),
	})
}

// ReassignManager moves a member under another manager. A marraine may move
// anyone; a manager may only move members of their own hierarchy, and only to
// a reviewer inside it. Moving a member under someone in their own subtree is
// refused to keep the hierarchy acyclic.
func (t *TeamController) ReassignManager(ctx *gin.Context) {
	type request struct {
		ManagerID uint `json:"manager_id" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	targetID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid user id")
		return
	}

	caller, ok := actor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var target models.User
	if err := t.db.First(&target, targetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load user")
		return
	}

	var newManager models.User
	if err := t.db.First(&newManager, req.ManagerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40441, "manager not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to load manager")
		return
	}
	if !newManager.IsReviewer() {
		utils.Error(ctx, http.StatusBadRequest, 40042, "target manager must be a manager or marraine")
		return
	}

	if caller.Role != models.RoleMarraine {
		allowed, err := services.CanReview(t.db, caller, target.ID)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to check hierarchy")
			return
		}
		if !allowed {
			utils.Error(ctx, http.StatusForbidden, 40340, "user is outside your hierarchy")
			return
		}
		if newManager.ID != caller.ID {
			inScope, err := services.InHierarchy(t.db, caller.ID, newManager.ID)
			if err != nil {
				utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to check hierarchy")
				return
			}
			if !inScope {
				utils.Error(ctx, http.StatusForbidden, 40341, "new manager is outside your hierarchy")
				return
			}
		}
	}

	// Cycle guard: the new manager must not report to the member being moved.
	if newManager.ID == target.ID {
		utils.Error(ctx, http.StatusBadRequest, 40043, "a user cannot manage themselves")
		return
	}
	cycle, err := services.InHierarchy(t.db, target.ID, newManager.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to check hierarchy")
		return
	}
	if cycle {
		utils.Error(ctx, http.StatusBadRequest, 40044, "reassignment would create a cycle")
		return
	}

	target.ManagerID = &newManager.ID
	if err := t.db.Save(&target).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to reassign user")
		return
	}

	utils.Success(ctx, gin.H{"user": target})
}
