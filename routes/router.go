package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/defis-ete/backend/config"
	"github.com/defis-ete/backend/controllers"
	"github.com/defis-ete/backend/middleware"
	"github.com/defis-ete/backend/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	teamController := controllers.NewTeamController(db)
	campaignController := controllers.NewCampaignController(db)
	conditionController := controllers.NewUnlockConditionController(db)
	challengeController := controllers.NewChallengeController(db)
	bonusController := controllers.NewDailyBonusController(db)
	validationController := controllers.NewValidationController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	// Participant surface
	protected.GET("/campaigns", campaignController.ListCampaigns)
	protected.GET("/campaigns/:id", campaignController.GetCampaign)
	protected.GET("/campaigns/:id/conditions", conditionController.ListConditions)
	protected.GET("/campaigns/:id/challenges", challengeController.ListChallenges)
	protected.POST("/challenges/:id/complete", challengeController.CompleteChallenge)
	protected.POST("/bonuses", bonusController.SubmitBonus)
	protected.GET("/campaigns/:id/bonuses/me", bonusController.ListMyBonuses)
	protected.GET("/campaigns/:id/validation/me", validationController.GetMyValidation)

	// Reviewer surface (managers and the marraine)
	reviewer := api.Group("")
	reviewer.Use(middleware.AuthRequired(), middleware.ReviewerRequired(), middleware.RateLimitMiddleware())

	reviewer.GET("/team", teamController.ListTeam)
	reviewer.POST("/team/invites", teamController.CreateInvite)
	reviewer.PATCH("/team/:id/manager", teamController.ReassignManager)

	reviewer.POST("/campaigns", campaignController.CreateCampaign)
	reviewer.PUT("/campaigns/:id", campaignController.UpdateCampaign)
	reviewer.POST("/campaigns/:id/archive", campaignController.ArchiveCampaign)

	reviewer.PUT("/campaigns/:id/conditions", conditionController.ReplaceConditions)
	reviewer.DELETE("/conditions/:id", conditionController.DeleteCondition)

	reviewer.POST("/campaigns/:id/challenges", challengeController.CreateChallenge)

	reviewer.GET("/campaigns/:id/bonuses", bonusController.ListTeamBonuses)
	reviewer.PATCH("/bonuses/:id/review", bonusController.ReviewBonus)

	reviewer.GET("/campaigns/:id/validations", validationController.ListValidations)
	reviewer.GET("/campaigns/:id/validations/:userId", validationController.GetValidation)
	reviewer.PATCH("/users/:userId/validation", validationController.UpdateValidationStatus)
	reviewer.PATCH("/checklist/:entryId", validationController.UpdateChecklistEntry)

	reviewer.GET("/stats", statsController.GetStats)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
