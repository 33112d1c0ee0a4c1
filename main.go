package main

import (
	"time"

	"github.com/defis-ete/backend/config"
	"github.com/defis-ete/backend/models"
	"github.com/defis-ete/backend/routes"
	"github.com/defis-ete/backend/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Campaign{},
		&models.UnlockCondition{},
		&models.Challenge{},
		&models.UserAction{},
		&models.CampaignValidation{},
		&models.CampaignValidationCondition{},
		&models.DailyBonus{},
	)

	r := routes.SetupRouter(db)

	// Campaigns past their end date get archived automatically (best-effort)
	utils.StartCampaignArchiver(time.Duration(cfg.ArchiveSweepMinutes) * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
