package utils

import (
	"time"

	"github.com/defis-ete/backend/config"
	"github.com/defis-ete/backend/models"
)

// StartCampaignArchiver launches a background goroutine that periodically
// flips the archived flag on campaigns whose end date has passed. Campaigns
// are never deleted so historical validations stay queryable. Best-effort;
// failures are logged and retried on the next tick.
func StartCampaignArchiver(interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			res := db.Model(&models.Campaign{}).
				Where("archived = ? AND end_date < ?", false, time.Now()).
				Update("archived", true)
			if res.Error != nil {
				Sugar.Warnf("campaign archiver sweep failed: %v", res.Error)
				continue
			}
			if res.RowsAffected > 0 {
				Sugar.Infof("campaign archiver: archived %d finished campaign(s)", res.RowsAffected)
			}
		}
	}()
}
