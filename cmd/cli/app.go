// Package cli holds the administrative cobra commands.
package cli

import (
	"gorm.io/gorm"

	"github.com/axellelanca/clickfix/cmd"
	"github.com/axellelanca/clickfix/internal/database"
	"github.com/axellelanca/clickfix/internal/logger"
	"github.com/axellelanca/clickfix/internal/repository"
	"github.com/axellelanca/clickfix/internal/services"
)

// app bundles the services a one-shot command works with.
type app struct {
	db         *gorm.DB
	targets    repository.TargetRepository
	aggregator *services.FunnelAggregator
	campaigns  *services.CampaignService
}

// openApp connects to the configured database, migrates it and wires the services.
func openApp() *app {
	db, err := database.Open(cmd.Cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatalf("%v", err)
	}

	campaignRepo := repository.NewCampaignRepository(db)
	targetRepo := repository.NewTargetRepository(db)
	eventRepo := repository.NewEventRepository(db)
	aggregator := services.NewFunnelAggregator(campaignRepo, eventRepo)

	return &app{
		db:         db,
		targets:    targetRepo,
		aggregator: aggregator,
		campaigns:  services.NewCampaignService(campaignRepo, targetRepo, aggregator),
	}
}

func (a *app) close() {
	database.Close(a.db)
}
