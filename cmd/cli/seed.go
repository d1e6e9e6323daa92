package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/axellelanca/clickfix/cmd"
	customerrors "github.com/axellelanca/clickfix/internal/errors"
	"github.com/axellelanca/clickfix/internal/models"
	"github.com/axellelanca/clickfix/internal/services"
)

// SeedCmd représente la commande 'seed'
var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Crée une campagne et une cible de démonstration.",
	Run: func(_ *cobra.Command, _ []string) {
		a := openApp()
		defer a.close()
		ctx := context.Background()

		campaign, err := a.campaigns.CreateCampaign(ctx, services.CampaignInput{
			Name:       "Test Campaign",
			ClientName: "Internal",
			Scenario:   "teams_error",
			Slug:       "test-lure",
		})
		if err != nil {
			if errors.Is(err, customerrors.ErrSlugConflict) {
				fmt.Println("Seed data already present.")
				return
			}
			fmt.Printf("Failed to seed campaign: %v\n", err)
			os.Exit(1)
		}

		_, err = a.targets.GetTargetByUserID(ctx, "demo_victim")
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			err = a.targets.CreateTarget(ctx, &models.Target{
				CampaignID: campaign.ID,
				UserID:     "demo_victim",
				Email:      "victim@example.com",
				Department: "Finance",
			})
		case err == nil:
			fmt.Println("Target demo_victim already exists, left untouched.")
		}
		if err != nil {
			fmt.Printf("Failed to seed target: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Seeded campaign %d: %s/s/test-lure?uid=demo_victim\n", campaign.ID, cmd.Cfg.Server.BaseURL)
	},
}

func init() {
	cmd.RootCmd.AddCommand(SeedCmd)
}
