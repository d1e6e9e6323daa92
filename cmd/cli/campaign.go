package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/axellelanca/clickfix/cmd"
	customerrors "github.com/axellelanca/clickfix/internal/errors"
	"github.com/axellelanca/clickfix/internal/services"
)

var campaignInput services.CampaignInput

// CreateCampaignCmd représente la commande 'create-campaign'
var CreateCampaignCmd = &cobra.Command{
	Use:   "create-campaign",
	Short: "Crée une campagne d'exercice.",
	Long: `Cette commande enregistre une campagne et affiche l'URL du leurre associé.

Exemple:
  clickfix create-campaign --name="Q3 Finance" --client=Acme --scenario=teams_error --slug=finance-q3`,
	Run: func(_ *cobra.Command, _ []string) {
		a := openApp()
		defer a.close()

		campaign, err := a.campaigns.CreateCampaign(context.Background(), campaignInput)
		if err != nil {
			fmt.Printf("Failed to create campaign: %v\n", err)
			os.Exit(1)
		}

		lure := campaign.Scenario
		if campaign.Slug != nil {
			lure = *campaign.Slug
		}
		fmt.Printf("Campagne créée avec succès:\n")
		fmt.Printf("ID: %d\n", campaign.ID)
		fmt.Printf("Nom: %s (client %s)\n", campaign.Name, campaign.ClientName)
		fmt.Printf("URL du leurre: %s/s/%s?uid=<user_id>\n", cmd.Cfg.Server.BaseURL, lure)
	},
}

// DeleteCampaignCmd représente la commande 'delete-campaign'
var DeleteCampaignCmd = &cobra.Command{
	Use:   "delete-campaign [id]",
	Short: "Supprime une campagne avec ses cibles et ses événements.",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			fmt.Printf("Error: invalid campaign ID '%s'\n", args[0])
			os.Exit(1)
		}

		a := openApp()
		defer a.close()

		if err := a.campaigns.DeleteCampaign(context.Background(), uint(id)); err != nil {
			if errors.Is(err, customerrors.ErrCampaignNotFound) {
				fmt.Printf("Error: campaign %d not found\n", id)
			} else {
				fmt.Printf("Failed to delete campaign: %v\n", err)
			}
			os.Exit(1)
		}
		fmt.Printf("Campagne %d supprimée.\n", id)
	},
}

func init() {
	CreateCampaignCmd.Flags().StringVar(&campaignInput.Name, "name", "", "Campaign name")
	CreateCampaignCmd.Flags().StringVar(&campaignInput.ClientName, "client", "", "Client grouping label (default \"Default\")")
	CreateCampaignCmd.Flags().StringVar(&campaignInput.Scenario, "scenario", "", "Lure scenario to serve")
	CreateCampaignCmd.Flags().StringVar(&campaignInput.TrapSlug, "trap", "", "Trap overlay forced for this campaign")
	CreateCampaignCmd.Flags().StringVar(&campaignInput.Slug, "slug", "", "Public lure slug")
	_ = CreateCampaignCmd.MarkFlagRequired("name")
	_ = CreateCampaignCmd.MarkFlagRequired("scenario")

	cmd.RootCmd.AddCommand(CreateCampaignCmd)
	cmd.RootCmd.AddCommand(DeleteCampaignCmd)
}
