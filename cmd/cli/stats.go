package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/axellelanca/clickfix/cmd"
	customerrors "github.com/axellelanca/clickfix/internal/errors"
	"github.com/axellelanca/clickfix/internal/services"
)

var (
	statsCampaignID uint
	statsClient     string
)

// StatsCmd représente la commande 'stats'
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Affiche le funnel d'exercice.",
	Long: `Affiche les compteurs du funnel (vues, clics, exécutions, formation)
pour toutes les campagnes, une campagne (--campaign) ou un client (--client).`,
	Run: runStats,
}

func init() {
	StatsCmd.Flags().UintVar(&statsCampaignID, "campaign", 0, "Campaign ID")
	StatsCmd.Flags().StringVar(&statsClient, "client", "", "Client name")
	cmd.RootCmd.AddCommand(StatsCmd)
}

// runStats exécute la logique pour la commande stats
func runStats(_ *cobra.Command, _ []string) {
	a := openApp()
	defer a.close()
	ctx := context.Background()

	if statsCampaignID != 0 {
		report, err := a.campaigns.CampaignReport(ctx, statsCampaignID)
		if err != nil {
			if errors.Is(err, customerrors.ErrCampaignNotFound) {
				fmt.Printf("Error: campaign %d not found\n", statsCampaignID)
			} else {
				fmt.Printf("Error retrieving statistics: %v\n", err)
			}
			os.Exit(1)
		}
		fmt.Printf("Campagne: %s (client %s, scénario %s)\n", report.Campaign.Name, report.Campaign.ClientName, report.Campaign.Scenario)
		fmt.Printf("Cibles: %d\n", report.TargetCount)
		printFunnel(report.Stats)
		return
	}

	stats, err := a.aggregator.Stats(ctx, services.EventFilter{Client: statsClient})
	if err != nil {
		fmt.Printf("Error retrieving statistics: %v\n", err)
		os.Exit(1)
	}
	if statsClient != "" {
		fmt.Printf("Client: %s\n", statsClient)
	}
	printFunnel(*stats)
}

func printFunnel(s services.FunnelStats) {
	fmt.Printf("Vues: %d\n", s.TotalViews)
	fmt.Printf("Clics: %d%s\n", s.TotalClicks, rate(s.TotalClicks, s.TotalViews))
	fmt.Printf("Exécutions: %d%s\n", s.TotalExecutions, rate(s.TotalExecutions, s.TotalViews))
	fmt.Printf("Formation terminée: %d\n", s.TotalTrainingCompleted)
}

func rate(n, of int64) string {
	if of == 0 {
		return ""
	}
	return fmt.Sprintf(" (%.1f%%)", float64(n)*100/float64(of))
}
