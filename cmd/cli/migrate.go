package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/clickfix/cmd"
	"github.com/axellelanca/clickfix/internal/database"
	"github.com/axellelanca/clickfix/internal/logger"
)

// MigrateCmd represents the 'migrate' command
// This command handles database schema creation and updates
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `This command connects to the configured database (SQLite or Postgres)
and executes GORM automatic migrations to create the 'campaigns', 'targets'
and 'events' tables based on the Go models.`,
	Run: func(_ *cobra.Command, _ []string) {
		db, err := database.Open(cmd.Cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			logger.Fatalf("%v", err)
		}

		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
