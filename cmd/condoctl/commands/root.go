package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"condomanager/internal/config"
	"condomanager/internal/database"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "condoctl",
	Short: "Administration tool for the condominium expense manager",
	Long: `condoctl runs the operational tasks of the condominium expense manager:
schema migrations, demo data seeding and bootstrap of the first administrator.

Database settings are read from the environment (or .env) the same way the API does.`,
	SilenceUsage: true,
}

// Execute runs the root command. It is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

// openDatabase connects to the configured database. The caller must Close
// the returned manager.
func openDatabase() (*database.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	manager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return manager, nil
}
