package commands

import (
	"github.com/spf13/cobra"

	"condomanager/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users, condominiums, expenses and notifications",
	Long: `Seed inserts the demo data set: one administrator, three managers each
assigned to a condominium, sample expenses in every status and a few
notifications. Rows that already exist are left untouched, so the command
can be run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := seed.DefaultOptions()
		opts.AdminPassword, _ = cmd.Flags().GetString("admin-password")
		opts.ManagerPassword, _ = cmd.Flags().GetString("manager-password")

		manager, err := openDatabase()
		if err != nil {
			return err
		}
		defer manager.Close()

		if migrateFirst, _ := cmd.Flags().GetBool("migrate"); migrateFirst {
			if err := manager.RunMigrations(); err != nil {
				return err
			}
		}

		_, err = seed.Run(manager.DB(), opts)
		return err
	},
}

func init() {
	def := seed.DefaultOptions()
	seedCmd.Flags().String("admin-password", def.AdminPassword, "password of "+seed.AdminEmail)
	seedCmd.Flags().String("manager-password", def.ManagerPassword, "password of the seeded managers")
	seedCmd.Flags().Bool("migrate", false, "apply pending migrations before seeding")
	rootCmd.AddCommand(seedCmd)
}
