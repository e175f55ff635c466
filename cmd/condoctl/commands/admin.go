package commands

import (
	"github.com/spf13/cobra"

	"condomanager/internal/logger"
	"condomanager/internal/models"
	"condomanager/internal/services"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")

		manager, err := openDatabase()
		if err != nil {
			return err
		}
		defer manager.Close()

		user, err := services.NewUserService(manager.DB()).CreateUser(email, password, firstName, lastName, models.RoleAdmin)
		if err != nil {
			return err
		}
		logger.Get().Infow("administrator created", "user_id", user.ID, "email", user.Email)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().String("email", "", "login email (required)")
	createAdminCmd.Flags().String("password", "", "initial password (required)")
	createAdminCmd.Flags().String("first-name", "", "first name")
	createAdminCmd.Flags().String("last-name", "", "last name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}
