package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
)

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(
		newUserCreateCmd(app),
		newUserResetPasswordCmd(app),
	)

	return cmd
}

func newUserCreateCmd(app *App) *cobra.Command {
	var in models.NewUser
	var level string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account, typically the first Admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.AccessLevel = models.AccessLevel(level)
			user, err := app.Users.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", user.AccessLevel, user.Username, user.ID.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&in.Username, "username", "", "Login name")
	cmd.Flags().StringVar(&in.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.PhoneNumber, "phone", "", "Phone number")
	cmd.Flags().StringVar(&level, "access-level", string(models.AccessAdmin), "User, Manager or Admin")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newUserResetPasswordCmd(app *App) *cobra.Command {
	var id, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password and end the user's sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Users.ResetPassword(cmd.Context(), id, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password reset for %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "User ID")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
