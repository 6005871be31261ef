package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	identityapp "github.com/stockroom/backend/internal/application/identity"
	"github.com/stockroom/backend/internal/domain/shared"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long:  "create-admin registers a user with the administrator role. The password is read from --password or STOCKCTL_ADMIN_PASSWORD.",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := adminRequestFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := bootApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		ctx := a.context(cmd)
		if _, err := identityapp.EnsureDefaultRoles(ctx, a.roleRepo); err != nil {
			return err
		}

		user, err := a.auth.CreateAdmin(ctx, req)
		if err != nil {
			return describeError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "administrator %s created (%s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.String("email", "", "Administrator email (required)")
	f.String("rut", "", "Chilean RUT, e.g. 11.111.111-1 (required)")
	f.String("first-name", "", "First name (required)")
	f.String("last-name", "", "Last name (required)")
	f.String("password", "", "Password, at least 8 characters")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("rut")
	_ = createAdminCmd.MarkFlagRequired("first-name")
	_ = createAdminCmd.MarkFlagRequired("last-name")
}

func adminRequestFromFlags(cmd *cobra.Command) (identityapp.RegisterRequest, error) {
	f := cmd.Flags()
	email, _ := f.GetString("email")
	rut, _ := f.GetString("rut")
	first, _ := f.GetString("first-name")
	last, _ := f.GetString("last-name")
	password, _ := f.GetString("password")
	if password == "" {
		password = os.Getenv("STOCKCTL_ADMIN_PASSWORD")
	}
	if password == "" {
		return identityapp.RegisterRequest{}, errors.New("a password is required: pass --password or set STOCKCTL_ADMIN_PASSWORD")
	}
	return identityapp.RegisterRequest{
		Email:     email,
		RUT:       rut,
		FirstName: first,
		LastName:  last,
		Password:  password,
	}, nil
}

// describeError flattens field errors into a single line for the terminal
func describeError(err error) error {
	var verr *shared.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("invalid input: %s", verr.Error())
	}
	return err
}
