package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/cmd/account"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage storefront accounts",
	}
	cmd.AddCommand(newAccountCreateCmd())
	return cmd
}

func newAccountCreateCmd() *cobra.Command {
	var in account.CreateInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account in the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			acct, err := a.Accounts().Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tadmin=%t\n", acct.ID, acct.Email, acct.Admin)
			return err
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().StringVar(&in.DisplayName, "name", "", "display name (defaults to the email's local part)")
	cmd.Flags().BoolVar(&in.Admin, "admin", false, "grant the admin flag")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
