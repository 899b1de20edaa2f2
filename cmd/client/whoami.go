package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sess.CurrentUser() == nil {
			return fmt.Errorf("not signed in")
		}

		user, err := apiClient.Me(cmd.Context())
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(user)
		}
		fmt.Printf("%s (%s)\n", user.Email, user.UID)
		return nil
	},
}
