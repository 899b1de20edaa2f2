package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"legacyvault/internal/client/session"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and store the session",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := promptPassword(loginPassword)
	if err != nil {
		return err
	}

	pair, err := apiClient.Login(cmd.Context(), args[0], password)
	if err != nil {
		return err
	}

	user, err := apiClient.Me(cmd.Context())
	if err != nil {
		return err
	}

	err = sess.SignIn(session.User{UID: user.UID, Email: user.Email}, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(user)
	}
	fmt.Printf("signed in as %s\n", user.Email)
	return nil
}
