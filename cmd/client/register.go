package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerPassword string

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create a new account",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "password (prompted when omitted)")
}

func runRegister(cmd *cobra.Command, args []string) error {
	password, err := promptPassword(registerPassword)
	if err != nil {
		return err
	}

	user, err := apiClient.Register(cmd.Context(), args[0], password)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(user)
	}
	fmt.Printf("registered %s\n", user.Email)
	return nil
}
