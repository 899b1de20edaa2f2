package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry and its attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient.DeleteEntry(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted entry %s\n", args[0])
		return nil
	},
}
