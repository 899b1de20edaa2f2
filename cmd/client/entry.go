package main

import "github.com/spf13/cobra"

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage vault entries",
}

func init() {
	entryCmd.AddCommand(entryAddCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entryUpdateCmd)
	entryCmd.AddCommand(entryDeleteCmd)
}
