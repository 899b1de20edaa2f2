package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"legacyvault/internal/client/api"
)

var (
	updateTitle       string
	updateDescription string
	updateCategory    string
	updateFile        string
)

var entryUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an entry's fields or replace its attachment",
	Long: `Update changes only the fields whose flags are given; everything else
is left as it was. Attaching a new file replaces the old one.`,
	Args: cobra.ExactArgs(1),
	RunE: runEntryUpdate,
}

func init() {
	entryUpdateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	entryUpdateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
	entryUpdateCmd.Flags().StringVar(&updateCategory, "category", "", "new category")
	entryUpdateCmd.Flags().StringVar(&updateFile, "file", "", "path of a file to attach, replacing the old one")
}

func runEntryUpdate(cmd *cobra.Command, args []string) error {
	var updates api.EntryUpdates
	if cmd.Flags().Changed("title") {
		updates.Title = &updateTitle
	}
	if cmd.Flags().Changed("description") {
		updates.Description = &updateDescription
	}
	if cmd.Flags().Changed("category") {
		if err := checkCategory(updateCategory); err != nil {
			return err
		}
		updates.Category = &updateCategory
	}

	var (
		fileName string
		file     io.Reader
	)
	if updateFile != "" {
		f, err := os.Open(updateFile)
		if err != nil {
			return fmt.Errorf("opening attachment: %w", err)
		}
		defer f.Close()
		fileName = filepath.Base(updateFile)
		file = f
	}

	entry, err := apiClient.UpdateEntry(cmd.Context(), args[0], updates, fileName, file)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(entry)
	}
	fmt.Printf("updated entry %s\n", entry.ID)
	return nil
}
