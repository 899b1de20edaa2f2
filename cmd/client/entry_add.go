package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	addCategory    string
	addDescription string
	addFile        string
)

var entryAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a new entry",
	Long: `Add creates an entry in one of the four categories: personal, legal,
digital or wishes. A file can be attached with --file.

Example:
  vault entry add "Last will" --category legal --file ~/Documents/will.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runEntryAdd,
}

func init() {
	entryAddCmd.Flags().StringVar(&addCategory, "category", "", "entry category (required)")
	entryAddCmd.Flags().StringVar(&addDescription, "description", "", "entry description")
	entryAddCmd.Flags().StringVar(&addFile, "file", "", "path of a file to attach")
	_ = entryAddCmd.MarkFlagRequired("category")
}

func runEntryAdd(cmd *cobra.Command, args []string) error {
	if err := checkCategory(addCategory); err != nil {
		return err
	}

	var (
		fileName string
		file     io.Reader
	)
	if addFile != "" {
		f, err := os.Open(addFile)
		if err != nil {
			return fmt.Errorf("opening attachment: %w", err)
		}
		defer f.Close()
		fileName = filepath.Base(addFile)
		file = f
	}

	entry, err := apiClient.CreateEntry(cmd.Context(), addCategory, args[0], addDescription, fileName, file)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(entry)
	}
	fmt.Printf("created entry %s\n", entry.ID)
	return nil
}
