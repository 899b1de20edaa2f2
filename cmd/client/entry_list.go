package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCategory string

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries in a category, newest first",
	Args:  cobra.NoArgs,
	RunE:  runEntryList,
}

func init() {
	entryListCmd.Flags().StringVar(&listCategory, "category", "", "entry category (required)")
	_ = entryListCmd.MarkFlagRequired("category")
}

func runEntryList(cmd *cobra.Command, args []string) error {
	if err := checkCategory(listCategory); err != nil {
		return err
	}

	entries, err := apiClient.ListEntries(cmd.Context(), listCategory)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCREATED\tFILE")
	for _, e := range entries {
		file := "-"
		if e.FileURL != "" {
			file = e.FileURL
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Title, e.CreatedAt.Local().Format("2006-01-02 15:04"), file)
	}
	return w.Flush()
}
