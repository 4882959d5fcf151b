package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tenantreport/internal/cli"
)

var listPage int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports submitted to the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := cli.InitAPIClient(cfg)
		reports, meta, err := client.ListReports(cmd.Context(), listPage)
		if err != nil {
			return err
		}

		if len(reports) == 0 {
			fmt.Println("No reports found")
			return nil
		}
		for _, r := range reports {
			fmt.Printf("%6d  %-12s  %s - %s\n", r.ID, r.Status, r.StartAt, r.EndAt)
		}
		fmt.Printf("Page %d of %d (%d reports)\n", meta.CurrentPage, meta.LastPage, meta.Total)
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "Result page to fetch")
	rootCmd.AddCommand(listCmd)
}
