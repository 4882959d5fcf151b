package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tenantreport/internal/cli"
)

var pdfDir string

var pdfCmd = &cobra.Command{
	Use:   "pdf <report-id>",
	Short: "Download the PDF export of a submitted report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return fmt.Errorf("invalid report id %q", args[0])
		}

		client := cli.InitAPIClient(cfg)
		path, err := client.SavePDF(cmd.Context(), id, pdfDir)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", path)
		return nil
	},
}

func init() {
	pdfCmd.Flags().StringVar(&pdfDir, "dir", ".", "Directory to save the PDF into")
	rootCmd.AddCommand(pdfCmd)
}
