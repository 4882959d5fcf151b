package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tenantreport/internal/cli"
)

var periodCmd = &cobra.Command{
	Use:   "period <start> <end>",
	Short: "Check whether a report already covers a date range",
	Long:  `Dates are given as YYYY-MM-DD, e.g. "tenantreport period 2025-06-01 2025-06-30".`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.Parse("2006-01-02", args[0])
		if err != nil {
			return fmt.Errorf("invalid start date %q", args[0])
		}
		end, err := time.Parse("2006-01-02", args[1])
		if err != nil {
			return fmt.Errorf("invalid end date %q", args[1])
		}
		if end.Before(start) {
			return fmt.Errorf("end date %s is before start date %s", args[1], args[0])
		}

		client := cli.InitAPIClient(cfg)
		exists, err := client.PeriodExists(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		if exists {
			fmt.Printf("A report already covers %s - %s\n", args[0], args[1])
		} else {
			fmt.Printf("The period %s - %s is free\n", args[0], args[1])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(periodCmd)
}
