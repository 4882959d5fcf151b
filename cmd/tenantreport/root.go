package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tenantreport/internal/cli"
	"tenantreport/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tenantreport",
	Short: "Tenant sales report tool: import, draft, submit and export reports",
	Long: `tenantreport drives the monthly tenant sales report from the command line.

Report data is imported from an xlsx workbook, kept locally as a draft and
submitted to the landlord's portal. Drafts are synced to the backend in the
background by report-worker.

Example usage:
  tenantreport import report.xlsx     # workbook -> local draft
  tenantreport submit 3               # final submission of draft 3
  tenantreport pdf 125                # download the submitted report's PDF
  tenantreport period 2025-06-01 2025-06-30`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cli.LoadEnvFile()
		logger := cli.SetupLogger()
		cfg = cli.LoadAndValidateConfig(logger)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
