package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"tenantreport/internal/cli"
	"tenantreport/internal/core"
	"tenantreport/internal/services"
)

var draftCmd = &cobra.Command{
	Use:   "draft <id>",
	Short: "Show a local draft and queue it for sync",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		logger := slog.Default()
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

		draft, err := repo.GetDraft(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Draft %d (version %d, %s)\n", draft.ID, draft.Version, draft.Status)
		if draft.RemoteReportID.Valid {
			fmt.Printf("  backend report: %d\n", draft.RemoteReportID.Int64)
		}
		fmt.Printf("  kkt rows: %d, cash rows: %d, non-cash rows: %d, other rows: %d\n",
			len(draft.StepTwo.Kkt.Rows), len(draft.StepTwo.CashKkt.Rows),
			len(draft.StepTwo.NonCash.Rows), len(draft.StepTwo.OtherSum.Rows))
		fmt.Printf("  refund rows: %d, other exclusion rows: %d\n",
			len(draft.StepThree.Refunds.Rows), len(draft.StepThree.OtherAmounts.Rows))

		totalWithVAT := draft.StepTwo.TotalWithVAT() - draft.StepThree.TotalWithVAT()
		rent := core.CalculateRent(core.RentInput{
			TotalWithVAT:   totalWithVAT,
			RentPercentage: draft.RentPercentage,
			ComparisonBase: draft.ComparisonBase,
		})
		fmt.Printf("  turnover: %.2f with VAT (exclusions subtracted)\n", totalWithVAT)
		fmt.Printf("  rent: %.2f with VAT, %.2f without VAT\n", rent.PaymentWithVAT, rent.PaymentWithoutVAT)

		// Re-save to bump the version and put the draft back on the queue
		draftSvc := services.NewDraftService(repo, connectBroker())
		defer draftSvc.Close()

		_, version, err := draftSvc.SaveDraft(cmd.Context(), id, draft.Snapshot())
		if err != nil {
			return err
		}
		fmt.Printf("Queued for sync at version %d\n", version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(draftCmd)
}
