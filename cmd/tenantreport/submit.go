package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"tenantreport/internal/cli"
	"tenantreport/internal/report"
	"tenantreport/internal/services"
	"tenantreport/internal/stores"
)

var submitForce bool

var submitCmd = &cobra.Command{
	Use:   "submit <draft-id>",
	Short: "Validate a draft and submit it as the final report",
	Long: `Loads the draft from local storage, runs full validation and posts the
assembled report to the backend. The draft is marked Submitted on success.

The backend is asked first whether the reporting period is already covered;
pass --force to skip that check.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		logger := slog.Default()
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		client := cli.InitAPIClient(cfg)

		draft, err := repo.GetDraft(cmd.Context(), id)
		if err != nil {
			return err
		}
		if draft.Status == string(report.StatusSubmitted) {
			return fmt.Errorf("draft %d is already submitted (report %d)", id, draft.RemoteReportID.Int64)
		}

		if !submitForce && draft.StepOne.Period != nil {
			exists, err := client.PeriodExists(cmd.Context(), draft.StepOne.Period.Start, draft.StepOne.Period.End)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("a report already covers %s - %s (use --force to submit anyway)",
					draft.StepOne.Period.Start.Format("2006-01-02"),
					draft.StepOne.Period.End.Format("2006-01-02"))
			}
		}

		one := stores.NewStepOne()
		two := stores.NewStepTwo()
		three := stores.NewStepThree()
		one.Set(draft.StepOne)
		two.Set(draft.StepTwo)
		three.Set(draft.StepThree)

		svc := services.NewReportService(one, two, three, client).WithDraft(repo, id)
		result, err := svc.Submit(cmd.Context(), report.Scalars{
			ComparisonBase: draft.ComparisonBase,
			RentPercentage: draft.RentPercentage,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Report %d submitted", result.ReportID)
		if result.Message != "" {
			fmt.Printf(": %s", result.Message)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	submitCmd.Flags().BoolVar(&submitForce, "force", false, "Skip the period overlap check")
	rootCmd.AddCommand(submitCmd)
}
