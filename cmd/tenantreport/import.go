package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"tenantreport/internal/amqp"
	"tenantreport/internal/cli"
	"tenantreport/internal/importer"
	"tenantreport/internal/services"
	"tenantreport/internal/storage"
)

var importDraftID int64

var importCmd = &cobra.Command{
	Use:   "import <workbook.xlsx>",
	Short: "Import a filled workbook into a local draft",
	Long: `Reads the report tables from an xlsx workbook, validates every row and
saves the result as a local draft. The draft is queued for background sync.

With --draft the existing draft is overwritten instead of creating a new one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()

		res, err := importer.Import(f)
		if err != nil {
			return err
		}

		logger := slog.Default()
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

		draftSvc := services.NewDraftService(repo, connectBroker())
		defer draftSvc.Close()

		snap := storage.Snapshot{
			StepTwo:        res.StepTwo,
			StepThree:      res.StepThree,
			ComparisonBase: cfg.ComparisonBase,
			RentPercentage: cfg.RentPercentage,
		}
		id, version, err := draftSvc.SaveDraft(cmd.Context(), importDraftID, snap)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d revenue rows and %d exclusion rows into draft %d (version %d)\n",
			len(res.StepTwo.Kkt.Rows)+len(res.StepTwo.CashKkt.Rows)+
				len(res.StepTwo.NonCash.Rows)+len(res.StepTwo.OtherSum.Rows),
			len(res.StepThree.Refunds.Rows)+len(res.StepThree.OtherAmounts.Rows),
			id, version)
		return nil
	},
}

// connectBroker dials AMQP when configured; the draft queue works without it.
func connectBroker() *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Warn("AMQP unavailable, sync will rely on queue polling", "error", err)
		return nil
	}
	return client
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid draft id %q", arg)
	}
	return id, nil
}

func init() {
	importCmd.Flags().Int64Var(&importDraftID, "draft", 0, "Overwrite an existing draft instead of creating a new one")
	rootCmd.AddCommand(importCmd)
}
