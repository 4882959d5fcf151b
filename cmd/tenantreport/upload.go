package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tenantreport/internal/api"
	"tenantreport/internal/cli"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload attachments and print their backend ids",
	Long: `Uploads one or more files to the backend storage. The printed ids go into
the file_ids column of the workbook rows they belong to.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := make([]api.FileArg, 0, len(args))
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()
			files = append(files, api.FileArg{Name: filepath.Base(path), Reader: f})
		}

		client := cli.InitAPIClient(cfg)
		uploaded, err := client.UploadFiles(cmd.Context(), files)
		if err != nil {
			return err
		}
		for i, file := range uploaded {
			fmt.Printf("%6d  %s\n", file.ID, args[i])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
