package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sells-group/recruit-cli/internal/export"
	"github.com/sells-group/recruit-cli/internal/fetcher"
)

var (
	exportFile string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the candidate list to an XLSX report",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFile != "" {
			sourceOverride = fetcher.NewFileSource(exportFile)
		}
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		records := env.Pipeline.Sync(cmd.Context())
		sort.SliceStable(records, func(i, j int) bool {
			return ratingOf(records[i]) > ratingOf(records[j])
		})

		if err := export.WriteXLSX(exportOut, records); err != nil {
			return err
		}
		fmt.Printf("wrote %d candidates to %s\n", len(records), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFile, "file", "", "read the export from a local CSV file")
	exportCmd.Flags().StringVar(&exportOut, "out", "candidates.xlsx", "output path")
	rootCmd.AddCommand(exportCmd)
}
