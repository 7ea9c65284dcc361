package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/recruit-cli/internal/fetcher"
)

var (
	syncFile  string
	syncDrain bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the sheet export and reconcile against local edits",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if syncFile != "" {
			sourceOverride = fetcher.NewFileSource(syncFile)
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		records := env.Pipeline.Sync(ctx)
		fmt.Printf("synced %d candidates, %d queued for analysis\n",
			len(records), env.Pipeline.QueueLen())

		if syncDrain {
			zap.L().Info("draining enrichment queue", zap.Int("queue_len", env.Pipeline.QueueLen()))
			env.Pipeline.Drain(ctx)
			fmt.Println("enrichment queue drained")
		}

		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncFile, "file", "", "read the export from a local CSV file instead of the sheet URL")
	syncCmd.Flags().BoolVar(&syncDrain, "drain", false, "process the enrichment queue to completion after syncing")
	rootCmd.AddCommand(syncCmd)
}
