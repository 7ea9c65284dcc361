package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/recruit-cli/internal/fetcher"
	"github.com/sells-group/recruit-cli/internal/pipeline"
)

var (
	draftFile string
	draftKind string
)

var draftCmd = &cobra.Command{
	Use:   "draft <email>",
	Short: "Draft an interview or rejection email for a candidate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if draftFile != "" {
			sourceOverride = fetcher.NewFileSource(draftFile)
		}
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()
		env.Pipeline.Sync(cmd.Context())

		text, err := env.Pipeline.DraftEmail(cmd.Context(), args[0], pipeline.EmailKind(draftKind))
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	draftCmd.Flags().StringVar(&draftFile, "file", "", "read the export from a local CSV file")
	draftCmd.Flags().StringVar(&draftKind, "kind", "interview", "email kind: interview or rejection")
	rootCmd.AddCommand(draftCmd)
}
