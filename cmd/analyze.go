package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/recruit-cli/internal/fetcher"
)

var (
	analyzeFile   string
	analyzeResume string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <email>",
	Short: "Run AI analysis for one candidate now",
	Long:  "Scores the candidate immediately, outside the queue. With --resume, generates a resume overview from the given text file instead.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeFile != "" {
			sourceOverride = fetcher.NewFileSource(analyzeFile)
		}
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()
		env.Pipeline.Sync(cmd.Context())

		email := args[0]

		if analyzeResume != "" {
			text, err := os.ReadFile(analyzeResume)
			if err != nil {
				return eris.Wrapf(err, "read resume file %s", analyzeResume)
			}
			summary, err := env.Pipeline.SummarizeResume(cmd.Context(), email, string(text))
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		}

		cand, err := env.Pipeline.AnalyzeNow(cmd.Context(), email)
		if err != nil {
			return err
		}
		printCandidate(cand)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "read the export from a local CSV file")
	analyzeCmd.Flags().StringVar(&analyzeResume, "resume", "", "path to a resume text file; generates a resume overview instead of a score")
	rootCmd.AddCommand(analyzeCmd)
}
