package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/recruit-cli/internal/fetcher"
	"github.com/sells-group/recruit-cli/internal/model"
)

var (
	candidatesFile      string
	candidatesStatus    string
	candidatesFavorites bool
	noteAuthor          string
	editComments        string
	editCallLog         string
	editCurrentComp     string
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Inspect and edit the reconciled candidate list",
}

// syncedPipeline builds the pipeline and runs one sync so subcommands see
// the current reconciled record set.
func syncedPipeline(cmd *cobra.Command) (*pipelineEnv, error) {
	if candidatesFile != "" {
		sourceOverride = fetcher.NewFileSource(candidatesFile)
	}
	env, err := initPipeline(cmd.Context())
	if err != nil {
		return nil, err
	}
	env.Pipeline.Sync(cmd.Context())
	return env, nil
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := syncedPipeline(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		records := env.Pipeline.Records()
		if candidatesStatus != "" {
			records = filterByStatus(records, model.Status(candidatesStatus))
		}
		if candidatesFavorites {
			records = filterFavorites(records)
		}

		// Highest rated first; unscored candidates sink to the bottom in
		// their original row order.
		sort.SliceStable(records, func(i, j int) bool {
			return ratingOf(records[i]) > ratingOf(records[j])
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "EMAIL\tNAME\tSTATUS\tFAV\tRATING\tQUEUE")
		queued := make(map[string]bool)
		for _, e := range env.Pipeline.QueuedEmails() {
			queued[e] = true
		}
		for _, c := range records {
			rating := "-"
			if c.Analysis.Scored() {
				rating = fmt.Sprintf("%.1f", c.Analysis.Rating)
			}
			fav := ""
			if c.IsFavorite {
				fav = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				c.Email, c.FullName, c.Status, fav, rating, pipelineStatusLabel(c, queued))
		}
		return w.Flush()
	},
}

var candidatesShowCmd = &cobra.Command{
	Use:   "show <email>",
	Short: "Show one candidate in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := syncedPipeline(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		c, ok := env.Pipeline.Candidate(args[0])
		if !ok {
			return eris.Errorf("no candidate with email %q", args[0])
		}

		printCandidate(c)
		return nil
	},
}

var candidatesStatusCmd = &cobra.Command{
	Use:   "status <email> <status>",
	Short: "Set a candidate's workflow status",
	Long:  "Statuses: New, Reviewing, Interview, Offer, Hired, Rejected.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := syncedPipeline(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Pipeline.SetStatus(cmd.Context(), args[0], model.Status(args[1])); err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", args[0], args[1])
		return nil
	},
}

var candidatesFavoriteCmd = &cobra.Command{
	Use:   "favorite <email>",
	Short: "Toggle a candidate's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := syncedPipeline(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Pipeline.ToggleFavorite(cmd.Context(), args[0]); err != nil {
			return err
		}
		c, _ := env.Pipeline.Candidate(args[0])
		fmt.Printf("%s favorite=%t\n", args[0], c.IsFavorite)
		return nil
	},
}

var candidatesNoteCmd = &cobra.Command{
	Use:   "note <email> <text>",
	Short: "Add a note to a candidate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := syncedPipeline(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Pipeline.AddNote(cmd.Context(), args[0], args[1], noteAuthor); err != nil {
			return err
		}
		fmt.Println("note added")
		return nil
	},
}

var candidatesEditCmd = &cobra.Command{
	Use:   "edit <email>",
	Short: "Edit the free-text recruiter fields",
	Long:  "Passing an empty value clears the field; omitting a flag leaves it unchanged.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := syncedPipeline(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		var comments, callLog, currentComp *string
		if cmd.Flags().Changed("comments") {
			comments = &editComments
		}
		if cmd.Flags().Changed("call-log") {
			callLog = &editCallLog
		}
		if cmd.Flags().Changed("current-comp") {
			currentComp = &editCurrentComp
		}
		if comments == nil && callLog == nil && currentComp == nil {
			return eris.New("nothing to edit: pass --comments, --call-log or --current-comp")
		}

		if err := env.Pipeline.UpdateEditable(cmd.Context(), args[0], comments, callLog, currentComp); err != nil {
			return err
		}
		fmt.Println("updated")
		return nil
	},
}

func filterByStatus(records []model.Candidate, s model.Status) []model.Candidate {
	out := records[:0:0]
	for _, c := range records {
		if c.Status == s {
			out = append(out, c)
		}
	}
	return out
}

func filterFavorites(records []model.Candidate) []model.Candidate {
	out := records[:0:0]
	for _, c := range records {
		if c.IsFavorite {
			out = append(out, c)
		}
	}
	return out
}

func ratingOf(c model.Candidate) float64 {
	if c.Analysis.Scored() {
		return c.Analysis.Rating
	}
	return -1
}

func printCandidate(c model.Candidate) {
	fmt.Printf("%s <%s>\n", c.FullName, c.Email)
	fmt.Printf("  status: %s  favorite: %t\n", c.Status, c.IsFavorite)
	fmt.Printf("  phone: %s\n", c.Phone)
	fmt.Printf("  linkedin: %s\n  github: %s\n  portfolio: %s\n", c.LinkedIn, c.GitHub, c.Portfolio)
	fmt.Printf("  compensation ask: %s  availability: %s\n", c.Compensation, c.Availability)
	fmt.Printf("  resume: %s\n", c.ResumeURL)
	fmt.Printf("  skills: TS=%s Node=%s React=%s SQL=%s ETL=%s Cloud=%s\n",
		c.RatingTypeScript, c.RatingNode, c.RatingReact, c.RatingSQL, c.RatingETL, c.CloudProviders)

	if c.Comments != "" {
		fmt.Printf("  comments: %s\n", c.Comments)
	}
	if c.CallLog != "" {
		fmt.Printf("  call log: %s\n", c.CallLog)
	}
	if c.CurrentComp != "" {
		fmt.Printf("  current comp: %s\n", c.CurrentComp)
	}

	if c.Analysis != nil {
		a := c.Analysis
		if a.Scored() {
			fmt.Printf("\n  AI rating: %.1f\n  summary: %s\n", a.Rating, a.Summary)
			if len(a.Strengths) > 0 {
				fmt.Printf("  strengths: %s\n", strings.Join(a.Strengths, "; "))
			}
			if len(a.Weaknesses) > 0 {
				fmt.Printf("  weaknesses: %s\n", strings.Join(a.Weaknesses, "; "))
			}
			for i, q := range a.SuggestedQuestions {
				fmt.Printf("  Q%d: %s\n", i+1, q)
			}
		}
		if a.ResumeSummary != "" {
			fmt.Printf("\n  resume overview:\n%s\n", indent(a.ResumeSummary, "    "))
		}
	}

	for _, n := range c.Notes {
		fmt.Printf("\n  [%s] %s: %s\n", n.Timestamp.Format("2006-01-02 15:04"), n.Author, n.Text)
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

// pipelineStatusLabel maps a candidate and queue membership to the display
// state used by list and the API.
func pipelineStatusLabel(c model.Candidate, queued map[string]bool) string {
	switch {
	case c.Analysis.Scored():
		return "analyzed"
	case queued[c.Email]:
		return "queued"
	default:
		return "unanalyzed"
	}
}

func init() {
	candidatesCmd.PersistentFlags().StringVar(&candidatesFile, "file", "", "read the export from a local CSV file")
	candidatesListCmd.Flags().StringVar(&candidatesStatus, "status", "", "filter by workflow status")
	candidatesListCmd.Flags().BoolVar(&candidatesFavorites, "favorites", false, "show only favorites")
	candidatesNoteCmd.Flags().StringVar(&noteAuthor, "author", "recruiter", "note author")
	candidatesEditCmd.Flags().StringVar(&editComments, "comments", "", "recruiter comments")
	candidatesEditCmd.Flags().StringVar(&editCallLog, "call-log", "", "call log")
	candidatesEditCmd.Flags().StringVar(&editCurrentComp, "current-comp", "", "current compensation")

	candidatesCmd.AddCommand(candidatesListCmd, candidatesShowCmd, candidatesStatusCmd,
		candidatesFavoriteCmd, candidatesNoteCmd, candidatesEditCmd)
	rootCmd.AddCommand(candidatesCmd)
}
