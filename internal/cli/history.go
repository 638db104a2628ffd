package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/altova/sec-edgar-tools/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	RunID    string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs and their conformance figures",
		Long: `List runs archived with the run command's --history flag, newest
first. With --run, list that run's per-variation verdicts instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "history sqlite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs listed (0 means all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "list one run's per-variation verdicts")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func showHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	st, err := store.Open(ctx, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open history database", err)
	}
	defer st.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if opts.RunID != "" {
		results, err := st.RunResults(ctx, opts.RunID)
		if err != nil {
			return WrapExitError(ExitCommandError, "read run results", err)
		}
		fmt.Fprintln(w, "TESTCASE\tVARIATION\tVERDICT\tACTUAL\tEXTRAS")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.TestcaseURI, r.VariationID, r.Verdict, r.Observed, r.Extras)
		}
		return w.Flush()
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "list runs", err)
	}
	fmt.Fprintln(w, "STARTED\tRUN\tSUITE\tTOTAL\tFAILED\tSKIPPED\tCONFORMANCE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.2f%%\n",
			r.Started.Format("2006-01-02 15:04:05"), r.ID, r.SuiteURI, r.Total, r.Failed, r.Skipped, r.Conformance)
	}
	return w.Flush()
}
