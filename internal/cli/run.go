package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/altova/sec-edgar-tools/internal/canon"
	"github.com/altova/sec-edgar-tools/internal/classify"
	"github.com/altova/sec-edgar-tools/internal/diag"
	"github.com/altova/sec-edgar-tools/internal/report"
	"github.com/altova/sec-edgar-tools/internal/runner"
	"github.com/altova/sec-edgar-tools/internal/store"
	"github.com/altova/sec-edgar-tools/internal/suite"
	"github.com/altova/sec-edgar-tools/internal/validator"
)

// defaultPattern extracts bracketed dotted rule codes such as
// "[EFM.6.05.12]" or "[DQC.US.0001.75]" from diagnostic messages.
const defaultPattern = `\[([A-Za-z]+(?:\.[A-Za-z0-9]+)+)\]`

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	ConfigFile string

	ValidatorPath string
	ValidatorArgs []string
	OutputFlag    string

	Pattern    string
	Severities []string

	Workers int
	Timeout time.Duration

	Testcases  []string
	Variations []string
	Strict     bool

	CSVReport    string
	XMLReport    string
	RelativeURIs bool

	History string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <index-file>",
		Short: "Execute a conformance suite against a validation engine",
		Long: `Execute every variation of the suite behind the given index file,
compare observed diagnostics and output documents against recorded
expectations, and report aggregate conformance.

Example:
  testsuite run --validator raptorxmlxbrl --validator-arg valxbrl ./efm/conf/testcases.xml
  testsuite run --config dqc.yaml --csv-report results.csv --workers 8 ./dqc/index.xml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&opts.ValidatorPath, "validator", "", "validation engine binary")
	cmd.Flags().StringArrayVar(&opts.ValidatorArgs, "validator-arg", nil, "extra engine argument (repeatable)")
	cmd.Flags().StringVar(&opts.OutputFlag, "output-flag", "", "engine flag requesting the transformed output document")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", "rule-code extraction pattern (first capture group)")
	cmd.Flags().StringSliceVar(&opts.Severities, "severity", nil, "severities folded into fingerprints (default error)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent variations (0 means one per CPU)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "per-variation execution limit (0 disables)")
	cmd.Flags().StringSliceVar(&opts.Testcases, "testcase", nil, "run only these testcase numbers")
	cmd.Flags().StringSliceVar(&opts.Variations, "variation", nil, "run only these variation ids")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "classify unexpected extra codes as INVALID_RESULT_COUNT")
	cmd.Flags().StringVar(&opts.CSVReport, "csv-report", "", "write a CSV report to this file")
	cmd.Flags().StringVar(&opts.XMLReport, "xml-report", "", "write an XML report to this file")
	cmd.Flags().BoolVar(&opts.RelativeURIs, "relative-uris", false, "report URIs relative to the suite directory")
	cmd.Flags().StringVar(&opts.History, "history", "", "archive the run in this sqlite database")

	return cmd
}

// applyConfig fills options the command line left unset from the config
// file. Changed flags always win.
func applyConfig(opts *RunOptions, cmd *cobra.Command) error {
	if opts.ConfigFile == "" {
		return nil
	}
	cfg, err := LoadConfig(opts.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	flags := cmd.Flags()
	if !flags.Changed("validator") && cfg.Validator.Path != "" {
		opts.ValidatorPath = cfg.Validator.Path
	}
	if !flags.Changed("validator-arg") && len(cfg.Validator.Args) > 0 {
		opts.ValidatorArgs = cfg.Validator.Args
	}
	if !flags.Changed("output-flag") && cfg.Validator.OutputFlag != "" {
		opts.OutputFlag = cfg.Validator.OutputFlag
	}
	if !flags.Changed("pattern") && cfg.Pattern != "" {
		opts.Pattern = cfg.Pattern
	}
	if !flags.Changed("severity") && len(cfg.Severities) > 0 {
		opts.Severities = cfg.Severities
	}
	if !flags.Changed("workers") && cfg.Workers > 0 {
		opts.Workers = cfg.Workers
	}
	if !flags.Changed("history") && cfg.History != "" {
		opts.History = cfg.History
	}
	return nil
}

func runSuite(opts *RunOptions, indexPath string, cmd *cobra.Command) error {
	logger, closeLog, err := opts.newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	if err := applyConfig(opts, cmd); err != nil {
		return err
	}
	if opts.ValidatorPath == "" {
		return NewExitError(ExitCommandError, "no validation engine configured; use --validator or a config file")
	}

	pattern := opts.Pattern
	if pattern == "" {
		pattern = defaultPattern
	}
	codeRe, err := regexp.Compile(pattern)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid code pattern", err)
	}
	if codeRe.NumSubexp() < 1 {
		return NewExitError(ExitCommandError, "code pattern needs a capture group for the rule code")
	}
	severities, err := parseSeverities(opts.Severities)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid severity", err)
	}

	logger.Info("loading suite", "index", indexPath)
	s, err := suite.Load(indexPath, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "load suite", err)
	}
	variations := s.Variations(suite.Filter{Testcases: opts.Testcases, Variations: opts.Variations})
	if len(variations) == 0 {
		return NewExitError(ExitCommandError, "no variations selected")
	}

	engine := &validator.Command{
		Path:       opts.ValidatorPath,
		Args:       opts.ValidatorArgs,
		OutputFlag: opts.OutputFlag,
	}
	fingerprinter := diag.Fingerprinter{Pattern: codeRe, Severities: severities}
	classifier := &classify.Classifier{
		Strict:        opts.Strict,
		Hasher:        canon.NewHasher(canon.DefaultOptions()),
		LoadReference: canon.ParseFile,
	}

	exec := func(ctx context.Context, v suite.Variation) classify.Outcome {
		if v.SkipReason != "" {
			return classifier.Classify(v, nil, nil)
		}
		res, err := engine.Validate(ctx, v.EntryPoint, v.Parameters)
		if err != nil {
			return classify.ExceptionOutcome(err)
		}
		return classifier.Classify(v, fingerprinter.Fingerprint(res.Diagnostics), res.Output)
	}

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	r := &runner.Runner{Workers: opts.Workers, Timeout: opts.Timeout, Logger: logger}
	run := r.Run(ctx, s.URI, variations, exec)

	if err := writeReports(opts, s, run); err != nil {
		return err
	}
	if opts.History != "" {
		if err := archiveRun(ctx, opts.History, run); err != nil {
			return err
		}
	}
	if err := report.Print(cmd.OutOrStdout(), s, run); err != nil {
		return WrapExitError(ExitCommandError, "write summary", err)
	}

	if sum := report.Summarize(run); sum.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d variations failed", sum.Failed, sum.Total))
	}
	return nil
}

func parseSeverities(names []string) (diag.SeveritySet, error) {
	if len(names) == 0 {
		return diag.Severities(diag.SeverityError), nil
	}
	var set diag.SeveritySet
	for _, name := range names {
		s, err := diag.ParseSeverity(name)
		if err != nil {
			return 0, err
		}
		set |= diag.Severities(s)
	}
	return set, nil
}

func writeReports(opts *RunOptions, s *suite.Suite, run *report.Run) error {
	ropts := report.Options{RelativeURIs: opts.RelativeURIs}
	if opts.CSVReport != "" {
		if err := writeReportFile(opts.CSVReport, func(f *os.File) error {
			return report.WriteCSV(f, s, run, ropts)
		}); err != nil {
			return WrapExitError(ExitCommandError, "write CSV report", err)
		}
	}
	if opts.XMLReport != "" {
		if err := writeReportFile(opts.XMLReport, func(f *os.File) error {
			return report.WriteXML(f, s, run, ropts)
		}); err != nil {
			return WrapExitError(ExitCommandError, "write XML report", err)
		}
	}
	return nil
}

func writeReportFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func archiveRun(ctx context.Context, path string, run *report.Run) error {
	st, err := store.Open(ctx, path)
	if err != nil {
		return WrapExitError(ExitCommandError, "open history database", err)
	}
	defer st.Close()
	if err := st.SaveRun(ctx, run); err != nil {
		return WrapExitError(ExitCommandError, "archive run", err)
	}
	return nil
}

// signalContext cancels the run on SIGINT or SIGTERM. In-flight
// variations finish as exceptions and the partial run is still reported.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, cancelling run", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}
