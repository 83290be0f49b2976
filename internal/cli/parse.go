package cli

import (
	"io"
	"os"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/dejadiff/internal/driver"
	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/render"
	"github.com/AndreyAkinshin/dejadiff/internal/results"
	"github.com/AndreyAkinshin/dejadiff/internal/sink"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

type transcriptOptions struct {
	harness   string
	prefix    string
	stripANSI bool
}

func (o *transcriptOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.harness, "harness", "dejagnu", "transcript format (dejagnu, runtest, gcc)")
	cmd.Flags().StringVar(&o.prefix, "prefix", "", "prefix prepended to every suite name")
	cmd.Flags().BoolVar(&o.stripANSI, "strip-ansi", false, "remove ANSI escape sequences before parsing")
}

func newParseCmd(a *app) *cobra.Command {
	var opts transcriptOptions
	var passes, details bool
	cmd := &cobra.Command{
		Use:   "parse [transcript|-]",
		Short: "Parse a harness transcript and print its suites",
		Long: `Parse reads a transcript saved from a harness run (or standard input when
no file or "-" is given) and prints the outcome counts of every suite. No
harness is run and nothing is published.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			agg, err := a.parseTranscript(name, opts, nil)
			if err != nil {
				return err
			}
			if passes {
				a.out.Print("%s", render.PassesPage(agg))
				return nil
			}
			a.out.Print("%s", sink.SummaryTable(agg))
			if details {
				a.out.Print("%s", sink.ChangesText(agg))
			}
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&passes, "passes", false, "print the unexpected failures and passes page instead of the table")
	cmd.Flags().BoolVar(&details, "details", false, "list unexpected failures and passes per suite")
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	var opts transcriptOptions
	var failOnRegression bool
	cmd := &cobra.Command{
		Use:   "compare <previous> <current>",
		Short: "Compare two harness transcripts",
		Long: `Compare parses two saved transcripts and lists, per suite, the tests that
newly fail or unexpectedly pass in the current transcript (-) and those
that no longer do (+).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := a.parseTranscript(args[0], opts, nil)
			if err != nil {
				return err
			}
			agg, err := a.parseTranscript(args[1], opts, regression.FromSuites(before.Suites()))
			if err != nil {
				return err
			}

			changes := sink.ChangesText(agg)
			if changes == "" {
				a.out.Info("no changes")
			} else {
				a.out.Print("%s", changes)
			}
			if failOnRegression && agg.Regressed() {
				return dderrors.Newf("%d newly broken tests", countBroken(agg))
			}
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&failOnRegression, "fail-on-regression", false, "exit with status 1 when any test newly broke")
	return cmd
}

// parseTranscript parses the named file ("-" for stdin) into an aggregate,
// diffing every suite against previous. Nil previous diffs against nothing.
func (a *app) parseTranscript(name string, opts transcriptOptions, previous regression.PreviousRun) (*results.Aggregate, error) {
	parser := testparser.NewRegistry().GetParser(opts.harness)
	if parser == nil {
		return nil, dderrors.Configf("unknown harness %q (available: %s)", opts.harness, strings.Join(testparser.NewRegistry().Names(), ", "))
	}

	var r io.Reader = a.stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, dderrors.Wrap(err, "open transcript")
		}
		defer f.Close()
		r = f
	}
	if opts.stripANSI {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, dderrors.Wrap(err, "read transcript")
		}
		r = strings.NewReader(stripansi.Strip(string(data)))
	}

	agg := results.New()
	for suite := range parser.Parse(r) {
		key := driver.TestSpec{Prefix: opts.prefix}.Key(suite.Name)
		suite.Name = key
		prev := previous.Lookup(key)
		agg.Put(key, results.Entry{Suite: suite, Diff: regression.Diff(suite, prev), HasPrevious: prev != nil})
	}
	return agg, nil
}

func countBroken(agg *results.Aggregate) int {
	n := 0
	for _, key := range agg.Keys() {
		e, _ := agg.Get(key)
		n += len(e.Diff.NewlyBroken)
	}
	return n
}
