package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/dejadiff/internal/config"
	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/logging"
	"github.com/AndreyAkinshin/dejadiff/internal/runner"
	"github.com/AndreyAkinshin/dejadiff/internal/sink"
)

type runOptions struct {
	dryRun bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run <config>",
		Short: "Run every configured test and publish the results",
		Long: `Run collects environment metadata, loads the previous run from the first
configured sink, invokes every test in configuration order, diffs each suite
against the previous run, and publishes the results to every sink.

If any harness cannot be launched the run fails and nothing is published.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfig(cmd, args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "run and diff, but publish nowhere")
	return cmd
}

func (a *app) runConfig(cmd *cobra.Command, path string, opts runOptions) error {
	cfg, warnings, err := config.LoadAndValidate(path)
	for _, w := range warnings {
		a.out.Warning("%s", w)
	}
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return dderrors.Wrap(err, "determine working directory")
	}

	verbose := a.verbose || (cfg.Verbose && !a.quiet)
	logger := logging.InitForCLI(logging.LevelFor(verbose, a.quiet), a.stderr)
	a.verbose = verbose

	ctx := cmd.Context()
	session, err := runner.NewSession(ctx, cfg, runner.SessionOptions{
		Cwd:      cwd,
		Logger:   logger,
		Out:      a.stdout,
		Progress: a.out,
		DryRun:   opts.dryRun,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	logger.Info("starting run", "run", session.RunID(), "description", cfg.Description)
	report, err := session.Execute(ctx)
	if err != nil {
		return err
	}

	if opts.dryRun {
		a.out.Print("%s", sink.SummaryTable(report.Results))
		a.out.Info("dry run: results were not published")
		return nil
	}
	if a.out.Quiet() {
		return nil
	}
	a.out.Success("run %s complete: %d suites published to %d sinks", report.RunID, report.Results.Len(), len(report.Published))
	return nil
}
