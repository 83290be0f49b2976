// Package cli implements the dejadiff command line.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/acarl005/stripansi"
	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/dejadiff/internal/driver"
	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/output"
)

// Version is set at build time.
var Version = "dev"

// app carries what every command needs. One app exists per Run.
type app struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	out     *output.Writer
	verbose bool
	quiet   bool
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, out: output.New()}
	return a.run(ctx, args)
}

// run executes args and maps the result to an exit code.
func (a *app) run(ctx context.Context, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return dderrors.ExitSuccess
	}
	a.report(err)
	return exitCode(err)
}

// report prints err. A launch failure names the failing spec and, when
// verbose, the output captured before it failed.
func (a *app) report(err error) {
	var launchErr *driver.LaunchError
	if !errors.As(err, &launchErr) {
		a.out.Failure("%v", err)
		return
	}
	var captured string
	if a.verbose {
		captured = stripansi.Strip(launchErr.Output)
	}
	a.out.SpecFailed(launchErr.Spec.Describe(), launchErr.Cause, captured)
}

// exitCode maps errors from commands to exit codes. Errors without an exit
// code come from cobra itself (unknown command, bad flag, wrong argument
// count) and are usage errors.
func exitCode(err error) int {
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) {
		return dderrors.ExitConfigError
	}
	return dderrors.GetExitCode(err)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "dejadiff",
		Short: "Run DejaGnu test suites and report what newly broke or got fixed",
		Long: `dejadiff runs one or more DejaGnu harness invocations, parses their
transcripts into per-suite results, and compares the unexpected failures
and passes against the previous run archived by the first configured sink.`,
		Version: Version,
		// Errors are printed by run with the CLI's own formatting.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.out.SetQuiet(a.quiet)
		},
	}
	root.SetVersionTemplate(`{{printf "dejadiff %s\n" .Version}}`)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging and show harness output on failure")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "only print errors")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newParseCmd(a))
	root.AddCommand(newCompareCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newVersionCmd(a))
	return root
}
