package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/acarl005/stripansi"

	"github.com/AndreyAkinshin/dejadiff/internal/logging"
)

// SiteEnvVar is the variable runtest reads its site configuration path from.
const SiteEnvVar = "DEJAGNU"

// waitDelay bounds how long Wait blocks on inherited pipes after the
// process has been killed.
const waitDelay = 5 * time.Second

// DejaGnuDriver runs DejaGnu harness commands.
//
// The child gets its own working directory and environment; the current
// process's directory and environment are never touched.
type DejaGnuDriver struct {
	logger  *slog.Logger
	environ func() []string
}

// Option configures a DejaGnuDriver.
type Option func(*DejaGnuDriver)

// WithLogger sets the driver's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *DejaGnuDriver) {
		d.logger = logging.OrDiscard(logger)
	}
}

// WithEnviron overrides the base environment the child inherits.
func WithEnviron(environ func() []string) Option {
	return func(d *DejaGnuDriver) {
		d.environ = environ
	}
}

// NewDejaGnuDriver creates a DejaGnu driver.
func NewDejaGnuDriver(opts ...Option) *DejaGnuDriver {
	d := &DejaGnuDriver{
		logger:  logging.Discard(),
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the driver name.
func (d *DejaGnuDriver) Name() string {
	return "dejagnu"
}

// Run executes spec.Command in spec.Directory and returns its combined
// stdout and stderr.
func (d *DejaGnuDriver) Run(ctx context.Context, spec TestSpec) (string, error) {
	if len(spec.Command) == 0 {
		return "", &LaunchError{Spec: spec, Cause: errors.New("empty command")}
	}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.Directory
	cmd.Env = siteEnv(d.environ(), spec)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	cmd.WaitDelay = waitDelay

	d.logger.Debug("starting harness",
		"dir", spec.Directory,
		"command", strings.Join(spec.Command, " "),
		"site", spec.Site)

	start := time.Now()
	err := cmd.Run()
	output := buf.String()
	if spec.StripANSI {
		output = stripansi.Strip(output)
	}

	// A context error takes precedence: a killed process also reports an
	// exit status, but the invocation did not complete.
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) && spec.Timeout > 0 {
			ctxErr = fmt.Errorf("timed out after %s: %w", spec.Timeout, ctxErr)
		}
		return output, &LaunchError{Spec: spec, Output: output, Cause: ctxErr}
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		d.logger.Debug("harness exited with non-zero status", "code", exitErr.ExitCode())
	default:
		return output, &LaunchError{Spec: spec, Output: output, Cause: err}
	}

	d.logger.Debug("harness finished", "elapsed", time.Since(start).Round(time.Millisecond), "bytes", len(output))
	return output, nil
}

// siteEnv returns environ with the site variable set from spec, or removed
// when the spec has no site.
func siteEnv(environ []string, spec TestSpec) []string {
	env := make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		if strings.HasPrefix(kv, SiteEnvVar+"=") {
			continue
		}
		env = append(env, kv)
	}
	if spec.HasSite() {
		env = append(env, SiteEnvVar+"="+spec.Site)
	}
	return env
}
