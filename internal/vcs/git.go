// Package vcs runs git in a fixed working tree.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/AndreyAkinshin/dejadiff/internal/logging"
)

// Git executes git commands with a fixed working directory. The current
// process's directory is never changed.
type Git struct {
	dir    string
	binary string
	logger *slog.Logger
}

// NewGit creates a git executor for the tree at dir.
func NewGit(dir string, logger *slog.Logger) *Git {
	return &Git{
		dir:    dir,
		binary: "git",
		logger: logging.OrDiscard(logger),
	}
}

// Dir returns the working tree.
func (g *Git) Dir() string {
	return g.dir
}

// Available reports whether the git binary can be found.
func (g *Git) Available() bool {
	_, err := exec.LookPath(g.binary)
	return err == nil
}

// Run executes git with args and returns the combined output.
// A non-zero exit is an error that includes the output.
func (g *Git) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = g.dir
	cmd.Env = gitEnv(os.Environ())

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	g.logger.Debug("running git", "dir", g.dir, "args", strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		return out.String(), &CommandError{Args: args, Output: out.String(), Err: err}
	}
	return out.String(), nil
}

// Output executes git with args and returns stdout only.
func (g *Git) Output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = g.dir
	cmd.Env = gitEnv(os.Environ())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{Args: args, Output: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

// Clone clones remote into dir. The parent of dir must exist.
func Clone(ctx context.Context, remote, dir string, logger *slog.Logger) error {
	parent := NewGit(".", logger)
	_, err := parent.Run(ctx, "clone", remote, dir)
	return err
}

// Head returns the commit hash of HEAD.
func (g *Git) Head(ctx context.Context) (string, error) {
	out, err := g.Output(ctx, "log", "-1", "--pretty=format:%H")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Dirty reports whether the working tree has uncommitted changes.
func (g *Git) Dirty(ctx context.Context) (bool, error) {
	out, err := g.Output(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommandError reports a failed git invocation.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += " (" + firstLine(out) + ")"
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsNothingToCommit reports whether err is a commit that found no changes.
func IsNothingToCommit(err error) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	return strings.Contains(cmdErr.Output, "nothing to commit") ||
		strings.Contains(cmdErr.Output, "nothing added to commit")
}

// gitEnv keeps git from prompting for credentials or an editor.
func gitEnv(environ []string) []string {
	env := make([]string, 0, len(environ)+2)
	env = append(env, environ...)
	return append(env, "GIT_TERMINAL_PROMPT=0", "GIT_EDITOR=true")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
