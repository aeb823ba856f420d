// Package exec runs the external tools gln-setup drives (git, ssh-keygen,
// ssh-copy-id, package managers) behind a small interface so callers can be
// tested with a fake.
package exec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/logger"
)

// Runner executes commands by argv, never through a shell.
type Runner interface {
	// Run executes the command attached to the runner's stdio.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes the command and returns its trimmed stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// LookPath reports where name lives on PATH.
	LookPath(name string) (string, error)
}

// LocalRunner runs commands on this machine.
type LocalRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    logger.Logger
}

// NewLocalRunner returns a runner wired to the process's stdio.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Log:    logger.NewEnvLogger("[exec]"),
	}
}

// Run executes the command, streaming output to the runner's writers. Stderr
// is also kept so a failure can say which program was missing.
func (r *LocalRunner) Run(ctx context.Context, name string, args ...string) error {
	r.logger().Debug("run: %s", CommandString(name, args...))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = &stderr
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(r.Stderr, &stderr)
	}

	if err := cmd.Run(); err != nil {
		return commandError(err, name, args, stderr.String())
	}
	return nil
}

// Output executes the command and returns stdout with surrounding
// whitespace removed. Stderr is included in the error on failure.
func (r *LocalRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	r.logger().Debug("output: %s", CommandString(name, args...))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return strings.TrimSpace(stdout.String()), commandError(err, name, args, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

// LookPath wraps exec.LookPath.
func (r *LocalRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *LocalRunner) logger() logger.Logger {
	if r.Log == nil {
		return logger.Noop()
	}
	return r.Log
}

// CommandString renders argv the way a user would type it in a shell.
func CommandString(name string, args ...string) string {
	return shellquote.Join(append([]string{name}, args...)...)
}

// ExitCode returns the exit status carried by err, or -1 when err did not
// come from a command that ran and exited.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func commandError(err error, name string, args []string, stderr string) error {
	command := CommandString(name, args...)

	if _, ok := err.(*exec.ExitError); ok {
		code := ExitCode(err)
		message := fmt.Sprintf("%s exited with code %d", command, code)
		if detail := strings.TrimSpace(stderr); detail != "" {
			message += ": " + detail
		}
		suggestion := ""
		if missing, ok := MissingCommand(stderr, code); ok {
			suggestion = missingCommandSuggestion(missing)
		}
		return errors.WrapWithCode(err, errors.ErrExec, message, suggestion)
	}

	return errors.WrapWithCode(err, errors.ErrExec,
		fmt.Sprintf("Couldn't run %s", command),
		fmt.Sprintf("Make sure %s is installed and on your PATH.", name))
}
