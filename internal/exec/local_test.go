package exec

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/logger"
)

func newTestRunner() (*LocalRunner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &LocalRunner{Stdout: &stdout, Stderr: &stderr, Log: logger.Noop()}, &stdout, &stderr
}

func TestLocalRunner_Run(t *testing.T) {
	r, stdout, _ := newTestRunner()

	err := r.Run(context.Background(), "echo", "hello")

	require.NoError(t, err)
	assert.Equal(t, "hello\n", stdout.String())
}

func TestLocalRunner_RunNonZeroExit(t *testing.T) {
	r, _, stderr := newTestRunner()

	err := r.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")

	require.Error(t, err)
	assert.Equal(t, 3, ExitCode(err))
	assert.True(t, errors.IsCode(err, errors.ErrExec))
	assert.Equal(t, "oops\n", stderr.String())
}

func TestLocalRunner_RunMissingBinary(t *testing.T) {
	r, _, _ := newTestRunner()

	err := r.Run(context.Background(), "definitely-not-a-real-binary-gln")

	require.Error(t, err)
	assert.Equal(t, -1, ExitCode(err))
	assert.Contains(t, err.Error(), "Couldn't run definitely-not-a-real-binary-gln")
}

func TestLocalRunner_Output(t *testing.T) {
	r, _, _ := newTestRunner()

	out, err := r.Output(context.Background(), "sh", "-c", "printf '  trimmed value \\n'")

	require.NoError(t, err)
	assert.Equal(t, "trimmed value", out)
}

func TestLocalRunner_OutputIncludesStderrOnFailure(t *testing.T) {
	r, _, _ := newTestRunner()

	_, err := r.Output(context.Background(), "sh", "-c", "echo 'no such key' >&2; exit 1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such key")
	assert.Equal(t, 1, ExitCode(err))
}

func TestLocalRunner_ContextCancel(t *testing.T) {
	r, _, _ := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, "sleep", "5")
	assert.Error(t, err)
}

func TestLocalRunner_LookPath(t *testing.T) {
	r, _, _ := newTestRunner()

	path, err := r.LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	_, err = r.LookPath("definitely-not-a-real-binary-gln")
	assert.Error(t, err)
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "git", args: []string{"config", "--global", "user.name"}, want: "git config --global user.name"},
		{name: "git", args: []string{"config", "--global", "user.name", "Jane Doe"}, want: "git config --global user.name 'Jane Doe'"},
		{name: "ssh-keygen", args: []string{"-N", ""}, want: "ssh-keygen -N ''"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, CommandString(tt.name, tt.args...))
		})
	}
}

func TestExitCode_NonCommandError(t *testing.T) {
	assert.Equal(t, -1, ExitCode(nil))
	assert.Equal(t, -1, ExitCode(errors.New(errors.ErrExec, "x", "")))
}
