// Package gitinfo reads and sets the git identity (user.name and
// user.email) in the global git config or in a specific config file.
package gitinfo

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/exec"
)

// ErrAlreadySet is returned by SetName and SetEmail when the key already
// has a value and force is false. Nothing is changed.
var ErrAlreadySet = stderrors.New("already set")

const (
	keyName  = "user.name"
	keyEmail = "user.email"
)

// GitInfo talks to "git config". File selects a config file; empty means
// the user's global config.
type GitInfo struct {
	Runner exec.Runner
	File   string
}

// New creates a GitInfo for the global config, or for file when non-empty.
func New(r exec.Runner, file string) *GitInfo {
	return &GitInfo{Runner: r, File: file}
}

// Installed reports whether a working git is on PATH.
func (g *GitInfo) Installed(ctx context.Context) bool {
	if _, err := g.Runner.LookPath("git"); err != nil {
		return false
	}
	_, err := g.Runner.Output(ctx, "git", "--version")
	return err == nil
}

// Name returns user.name and whether it is set.
func (g *GitInfo) Name(ctx context.Context) (string, bool) {
	return g.get(ctx, keyName)
}

// Email returns user.email and whether it is set.
func (g *GitInfo) Email(ctx context.Context) (string, bool) {
	return g.get(ctx, keyEmail)
}

// SetName sets user.name. An existing value is kept unless force is true.
func (g *GitInfo) SetName(ctx context.Context, value string, force bool) error {
	return g.set(ctx, keyName, value, force)
}

// SetEmail sets user.email. An existing value is kept unless force is true.
func (g *GitInfo) SetEmail(ctx context.Context, value string, force bool) error {
	return g.set(ctx, keyEmail, value, force)
}

func (g *GitInfo) args(rest ...string) []string {
	args := []string{"config"}
	if g.File == "" {
		args = append(args, "--global")
	} else {
		args = append(args, "--file", g.File)
	}
	return append(args, rest...)
}

// get treats any failure as unset: git config exits 1 for a missing key.
func (g *GitInfo) get(ctx context.Context, key string) (string, bool) {
	out, err := g.Runner.Output(ctx, "git", g.args(key)...)
	if err != nil {
		return "", false
	}
	return out, true
}

func (g *GitInfo) set(ctx context.Context, key, value string, force bool) error {
	if current, ok := g.get(ctx, key); ok && !force {
		return fmt.Errorf("%s is %q: %w", key, current, ErrAlreadySet)
	}

	if err := g.Runner.Run(ctx, "git", g.args(key, value)...); err != nil {
		return errors.WrapWithCode(err, errors.ErrGit,
			fmt.Sprintf("Couldn't set %s", key),
			"Check that your git config file is writable")
	}
	return nil
}
