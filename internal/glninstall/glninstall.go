// Package glninstall installs the gln tool itself with "uv tool install",
// trying a list of sources until one works.
package glninstall

import (
	"context"
	"fmt"
	"strings"

	"github.com/therealgamblelab/gln-setup/internal/config"
	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/exec"
	"github.com/therealgamblelab/gln-setup/internal/logger"
)

// Options selects what to install.
type Options struct {
	// Sources are uv install specs; ${USER} expands to Username.
	Sources []string
	// Username is the cluster account. Sources that need it are skipped
	// when it is empty.
	Username string
	Python   string
}

// Attempt records one source that was tried or skipped.
type Attempt struct {
	Source string
	Err    error
}

// Installer runs uv.
type Installer struct {
	Runner exec.Runner
	Log    logger.Logger
	// OnAttempt is called before each source is tried.
	OnAttempt func(source string)
}

// Install tries each source in order and returns the one that installed.
func (i *Installer) Install(ctx context.Context, opts Options) (string, []Attempt, error) {
	if _, err := i.Runner.LookPath("uv"); err != nil {
		return "", nil, errors.New(errors.ErrDeps,
			"Can't find uv",
			"Install it first: gln-setup install-deps uv")
	}

	var attempts []Attempt
	for _, raw := range opts.Sources {
		if config.NeedsUser(raw) && opts.Username == "" {
			attempts = append(attempts, Attempt{Source: raw, Err: fmt.Errorf("needs --username")})
			continue
		}
		source := config.Expand(raw, opts.Username)

		if i.OnAttempt != nil {
			i.OnAttempt(source)
		}
		i.logger().Debug("uv tool install from %s", source)

		args := []string{"tool", "install"}
		if opts.Python != "" {
			args = append(args, "--python", opts.Python)
		}
		err := i.Runner.Run(ctx, "uv", append(args, source)...)
		attempts = append(attempts, Attempt{Source: source, Err: err})
		if err == nil {
			return source, attempts, nil
		}
		if ctx.Err() != nil {
			break
		}
	}

	var tried []string
	for _, a := range attempts {
		tried = append(tried, fmt.Sprintf("%s: %v", a.Source, a.Err))
	}
	return "", attempts, errors.New(errors.ErrDeps,
		"Couldn't install gln from any source",
		"Tried:\n  "+strings.Join(tried, "\n  ")+
			"\nInstalling from GitHub needs an SSH key registered there: gln-setup ssh-key github git@github.com")
}

func (i *Installer) logger() logger.Logger {
	if i.Log == nil {
		return logger.Noop()
	}
	return i.Log
}
