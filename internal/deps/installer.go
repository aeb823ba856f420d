package deps

import (
	"context"
	"fmt"
	"strings"

	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/exec"
	"github.com/therealgamblelab/gln-setup/internal/logger"
)

// Status is the outcome of installing one dependency.
type Status string

const (
	StatusPresent   Status = "present"
	StatusInstalled Status = "installed"
	StatusPlanned   Status = "planned"
	StatusFailed    Status = "failed"
)

// Attempt records one manager tried for a dependency.
type Attempt struct {
	Manager string
	Err     error
}

// Result describes what happened to one dependency.
type Result struct {
	Dependency string
	Status     Status
	// Manager is the one that installed (or would install) the dependency.
	Manager  string
	Attempts []Attempt
	Err      error
}

// Handler receives progress callbacks during installation.
type Handler interface {
	OnAttempt(dep Dependency, manager string)
	OnResult(result *Result)
}

// Installer walks a dependency's managers until its binary is on PATH.
type Installer struct {
	Runner   exec.Runner
	Managers map[string]PackageManager
	// DryRun reports the first usable manager without running anything.
	DryRun  bool
	Handler Handler
	Log     logger.Logger
}

// NewInstaller creates an installer with the default managers.
func NewInstaller(r exec.Runner, opts ManagerOptions) *Installer {
	return &Installer{
		Runner:   r,
		Managers: DefaultManagers(r, opts),
		Log:      logger.NewEnvLogger("[deps]"),
	}
}

// Install installs dep unless its binary is already on PATH. Managers are
// tried in order; the first one after which the binary is found wins. When
// every manager fails, the returned error lists each attempt.
func (i *Installer) Install(ctx context.Context, dep Dependency) (*Result, error) {
	result := &Result{Dependency: dep.Name}

	if i.installed(dep) {
		result.Status = StatusPresent
		i.report(result)
		return result, nil
	}

	for _, name := range dep.Managers {
		if err := ctx.Err(); err != nil {
			return i.fail(result, err)
		}

		pm, ok := i.Managers[name]
		if !ok || !pm.Available() {
			result.Attempts = append(result.Attempts, Attempt{Manager: name, Err: fmt.Errorf("%s not available", name)})
			continue
		}

		if i.DryRun {
			result.Status = StatusPlanned
			result.Manager = name
			i.report(result)
			return result, nil
		}

		if i.Handler != nil {
			i.Handler.OnAttempt(dep, name)
		}
		i.logger().Debug("installing %s with %s", dep.Name, name)

		if err := i.tryManager(ctx, dep, pm); err != nil {
			i.logger().Debug("%s: %s failed: %v", dep.Name, name, err)
			result.Attempts = append(result.Attempts, Attempt{Manager: name, Err: err})
			continue
		}

		result.Attempts = append(result.Attempts, Attempt{Manager: name})
		result.Status = StatusInstalled
		result.Manager = name
		i.report(result)
		return result, nil
	}

	return i.fail(result, nil)
}

// InstallAll installs every dependency in the plan, continuing past
// failures. The error joins every failure.
func (i *Installer) InstallAll(ctx context.Context, plan *Plan) ([]*Result, error) {
	results := make([]*Result, 0, len(plan.Steps))
	var errs []error

	for _, dep := range plan.Steps {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		result, err := i.Install(ctx, dep)
		results = append(results, result)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}

func (i *Installer) tryManager(ctx context.Context, dep Dependency, pm PackageManager) error {
	if err := i.runSteps(ctx, dep.Pre, pm.Name()); err != nil {
		return err
	}
	if err := pm.Install(ctx, dep.PackageFor(pm.Name())); err != nil {
		return err
	}
	if !i.installed(dep) {
		return fmt.Errorf("%s still not on PATH", dep.BinaryName())
	}
	return i.runSteps(ctx, dep.Post, pm.Name())
}

func (i *Installer) runSteps(ctx context.Context, steps []Step, manager string) error {
	for _, s := range steps {
		if s.Manager != "" && s.Manager != manager {
			continue
		}
		if err := i.Runner.Run(ctx, s.Name, s.Args...); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) installed(dep Dependency) bool {
	_, err := i.Runner.LookPath(dep.BinaryName())
	return err == nil
}

func (i *Installer) fail(result *Result, cause error) (*Result, error) {
	var tried []string
	var causes []error
	for _, a := range result.Attempts {
		if a.Err != nil {
			tried = append(tried, fmt.Sprintf("%s: %v", a.Manager, a.Err))
			causes = append(causes, a.Err)
		}
	}
	if cause != nil {
		causes = append(causes, cause)
	}

	suggestion := "No package manager is configured for it"
	if len(tried) > 0 {
		suggestion = "Tried:\n  " + strings.Join(tried, "\n  ")
	}

	err := errors.WrapWithCode(errors.Join(causes...), errors.ErrDeps,
		fmt.Sprintf("Couldn't install %s", result.Dependency),
		suggestion)

	result.Status = StatusFailed
	result.Err = err
	i.report(result)
	return result, err
}

func (i *Installer) report(result *Result) {
	if i.Handler != nil {
		i.Handler.OnResult(result)
	}
}

func (i *Installer) logger() logger.Logger {
	if i.Log == nil {
		return logger.Noop()
	}
	return i.Log
}
