package deps

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/therealgamblelab/gln-setup/internal/exec"
)

// PackageManager installs packages through one system tool.
type PackageManager interface {
	// Name is the key dependencies use to refer to the manager.
	Name() string
	// Available reports whether the manager can be used on this machine.
	Available() bool
	// Install installs pkg. A nil error does not guarantee the binary is on
	// PATH; the installer checks that separately.
	Install(ctx context.Context, pkg string) error
}

// Manager names.
const (
	AptGet = "apt-get"
	Brew   = "brew"
	Pipx   = "pipx"
	Conda  = "conda"
)

// AptGetManager installs with "sudo apt-get install -y".
type AptGetManager struct {
	Runner exec.Runner
}

func (m *AptGetManager) Name() string { return AptGet }

func (m *AptGetManager) Available() bool {
	_, err := m.Runner.LookPath("apt-get")
	return err == nil
}

func (m *AptGetManager) Install(ctx context.Context, pkg string) error {
	return m.Runner.Run(ctx, "sudo", "apt-get", "install", "-y", pkg)
}

// BrewManager installs with Homebrew.
type BrewManager struct {
	Runner exec.Runner
}

func (m *BrewManager) Name() string { return Brew }

func (m *BrewManager) Available() bool {
	_, err := m.Runner.LookPath("brew")
	return err == nil
}

func (m *BrewManager) Install(ctx context.Context, pkg string) error {
	return m.Runner.Run(ctx, "brew", "install", pkg)
}

// PipxManager installs Python applications into isolated environments.
type PipxManager struct {
	Runner exec.Runner
	// Python is the interpreter (path or version) pipx builds venvs with.
	Python string
}

func (m *PipxManager) Name() string { return Pipx }

func (m *PipxManager) Available() bool {
	_, err := m.Runner.LookPath("pipx")
	return err == nil
}

func (m *PipxManager) Install(ctx context.Context, pkg string) error {
	args := []string{"install"}
	if m.Python != "" {
		args = append(args, "--python", m.Python)
	}
	return m.Runner.Run(ctx, "pipx", append(args, pkg)...)
}

// CondaManager installs conda-forge packages into a dedicated environment
// and puts that environment's bin directory on PATH, both for this process
// and for future shells through RCFile.
type CondaManager struct {
	Runner exec.Runner
	Env    string
	Python string
	RCFile string
}

func (m *CondaManager) Name() string { return Conda }

func (m *CondaManager) Available() bool {
	_, err := m.Runner.LookPath("conda")
	return err == nil
}

func (m *CondaManager) Install(ctx context.Context, pkg string) error {
	envPath, err := m.ensureEnv(ctx)
	if err != nil {
		return err
	}

	if err := m.Runner.Run(ctx, "conda", "install", "-c", "conda-forge", "-y", "-n", m.Env, pkg); err != nil {
		return err
	}

	bin := filepath.Join(envPath, "bin")
	if m.RCFile != "" {
		if _, err := EnsureLine(m.RCFile, "export PATH="+bin+":$PATH"); err != nil {
			return err
		}
	}
	prependPath(bin)
	return nil
}

// EnvPath returns the prefix of the managed environment, or "" when it does
// not exist yet.
func (m *CondaManager) EnvPath(ctx context.Context) (string, error) {
	out, err := m.Runner.Output(ctx, "conda", "env", "list", "--json")
	if err != nil {
		return "", err
	}

	var list struct {
		Envs []string `json:"envs"`
	}
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		return "", fmt.Errorf("parse conda env list: %w", err)
	}

	for _, env := range list.Envs {
		if filepath.Base(env) == m.Env {
			return env, nil
		}
	}
	return "", nil
}

func (m *CondaManager) ensureEnv(ctx context.Context) (string, error) {
	envPath, err := m.EnvPath(ctx)
	if err != nil || envPath != "" {
		return envPath, err
	}

	args := []string{"create", "-y", "-n", m.Env}
	if m.Python != "" {
		args = append(args, "python="+m.Python)
	}
	if err := m.Runner.Run(ctx, "conda", args...); err != nil {
		return "", err
	}

	envPath, err = m.EnvPath(ctx)
	if err != nil {
		return "", err
	}
	if envPath == "" {
		return "", fmt.Errorf("conda environment %s missing after create", m.Env)
	}
	return envPath, nil
}

// prependPath puts dir at the front of this process's PATH unless it is
// already listed.
func prependPath(dir string) {
	current := os.Getenv("PATH")
	for _, p := range filepath.SplitList(current) {
		if p == dir {
			return
		}
	}
	if current == "" {
		os.Setenv("PATH", dir)
		return
	}
	os.Setenv("PATH", strings.Join([]string{dir, current}, string(os.PathListSeparator)))
}

// ManagerOptions configures DefaultManagers.
type ManagerOptions struct {
	Python   string
	CondaEnv string
	RCFile   string
}

// DefaultManagers returns every supported manager keyed by name.
func DefaultManagers(r exec.Runner, opts ManagerOptions) map[string]PackageManager {
	managers := []PackageManager{
		&AptGetManager{Runner: r},
		&BrewManager{Runner: r},
		&PipxManager{Runner: r, Python: opts.Python},
		&CondaManager{Runner: r, Env: opts.CondaEnv, Python: opts.Python, RCFile: opts.RCFile},
	}

	byName := make(map[string]PackageManager, len(managers))
	for _, m := range managers {
		byName[m.Name()] = m
	}
	return byName
}
