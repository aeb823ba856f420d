package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/therealgamblelab/gln-setup/internal/config"
	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/exec"
	"github.com/therealgamblelab/gln-setup/internal/logger"
	"github.com/therealgamblelab/gln-setup/internal/ui"
)

// app carries global flag values and what PersistentPreRunE derives from
// them to every command.
type app struct {
	configPath string
	verbose    bool
	noColor    bool

	cfg    *config.Config
	runner exec.Runner
	log    logger.Logger
}

// newRootCmd builds the full command tree around a. Tests pass an app with a
// fake runner; Execute passes an empty one.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "gln-setup",
		Short: "Set up a workstation or HPC account for gln",
		Long: `Bootstrap an environment for the gln tool: git identity, SSH keys and
hosts, the command-line dependencies gln drives, and gln itself.

Examples:
  gln-setup git --name "Jane Doe" --email jane@example.edu
  gln-setup install-deps
  gln-setup ssh-key hpc jdoe@login.hpc.example.edu
  gln-setup gln-install -u jdoe`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "C", "", "path to gln config.toml (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log every command that is run")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newGitCmd(a),
		newInstallDepsCmd(a),
		newSSHKeyCmd(a),
		newHostCmd(a),
		newGLNInstallCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
		newCompletionCmd(root),
	)
	return root
}

// init loads config and wires logging, color and the runner.
func (a *app) init(cmd *cobra.Command) error {
	logger.SetVerbose(a.verbose)
	if a.log == nil {
		a.log = logger.Default()
	}

	if a.configPath == "" {
		a.configPath = config.DefaultPath()
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	switch {
	case a.noColor:
		ui.DisableColors()
	default:
		ui.SetColorMode(cfg.Output.Color, cmd.OutOrStdout())
	}

	if a.runner == nil {
		r := exec.NewLocalRunner()
		r.Stdin = cmd.InOrStdin()
		r.Stdout = cmd.OutOrStdout()
		r.Stderr = cmd.ErrOrStderr()
		a.runner = r
	}
	return nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := newRootCmd(&app{})
	err := root.Execute()
	if err == nil {
		return 0
	}

	if code, ok := errors.GetExitCode(err); ok {
		return code
	}
	fmt.Fprint(os.Stderr, renderError(err))
	return 1
}

// renderError formats err for the terminal. Structured errors already end
// with a newline.
func renderError(err error) string {
	msg := err.Error()
	var glnErr *errors.Error
	if !errors.As(err, &glnErr) {
		msg = ui.SymbolFail + " " + msg + "\n"
	}
	return msg
}
