package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/therealgamblelab/gln-setup/internal/glninstall"
	"github.com/therealgamblelab/gln-setup/internal/ui"
)

// GLNInstallOptions holds options for the gln-install command.
type GLNInstallOptions struct {
	Username string
	Python   string
}

func newGLNInstallCmd(a *app) *cobra.Command {
	var opts GLNInstallOptions

	cmd := &cobra.Command{
		Use:   "gln-install",
		Short: "Install the gln tool with uv",
		Long: `Install gln with "uv tool install", trying each source from [install]
sources in config.toml until one works: the lab's store over SSH, the same
store from a cluster node's filesystem, then GitHub.

Sources containing ${USER} need --username. uv must be installed first
(gln-setup install-deps uv), and installing from GitHub needs an SSH key
registered there (gln-setup ssh-key github git@github.com).

Examples:
  gln-setup gln-install -u jdoe
  gln-setup gln-install -u jdoe -p 3.11`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Python == "" {
				opts.Python = a.cfg.Install.Python
			}
			out := cmd.OutOrStdout()

			var spinner *ui.Spinner
			inst := &glninstall.Installer{
				Runner: a.runner,
				Log:    a.log,
				OnAttempt: func(source string) {
					if spinner != nil {
						spinner.Fail()
					}
					spinner = ui.NewSpinner(out, "Installing gln from "+source)
					spinner.Start()
				},
			}

			source, _, err := inst.Install(cmd.Context(), glninstall.Options{
				Sources:  a.cfg.Install.Sources,
				Username: opts.Username,
				Python:   opts.Python,
			})
			if err != nil {
				if spinner != nil {
					spinner.Fail()
				}
				return err
			}
			spinner.Success()
			fmt.Fprintf(out, "%s gln installed from %s\n", ui.SymbolSuccess, source)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "your username on the HPC cluster")
	cmd.Flags().StringVarP(&opts.Python, "python", "p", "", "Python version for the tool environment (e.g. 3.12)")
	return cmd
}
