package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/therealgamblelab/gln-setup/internal/deps"
	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/ui"
	"github.com/therealgamblelab/gln-setup/internal/util"
)

// InstallDepsOptions holds options for the install-deps command.
type InstallDepsOptions struct {
	Names  []string
	DryRun bool
	List   bool
}

func newInstallDepsCmd(a *app) *cobra.Command {
	var opts InstallDepsOptions

	cmd := &cobra.Command{
		Use:   "install-deps [dependency...]",
		Short: "Install the tools gln needs",
		Long: `Install gln's command-line dependencies, trying package managers in
order (apt-get, brew, conda, pipx) until one works. Tools already on PATH
are skipped. Requirements are installed first, e.g. pipx before datalad.

With no arguments the list from [deps] install in config.toml is used.

Examples:
  gln-setup install-deps
  gln-setup install-deps git-annex rclone
  gln-setup install-deps --dry-run
  gln-setup install-deps --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Names = args
			return a.installDeps(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show what would be installed without installing")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list known dependencies and exit")
	cmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return deps.DefaultCatalog().Names(), cobra.ShellCompDirectiveNoFileComp
	}
	return cmd
}

func (a *app) installDeps(cmd *cobra.Command, opts InstallDepsOptions) error {
	out := cmd.OutOrStdout()
	catalog := deps.DefaultCatalog()

	if opts.List {
		listCatalog(out, catalog)
		return nil
	}

	names := opts.Names
	if len(names) == 0 {
		names = a.cfg.Deps.Install
	}

	plan, err := deps.NewResolver(catalog).Resolve(names)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrDeps,
			"Couldn't plan the install",
			"Known dependencies: "+util.JoinOrNone(catalog.Names()))
	}
	a.log.Debug("install plan: %s", plan)

	inst := deps.NewInstaller(a.runner, deps.ManagerOptions{
		Python:   a.cfg.Deps.Python,
		CondaEnv: a.cfg.Deps.CondaEnv,
		RCFile:   a.cfg.Deps.RCFile,
	})
	inst.DryRun = opts.DryRun
	progress := &depsProgress{out: out}
	inst.Handler = progress

	results, err := inst.InstallAll(cmd.Context(), plan)
	progress.close()

	printDepsSummary(out, results)
	return err
}

// depsProgress shows a spinner per manager attempt.
type depsProgress struct {
	out     io.Writer
	spinner *ui.Spinner
}

func (p *depsProgress) OnAttempt(dep deps.Dependency, manager string) {
	if p.spinner != nil {
		p.spinner.Fail()
	}
	p.spinner = ui.NewSpinner(p.out, fmt.Sprintf("Installing %s with %s", dep.Name, manager))
	p.spinner.Start()
}

func (p *depsProgress) OnResult(result *deps.Result) {
	switch result.Status {
	case deps.StatusInstalled:
		p.spinner.Success()
		p.spinner = nil
	case deps.StatusFailed:
		if p.spinner == nil {
			ui.NewSpinner(p.out, result.Dependency).Fail()
		}
		p.close()
	case deps.StatusPresent:
		ui.NewSpinner(p.out, result.Dependency).Skip("already installed")
	case deps.StatusPlanned:
		fmt.Fprintf(p.out, "%s %s via %s\n", ui.SymbolPlanned, result.Dependency, result.Manager)
	}
}

// close fails whatever attempt is still spinning.
func (p *depsProgress) close() {
	if p.spinner != nil {
		p.spinner.Fail()
		p.spinner = nil
	}
}

func printDepsSummary(out io.Writer, results []*deps.Result) {
	counts := map[deps.Status]int{}
	for _, r := range results {
		counts[r.Status]++
	}

	parts := []string{}
	for _, s := range []deps.Status{deps.StatusInstalled, deps.StatusPresent, deps.StatusPlanned, deps.StatusFailed} {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
		}
	}
	if len(parts) == 0 {
		return
	}

	style := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	if counts[deps.StatusFailed] > 0 {
		style = lipgloss.NewStyle().Foreground(ui.ColorError)
	}
	fmt.Fprintln(out, style.Render(strings.Join(parts, ", ")))
}

func listCatalog(out io.Writer, catalog deps.Catalog) {
	columns := []ui.TableColumn{{Title: "NAME"}, {Title: "BINARY"}, {Title: "MANAGERS"}, {Title: "REQUIRES"}}
	var rows [][]string
	for _, name := range catalog.Names() {
		d := catalog[name]
		rows = append(rows, []string{
			d.Name,
			d.BinaryName(),
			util.JoinOrNone(d.Managers),
			util.JoinOrDefault(d.Requires, "-"),
		})
	}
	fmt.Fprintln(out, ui.RenderSimpleTable(columns, rows))
}
