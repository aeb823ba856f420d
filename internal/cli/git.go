package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/gitinfo"
	"github.com/therealgamblelab/gln-setup/internal/ui"
)

// GitOptions holds options for the git command.
type GitOptions struct {
	Name  string
	Email string
	Force bool
	File  string
}

func newGitCmd(a *app) *cobra.Command {
	var opts GitOptions

	cmd := &cobra.Command{
		Use:   "git",
		Short: "Set your git identity (user.name, user.email)",
		Long: `Set user.name and user.email in your global git config.

Values that are already set are left alone unless --force is given.
With no flags, the current identity is printed.

Examples:
  gln-setup git --name "Jane Doe" --email jane@example.edu
  gln-setup git --email jane@lab.example.edu --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.File == "" {
				opts.File = a.cfg.Git.File
			}
			return a.gitIdentity(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "your first and last name (e.g. 'Jane Doe')")
	cmd.Flags().StringVar(&opts.Email, "email", "", "your email address")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "replace values that are already set")
	cmd.Flags().StringVar(&opts.File, "file", "", "edit this git config file instead of the global one")
	_ = cmd.Flags().MarkHidden("file")
	return cmd
}

func (a *app) gitIdentity(ctx context.Context, out, errOut io.Writer, opts GitOptions) error {
	g := gitinfo.New(a.runner, opts.File)
	if !g.Installed(ctx) {
		return errors.New(errors.ErrGit,
			"git was not found on this system",
			"Install it first: gln-setup install-deps git")
	}

	if opts.Name == "" && opts.Email == "" {
		printIdentity(ctx, out, g)
		return nil
	}

	set := []struct {
		key   string
		value string
		fn    func(context.Context, string, bool) error
	}{
		{"user.name", opts.Name, g.SetName},
		{"user.email", opts.Email, g.SetEmail},
	}
	for _, s := range set {
		if s.value == "" {
			continue
		}
		err := s.fn(ctx, s.value, opts.Force)
		switch {
		case errors.Is(err, gitinfo.ErrAlreadySet):
			a.log.Debug("git: %v", err)
			fmt.Fprintf(errOut, "%s %v; no changes made. Use --force to override.\n",
				lipgloss.NewStyle().Foreground(ui.ColorWarning).Render(ui.SymbolWarning), err)
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "%s %s = %s\n", ui.SymbolSuccess, s.key, s.value)
		}
	}
	return nil
}

func printIdentity(ctx context.Context, out io.Writer, g *gitinfo.GitInfo) {
	muted := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	show := func(key string, value string, ok bool) {
		if !ok {
			value = muted.Render("(not set)")
		}
		fmt.Fprintf(out, "%-11s %s\n", key+":", value)
	}

	name, ok := g.Name(ctx)
	show("user.name", name, ok)
	email, ok := g.Email(ctx)
	show("user.email", email, ok)
}
