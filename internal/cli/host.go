package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/ui"
	"github.com/therealgamblelab/gln-setup/internal/util"
	"github.com/therealgamblelab/gln-setup/pkg/sshconfig"
)

// HostAddOptions holds options for the host add command.
type HostAddOptions struct {
	Pattern      string
	HostName     string
	User         string
	Port         string
	IdentityFile string
	Options      []string // extra "Key=Value" or "Key value" pairs
}

func newHostCmd(a *app) *cobra.Command {
	var sshConfigPath string

	cmd := &cobra.Command{
		Use:   "host",
		Short: "List and edit hosts in ~/.ssh/config",
		Long: `Inspect and edit Host entries in your SSH client config.

Edits only touch the named Host block; comments, ordering and every other
block are preserved byte for byte.`,
	}
	cmd.PersistentFlags().StringVar(&sshConfigPath, "ssh-config", "", "SSH client config to edit (default from config, ~/.ssh/config)")

	path := func() string {
		if sshConfigPath != "" {
			return sshConfigPath
		}
		return a.cfg.SSH.ConfigPath
	}

	cmd.AddCommand(
		newHostListCmd(a, path),
		newHostShowCmd(path),
		newHostAddCmd(path),
		newHostRemoveCmd(path),
	)
	return cmd
}

func newHostListCmd(a *app, path func() string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List concrete hosts with their effective settings",
		Long: `List every non-wildcard host alias with the values ssh would use,
including settings inherited from "Host *" blocks.

Examples:
  gln-setup host list
  gln-setup host list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Output.Format
			}
			return hostList(cmd.OutOrStdout(), path(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "output format: table, json or yaml")
	return cmd
}

func newHostShowCmd(path func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <pattern>",
		Short: "Print a Host block exactly as written",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return hostShow(cmd.OutOrStdout(), path(), args[0])
		},
	}
}

func newHostAddCmd(path func() string) *cobra.Command {
	var opts HostAddOptions

	cmd := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Add a host, or update the options of an existing one",
		Long: `Add a Host block, or merge options into the block that already owns the
pattern. Options are written in the order given; existing lines keep their
position and formatting.

Examples:
  gln-setup host add hpc --hostname login.hpc.example.edu --user jdoe
  gln-setup host add nas --hostname 10.0.0.5 --port 2222 -o "ProxyJump hpc"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Pattern = args[0]
			return hostAdd(cmd.OutOrStdout(), path(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.HostName, "hostname", "", "HostName to connect to")
	cmd.Flags().StringVar(&opts.User, "user", "", "remote user name")
	cmd.Flags().StringVar(&opts.Port, "port", "", "remote port")
	cmd.Flags().StringVar(&opts.IdentityFile, "identity-file", "", "private key to offer")
	cmd.Flags().StringArrayVarP(&opts.Options, "option", "o", nil, `extra option, "Key=Value" or "Key value" (repeatable)`)
	return cmd
}

func newHostRemoveCmd(path func() string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove [pattern]",
		Short: "Remove a Host block",
		Long: `Remove the Host block that owns the pattern. Without a pattern, an
interactive picker lists the hosts in the config.

Examples:
  gln-setup host remove old-server
  gln-setup host remove --yes old-server`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			return hostRemove(cmd.InOrStdin(), cmd.OutOrStdout(), path(), pattern, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "remove without asking for confirmation")
	return cmd
}

func hostList(out io.Writer, path, format string) error {
	c, err := sshconfig.Load(path)
	if err != nil {
		return err
	}
	hosts := c.Hosts()

	if format == "table" || format == "" {
		if len(hosts) == 0 {
			fmt.Fprintf(out, "No hosts in %s\n\nAdd one with: gln-setup host add <pattern> --hostname <host>\n", path)
			return nil
		}
		fmt.Fprintln(out, ui.RenderHostTable(hosts))
		return nil
	}
	if hosts == nil {
		hosts = []sshconfig.HostEntry{}
	}
	return writeFormatted(out, format, hosts)
}

func hostShow(out io.Writer, path, pattern string) error {
	c, err := sshconfig.Load(path)
	if err != nil {
		return err
	}
	s, err := c.Section(pattern)
	if err != nil {
		return hostNotFound(c, path, pattern, err)
	}
	for _, l := range s.Lines() {
		fmt.Fprintln(out, l.Raw())
	}
	return nil
}

func hostAdd(out io.Writer, path string, opts HostAddOptions) error {
	options, err := opts.sshOptions()
	if err != nil {
		return err
	}

	c, err := sshconfig.Load(path)
	if err != nil {
		return err
	}

	_, existed := sectionExists(c, opts.Pattern)
	if _, err := c.Upsert(opts.Pattern, options...); err != nil {
		return errors.WrapWithCode(err, errors.ErrSSHConfig,
			fmt.Sprintf("Can't add host '%s'", opts.Pattern),
			"Patterns are single words; option keys are letters and digits only")
	}
	if err := sshconfig.Save(c, path); err != nil {
		return err
	}

	verb := "Added"
	if existed {
		verb = "Updated"
	}
	fmt.Fprintf(out, "%s %s Host %s in %s\n", ui.SymbolSuccess, verb, opts.Pattern, path)
	return nil
}

func hostRemove(in io.Reader, out io.Writer, path, pattern string, yes bool) error {
	c, err := sshconfig.Load(path)
	if err != nil {
		return err
	}
	interactive := ui.IsTerminal(in)

	if pattern == "" {
		if !interactive {
			return errors.New(errors.ErrSSHConfig,
				"No host given",
				"Usage: gln-setup host remove <pattern>")
		}
		host, cancelled, err := ui.PickHost("Select a host to remove", c.Hosts(), out, in)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrSSHConfig, "Couldn't get your selection", "")
		}
		if cancelled {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		pattern = host.Alias
	}

	s, err := c.Section(pattern)
	if err != nil {
		return hostNotFound(c, path, pattern, err)
	}

	if !yes {
		if !interactive {
			return errors.New(errors.ErrSSHConfig,
				fmt.Sprintf("Not removing '%s' without confirmation", pattern),
				"Re-run with --yes")
		}
		block := strings.Join(rawLines(s), "\n")
		ok, err := ui.Confirm(in, out, fmt.Sprintf("Remove this block from %s?", path), block)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrSSHConfig, "Couldn't get your input", "")
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := c.Delete(pattern); err != nil {
		return hostNotFound(c, path, pattern, err)
	}
	if err := sshconfig.Save(c, path); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Removed Host %s from %s\n", ui.SymbolSuccess, pattern, path)
	return nil
}

// sshOptions converts the flags to options in a stable order.
func (o HostAddOptions) sshOptions() ([]sshconfig.Option, error) {
	var options []sshconfig.Option
	add := func(key, value string) {
		if value != "" {
			options = append(options, sshconfig.Option{Key: key, Value: value})
		}
	}

	if o.Port != "" {
		if p, err := strconv.Atoi(o.Port); err != nil || p < 1 || p > 65535 {
			return nil, errors.New(errors.ErrSSHConfig,
				fmt.Sprintf("'%s' isn't a valid port", o.Port),
				"Use a number between 1 and 65535")
		}
	}

	add("HostName", o.HostName)
	add("User", o.User)
	add("Port", o.Port)
	add("IdentityFile", o.IdentityFile)

	for _, raw := range o.Options {
		opt, err := parseOption(raw)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}

	if len(options) == 0 {
		return nil, errors.New(errors.ErrSSHConfig,
			"Nothing to add",
			"Pass at least one of --hostname, --user, --port, --identity-file or --option")
	}
	return options, nil
}

// parseOption accepts "Key=Value" or a shell-quoted "Key value words".
func parseOption(raw string) (sshconfig.Option, error) {
	bad := errors.New(errors.ErrSSHConfig,
		fmt.Sprintf("Can't parse option '%s'", raw),
		`Write options as "Key=Value" or "Key value"`)

	if key, value, ok := strings.Cut(raw, "="); ok && !strings.ContainsAny(key, " \t") {
		if key == "" || strings.TrimSpace(value) == "" {
			return sshconfig.Option{}, bad
		}
		return sshconfig.Option{Key: key, Value: strings.TrimSpace(value)}, nil
	}

	words, err := shellquote.Split(raw)
	if err != nil || len(words) < 2 {
		return sshconfig.Option{}, bad
	}
	return sshconfig.Option{Key: words[0], Value: strings.Join(words[1:], " ")}, nil
}

func sectionExists(c *sshconfig.Config, pattern string) (*sshconfig.Section, bool) {
	s, err := c.Section(pattern)
	return s, err == nil
}

func rawLines(s *sshconfig.Section) []string {
	lines := s.Lines()
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Kind() == sshconfig.KindBlank {
			continue
		}
		out = append(out, l.Raw())
	}
	return out
}

func hostNotFound(c *sshconfig.Config, path, pattern string, cause error) error {
	suggestion := "Known patterns: " + util.JoinOrDefault(c.Patterns(), "none, "+path+" has no Host blocks")
	return errors.WrapWithCode(cause, errors.ErrSSHConfig,
		fmt.Sprintf("Host '%s' not found in %s", pattern, path),
		lipgloss.NewStyle().Foreground(ui.ColorMuted).Render(suggestion))
}
