package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/exec"
	"github.com/therealgamblelab/gln-setup/internal/setup"
	"github.com/therealgamblelab/gln-setup/internal/ui"
)

// SSHKeyOptions holds options for the ssh-key command.
type SSHKeyOptions struct {
	Name          string
	Target        string
	Protocol      string
	Passphrase    string
	AskPassphrase bool
	Comment       string
	Force         bool
	SSHConfig     string
	NoSend        bool
}

func newSSHKeyCmd(a *app) *cobra.Command {
	var opts SSHKeyOptions

	cmd := &cobra.Command{
		Use:   "ssh-key <name> [target]",
		Short: "Create an SSH key and optionally deploy it",
		Long: `Create an SSH key pair at ~/.ssh/id_<protocol>_<name>.

When a target such as user@host is given, the host is registered in
~/.ssh/config with the new key as its IdentityFile and the public key is
sent to the server with ssh-copy-id. For git@github.com the key is
uploaded through "gh auth login" instead.

Examples:
  gln-setup ssh-key hpc jdoe@login.hpc.example.edu
  gln-setup ssh-key github git@github.com
  gln-setup ssh-key backup --protocol rsa --ask-passphrase`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			if len(args) > 1 {
				opts.Target = args[1]
			}
			if opts.Protocol == "" {
				opts.Protocol = a.cfg.SSH.Protocol
			}
			if opts.SSHConfig == "" {
				opts.SSHConfig = a.cfg.SSH.ConfigPath
			}
			if opts.AskPassphrase {
				pass, err := ui.ReadPassphrase(cmd.InOrStdin(), cmd.ErrOrStderr(), "Passphrase for the new key: ")
				if err != nil {
					return errors.WrapWithCode(err, errors.ErrSSH, "Couldn't read the passphrase", "")
				}
				opts.Passphrase = pass
			}
			return a.sshKey(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Protocol, "protocol", "", "key type: ed25519, rsa or ecdsa (default from config)")
	cmd.Flags().StringVarP(&opts.Passphrase, "passphrase", "p", "", "passphrase for the key (default: none)")
	cmd.Flags().BoolVar(&opts.AskPassphrase, "ask-passphrase", false, "prompt for the passphrase without echo")
	cmd.Flags().StringVar(&opts.Comment, "comment", "", "key comment (default: the name)")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "replace an existing key with the same name")
	cmd.Flags().StringVar(&opts.SSHConfig, "ssh-config", "", "SSH client config to register the target in")
	cmd.Flags().BoolVar(&opts.NoSend, "no-send", false, "register the target but don't copy the key to it")
	cmd.MarkFlagsMutuallyExclusive("passphrase", "ask-passphrase")
	return cmd
}

func (a *app) sshKey(cmd *cobra.Command, opts SSHKeyOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	spec := setup.KeySpec{
		Name:       opts.Name,
		Protocol:   opts.Protocol,
		Comment:    opts.Comment,
		Passphrase: opts.Passphrase,
		Force:      opts.Force,
	}
	if a.cfg.SSH.KeyDir != "" && spec.Protocol != "" {
		spec.Path = filepath.Join(a.cfg.SSH.KeyDir, fmt.Sprintf("id_%s_%s", spec.Protocol, spec.Name))
	}
	spec, err := spec.Normalize()
	if err != nil {
		return err
	}
	echoCommand(out, "ssh-keygen", redactedArgs(spec)...)

	spinner := ui.NewSpinner(out, fmt.Sprintf("Generating %s key %s", spec.Protocol, spec.Name))
	spinner.Start()
	spec, err = setup.GenerateKey(ctx, a.runner, spec)
	if err != nil {
		spinner.Fail()
		return err
	}
	spinner.Success()

	if fp, _, err := setup.Fingerprint(spec.PublicPath()); err == nil {
		fmt.Fprintf(out, "  %s %s\n", spec.PublicPath(), lipgloss.NewStyle().Foreground(ui.ColorMuted).Render(fp))
	} else {
		a.log.Debug("fingerprint %s: %v", spec.PublicPath(), err)
	}

	if opts.Target == "" {
		return nil
	}

	section, err := setup.AddToConfig(opts.SSHConfig, opts.Target, spec.Path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Registered Host %s in %s\n", ui.SymbolSuccess, section.Patterns()[0], opts.SSHConfig)

	if opts.NoSend {
		fmt.Fprintln(out, "To copy the key later:")
		fmt.Fprintln(out, setup.CopyKeyManual(opts.Target, spec.PublicPath()))
		return nil
	}

	if opts.Target == setup.GitHubTarget {
		fmt.Fprintln(out, "Follow the instructions carefully to load your new key to GitHub...")
	}
	if err := setup.SendToServer(ctx, a.runner, spec.Path, opts.Target); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Sent %s to %s\n", ui.SymbolSuccess, filepath.Base(spec.PublicPath()), opts.Target)
	return nil
}

// redactedArgs returns the ssh-keygen arguments with the passphrase masked.
func redactedArgs(spec setup.KeySpec) []string {
	if spec.Passphrase != "" {
		spec.Passphrase = "********"
	}
	return spec.Args()
}

func echoCommand(out io.Writer, name string, args ...string) {
	fmt.Fprintln(out, lipgloss.NewStyle().Foreground(ui.ColorMuted).Render("$ "+exec.CommandString(name, args...)))
}
