package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/therealgamblelab/gln-setup/internal/config"
	"github.com/therealgamblelab/gln-setup/internal/ui"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or print the gln config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config.toml",
		Long: `Write a config.toml with every setting gln-setup reads, at the path
given by --config (default ` + config.DefaultPath() + `).

Examples:
  gln-setup config init
  gln-setup -C ./gln.toml config init --force`,
		Args: cobra.NoArgs,
		// A broken existing file must not stop --force from replacing it.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.configPath == "" {
				a.configPath = config.DefaultPath()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(a.configPath, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", ui.SymbolSuccess, a.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config (file, defaults and GLN_ overrides)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Encode(a.cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", a.configPath, data)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
