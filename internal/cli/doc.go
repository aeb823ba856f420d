// Package cli implements the gln-setup command-line interface.
//
// Each command is a cobra.Command built by a constructor that closes over a
// shared *app. The root command's PersistentPreRunE loads config.toml
// (viper, GLN_ env overrides), applies --verbose and --no-color, and creates
// the exec.Runner every subprocess goes through. Tests build the tree with a
// fake runner and drive it with SetArgs.
//
//	gln-setup git             - set git user.name / user.email
//	gln-setup install-deps    - install tools through a package manager chain
//	gln-setup ssh-key         - create a key, register the host, deploy the key
//	gln-setup host            - list, show, add and remove ~/.ssh/config hosts
//	gln-setup gln-install     - install gln with uv from fallback sources
//	gln-setup config          - write or print config.toml
//
// Errors returned by commands are *errors.Error values whose message and
// suggestion are printed by Execute.
package cli
