package config

import "github.com/therealgamblelab/gln-setup/internal/deps"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the gln config.toml file. Only the sections gln-setup
// reads are modeled; other tables in the file are ignored.
type Config struct {
	Version int           `toml:"version" mapstructure:"version"`
	SSH     SSHConfig     `toml:"ssh" mapstructure:"ssh"`
	Git     GitConfig     `toml:"git" mapstructure:"git"`
	Deps    DepsConfig    `toml:"deps" mapstructure:"deps"`
	Install InstallConfig `toml:"install" mapstructure:"install"`
	Output  OutputConfig  `toml:"output" mapstructure:"output"`
}

// SSHConfig controls key generation and where hosts are registered.
type SSHConfig struct {
	// ConfigPath is the OpenSSH client config edited by ssh-key and host.
	ConfigPath string `toml:"config_path" mapstructure:"config_path"`

	// KeyDir is where generated keys are written.
	KeyDir string `toml:"key_dir" mapstructure:"key_dir"`

	// Protocol is the default key type: ed25519, rsa or ecdsa.
	Protocol string `toml:"protocol" mapstructure:"protocol"`
}

// GitConfig controls the git identity command.
type GitConfig struct {
	// File is a git config file to edit instead of the global one.
	File string `toml:"file" mapstructure:"file"`
}

// DepsConfig controls dependency installation.
type DepsConfig struct {
	// Install lists the dependencies installed when none are named.
	Install []string `toml:"install" mapstructure:"install"`

	// Python is the interpreter version pipx and conda build with.
	Python string `toml:"python" mapstructure:"python"`

	// CondaEnv is the conda environment packages are installed into.
	CondaEnv string `toml:"conda_env" mapstructure:"conda_env"`

	// RCFile receives PATH additions for the conda environment.
	RCFile string `toml:"rc_file" mapstructure:"rc_file"`
}

// InstallConfig controls how gln itself is installed.
type InstallConfig struct {
	// Python is the version passed to "uv tool install --python".
	Python string `toml:"python" mapstructure:"python"`

	// Sources are tried in order until one installs. ${USER} expands to
	// the cluster username.
	Sources []string `toml:"sources" mapstructure:"sources"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `toml:"color" mapstructure:"color"`

	// Format for listings: "table", "json" or "yaml".
	Format string `toml:"format" mapstructure:"format"`
}

// DefaultSources are the gln install locations, most specific first: the
// lab's RIA store over ssh, the same store from a cluster node's
// filesystem, then GitHub.
var DefaultSources = []string{
	"git+ssh://${USER}@${USER}.hpc.einsteinmed.edu/gs/gsfs0/users/Gamble%20Lab/ria/gamblelab/27b/f579f-abbb-44c7-9df2-f7af88306267#egg=gln[extensions]",
	"git+file:///gs/gsfs0/users/Gamble%20Lab/ria/gamblelab/27b/f579f-abbb-44c7-9df2-f7af88306267#egg=gln[on-hpc-extensions]",
	"git+ssh://git@github.com/TheRealGambleLab/gln#egg=gln[extensions]",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		SSH: SSHConfig{
			ConfigPath: "~/.ssh/config",
			KeyDir:     "~/.ssh",
			Protocol:   "ed25519",
		},
		Deps: DepsConfig{
			Install:  append([]string(nil), deps.DefaultSet...),
			Python:   "3.12",
			CondaEnv: "gln-managed",
			RCFile:   "~/.bashrc",
		},
		Install: InstallConfig{
			Python:  "3.12",
			Sources: append([]string(nil), DefaultSources...),
		},
		Output: OutputConfig{
			Color:  "auto",
			Format: "table",
		},
	}
}
