package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/therealgamblelab/gln-setup/internal/errors"
)

const (
	// AppDir is the directory under the user config dir holding gln files.
	AppDir = "gln"
	// ConfigFileName is the config file name inside AppDir.
	ConfigFileName = "config.toml"
	// EnvPrefix prefixes environment overrides, e.g. GLN_DEPS_PYTHON.
	EnvPrefix = "GLN"
)

// DefaultPath returns ~/.config/gln/config.toml (or the platform's user
// config dir).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = ExpandTilde("~/.config")
	}
	return filepath.Join(dir, AppDir, ConfigFileName)
}

// Load reads config from path. A missing file is not an error: defaults
// and environment overrides still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		path = ExpandTilde(path)
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Failed to read config file",
					"Check that "+path+" is valid TOML")
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+path,
				"Check file permissions")
		}
	}

	return parseConfig(v, path)
}

// parseConfig converts viper config to our Config struct. Defaults are
// registered in viper, so lists from the file replace the default lists.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the TOML syntax in "+path)
	}

	cfg.SSH.ConfigPath = ExpandTilde(cfg.SSH.ConfigPath)
	cfg.SSH.KeyDir = ExpandTilde(cfg.SSH.KeyDir)
	cfg.Deps.RCFile = ExpandTilde(cfg.Deps.RCFile)
	cfg.Git.File = ExpandTilde(cfg.Git.File)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides are picked up
// even when the file doesn't mention them.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("ssh.config_path", d.SSH.ConfigPath)
	v.SetDefault("ssh.key_dir", d.SSH.KeyDir)
	v.SetDefault("ssh.protocol", d.SSH.Protocol)
	v.SetDefault("git.file", d.Git.File)
	v.SetDefault("deps.install", d.Deps.Install)
	v.SetDefault("deps.python", d.Deps.Python)
	v.SetDefault("deps.conda_env", d.Deps.CondaEnv)
	v.SetDefault("deps.rc_file", d.Deps.RCFile)
	v.SetDefault("install.python", d.Install.Python)
	v.SetDefault("install.sources", d.Install.Sources)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("output.format", d.Output.Format)
}
