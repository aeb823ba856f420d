package config

import (
	"fmt"
	"strings"

	"github.com/therealgamblelab/gln-setup/internal/errors"
)

var (
	validProtocols = map[string]bool{"ed25519": true, "rsa": true, "ecdsa": true}
	validColors    = map[string]bool{"auto": true, "always": true, "never": true}
	validFormats   = map[string]bool{"table": true, "json": true, "yaml": true}
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but gln-setup only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Update gln-setup: gln-setup gln-install")
	}

	if !validProtocols[cfg.SSH.Protocol] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown ssh.protocol '%s'", cfg.SSH.Protocol),
			"Use one of: ed25519, rsa, ecdsa")
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the [output] table in your config.toml.")
	}

	if len(cfg.Install.Sources) == 0 {
		return errors.New(errors.ErrConfig,
			"No install sources configured",
			"Add at least one entry to install.sources, or remove the key to use the defaults.")
	}
	for i, src := range cfg.Install.Sources {
		if strings.TrimSpace(src) == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("install.sources has an empty entry at position %d", i),
				"Remove the empty entry.")
		}
	}

	if cfg.Deps.CondaEnv == "" || strings.ContainsAny(cfg.Deps.CondaEnv, " /") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid deps.conda_env '%s'", cfg.Deps.CondaEnv),
			"Use a plain environment name such as 'gln-managed'.")
	}

	return nil
}

// validateOutput checks the output config values.
func validateOutput(o OutputConfig) error {
	if !validColors[o.Color] {
		return fmt.Errorf("output.color must be auto, always or never, not '%s'", o.Color)
	}
	if !validFormats[o.Format] {
		return fmt.Errorf("output.format must be table, json or yaml, not '%s'", o.Format)
	}
	return nil
}
