package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/therealgamblelab/gln-setup/internal/errors"
)

const fileHeader = `# gln configuration. gln-setup reads the tables below; other gln tools
# may add their own. Environment variables override any key, e.g.
# GLN_DEPS_PYTHON=3.11.

`

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't encode config", "")
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default config to path. An existing file is
// left alone unless force is set.
func WriteDefault(path string, force bool) error {
	path = ExpandTilde(path)

	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrConfig,
			"Config already exists: "+path,
			"Use --force to overwrite it")
	}

	data, err := Encode(DefaultConfig())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create "+filepath.Dir(path),
			"Check directory permissions")
	}

	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write "+path,
			"Check file permissions")
	}
	return nil
}
