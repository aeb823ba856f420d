package sshconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/logger"
)

// DefaultPath returns ~/.ssh/config for the current user.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".ssh", "config")
}

// ExpandPath replaces a leading "~" or "~/" with the user's home directory.
func ExpandPath(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// Load reads and parses the config at path. A missing file yields an empty
// Config; any other read failure is returned and no Config is produced.
func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Default().Debug("no ssh config at %s, starting empty", path)
			return New(), nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSHConfig,
			fmt.Sprintf("Couldn't read SSH config %s", path),
			"Check that the file is readable: ls -l "+path)
	}

	return Parse(data), nil
}

// Save writes c to path by writing a temporary file in the same directory
// and renaming it over the target. A failed save never touches the original.
// Symlinked configs are followed so the link itself survives.
func Save(c *Config, path string) error {
	path = ExpandPath(path)
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.WrapWithCode(err, errors.ErrSSHConfig,
			fmt.Sprintf("Couldn't create directory %s", dir),
			"Check permissions on your home directory")
	}

	mode := os.FileMode(0600)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSSHConfig,
			fmt.Sprintf("Couldn't create a temporary file in %s", dir),
			"Check free disk space and permissions on "+dir)
	}
	tmpPath := tmp.Name()

	fail := func(err error, message string) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.WrapWithCode(err, errors.ErrSSHConfig, message,
			"The original file was left unchanged")
	}

	data := c.Bytes()
	if _, err := tmp.Write(data); err != nil {
		return fail(err, "Couldn't write SSH config")
	}
	if err := tmp.Chmod(mode); err != nil {
		return fail(err, "Couldn't set SSH config permissions")
	}
	if err := tmp.Sync(); err != nil {
		return fail(err, "Couldn't flush SSH config to disk")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapWithCode(err, errors.ErrSSHConfig,
			"Couldn't write SSH config", "The original file was left unchanged")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapWithCode(err, errors.ErrSSHConfig,
			fmt.Sprintf("Couldn't replace %s", path),
			"The original file was left unchanged")
	}

	logger.Default().Debug("wrote %d bytes to %s", len(data), path)
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}
