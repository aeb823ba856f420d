package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealgamblelab/gln-setup/internal/deps"
	"github.com/therealgamblelab/gln-setup/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "ed25519", cfg.SSH.Protocol)
	assert.Equal(t, "gln-managed", cfg.Deps.CondaEnv)
	assert.Equal(t, "3.12", cfg.Install.Python)
	assert.Equal(t, DefaultSources, cfg.Install.Sources)
	assert.Equal(t, deps.DefaultSet, cfg.Deps.Install)
	require.NoError(t, Validate(cfg))

	// Callers may mutate the lists without touching the package defaults.
	cfg.Install.Sources[0] = "changed"
	assert.NotEqual(t, "changed", DefaultSources[0])
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "/home/tester/.ssh/config", cfg.SSH.ConfigPath)
	assert.Equal(t, "/home/tester/.bashrc", cfg.Deps.RCFile)
	assert.Equal(t, DefaultSources, cfg.Install.Sources)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = 1

[ssh]
config_path = "/tmp/ssh_config"
protocol = "rsa"

[deps]
install = ["git", "rclone"]
python = "3.11"

[install]
sources = ["git+ssh://git@example.com/gln"]

[output]
format = "json"

[unrelated]
key = "ignored"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ssh_config", cfg.SSH.ConfigPath)
	assert.Equal(t, "rsa", cfg.SSH.Protocol)
	assert.Equal(t, []string{"git", "rclone"}, cfg.Deps.Install)
	assert.Equal(t, "3.11", cfg.Deps.Python)
	assert.Equal(t, "gln-managed", cfg.Deps.CondaEnv, "unset keys keep defaults")
	assert.Equal(t, []string{"git+ssh://git@example.com/gln"}, cfg.Install.Sources)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GLN_DEPS_PYTHON", "3.10")
	t.Setenv("GLN_OUTPUT_COLOR", "never")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3.10", cfg.Deps.Python)
	assert.Equal(t, "never", cfg.Output.Color)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ssh\nprotocol = "), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ssh]\nprotocol = \"dsa\"\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown ssh.protocol 'dsa'")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"future version", func(c *Config) { c.Version = 99 }, "from the future"},
		{"bad color", func(c *Config) { c.Output.Color = "rainbow" }, "output.color"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"no sources", func(c *Config) { c.Install.Sources = nil }, "No install sources"},
		{"empty source", func(c *Config) { c.Install.Sources = []string{"a", " "} }, "position 1"},
		{"bad env", func(c *Config) { c.Deps.CondaEnv = "my env" }, "deps.conda_env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	path := filepath.Join(t.TempDir(), "gln", "config.toml")

	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[deps]")
	assert.Contains(t, string(data), `conda_env = "gln-managed"`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSources, cfg.Install.Sources)
	assert.Equal(t, "/home/tester/.ssh", cfg.SSH.KeyDir)

	err = WriteDefault(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, WriteDefault(path, true))
}

func TestDefaultPath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, "/xdg/gln/config.toml", DefaultPath())
}

func TestExpand(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("USER", "local")

	assert.Equal(t, "ssh://jdoe@jdoe.hpc/x", Expand("ssh://${USER}@${USER}.hpc/x", "jdoe"))
	assert.Equal(t, "ssh://local@h", Expand("ssh://${USER}@h", ""))
	assert.Equal(t, "/home/tester/bin", Expand("${HOME}/bin", ""))
	assert.Equal(t, "plain", Expand("plain", "x"))
	assert.True(t, NeedsUser(DefaultSources[0]))
	assert.False(t, NeedsUser(DefaultSources[2]))
}

func TestExpandTilde(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/home/tester", ExpandTilde("~"))
	assert.Equal(t, "/home/tester/.bashrc", ExpandTilde("~/.bashrc"))
	assert.Equal(t, "/abs", ExpandTilde("/abs"))
	assert.Equal(t, "", ExpandTilde(""))
}
