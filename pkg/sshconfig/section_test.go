package sshconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jumpboxBlock = `Host jumpbox
    HostName 10.0.0.1
    # keep me here
    User admin
    IdentityFile ~/.ssh/first
    identityfile ~/.ssh/second

`

func parseSection(t *testing.T, text, pattern string) *Section {
	t.Helper()
	s, err := Parse([]byte(text)).Section(pattern)
	require.NoError(t, err)
	return s
}

func rawLines(s *Section) []string {
	var out []string
	for _, l := range s.Lines() {
		out = append(out, l.Raw())
	}
	return out
}

func TestSection_Get(t *testing.T) {
	s := parseSection(t, jumpboxBlock, "jumpbox")

	v, err := s.Get("hostname")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", v)

	v, err = s.Get("IDENTITYFILE")
	require.NoError(t, err)
	assert.Equal(t, "~/.ssh/first", v, "first match wins")

	_, err = s.Get("Port")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "option", nf.Kind)
	assert.Equal(t, "Port", nf.Name)
}

func TestSection_GetAll(t *testing.T) {
	s := parseSection(t, jumpboxBlock, "jumpbox")
	assert.Equal(t, []string{"~/.ssh/first", "~/.ssh/second"}, s.GetAll("IdentityFile"))
	assert.Empty(t, s.GetAll("ProxyJump"))
}

func TestSection_SetExistingReplacesInPlace(t *testing.T) {
	s := parseSection(t, jumpboxBlock, "jumpbox")
	before := rawLines(s)

	s.Set("user", "deploy")

	after := rawLines(s)
	require.Len(t, after, len(before))
	for i := range before {
		if i == 3 {
			assert.Equal(t, "    User deploy", after[i])
			continue
		}
		assert.Equal(t, before[i], after[i], "line %d moved or changed", i)
	}
}

func TestSection_SetNewAppendsAfterLastOption(t *testing.T) {
	s := parseSection(t, jumpboxBlock, "jumpbox")

	s.Set("Port", "2222")

	assert.Equal(t, []string{
		"Host jumpbox",
		"    HostName 10.0.0.1",
		"    # keep me here",
		"    User admin",
		"    IdentityFile ~/.ssh/first",
		"    identityfile ~/.ssh/second",
		"    Port 2222",
		"",
	}, rawLines(s))
}

func TestSection_SetUsesFixedIndentation(t *testing.T) {
	s := parseSection(t, "Host tabs\n\tUser a\n", "tabs")

	s.Set("Port", "22")

	assert.Equal(t, []string{"Host tabs", "\tUser a", "    Port 22"}, rawLines(s))
}

func TestSection_SetOnBareDeclaration(t *testing.T) {
	s := parseSection(t, "Host bare\n# trailing comment\n", "bare")

	s.Set("User", "x")

	assert.Equal(t, []string{"Host bare", "    User x", "# trailing comment"}, rawLines(s))
}

func TestSection_Delete(t *testing.T) {
	s := parseSection(t, jumpboxBlock, "jumpbox")

	require.NoError(t, s.Delete("identityFILE"))
	assert.Equal(t, []string{"~/.ssh/second"}, s.GetAll("IdentityFile"))

	err := s.Delete("ProxyJump")
	assert.True(t, IsNotFound(err))
}

func TestSection_OptionsAndLen(t *testing.T) {
	s := parseSection(t, jumpboxBlock, "jumpbox")

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []Option{
		{Key: "HostName", Value: "10.0.0.1"},
		{Key: "User", Value: "admin"},
		{Key: "IdentityFile", Value: "~/.ssh/first"},
		{Key: "identityfile", Value: "~/.ssh/second"},
	}, s.Options())
}

func TestSection_LinesReturnsCopy(t *testing.T) {
	s := parseSection(t, jumpboxBlock, "jumpbox")

	lines := s.Lines()
	lines[1] = NewLine("    HostName tampered")

	v, err := s.Get("HostName")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", v)
}

func TestSection_SetOwnValueReproducesLine(t *testing.T) {
	in := "Host jump\n" +
		"    LocalForward 8080 localhost:80\n" +
		"    ProxyCommand ssh -W %h:%p bastion\n" +
		"    SendEnv LANG LC_*\n" +
		"    IdentityFile \"/home/u/my keys/id\"\n"
	c := Parse([]byte(in))
	s, err := c.Section("jump")
	require.NoError(t, err)

	for _, key := range []string{"LocalForward", "ProxyCommand", "SendEnv", "IdentityFile"} {
		v, err := s.Get(key)
		require.NoError(t, err)
		s.Set(key, v)
	}

	assert.Equal(t, in, c.String())
}

func TestSection_SetEmptyValueRemovesOption(t *testing.T) {
	c := Parse([]byte("Host h\n    User bob\n    HostName x\n"))
	s, err := c.Section("h")
	require.NoError(t, err)

	s.Set("User", "")
	s.Set("Port", "  ")

	assert.Equal(t, "Host h\n    HostName x\n", c.String())
	assert.Equal(t, 1, s.Len())
}
