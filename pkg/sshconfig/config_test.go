package sshconfig

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreambleAndSections(t *testing.T) {
	text := `# global settings
ForwardAgent no

Host alpha
    User a
Host beta gamma
    HostName beta.example.com
Match host *.corp
    User corp
`
	c := Parse([]byte(text))

	preamble := c.Preamble()
	require.Len(t, preamble, 3)
	assert.Equal(t, KindComment, preamble[0].Kind())
	assert.Equal(t, KindOption, preamble[1].Kind())
	assert.Equal(t, KindBlank, preamble[2].Kind())

	sections := c.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, []string{"alpha"}, sections[0].Patterns())
	assert.Equal(t, []string{"beta", "gamma"}, sections[1].Patterns())
	assert.Equal(t, KindMatch, sections[2].Declaration().Kind())
	assert.Empty(t, sections[2].Patterns())

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, c.Patterns())
}

func TestParse_NoHostsIsPreambleOnly(t *testing.T) {
	c := Parse([]byte("ServerAliveInterval 60\n# nothing else\n"))

	assert.Empty(t, c.Sections())
	assert.Len(t, c.Preamble(), 2)
	assert.Empty(t, c.Patterns())
}

func TestParse_Empty(t *testing.T) {
	c := Parse(nil)
	assert.Empty(t, c.Sections())
	assert.Empty(t, c.Preamble())
	assert.Equal(t, "", c.String())
}

func TestParse_MalformedLinesPassThrough(t *testing.T) {
	text := "Host weird\n    ???\n    -flag\n    Host\n    User ok\n"
	c := Parse([]byte(text))

	s, err := c.Section("weird")
	require.NoError(t, err)
	lines := s.Lines()
	require.Len(t, lines, 5)
	assert.Equal(t, KindOpaque, lines[1].Kind())
	assert.Equal(t, KindOpaque, lines[2].Kind())
	assert.Equal(t, KindOpaque, lines[3].Kind())
	assert.Equal(t, text, c.String())
}

func TestParse_LastDeclarationWins(t *testing.T) {
	c := Parse([]byte("Host dup\n    User one\nHost dup\n    User two\n"))

	s, err := c.Section("dup")
	require.NoError(t, err)
	v, err := s.Get("User")
	require.NoError(t, err)
	assert.Equal(t, "two", v)

	// Removing the owner hands the pattern back to the earlier declaration.
	require.NoError(t, c.Delete("dup"))
	s, err = c.Section("dup")
	require.NoError(t, err)
	v, _ = s.Get("User")
	assert.Equal(t, "one", v)
	assert.Equal(t, "Host dup\n    User one\n", c.String())
}

func TestRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"empty":           "",
		"single newline":  "\n",
		"preamble only":   "# just a comment\nCompression yes\n",
		"no final eol":    "Host a\n    User b",
		"crlf":            "Host a\r\n    User b\r\n\r\nHost c\r\n    Port 22\r\n",
		"equals and tabs": "Host=a\n\tUser=b\n  Port = 22\n",
		"quotes":          "Host 'single' \"double quoted\"\n    IdentityFile \"/path with/space\"\n",
		"opaque":          "garbage before\nHost a\n  not=a valid ? line\n  User b\n",
		"match blocks":    "Host a\n  User b\nMatch exec \"test -f /x\"\n  User c\n",
		"trailing blanks": "Host a\n  User b\n\n\n",
		"duplicates":      "Host a b\n  User x\nHost b\n  User y\n",
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			first := Parse([]byte(in))
			out := first.Bytes()
			second := Parse(out)

			assert.Equal(t, first, second)
			assert.Equal(t, string(out), second.String())
		})
	}
}

func TestRoundTrip_ByteExactForNormalizedInput(t *testing.T) {
	in := `# leading comment
Host = jump backup
  HostName=10.0.0.1
	User  admin
  # comment between
  IdentityFile "~/.ssh/id key"

Host *
    ServerAliveInterval 60
`
	assert.Equal(t, in, Parse([]byte(in)).String())
}

func TestUpsert_NewHostOnEmptyConfig(t *testing.T) {
	c := New()

	_, err := c.Upsert("newhost",
		Option{Key: "HostName", Value: "example.com"},
		Option{Key: "User", Value: "bob"},
		Option{Key: "IdentityFile", Value: "/k"},
	)
	require.NoError(t, err)

	s, err := c.Section("newhost")
	require.NoError(t, err)
	assert.Equal(t, []Option{
		{Key: "HostName", Value: "example.com"},
		{Key: "User", Value: "bob"},
		{Key: "IdentityFile", Value: "/k"},
	}, s.Options())

	assert.Equal(t, "Host newhost\n    HostName example.com\n    User bob\n    IdentityFile /k\n", c.String())
	assert.Equal(t, c, Parse(c.Bytes()))
}

func TestUpsert_MergesIntoExistingHost(t *testing.T) {
	in := "# comment\nHost jumpbox\n    HostName 10.0.0.1\n    User admin\n"
	c := Parse([]byte(in))

	_, err := c.Upsert("jumpbox", Option{Key: "IdentityFile", Value: "/home/u/.ssh/id_ed25519_jumpbox"})
	require.NoError(t, err)

	assert.Equal(t, "# comment\n"+
		"Host jumpbox\n"+
		"    HostName 10.0.0.1\n"+
		"    User admin\n"+
		"    IdentityFile /home/u/.ssh/id_ed25519_jumpbox\n", c.String())
}

func TestUpsert_UpdatesExistingOptionInPlace(t *testing.T) {
	c := Parse([]byte("Host a\n  User old\n  # note\n  Port 22\n"))

	_, err := c.Upsert("a", Option{Key: "user", Value: "new"})
	require.NoError(t, err)

	assert.Equal(t, "Host a\n  User new\n  # note\n  Port 22\n", c.String())
}

func TestUpsert_AppendsAtEndWithSeparator(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "after section without blank",
			in:   "Host a\n    User x\n",
			want: "Host a\n    User x\n\nHost b\n    HostName h\n",
		},
		{
			name: "after section ending in blank",
			in:   "Host a\n    User x\n\n",
			want: "Host a\n    User x\n\nHost b\n    HostName h\n",
		},
		{
			name: "after preamble only",
			in:   "# global\nForwardAgent no\n",
			want: "# global\nForwardAgent no\n\nHost b\n    HostName h\n",
		},
		{
			name: "after match block",
			in:   "Host a\n  User x\nMatch all\n  Port 2\n",
			want: "Host a\n  User x\nMatch all\n  Port 2\n\nHost b\n    HostName h\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Parse([]byte(tt.in))
			_, err := c.Upsert("b", Option{Key: "HostName", Value: "h"})
			require.NoError(t, err)

			assert.Equal(t, tt.want, c.String())
			assert.Equal(t, c, Parse(c.Bytes()), "reparse must give the same structure")
		})
	}
}

func TestUpsert_RejectsInvalidInput(t *testing.T) {
	c := New()

	_, err := c.Upsert("")
	assert.Error(t, err)

	_, err = c.Upsert("two words")
	assert.Error(t, err)

	_, err = c.Upsert("ok", Option{Key: "Bad Key", Value: "v"})
	assert.Error(t, err)

	_, err = c.Upsert("h", Option{Key: "User", Value: ""}, Option{Key: "HostName", Value: "x"})
	assert.Error(t, err)

	_, err = c.Upsert("h", Option{Key: "User", Value: "bob\nHost evil"})
	assert.Error(t, err)

	assert.Empty(t, c.Sections())
}

func TestSection_AliasesShareOneSection(t *testing.T) {
	in := "Host foo bar\n    HostName f\n\nHost other\n    HostName o\n\nHost last\n    User x\n"
	c := Parse([]byte(in))

	foo, err := c.Section("foo")
	require.NoError(t, err)
	bar, err := c.Section("bar")
	require.NoError(t, err)
	assert.Same(t, foo, bar)

	require.NoError(t, c.Delete("foo"))

	_, err = c.Section("foo")
	assert.True(t, IsNotFound(err))
	_, err = c.Section("bar")
	assert.True(t, IsNotFound(err))

	assert.Equal(t, "Host other\n    HostName o\n\nHost last\n    User x\n", c.String())
	assert.Equal(t, []string{"last", "other"}, c.Patterns())
}

func TestDelete_UnknownPatternLeavesConfigUnchanged(t *testing.T) {
	in := "Host a\n  User x\n"
	c := Parse([]byte(in))
	before := Parse([]byte(in))

	err := c.Delete("missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "host", nf.Kind)

	assert.Equal(t, before, c)
}

func TestSection_UnknownPattern(t *testing.T) {
	_, err := New().Section("nope")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestDecode(t *testing.T) {
	c, err := Decode(strings.NewReader("Host a\n  User b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, c.Patterns())
}

func TestWriteTo(t *testing.T) {
	c := Parse([]byte("Host a\n  User b\n"))

	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "Host a\n  User b\n", buf.String())
}

func TestUpsert_MultiWordValuesWrittenVerbatim(t *testing.T) {
	c := New()
	s, err := c.Upsert("jump",
		Option{Key: "LocalForward", Value: "8080 localhost:80"},
		Option{Key: "ProxyCommand", Value: `ssh -W "%h:%p" jump`},
		Option{Key: "IdentityFile", Value: "/home/u/my keys/id"},
	)
	require.NoError(t, err)

	assert.Equal(t, "Host jump\n"+
		"    LocalForward 8080 localhost:80\n"+
		"    ProxyCommand ssh -W \"%h:%p\" jump\n"+
		"    IdentityFile \"/home/u/my keys/id\"\n", c.String())

	v, err := s.Get("ProxyCommand")
	require.NoError(t, err)
	assert.Equal(t, `ssh -W "%h:%p" jump`, v)
	v, err = s.Get("IdentityFile")
	require.NoError(t, err)
	assert.Equal(t, "/home/u/my keys/id", v)
}

func TestParse_HostTrailingCommentIsNotAnAlias(t *testing.T) {
	c := Parse([]byte("Host foo # laptop\n    User x\n"))

	assert.Equal(t, []string{"foo"}, c.Patterns())
	_, err := c.Section("laptop")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, c.Delete("laptop"))
	assert.Equal(t, "Host foo # laptop\n    User x\n", c.String())
}
