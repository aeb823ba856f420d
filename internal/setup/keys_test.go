package setup

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/therealgamblelab/gln-setup/internal/errors"
	exectest "github.com/therealgamblelab/gln-setup/internal/exec/testing"
)

func TestKeySpec_Normalize(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tests := []struct {
		name string
		in   KeySpec
		want KeySpec
	}{
		{
			name: "name only",
			in:   KeySpec{Name: "hpc"},
			want: KeySpec{
				Name:     "hpc",
				Protocol: "ed25519",
				Comment:  "hpc",
				Path:     "/home/tester/.ssh/id_ed25519_hpc",
			},
		},
		{
			name: "rsa gets default bits",
			in:   KeySpec{Name: "old", Protocol: "rsa"},
			want: KeySpec{
				Name:     "old",
				Protocol: "rsa",
				Comment:  "old",
				Bits:     DefaultRSABits,
				Path:     "/home/tester/.ssh/id_rsa_old",
			},
		},
		{
			name: "name from path",
			in:   KeySpec{Path: "~/.ssh/id_ed25519_work_laptop"},
			want: KeySpec{
				Name:     "work_laptop",
				Protocol: "ed25519",
				Comment:  "work_laptop",
				Path:     "/home/tester/.ssh/id_ed25519_work_laptop",
			},
		},
		{
			name: "explicit comment kept",
			in:   KeySpec{Name: "gh", Comment: "me@example.com"},
			want: KeySpec{
				Name:     "gh",
				Protocol: "ed25519",
				Comment:  "me@example.com",
				Path:     "/home/tester/.ssh/id_ed25519_gh",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeySpec_NormalizeErrors(t *testing.T) {
	_, err := KeySpec{}.Normalize()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH))

	_, err = KeySpec{Name: "x", Protocol: "dsa"}.Normalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key type")
}

func TestKeySpec_Args(t *testing.T) {
	spec := KeySpec{Name: "a", Protocol: "ed25519", Comment: "a", Path: "/k/id", Passphrase: ""}
	assert.Equal(t, []string{"-q", "-t", "ed25519", "-C", "a", "-f", "/k/id", "-N", ""}, spec.Args())

	rsa := KeySpec{Name: "b", Protocol: "rsa", Comment: "b", Path: "/k/id_rsa", Bits: 2048}
	args := rsa.Args()
	assert.Equal(t, []string{"-b", "2048"}, args[len(args)-2:])
}

func TestGenerateKey_RunsSSHKeygen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".ssh")
	path := filepath.Join(dir, "id_ed25519_hpc")
	runner := exectest.NewFakeRunner()

	spec, err := GenerateKey(context.Background(), runner, KeySpec{Path: path, Passphrase: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "hpc", spec.Name)
	assert.Equal(t, path+".pub", spec.PublicPath())
	require.Len(t, runner.Calls, 1)
	assert.Equal(t, "ssh-keygen", runner.Calls[0].Name)
	assert.Equal(t, spec.Args(), runner.Calls[0].Args)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestGenerateKey_ExistingKeyNeedsForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "id_ed25519_dup")
	require.NoError(t, os.WriteFile(path, []byte("private"), 0600))
	require.NoError(t, os.WriteFile(path+".pub", []byte("public"), 0600))

	runner := exectest.NewFakeRunner()
	_, err := GenerateKey(context.Background(), runner, KeySpec{Path: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Empty(t, runner.Calls)

	_, err = GenerateKey(context.Background(), runner, KeySpec{Path: path, Force: true})
	require.NoError(t, err)
	assert.True(t, runner.Ran("ssh-keygen"))
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, path+".pub")
}

func TestGenerateKey_KeygenFailure(t *testing.T) {
	runner := exectest.NewFakeRunner()
	runner.On("ssh-keygen", exectest.Response{Err: assert.AnError})

	_, err := GenerateKey(context.Background(), runner, KeySpec{Path: filepath.Join(t.TempDir(), "id_ed25519_x")})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestFindLocalKeys(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"id_rsa", "id_rsa.pub", "id_ed25519_hpc", "id_ed25519_hpc.pub", "id_ecdsa", "known_hosts"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "id_dir"), 0700))

	keys := FindLocalKeys(dir)
	require.Len(t, keys, 3)

	byType := map[string]KeyInfo{}
	for _, k := range keys {
		byType[k.Type] = k
	}
	assert.True(t, byType["ed25519"].HasPublic)
	assert.True(t, byType["rsa"].HasPublic)
	assert.False(t, byType["ecdsa"].HasPublic)
	assert.Equal(t, filepath.Join(dir, "id_ed25519_hpc.pub"), byType["ed25519"].PublicPath)
}

func TestFindLocalKeys_EmptyDir(t *testing.T) {
	assert.Empty(t, FindLocalKeys(t.TempDir()))
}

func TestGetPreferredKey(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"prefers ed25519", []string{"id_rsa", "id_rsa.pub", "id_ed25519", "id_ed25519.pub"}, "id_ed25519"},
		{"ecdsa over rsa", []string{"id_rsa", "id_rsa.pub", "id_ecdsa", "id_ecdsa.pub"}, "id_ecdsa"},
		{"needs public half", []string{"id_ed25519", "id_rsa", "id_rsa.pub"}, "id_rsa"},
		{"falls back to first", []string{"id_rsa"}, "id_rsa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0600))
			}

			key := GetPreferredKey(dir)
			require.NotNil(t, key)
			assert.Equal(t, filepath.Join(dir, tt.want), key.Path)
		})
	}

	assert.Nil(t, GetPreferredKey(t.TempDir()))
}

func TestReadPublicKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.pub")
	require.NoError(t, os.WriteFile(path, []byte("ssh-ed25519 AAAA test\n"), 0600))

	got, err := ReadPublicKey(path)
	require.NoError(t, err)
	assert.Equal(t, "ssh-ed25519 AAAA test", got)

	_, err = ReadPublicKey(path + ".missing")
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)

	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))) + " hpc\n"
	path := filepath.Join(t.TempDir(), "id_ed25519_hpc.pub")
	require.NoError(t, os.WriteFile(path, []byte(line), 0600))

	fp, comment, err := Fingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, ssh.FingerprintSHA256(sshPub), fp)
	assert.True(t, strings.HasPrefix(fp, "SHA256:"))
	assert.Equal(t, "hpc", comment)
}

func TestFingerprint_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pub")
	require.NoError(t, os.WriteFile(path, []byte("not a key"), 0600))

	_, _, err := Fingerprint(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid public key")
}

func TestNameFromPath(t *testing.T) {
	assert.Equal(t, "hpc", nameFromPath("/x/id_ed25519_hpc"))
	assert.Equal(t, "a_b", nameFromPath("id_rsa_a_b"))
	assert.Equal(t, "id_rsa", nameFromPath("/x/id_rsa"))
	assert.Equal(t, "mykey", nameFromPath("/x/mykey"))
}

func TestInferKeyType(t *testing.T) {
	assert.Equal(t, "ed25519", inferKeyType("/x/id_ed25519"))
	assert.Equal(t, "ecdsa", inferKeyType("/x/id_ecdsa_sk"))
	assert.Equal(t, "rsa", inferKeyType("/x/id_rsa"))
	assert.Equal(t, "unknown", inferKeyType("/x/id_custom"))
}
