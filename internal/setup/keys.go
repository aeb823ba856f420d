package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/exec"
	"github.com/therealgamblelab/gln-setup/pkg/sshconfig"
)

// DefaultProtocol is used when a KeySpec leaves Protocol empty.
const DefaultProtocol = "ed25519"

// DefaultRSABits is the key size for rsa keys when Bits is zero.
const DefaultRSABits = 4096

var validProtocols = map[string]bool{
	"ed25519": true,
	"rsa":     true,
	"ecdsa":   true,
}

// KeySpec describes a key pair to generate.
type KeySpec struct {
	Name       string // Short label, e.g. "hpc"; used for the default path and comment
	Protocol   string // ed25519 (default), rsa or ecdsa
	Comment    string // Defaults to Name
	Passphrase string // Empty means no passphrase
	Bits       int    // rsa only
	Path       string // Defaults to ~/.ssh/id_<protocol>_<name>
	Force      bool   // Overwrite an existing key
}

// Normalize fills in defaults and derives whichever of Name and Path is
// missing from the other.
func (s KeySpec) Normalize() (KeySpec, error) {
	if s.Protocol == "" {
		s.Protocol = DefaultProtocol
	}
	if !validProtocols[s.Protocol] {
		return s, errors.New(errors.ErrSSH,
			fmt.Sprintf("Invalid key type: %s", s.Protocol),
			"Supported types: ed25519 (recommended), rsa, ecdsa")
	}

	switch {
	case s.Name == "" && s.Path == "":
		return s, errors.New(errors.ErrSSH,
			"A key needs a name or a path",
			"Pass a short name such as 'hpc' or 'github'")
	case s.Path == "":
		s.Path = filepath.Join(sshDir(), fmt.Sprintf("id_%s_%s", s.Protocol, s.Name))
	case s.Name == "":
		s.Name = nameFromPath(s.Path)
	}
	s.Path = sshconfig.ExpandPath(s.Path)

	if s.Comment == "" {
		s.Comment = s.Name
	}
	if s.Protocol == "rsa" && s.Bits == 0 {
		s.Bits = DefaultRSABits
	}
	return s, nil
}

// PublicPath returns the path of the public half of the key.
func (s KeySpec) PublicPath() string {
	return s.Path + ".pub"
}

// Args returns the ssh-keygen arguments for the spec. The spec must be
// normalized.
func (s KeySpec) Args() []string {
	args := []string{
		"-q",
		"-t", s.Protocol,
		"-C", s.Comment,
		"-f", s.Path,
		"-N", s.Passphrase,
	}
	if s.Protocol == "rsa" {
		args = append(args, "-b", strconv.Itoa(s.Bits))
	}
	return args
}

// GenerateKey creates a new key pair with ssh-keygen and returns the
// normalized spec it used.
func GenerateKey(ctx context.Context, r exec.Runner, spec KeySpec) (KeySpec, error) {
	spec, err := spec.Normalize()
	if err != nil {
		return spec, err
	}

	dir := filepath.Dir(spec.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return spec, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Failed to create SSH directory: %s", dir),
			"Check permissions on home directory")
	}

	if _, err := os.Stat(spec.Path); err == nil {
		if !spec.Force {
			return spec, errors.New(errors.ErrSSH,
				fmt.Sprintf("Key already exists at %s", spec.Path),
				"Choose a different name, or pass --force to replace it")
		}
		// ssh-keygen prompts before overwriting; remove both halves first.
		for _, p := range []string{spec.Path, spec.PublicPath()} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return spec, errors.WrapWithCode(err, errors.ErrSSH,
					fmt.Sprintf("Couldn't remove existing key %s", p),
					"Delete it manually and try again")
			}
		}
	}

	if err := r.Run(ctx, "ssh-keygen", spec.Args()...); err != nil {
		return spec, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to generate SSH key",
			"Ensure ssh-keygen is installed and accessible")
	}

	return spec, nil
}

// KeyInfo contains information about an SSH key.
type KeyInfo struct {
	Path       string // Full path to private key
	Type       string // Key type (ed25519, rsa, ecdsa)
	PublicPath string // Path to public key
	HasPublic  bool   // Whether public key file exists
}

// FindLocalKeys returns every id_* private key in dir (~/.ssh when empty),
// sorted by path.
func FindLocalKeys(dir string) []KeyInfo {
	if dir == "" {
		dir = sshDir()
	}

	matches, err := filepath.Glob(filepath.Join(dir, "id_*"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)

	var keys []KeyInfo
	for _, path := range matches {
		if strings.HasSuffix(path, ".pub") {
			continue
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}

		pubPath := path + ".pub"
		_, pubErr := os.Stat(pubPath)
		keys = append(keys, KeyInfo{
			Path:       path,
			Type:       inferKeyType(path),
			PublicPath: pubPath,
			HasPublic:  pubErr == nil,
		})
	}

	return keys
}

// GetPreferredKey returns the best key in dir (prefers ed25519, then
// ecdsa, then anything with a public half).
func GetPreferredKey(dir string) *KeyInfo {
	keys := FindLocalKeys(dir)
	if len(keys) == 0 {
		return nil
	}

	for _, want := range []string{"ed25519", "ecdsa"} {
		for _, key := range keys {
			if key.Type == want && key.HasPublic {
				return &key
			}
		}
	}
	for _, key := range keys {
		if key.HasPublic {
			return &key
		}
	}

	return &keys[0]
}

// ReadPublicKey reads the contents of a public key file.
func ReadPublicKey(pubPath string) (string, error) {
	data, err := os.ReadFile(pubPath)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Failed to read public key: %s", pubPath),
			"Check that the file exists and is readable")
	}
	return strings.TrimSpace(string(data)), nil
}

// Fingerprint returns the SHA256 fingerprint and comment of a public key
// file, in the same format ssh-keygen -l prints.
func Fingerprint(pubPath string) (fingerprint, comment string, err error) {
	data, err := os.ReadFile(pubPath)
	if err != nil {
		return "", "", errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Failed to read public key: %s", pubPath),
			"Check that the file exists and is readable")
	}

	pub, comment, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return "", "", errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("%s is not a valid public key", pubPath),
			"Regenerate it with: ssh-keygen -y -f <private key>")
	}
	return ssh.FingerprintSHA256(pub), comment, nil
}

// inferKeyType determines key type from filename.
func inferKeyType(path string) string {
	base := filepath.Base(path)
	switch {
	case strings.Contains(base, "ed25519"):
		return "ed25519"
	case strings.Contains(base, "ecdsa"):
		return "ecdsa"
	case strings.Contains(base, "rsa"):
		return "rsa"
	default:
		return "unknown"
	}
}

// nameFromPath recovers the label from id_<protocol>_<name>. Paths that do
// not follow the convention use their base name.
func nameFromPath(path string) string {
	base := filepath.Base(path)
	parts := strings.SplitN(base, "_", 3)
	if len(parts) == 3 && parts[0] == "id" && parts[2] != "" {
		return parts[2]
	}
	return base
}

func sshDir() string {
	return filepath.Dir(sshconfig.DefaultPath())
}
