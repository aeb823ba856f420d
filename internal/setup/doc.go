// Package setup creates SSH key pairs and puts them to use.
//
// The package wraps ssh-keygen, ssh-copy-id and the GitHub CLI behind an
// exec.Runner, and registers hosts in ~/.ssh/config through pkg/sshconfig.
//
// # Key Generation
//
// A KeySpec names the key. Path defaults to ~/.ssh/id_<protocol>_<name>:
//
//	spec, err := setup.GenerateKey(ctx, runner, setup.KeySpec{Name: "hpc"})
//
// Supported protocols:
//
//	ed25519 - Default. Fast, secure, small keys.
//	ecdsa   - Elliptic curve alternative.
//	rsa     - Legacy compatibility. 4096 bits unless Bits is set.
//
// An existing key is never overwritten unless Force is set.
//
// # Key Deployment
//
// SendToServer copies the public key to a target with ssh-copy-id. The
// target git@github.com instead runs "gh auth login", which uploads the key
// to the account. CopyKeyManual returns instructions for when neither tool
// is usable.
//
// # Host Registration
//
// AddToConfig loads the ssh config, upserts a section for the target's host
// name with HostName, User and IdentityFile, and saves it atomically:
//
//	setup.AddToConfig("", "me@hpc.example.edu", spec.Path)
//
// # Connection Testing
//
// TestPasswordlessAuth runs ssh in batch mode and reports whether key
// authentication works, returning an error only when the host can't be
// reached at all.
//
// The package never logs or displays private key contents.
package setup
