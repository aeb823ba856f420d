package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/exec"
)

// GitHubTarget is the target that routes key upload through the GitHub CLI
// instead of ssh-copy-id.
const GitHubTarget = "git@github.com"

// SendToServer deploys the public half of keyPath to target. GitHub is
// handled by "gh auth login", which uploads the key through the browser
// flow; everything else goes through ssh-copy-id.
func SendToServer(ctx context.Context, r exec.Runner, keyPath, target string) error {
	if target == GitHubTarget {
		return sendToGitHub(ctx, r)
	}

	pubKeyPath := keyPath
	if !strings.HasSuffix(pubKeyPath, ".pub") {
		pubKeyPath = keyPath + ".pub"
	}

	if _, err := r.LookPath("ssh-copy-id"); err != nil {
		return errors.New(errors.ErrSSH,
			"Can't find ssh-copy-id",
			"Install OpenSSH, or copy the key manually:\n"+CopyKeyManual(target, pubKeyPath))
	}

	output, err := r.Output(ctx, "ssh-copy-id", "-i", pubKeyPath, target)
	if err != nil {
		detail := output + " " + err.Error()

		switch {
		case strings.Contains(detail, "Permission denied"):
			return errors.New(errors.ErrSSH,
				fmt.Sprintf("Permission denied on %s", target),
				"Double-check the password or credentials and try again.")
		case strings.Contains(detail, "Connection refused"):
			return errors.New(errors.ErrSSH,
				fmt.Sprintf("Connection refused to %s", target),
				"Make sure SSH is running on the remote machine.")
		case strings.Contains(detail, "Could not resolve hostname"):
			return errors.New(errors.ErrSSH,
				fmt.Sprintf("Can't resolve hostname %s", target),
				"Check the hostname and your network connection.")
		}

		return errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't copy SSH key to %s", target),
			"Try manually: "+exec.CommandString("ssh-copy-id", "-i", pubKeyPath, target))
	}

	return nil
}

func sendToGitHub(ctx context.Context, r exec.Runner) error {
	if _, err := r.LookPath("gh"); err != nil {
		return errors.New(errors.ErrSSH,
			"Can't find the GitHub CLI (gh)",
			"Install it first: gln-setup install-deps gh")
	}

	if err := r.Run(ctx, "gh", "auth", "login", "-p", "ssh", "-h", "github.com", "-w"); err != nil {
		return errors.WrapWithCode(err, errors.ErrSSH,
			"GitHub login did not complete",
			"Run 'gh auth login -p ssh -h github.com -w' yourself and pick the new key")
	}
	return nil
}

// CopyKeyManual provides instructions for manual key copying when ssh-copy-id isn't available.
func CopyKeyManual(host string, pubKeyPath string) string {
	pubKey, err := ReadPublicKey(pubKeyPath)
	if err != nil {
		return fmt.Sprintf(`To copy your SSH key manually:

1. Display your public key:
   cat %s

2. Copy the output and add it to the remote host:
   ssh %s "mkdir -p ~/.ssh && chmod 700 ~/.ssh && cat >> ~/.ssh/authorized_keys" << 'EOF'
   <paste your public key here>
   EOF

3. Set correct permissions:
   ssh %s "chmod 600 ~/.ssh/authorized_keys"
`, pubKeyPath, host, host)
	}

	return fmt.Sprintf(`To copy your SSH key manually, run:

ssh %s "mkdir -p ~/.ssh && chmod 700 ~/.ssh && echo '%s' >> ~/.ssh/authorized_keys && chmod 600 ~/.ssh/authorized_keys"
`, host, pubKey)
}

// TestPasswordlessAuth reports whether ssh can reach host without a
// password prompt. An auth failure is (false, nil); anything else that
// stops the connection is an error.
func TestPasswordlessAuth(ctx context.Context, r exec.Runner, host string) (bool, error) {
	output, err := r.Output(ctx, "ssh",
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=5",
		"-o", "StrictHostKeyChecking=accept-new",
		host,
		"echo ok",
	)
	if err != nil {
		if strings.Contains(err.Error(), "Permission denied") {
			return false, nil
		}
		return false, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH connection to %s failed", host),
			"Make sure the host is reachable: ping "+host)
	}

	return output == "ok", nil
}
