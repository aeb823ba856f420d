package setup

import (
	"strings"

	"github.com/therealgamblelab/gln-setup/internal/errors"
	"github.com/therealgamblelab/gln-setup/internal/logger"
	"github.com/therealgamblelab/gln-setup/pkg/sshconfig"
)

var log = logger.NewEnvLogger("[setup]")

// SplitTarget splits "user@host" into its parts. A target without "@" has
// no user.
func SplitTarget(target string) (user, host string) {
	if i := strings.LastIndex(target, "@"); i >= 0 {
		return target[:i], target[i+1:]
	}
	return "", target
}

// AddToConfig registers target in the ssh config at path (~/.ssh/config
// when empty) so that "ssh <host>" uses keyPath. The host name is the
// section pattern; an existing section for it is updated in place. Extra
// options are written before HostName, User and IdentityFile, which always
// win.
func AddToConfig(path, target, keyPath string, extra ...sshconfig.Option) (*sshconfig.Section, error) {
	if path == "" {
		path = sshconfig.DefaultPath()
	}

	user, host := SplitTarget(target)
	if host == "" {
		return nil, errors.New(errors.ErrSSHConfig,
			"No host name in target "+target,
			"Use host or user@host")
	}

	opts := mergeOptions(extra, sshconfig.Option{Key: "HostName", Value: host})
	if user != "" {
		opts = mergeOptions(opts, sshconfig.Option{Key: "User", Value: user})
	}
	opts = mergeOptions(opts, sshconfig.Option{Key: "IdentityFile", Value: keyPath})

	cfg, err := sshconfig.Load(path)
	if err != nil {
		return nil, err
	}

	section, err := cfg.Upsert(host, opts...)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSHConfig,
			"Couldn't add "+host+" to "+path,
			"Host names can't contain spaces or quotes")
	}

	if err := sshconfig.Save(cfg, path); err != nil {
		return nil, err
	}

	log.Debug("registered %s in %s", host, path)
	return section, nil
}

// mergeOptions sets o in opts, replacing the value of an earlier option with
// the same key rather than repeating it.
func mergeOptions(opts []sshconfig.Option, o sshconfig.Option) []sshconfig.Option {
	out := append([]sshconfig.Option(nil), opts...)
	for i := range out {
		if strings.EqualFold(out[i].Key, o.Key) {
			out[i].Value = o.Value
			return out
		}
	}
	return append(out, o)
}
