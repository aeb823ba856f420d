package sshconfig

import (
	"bytes"
	"sort"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// HostEntry is a concrete host alias with its effective connection settings.
type HostEntry struct {
	Alias        string `json:"alias" yaml:"alias"`
	Hostname     string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	User         string `json:"user,omitempty" yaml:"user,omitempty"`
	Port         string `json:"port,omitempty" yaml:"port,omitempty"`
	IdentityFile string `json:"identity_file,omitempty" yaml:"identity_file,omitempty"`
}

// Description returns a user-friendly description of the host.
func (h HostEntry) Description() string {
	parts := []string{}

	if h.Hostname != "" && h.Hostname != h.Alias {
		parts = append(parts, h.Hostname)
	}

	if h.User != "" {
		parts = append(parts, "user: "+h.User)
	}

	if h.Port != "" && h.Port != "22" {
		parts = append(parts, "port: "+h.Port)
	}

	if len(parts) == 0 {
		return h.Alias
	}

	return strings.Join(parts, ", ")
}

// IsWildcard reports whether pattern matches more than one literal host.
func IsWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?") || strings.HasPrefix(pattern, "!")
}

// Hosts returns every concrete (non-wildcard) alias, sorted, with values
// resolved the way ssh would resolve them, so settings inherited from
// "Host *" blocks are included. Hosts declared after a Match block fall
// back to their own section's values.
func (c *Config) Hosts() []HostEntry {
	decoded, err := c.decode()

	get := func(s *Section, alias, key string) string {
		if err == nil {
			if v, getErr := decoded.Get(alias, key); getErr == nil && v != "" {
				return v
			}
		}
		v, _ := s.Get(key)
		return v
	}

	var hosts []HostEntry
	seen := make(map[string]bool)
	for _, s := range c.sections {
		for _, alias := range s.Patterns() {
			if IsWildcard(alias) || seen[alias] {
				continue
			}
			seen[alias] = true

			owner := c.index[alias]
			entry := HostEntry{
				Alias:    alias,
				Hostname: get(owner, alias, "HostName"),
				User:     get(owner, alias, "User"),
				Port:     get(owner, alias, "Port"),
			}
			if identity := get(owner, alias, "IdentityFile"); identity != "" {
				entry.IdentityFile = ExpandPath(identity)
			}
			hosts = append(hosts, entry)
		}
	}

	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].Alias < hosts[j].Alias
	})
	return hosts
}

// Resolve returns the value ssh would use for key when connecting to alias,
// honoring wildcard patterns and first-match precedence across sections.
// Lines from the first Match block onward are not evaluated.
func (c *Config) Resolve(alias, key string) (string, error) {
	decoded, err := c.decode()
	if err != nil {
		return "", err
	}
	v, err := decoded.Get(alias, key)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", &NotFoundError{Kind: "option", Name: key}
	}
	return v, nil
}

// decode feeds the structured lines to the OpenSSH-compatible decoder.
// Opaque lines are skipped and decoding stops at the first Match block,
// which the decoder cannot evaluate.
func (c *Config) decode() (*ssh_config.Config, error) {
	var buf bytes.Buffer
	write := func(l Line) {
		if l.Kind() != KindOpaque {
			buf.WriteString(l.raw)
			buf.WriteByte('\n')
		}
	}

	for _, l := range c.preamble {
		write(l)
	}
	for _, s := range c.sections {
		if s.Declaration().Kind() == KindMatch {
			break
		}
		for _, l := range s.lines {
			write(l)
		}
	}

	return ssh_config.Decode(&buf)
}
