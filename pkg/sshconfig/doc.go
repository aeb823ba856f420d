// Package sshconfig reads, edits and writes OpenSSH client configuration
// files without disturbing the parts it was not asked to change.
//
// A file is split into a preamble (everything before the first Host or
// Match line) and a list of sections. Each line keeps its original text;
// keywords and values are derived from that text on demand, so untouched
// lines are written back byte for byte.
//
// # Editing
//
// The typical workflow loads a file, upserts a host and saves it:
//
//	cfg, err := sshconfig.Load("~/.ssh/config")
//	if err != nil {
//		return err
//	}
//	_, err = cfg.Upsert("hpc",
//		sshconfig.Option{Key: "HostName", Value: "hpc.example.edu"},
//		sshconfig.Option{Key: "User", Value: "alice"},
//		sshconfig.Option{Key: "IdentityFile", Value: "~/.ssh/id_ed25519_hpc"},
//	)
//	if err != nil {
//		return err
//	}
//	return sshconfig.Save(cfg, "~/.ssh/config")
//
// Upsert on a known pattern only rewrites the named options, in place.
// Unknown patterns get a new section appended at the end of the file.
// Delete removes the whole section that owns a pattern, including its
// aliases.
//
// # Lookups
//
// Section.Get follows OpenSSH's first-match rule within a section.
// Config.Resolve answers "what would ssh use for this host", taking
// wildcard sections such as "Host *" into account.
//
// # Saving
//
// Save writes to a temporary file next to the target and renames it into
// place, so a crash or a full disk never leaves a truncated config behind.
// A missing file on Load is not an error; it yields an empty Config.
package sshconfig
