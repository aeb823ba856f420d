package sshconfig

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Config is an editable ssh_config file: the preamble (lines before the
// first declaration), the sections in file order, and an index from each
// declared host pattern to the section that owns it.
type Config struct {
	preamble []Line
	sections []*Section
	index    map[string]*Section
}

// New returns an empty Config.
func New() *Config {
	return &Config{index: make(map[string]*Section)}
}

// Parse builds a Config from file contents. It never fails: lines it cannot
// interpret are kept as opaque text. CRLF and CR line endings are
// normalized to LF.
func Parse(data []byte) *Config {
	c := New()
	if len(data) == 0 {
		return c
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")

	var current *Section
	for _, raw := range strings.Split(text, "\n") {
		line := NewLine(raw)
		switch {
		case line.IsDeclaration():
			current = newSection(line)
			c.sections = append(c.sections, current)
		case current == nil:
			c.preamble = append(c.preamble, line)
		default:
			current.lines = append(current.lines, line)
		}
	}

	c.reindex()
	return c
}

// Decode reads r to the end and parses it. Only read errors are returned.
func Decode(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data), nil
}

// Preamble returns a copy of the lines before the first declaration.
func (c *Config) Preamble() []Line {
	out := make([]Line, len(c.preamble))
	copy(out, c.preamble)
	return out
}

// Sections returns the sections in file order.
func (c *Config) Sections() []*Section {
	out := make([]*Section, len(c.sections))
	copy(out, c.sections)
	return out
}

// Patterns returns every indexed host pattern, sorted.
func (c *Config) Patterns() []string {
	patterns := make([]string, 0, len(c.index))
	for p := range c.index {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

// Section returns the section owning pattern. When a pattern is declared
// more than once, the last declaration owns it.
func (c *Config) Section(pattern string) (*Section, error) {
	if s, ok := c.index[pattern]; ok {
		return s, nil
	}
	return nil, &NotFoundError{Kind: "host", Name: pattern}
}

// Upsert merges opts into the section owning pattern, or appends a new
// "Host <pattern>" section holding opts in the given order. Options and
// comments not named in opts are left untouched.
func (c *Config) Upsert(pattern string, opts ...Option) (*Section, error) {
	for _, o := range opts {
		if !validKey(o.Key) {
			return nil, fmt.Errorf("invalid option key %q", o.Key)
		}
		if strings.TrimSpace(o.Value) == "" {
			return nil, fmt.Errorf("option %s has an empty value", o.Key)
		}
		if strings.ContainsAny(o.Value, "\r\n") {
			return nil, fmt.Errorf("option %s value spans more than one line", o.Key)
		}
	}

	if s, ok := c.index[pattern]; ok {
		for _, o := range opts {
			s.Set(o.Key, o.Value)
		}
		return s, nil
	}

	if err := validatePattern(pattern); err != nil {
		return nil, err
	}
	c.separateTail()
	s := newSection(NewLine("Host " + pattern))
	for _, o := range opts {
		s.lines = append(s.lines, optionLine(o.Key, o.Value))
	}
	c.sections = append(c.sections, s)
	c.index[pattern] = s
	return s, nil
}

// Delete removes the whole section owning pattern, including every other
// pattern it declares. The Config is unchanged when pattern is unknown.
func (c *Config) Delete(pattern string) error {
	target, ok := c.index[pattern]
	if !ok {
		return &NotFoundError{Kind: "host", Name: pattern}
	}

	kept := c.sections[:0]
	for _, s := range c.sections {
		if s != target {
			kept = append(kept, s)
		}
	}
	c.sections = kept
	c.reindex()
	return nil
}

// Bytes serializes the config: preamble then each section, one line per
// record, with a single trailing newline.
func (c *Config) Bytes() []byte {
	var buf bytes.Buffer
	write := func(lines []Line) {
		for _, l := range lines {
			buf.WriteString(l.raw)
			buf.WriteByte('\n')
		}
	}
	write(c.preamble)
	for _, s := range c.sections {
		write(s.lines)
	}
	return buf.Bytes()
}

// String returns the serialized config.
func (c *Config) String() string {
	return string(c.Bytes())
}

// WriteTo writes the serialized config to w.
func (c *Config) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.Bytes())
	return int64(n), err
}

// reindex rebuilds the pattern index. Later declarations win.
func (c *Config) reindex() {
	c.index = make(map[string]*Section)
	for _, s := range c.sections {
		for _, p := range s.Patterns() {
			c.index[p] = s
		}
	}
}

// separateTail makes sure a blank line precedes a newly appended section.
// The blank line belongs to whatever currently ends the file so that a
// reparse produces the same structure.
func (c *Config) separateTail() {
	if n := len(c.sections); n > 0 {
		last := c.sections[n-1]
		if !last.endsWithBlank() {
			last.lines = append(last.lines, NewLine(""))
		}
		return
	}
	if n := len(c.preamble); n > 0 && c.preamble[n-1].Kind() != KindBlank {
		c.preamble = append(c.preamble, NewLine(""))
	}
}

func validatePattern(pattern string) error {
	if pattern == "" || strings.ContainsAny(pattern, " \t\r\n\"'\\") {
		return fmt.Errorf("invalid host pattern %q", pattern)
	}
	return nil
}
