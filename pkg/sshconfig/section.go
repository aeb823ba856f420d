package sshconfig

import "strings"

// Option is a single keyword/value pair.
type Option struct {
	Key   string
	Value string
}

// Section is a Host (or Match) declaration line followed by every line up to
// the next declaration. All patterns declared on the first line share the
// same Section.
type Section struct {
	lines []Line
}

func newSection(decl Line) *Section {
	return &Section{lines: []Line{decl}}
}

// Declaration returns the line that opens the section.
func (s *Section) Declaration() Line {
	return s.lines[0]
}

// Patterns returns the host patterns declared by the section. Match sections
// declare none.
func (s *Section) Patterns() []string {
	return s.lines[0].Patterns()
}

// Lines returns a copy of the section's lines, declaration first.
func (s *Section) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Get returns the value of the first option matching key (case-insensitive).
// OpenSSH uses the first value it sees, so later duplicates are ignored.
func (s *Section) Get(key string) (string, error) {
	if i := s.find(key); i >= 0 {
		return s.lines[i].Value(), nil
	}
	return "", &NotFoundError{Kind: "option", Name: key}
}

// GetAll returns every value for key in declaration order. Useful for
// multi-valued keywords such as IdentityFile.
func (s *Section) GetAll(key string) []string {
	var values []string
	for _, l := range s.lines[1:] {
		if l.matchesKey(key) {
			values = append(values, l.Value())
		}
	}
	return values
}

// Set replaces the first option matching key in place, or appends a new
// option line after the last non-blank, non-comment line of the section.
// An empty value removes the first matching option instead.
func (s *Section) Set(key, value string) {
	if strings.TrimSpace(value) == "" {
		_ = s.Delete(key)
		return
	}
	if i := s.find(key); i >= 0 {
		s.lines[i] = s.lines[i].withValue(value)
		return
	}

	at := 0
	for i := len(s.lines) - 1; i > 0; i-- {
		if k := s.lines[i].Kind(); k != KindBlank && k != KindComment {
			at = i
			break
		}
	}
	s.insert(at+1, optionLine(key, value))
}

// Delete removes the first option matching key.
func (s *Section) Delete(key string) error {
	i := s.find(key)
	if i < 0 {
		return &NotFoundError{Kind: "option", Name: key}
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	return nil
}

// Options returns the section's options in declaration order.
func (s *Section) Options() []Option {
	var opts []Option
	for _, l := range s.lines[1:] {
		if l.Kind() == KindOption {
			opts = append(opts, Option{Key: l.Key(), Value: l.Value()})
		}
	}
	return opts
}

// Len returns the number of option lines in the section.
func (s *Section) Len() int {
	n := 0
	for _, l := range s.lines[1:] {
		if l.Kind() == KindOption {
			n++
		}
	}
	return n
}

func (s *Section) find(key string) int {
	for i, l := range s.lines {
		if i > 0 && l.matchesKey(key) {
			return i
		}
	}
	return -1
}

func (s *Section) insert(at int, l Line) {
	s.lines = append(s.lines, Line{})
	copy(s.lines[at+1:], s.lines[at:])
	s.lines[at] = l
}

func (s *Section) endsWithBlank() bool {
	return s.lines[len(s.lines)-1].Kind() == KindBlank
}
