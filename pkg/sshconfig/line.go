package sshconfig

import (
	"strings"
	"unicode"

	"github.com/kballard/go-shellquote"
)

// Kind classifies a single line of an ssh_config file.
type Kind int

const (
	KindBlank   Kind = iota // whitespace only
	KindComment             // first non-space rune is '#'
	KindHost                // "Host <pattern>..." declaration
	KindMatch               // "Match <criteria>..." declaration
	KindOption              // "<Key> <value>" or "<Key>=<value>"
	KindOpaque              // anything else, passed through untouched
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindComment:
		return "comment"
	case KindHost:
		return "host"
	case KindMatch:
		return "match"
	case KindOption:
		return "option"
	default:
		return "opaque"
	}
}

// Line is one raw line of the file plus its classification.
// The raw text is never rewritten unless the line is edited through Set.
type Line struct {
	raw  string
	kind Kind
}

// NewLine classifies raw and returns the resulting Line.
func NewLine(raw string) Line {
	return Line{raw: raw, kind: classify(raw)}
}

// Raw returns the line exactly as it will be written.
func (l Line) Raw() string { return l.raw }

// Kind returns the line classification.
func (l Line) Kind() Kind { return l.kind }

// IsDeclaration reports whether the line opens a section (Host or Match).
func (l Line) IsDeclaration() bool {
	return l.kind == KindHost || l.kind == KindMatch
}

// Key returns the keyword of an option or declaration line, in its original
// casing. It is empty for blank, comment and opaque lines.
func (l Line) Key() string {
	if !l.hasKey() {
		return ""
	}
	key, _, _, _ := splitDirective(strings.TrimSpace(l.raw))
	return key
}

// Value returns everything after the keyword and separator, verbatim. Only
// single-path keywords such as IdentityFile have one pair of surrounding
// double quotes removed.
func (l Line) Value() string {
	if !l.hasKey() {
		return ""
	}
	key, _, value, _ := splitDirective(strings.TrimSpace(l.raw))
	if isPathKey(key) {
		return unquote(value)
	}
	return value
}

// Patterns returns the host patterns declared on a Host line.
func (l Line) Patterns() []string {
	if l.kind != KindHost {
		return nil
	}
	_, _, rest, _ := splitDirective(strings.TrimSpace(l.raw))
	return splitPatterns(rest)
}

func (l Line) hasKey() bool {
	return l.kind == KindOption || l.IsDeclaration()
}

// matchesKey compares option keywords case-insensitively, as OpenSSH does.
func (l Line) matchesKey(key string) bool {
	return l.kind == KindOption && strings.EqualFold(l.Key(), key)
}

// withValue rewrites an option line's value while keeping its indentation,
// keyword casing and separator style.
func (l Line) withValue(value string) Line {
	body := strings.TrimLeft(l.raw, " \t")
	indent := l.raw[:len(l.raw)-len(body)]
	key, sep, _, _ := splitDirective(strings.TrimSpace(body))
	return NewLine(indent + key + sep + formatValue(key, value))
}

func classify(raw string) Kind {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return KindBlank
	case strings.HasPrefix(trimmed, "#"):
		return KindComment
	}

	key, _, rest, ok := splitDirective(trimmed)
	if !ok {
		return KindOpaque
	}

	switch strings.ToLower(key) {
	case "host":
		if len(splitPatterns(rest)) == 0 {
			return KindOpaque
		}
		return KindHost
	case "match":
		return KindMatch
	}

	if !validKey(key) {
		return KindOpaque
	}
	return KindOption
}

// splitDirective splits a trimmed directive into keyword, separator and
// value. The separator is whitespace, optionally with a single '='.
// ok is false when there is no keyword or no value.
func splitDirective(s string) (key, sep, value string, ok bool) {
	end := strings.IndexFunc(s, func(r rune) bool {
		return r == '=' || unicode.IsSpace(r)
	})
	if end <= 0 {
		return "", "", "", false
	}

	i := end
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i < len(s) && s[i] == '=' {
		i++
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
	}

	value = strings.TrimRight(s[i:], " \t")
	if value == "" {
		return "", "", "", false
	}
	return s[:end], s[end:i], value, true
}

func validKey(key string) bool {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return key != ""
}

// splitPatterns tokenizes the pattern list of a Host line. Double-quoted
// patterns are honored; input the quote parser rejects falls back to plain
// whitespace splitting. A trailing comment is not part of the list.
func splitPatterns(s string) []string {
	s = stripComment(s)
	fields, err := shellquote.Split(s)
	if err != nil {
		fields = strings.Fields(s)
	}
	patterns := fields[:0]
	for _, f := range fields {
		if f != "" {
			patterns = append(patterns, f)
		}
	}
	return patterns
}

// stripComment cuts s at the first unquoted '#' that starts a word.
func stripComment(s string) string {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#' && (i == 0 || s[i-1] == ' ' || s[i-1] == '\t'):
			return s[:i]
		}
	}
	return s
}

// pathKeys take exactly one file or socket path, so a path with spaces
// must be quoted to stay a single argument.
var pathKeys = map[string]bool{
	"identityfile":    true,
	"certificatefile": true,
	"identityagent":   true,
	"controlpath":     true,
}

func isPathKey(key string) bool {
	return pathKeys[strings.ToLower(key)]
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' && !strings.Contains(v[1:len(v)-1], `"`) {
		return v[1 : len(v)-1]
	}
	return v
}

// formatValue writes v as given. The one exception is an unquoted path with
// whitespace for a single-path keyword, which is wrapped in double quotes.
// Multi-argument keywords (LocalForward, SendEnv) and rest-of-line commands
// (ProxyCommand) are never touched.
func formatValue(key, v string) string {
	if isPathKey(key) && strings.ContainsAny(v, " \t") && !strings.Contains(v, `"`) {
		return `"` + v + `"`
	}
	return v
}

// optionLine builds a new option line with the fixed four-space indentation
// used for every line this package generates.
func optionLine(key, value string) Line {
	return NewLine(indent + key + " " + formatValue(key, value))
}

const indent = "    "
