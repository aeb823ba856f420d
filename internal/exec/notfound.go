package exec

import (
	"fmt"
	"regexp"
)

// notFoundPatterns match shell "command not found" messages. They only count
// when the shell exits with 127.
var notFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash: (\S+): command not found`),
	regexp.MustCompile(`(?i)zsh: command not found: (\S+)`),
	regexp.MustCompile(`(?i)sh: \d+: (\S+): not found`),
	regexp.MustCompile(`(?i)-bash: (\S+): No such file or directory`),
	regexp.MustCompile(`(?i)(\S+): command not found`),
	regexp.MustCompile(`(?i)(\S+): not found`),
}

// nestedNotFoundPatterns match a tool failing because something it calls is
// missing, e.g. an installer script that shells out to curl. Any exit code.
var nestedNotFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/bin/sh: (\S+): not found`),
	regexp.MustCompile(`(?i)env: '?([^\s':]+)'?: No such file or directory`),
	regexp.MustCompile(`(?i)sudo: (\S+): command not found`),
}

// MissingCommand inspects a failed command's stderr and reports the name of
// the program that wasn't found, if that is why it failed.
func MissingCommand(stderr string, exitCode int) (string, bool) {
	if exitCode == 127 {
		for _, p := range notFoundPatterns {
			if m := p.FindStringSubmatch(stderr); len(m) > 1 {
				return m[1], true
			}
		}
	}
	for _, p := range nestedNotFoundPatterns {
		if m := p.FindStringSubmatch(stderr); len(m) > 1 {
			return m[1], true
		}
	}
	return "", false
}

func missingCommandSuggestion(name string) string {
	return fmt.Sprintf("'%s' isn't installed or isn't on your PATH.\nInstall it with: gln-setup install-deps %s", name, name)
}
