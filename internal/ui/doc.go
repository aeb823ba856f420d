// Package ui provides the terminal pieces shared by gln-setup's commands:
// lipgloss colors and status symbols, a spinner for slow subprocesses,
// tables for host listings, a Bubble Tea picker over ~/.ssh/config hosts,
// and huh/x/term prompts.
//
// Colors are ANSI codes so they degrade cleanly. SetColorMode selects the
// lipgloss profile through termenv; "auto" drops color for pipes and when
// NO_COLOR is set, and DisableColors backs the --no-color flag.
package ui
