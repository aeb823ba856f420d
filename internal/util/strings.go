// Package util holds small formatting helpers shared by the commands.
package util

import "strings"

// JoinOrNone joins items with ", " or returns "(none)" for an empty list.
func JoinOrNone(items []string) string {
	return JoinOrDefault(items, "(none)")
}

// JoinOrDefault joins items with ", " or returns def for an empty list.
func JoinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}
