package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/therealgamblelab/gln-setup/pkg/sshconfig"
)

// TableColumn defines a table column. A zero Width sizes the column to its
// widest cell.
type TableColumn struct {
	Title string
	Width int
}

// RenderSimpleTable renders a non-interactive table string for CLI output:
// a bold header underlined with a rule, no outer frame.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Title
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).PaddingRight(2)
	cell := lipgloss.NewStyle().Foreground(ColorPrimary).PaddingRight(2)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := cell
			if row == table.HeaderRow {
				s = header
			}
			if col < len(columns) && columns[col].Width > 0 {
				s = s.Width(columns[col].Width)
			}
			return s
		})

	return t.String()
}

// RenderHostTable renders SSH config host entries as a table.
func RenderHostTable(hosts []sshconfig.HostEntry) string {
	columns := []TableColumn{
		{Title: "HOST"},
		{Title: "HOSTNAME"},
		{Title: "USER"},
		{Title: "PORT"},
		{Title: "IDENTITY FILE"},
	}
	rows := make([][]string, len(hosts))
	for i, h := range hosts {
		rows[i] = []string{h.Alias, h.Hostname, h.User, h.Port, h.IdentityFile}
	}
	return RenderSimpleTable(columns, rows)
}
