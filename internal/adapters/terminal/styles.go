// Package terminal renders conversation turns and playlists for the CLI.
package terminal

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("#1DB954")
	muted       = lipgloss.Color("#8A8F98")
	destructive = lipgloss.Color("#E53935")
	info        = lipgloss.Color("#2196F3")
)

type styles struct {
	User      lipgloss.Style
	Assistant lipgloss.Style
	Title     lipgloss.Style
	Meta      lipgloss.Style
	Link      lipgloss.Style
	Notice    lipgloss.Style
	Error     lipgloss.Style
	Header    lipgloss.Style
	Card      lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		User:      lipgloss.NewStyle().Bold(true).Foreground(info),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Title:     lipgloss.NewStyle().Bold(true),
		Meta:      lipgloss.NewStyle().Foreground(muted),
		Link:      lipgloss.NewStyle().Foreground(info).Underline(true),
		Notice:    lipgloss.NewStyle().Foreground(accent).Italic(true),
		Error:     lipgloss.NewStyle().Foreground(destructive).Bold(true),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Card:      lipgloss.NewStyle().PaddingLeft(2),
	}
}
