package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finbot/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs. Every key is the first letter of its name.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o'},
	{Name: "Bills", Key: 'b'},
	{Name: "Goals", Key: 'g'},
	{Name: "Alerts", Key: 'a'},
}

func tabLabel(tab Tab, active bool) string {
	t := theme.Active
	if active {
		return lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Padding(0, 1).Render(tab.Name)
	}
	key := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render(tab.Name[:1])
	rest := lipgloss.NewStyle().Foreground(t.TextMuted).Render(tab.Name[1:])
	return lipgloss.NewStyle().Padding(0, 1).Render(key + rest)
}

// TabVisualWidth is the rendered width of a tab, used for mouse hit testing.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(tabLabel(tab, active))
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int) string {
	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = tabLabel(tab, i == activeIdx)
	}
	sep := lipgloss.NewStyle().Foreground(theme.Active.TextDim).Render("│")
	return strings.Join(parts, sep)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
