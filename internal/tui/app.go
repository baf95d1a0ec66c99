// Package tui provides the interactive Bubble Tea dashboard for finbot.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finbot/internal/tui/components"
	"github.com/theirongolddev/finbot/internal/tui/theme"
)

// DataLoadedMsg is sent when a snapshot load finishes.
type DataLoadedMsg struct {
	Snap     *Snapshot
	LoadTime time.Duration
	Err      error
}

type tickMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	src        Sources
	telegramID int64

	snap     *Snapshot
	err      error
	loaded   bool
	loadTime time.Duration

	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	width     int
	height    int
	activeTab int
	showHelp  bool
	scroll    int

	spinner spinner.Model
}

const (
	minTerminalWidth = 70
	maxContentWidth  = 140
	minContentHeight = 5

	defaultRefresh = 30 * time.Second
)

// NewApp creates a dashboard for the user with the given chat identity. A
// refresh interval of zero disables auto-refresh.
func NewApp(src Sources, telegramID int64, refresh time.Duration) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	interval := refresh
	if interval <= 0 {
		interval = defaultRefresh
	}
	return App{
		src:             src,
		telegramID:      telegramID,
		autoRefresh:     refresh > 0,
		refreshInterval: interval,
		spinner:         sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadCmd(a.src, a.telegramID),
		a.spinner.Tick,
		tickCmd(),
	)
}

func loadCmd(src Sources, telegramID int64) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		snap, err := Load(ctx, src, telegramID)
		return DataLoadedMsg{Snap: snap, LoadTime: time.Since(start), Err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.scroll > 0 {
				a.scroll--
			}
		case tea.MouseButtonWheelDown:
			a.scroll++
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
					a.scroll = 0
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.refreshing = false
		a.lastRefresh = time.Now()
		a.loadTime = msg.LoadTime
		a.err = msg.Err
		if msg.Err == nil {
			a.snap = msg.Snap
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, loadCmd(a.src, a.telegramID), a.spinner.Tick)
		}
		return a, tea.Batch(cmds...)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, tea.Batch(loadCmd(a.src, a.telegramID), a.spinner.Tick)
		}
	case "R":
		a.autoRefresh = !a.autoRefresh
	case "j", "down":
		a.scroll++
	case "k", "up":
		if a.scroll > 0 {
			a.scroll--
		}
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		a.scroll = 0
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		a.scroll = 0
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
				a.scroll = 0
			}
		}
	}
	return a, nil
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
	}
	return -1
}

func (a App) contentWidth() int {
	if a.width > maxContentWidth {
		return maxContentWidth
	}
	return a.width
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  finbot needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.snap == nil {
		return a.viewError()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewLoading() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("◈ finbot")
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Render(" Loading your finances...")

	card := cardStyle.Render(logo + "\n\n" + a.spinner.View() + sub)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewError() string {
	t := theme.Active
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Expense).
		Padding(1, 3)
	body := lipgloss.NewStyle().Foreground(t.Expense).Render(fmt.Sprintf("Could not load data: %v", a.err)) +
		"\n\n" + lipgloss.NewStyle().Foreground(t.TextDim).Render("[r] retry  [q] quit")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, style.Render(body))
}

func (a App) viewHelp() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, bind := range []struct{ key, desc string }{
		{"o b g a", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Scroll"},
		{"r", "Reload data"},
		{"R", "Toggle auto-refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	} {
		fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", bind.key)), descStyle.Render(bind.desc))
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()))
}

func (a App) viewMain() string {
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab)
	statusBar := components.RenderStatusBar(a.width, a.statusText())

	contentH := a.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderOverviewTab(cw)
	case 1:
		content = a.renderBillsTab(cw)
	case 2:
		content = a.renderGoalsTab(cw)
	case 3:
		content = a.renderAlertsTab(cw)
	}
	content = padHeight(scrollLines(content, a.scroll, contentH), contentH)
	content = lipgloss.Place(a.width, contentH, lipgloss.Center, lipgloss.Top, content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (a App) statusText() string {
	var parts []string
	if a.snap != nil {
		parts = append(parts, a.snap.User.DisplayName())
	}
	switch {
	case a.refreshing:
		parts = append(parts, a.spinner.View()+"refreshing")
	case a.err != nil:
		parts = append(parts, "reload failed")
	default:
		parts = append(parts, fmt.Sprintf("loaded in %dms", a.loadTime.Milliseconds()))
	}
	if a.autoRefresh {
		parts = append(parts, "auto "+a.refreshInterval.String())
	}
	return strings.Join(parts, " · ")
}

// scrollLines drops the first offset lines and keeps at most limit.
func scrollLines(s string, offset, limit int) string {
	lines := strings.Split(s, "\n")
	if offset > len(lines)-limit {
		offset = len(lines) - limit
	}
	if offset < 0 {
		offset = 0
	}
	lines = lines[offset:]
	if len(lines) > limit {
		lines = lines[:limit]
	}
	return strings.Join(lines, "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}
