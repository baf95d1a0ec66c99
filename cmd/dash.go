package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/finbot/internal/tui"
	"github.com/theirongolddev/finbot/internal/tui/theme"
)

var flagDashRefresh time.Duration

var dashCmd = &cobra.Command{
	Use:     "dash",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive dashboard",
	RunE:    runDash,
}

func init() {
	dashCmd.Flags().DurationVar(&flagDashRefresh, "refresh", 30*time.Second, "Auto-refresh interval (0 disables)")
	rootCmd.AddCommand(dashCmd)
}

func runDash(_ *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.currentUser(context.Background()); err != nil {
		return err
	}

	theme.SetActive(e.cfg.Appearance.Theme)
	// Force TrueColor so background styling always emits ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Sources{
		Store:    e.store,
		Ledger:   e.ledger,
		Location: e.loc,
		Currency: e.cfg.General.Currency,
	}, flagUser, flagDashRefresh)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
