package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/robfig/cron/v3"

	"github.com/theirongolddev/finbot/internal/config"
	"github.com/theirongolddev/finbot/internal/tui/theme"
)

// SetupValues holds the answers of the setup wizard.
type SetupValues struct {
	Currency   string
	Timezone   string
	DBPath     string
	Token      string
	BillsSpec  string
	GoalsSpec  string
	AlertsSpec string
	Theme      string
}

// SetupValuesFrom seeds the wizard with the current config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Currency:   cfg.General.Currency,
		Timezone:   cfg.General.Timezone,
		DBPath:     cfg.Database.Path,
		Token:      cfg.Telegram.Token,
		BillsSpec:  cfg.Scheduler.BillsSpec,
		GoalsSpec:  cfg.Scheduler.GoalsSpec,
		AlertsSpec: cfg.Scheduler.AlertsSpec,
		Theme:      cfg.Appearance.Theme,
	}
}

// Apply copies the answers onto cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.General.Currency = strings.TrimSpace(v.Currency)
	cfg.General.Timezone = strings.TrimSpace(v.Timezone)
	if p := strings.TrimSpace(v.DBPath); p != "" {
		cfg.Database.Path = p
	}
	cfg.Telegram.Token = strings.TrimSpace(v.Token)
	cfg.Scheduler.BillsSpec = strings.TrimSpace(v.BillsSpec)
	cfg.Scheduler.GoalsSpec = strings.TrimSpace(v.GoalsSpec)
	cfg.Scheduler.AlertsSpec = strings.TrimSpace(v.AlertsSpec)
	cfg.Appearance.Theme = v.Theme
}

func validateCurrency(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("currency symbol is required")
	}
	return nil
}

func validateTimezone(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || s == "Local" {
		return nil
	}
	if _, err := time.LoadLocation(s); err != nil {
		return errors.New("unknown timezone, try e.g. America/Sao_Paulo")
	}
	return nil
}

// validateSpec accepts an empty string (job disabled) or a 5-field cron line.
func validateSpec(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := cron.ParseStandard(s); err != nil {
		return errors.New("invalid cron expression")
	}
	return nil
}

// NewSetupForm builds the first-run wizard bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to finbot").
				Description("Bill reminders, savings goals and spending alerts\ndelivered to Telegram."),
			huh.NewInput().
				Title("Currency symbol").
				Value(&vals.Currency).
				Validate(validateCurrency),
			huh.NewInput().
				Title("Timezone").
				Description("IANA name used for month boundaries and schedules.").
				Value(&vals.Timezone).
				Validate(validateTimezone),
			huh.NewInput().
				Title("Database file").
				Value(&vals.DBPath),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram bot token").
				Description("From @BotFather. Leave blank to print notifications instead.").
				EchoMode(huh.EchoModePassword).
				Value(&vals.Token),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Bill reminders schedule").
				Description("Cron expression; blank disables the job.").
				Value(&vals.BillsSpec).
				Validate(validateSpec),
			huh.NewInput().
				Title("Goal digest schedule").
				Value(&vals.GoalsSpec).
				Validate(validateSpec),
			huh.NewInput().
				Title("Alert sweep schedule").
				Value(&vals.AlertsSpec).
				Validate(validateSpec),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Dashboard theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeDracula())
}
