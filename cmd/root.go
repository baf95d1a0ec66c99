// Package cmd implements the finbot CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finbot/internal/alerts"
	"github.com/theirongolddev/finbot/internal/bills"
	"github.com/theirongolddev/finbot/internal/config"
	"github.com/theirongolddev/finbot/internal/goals"
	"github.com/theirongolddev/finbot/internal/ledger"
	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/notify"
	"github.com/theirongolddev/finbot/internal/observability"
	"github.com/theirongolddev/finbot/internal/store"
)

var (
	flagConfig string
	flagDB     string
	flagQuiet  bool
	flagUser   int64
	flagNoSend bool
)

var rootCmd = &cobra.Command{
	Use:           "finbot",
	Short:         "Personal finance assistant",
	Long:          "Track transactions, fixed bills, savings goals and spending alerts, with reminders delivered over Telegram.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %s\n", userMessage(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().Int64VarP(&flagUser, "user", "u", 0, "Telegram user id to act on")
	rootCmd.PersistentFlags().BoolVar(&flagNoSend, "no-send", false, "Print notifications instead of sending them")
}

// userMessage maps domain errors to plain text.
func userMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return "not found (or it belongs to another user)"
	case errors.Is(err, model.ErrInvalidAmount):
		return "amount must be positive"
	case errors.Is(err, model.ErrInvalidDueDay):
		return "due day must be between 1 and 31"
	case errors.Is(err, model.ErrInvalidCategory):
		return err.Error() + " (try one of: food, transport, housing, entertainment, health, education, other)"
	}
	return err.Error()
}

// env bundles the loaded config and every service a command may need.
type env struct {
	cfg      config.Config
	loc      *time.Location
	timeout  time.Duration
	log      *observability.Recorder
	store    *store.Store
	ledger   *ledger.Ledger
	bills    *bills.Tracker
	goals    *goals.Tracker
	alerts   *alerts.Evaluator
	notifier notify.Notifier
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDB != "" {
		cfg.Database.Path = flagDB
	}
	return cfg, nil
}

// openEnv loads config and opens the store. Notifications go to Telegram when a
// token is configured and --no-send is unset, otherwise to stdout.
func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	loc, _ := cfg.Location()
	timeout, _ := cfg.SendTimeout()

	level := cfg.Log.Level
	if flagQuiet {
		level = "error"
	}
	logger, err := observability.NewLogger(os.Stderr, level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:     cfg,
		loc:     loc,
		timeout: timeout,
		log:     observability.NewRecorder(logger),
		store:   s,
	}
	e.notifier, err = e.buildNotifier(!flagNoSend)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	e.ledger = ledger.New(s, loc)
	e.bills = bills.New(s, loc)
	e.goals = goals.New(s)
	e.alerts = alerts.New(s, e.notifier, e.log, alerts.Options{
		Location:    loc,
		Currency:    cfg.General.Currency,
		SendTimeout: timeout,
	})
	return e, nil
}

func (e *env) buildNotifier(live bool) (notify.Notifier, error) {
	if !live || e.cfg.Telegram.Token == "" {
		return notify.NewWriter(os.Stdout), nil
	}
	bot, err := notify.NewTelegram(e.cfg.Telegram.Token, e.timeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	return notify.NewThrottled(bot, e.cfg.Telegram.RatePerSecond), nil
}

func (e *env) Close() {
	_ = e.store.Close()
}

// currentUser resolves --user to the stored user.
func (e *env) currentUser(ctx context.Context) (*model.User, error) {
	if flagUser == 0 {
		return nil, errors.New("--user is required")
	}
	u, err := e.ledger.User(ctx, flagUser)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("user %d is not registered; run `finbot user register --user %d`", flagUser, flagUser)
	}
	return u, err
}

// currency returns the display currency of a user.
func (e *env) currency(ctx context.Context, userID int64) string {
	p, err := e.ledger.Preferences(ctx, userID, model.Preferences{Currency: e.cfg.General.Currency})
	if err != nil || p.Currency == "" {
		return e.cfg.General.Currency
	}
	return p.Currency
}

func info(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Printf(format, args...)
}
