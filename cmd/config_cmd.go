package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finbot/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func orOff(s string) string {
	if s == "" {
		return "disabled"
	}
	return s
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}
	fmt.Printf("  Config file: %s\n", path)
	if config.Exists(path) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Timezone: %s\n", cfg.General.Timezone)
	fmt.Printf("    Currency: %s\n", cfg.General.Currency)
	fmt.Println()

	fmt.Println("  [Database]")
	fmt.Printf("    Path: %s\n", cfg.Database.Path)
	fmt.Println()

	fmt.Println("  [Telegram]")
	if cfg.Telegram.Token != "" {
		fmt.Printf("    Token:        %s\n", maskToken(cfg.Telegram.Token))
	} else {
		fmt.Println("    Token:        not configured (notifications print to stdout)")
	}
	fmt.Printf("    Rate limit:   %.0f msg/s\n", cfg.Telegram.RatePerSecond)
	fmt.Printf("    Send timeout: %s\n", cfg.Telegram.SendTimeout)
	fmt.Println()

	fmt.Println("  [Scheduler]")
	fmt.Printf("    Bills:   %s\n", orOff(cfg.Scheduler.BillsSpec))
	fmt.Printf("    Goals:   %s\n", orOff(cfg.Scheduler.GoalsSpec))
	fmt.Printf("    Alerts:  %s\n", orOff(cfg.Scheduler.AlertsSpec))
	fmt.Printf("    Workers: %d\n", cfg.Scheduler.Workers)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `finbot setup` to reconfigure.")
	return nil
}
