package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finbot/internal/cli"
	"github.com/theirongolddev/finbot/internal/model"
)

var (
	flagUserFirst    string
	flagUserLast     string
	flagUserName     string
	flagPrefCurrency string
	flagPrefNotify   bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the --user chat id (no-op when already registered)",
	RunE:  runUserRegister,
}

var userShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show profile, balance and preferences",
	RunE:  runUserShow,
}

var userUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace the display name fields and reactivate the user",
	RunE:  runUserUpdate,
}

var userDeactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Stop scheduled messages for the user",
	RunE:  runUserDeactivate,
}

var userBalanceCmd = &cobra.Command{
	Use:   "balance <amount>",
	Short: "Overwrite the advisory balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserBalance,
}

var userPrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Update currency and notification preferences",
	RunE:  runUserPrefs,
}

func init() {
	for _, c := range []*cobra.Command{userRegisterCmd, userUpdateCmd} {
		c.Flags().StringVar(&flagUserFirst, "first-name", "", "First name")
		c.Flags().StringVar(&flagUserLast, "last-name", "", "Last name")
		c.Flags().StringVar(&flagUserName, "username", "", "Telegram username")
	}
	userPrefsCmd.Flags().StringVar(&flagPrefCurrency, "currency", "", "Currency symbol")
	userPrefsCmd.Flags().BoolVar(&flagPrefNotify, "notifications", true, "Receive scheduled digests")

	userCmd.AddCommand(userRegisterCmd, userShowCmd, userUpdateCmd, userDeactivateCmd, userBalanceCmd, userPrefsCmd)
	rootCmd.AddCommand(userCmd)
}

func profileFromFlags() model.Profile {
	return model.Profile{Username: flagUserName, FirstName: flagUserFirst, LastName: flagUserLast}
}

func runUserRegister(_ *cobra.Command, _ []string) error {
	if flagUser == 0 {
		return fmt.Errorf("--user is required")
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	u, created, err := e.ledger.Register(context.Background(), flagUser, profileFromFlags())
	if err != nil {
		return err
	}
	if created {
		info("  Registered %s (id %d)\n", u.DisplayName(), u.ID)
	} else {
		info("  %s is already registered (id %d)\n", u.DisplayName(), u.ID)
	}
	return nil
}

func runUserShow(_ *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	u, err := e.currentUser(ctx)
	if err != nil {
		return err
	}
	prefs, err := e.ledger.Preferences(ctx, u.ID, model.Preferences{Currency: e.cfg.General.Currency, NotificationsEnabled: true})
	if err != nil {
		return err
	}

	status := "active"
	if !u.Active {
		status = "inactive"
	}
	fmt.Println(cli.RenderTable(cli.Table{
		Title: u.DisplayName(),
		Rows: [][]string{
			{"Telegram id", strconv.FormatInt(u.TelegramID, 10)},
			{"Username", u.Username},
			{"Name", u.FirstName + " " + u.LastName},
			{"Status", status},
			{"Balance", cli.FormatMoney(prefs.Currency, u.Balance)},
			{"Currency", prefs.Currency},
			{"Notifications", strconv.FormatBool(prefs.NotificationsEnabled)},
			{"Member since", cli.FormatDate(u.CreatedAt, e.loc)},
		},
	}))
	return nil
}

func runUserUpdate(_ *cobra.Command, _ []string) error {
	if flagUser == 0 {
		return fmt.Errorf("--user is required")
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := e.ledger.UpdateProfile(context.Background(), flagUser, profileFromFlags())
	if err != nil {
		return err
	}
	info("  Updated %s\n", u.DisplayName())
	return nil
}

func runUserDeactivate(_ *cobra.Command, _ []string) error {
	if flagUser == 0 {
		return fmt.Errorf("--user is required")
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ok, err := e.ledger.Deactivate(context.Background(), flagUser)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotFound
	}
	info("  Deactivated user %d\n", flagUser)
	return nil
}

func runUserBalance(_ *cobra.Command, args []string) error {
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	u, err := e.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := e.ledger.SetBalance(ctx, u.ID, amount); err != nil {
		return err
	}
	info("  Balance set to %s\n", cli.FormatMoney(e.currency(ctx, u.ID), amount))
	return nil
}

func runUserPrefs(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	u, err := e.currentUser(ctx)
	if err != nil {
		return err
	}
	p, err := e.ledger.Preferences(ctx, u.ID, model.Preferences{Currency: e.cfg.General.Currency, NotificationsEnabled: true})
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("currency") {
		p.Currency = flagPrefCurrency
	}
	if cmd.Flags().Changed("notifications") {
		p.NotificationsEnabled = flagPrefNotify
	}
	if err := e.ledger.SavePreferences(ctx, p); err != nil {
		return err
	}
	info("  Currency %s, notifications %v\n", p.Currency, p.NotificationsEnabled)
	return nil
}
