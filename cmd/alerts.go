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
	flagAlertCategory  string
	flagAlertThreshold float64
	flagAlertActive    bool
)

var alertsCmd = &cobra.Command{
	Use:     "alerts",
	Aliases: []string{"alert"},
	Short:   "Manage spending and balance alerts",
}

var alertsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an alert",
}

var alertsAddLimitCmd = &cobra.Command{
	Use:   "limit <amount>",
	Short: "Alert when month-to-date spending in a category reaches amount",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsAddLimit,
}

var alertsAddLowCmd = &cobra.Command{
	Use:     "low-balance <threshold>",
	Short:   "Alert when the balance drops to threshold or below",
	Example: "  finbot alerts add low-balance 100\n  finbot alerts add low-balance -- -250",
	Args:    cobra.ExactArgs(1),
	RunE:    runAlertsAddLow,
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active alerts",
	RunE:  runAlertsList,
}

var alertsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change the threshold or active flag of an alert",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsUpdate,
}

var alertsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Deactivate an alert",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsRm,
}

var alertsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate alerts now and deliver any that fire",
	RunE:  runAlertsCheck,
}

func init() {
	alertsAddLimitCmd.Flags().StringVarP(&flagAlertCategory, "category", "c", "", "Category to watch")

	alertsUpdateCmd.Flags().Float64Var(&flagAlertThreshold, "threshold", 0, "New threshold")
	alertsUpdateCmd.Flags().BoolVar(&flagAlertActive, "active", true, "Reactivate or deactivate")

	alertsAddCmd.AddCommand(alertsAddLimitCmd, alertsAddLowCmd)
	alertsCmd.AddCommand(alertsAddCmd, alertsListCmd, alertsUpdateCmd, alertsRmCmd, alertsCheckCmd)
	rootCmd.AddCommand(alertsCmd)
}

func describeRule(r model.Rule) string {
	switch r := r.(type) {
	case model.LimitRule:
		if r.Category == nil {
			return "limit (no category)"
		}
		return "limit " + r.Category.Label()
	case model.LowBalanceRule:
		return "low balance"
	}
	return r.Kind()
}

func runAlertsAddLimit(_ *cobra.Command, args []string) error {
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	rule := model.LimitRule{Threshold: amount}
	if flagAlertCategory != "" {
		cat, err := model.ParseCategory(flagAlertCategory)
		if err != nil {
			return err
		}
		rule.Category = &cat
	}
	return createAlert(rule)
}

func runAlertsAddLow(_ *cobra.Command, args []string) error {
	threshold, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	return createAlert(model.LowBalanceRule{Threshold: threshold})
}

func createAlert(rule model.Rule) error {
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
	a, err := e.alerts.Create(ctx, u.ID, rule)
	if err != nil {
		return err
	}
	info("  Created alert #%d: %s at %s\n", a.ID, describeRule(a.Rule), cli.FormatMoney(e.currency(ctx, u.ID), a.Rule.Limit()))
	if r, ok := rule.(model.LimitRule); ok && r.Category == nil {
		fmt.Println(cli.RenderWarning("  Note: a limit without --category never fires."))
	}
	return nil
}

func runAlertsList(_ *cobra.Command, _ []string) error {
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
	list, err := e.alerts.List(ctx, u.ID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		info("  No active alerts.\n")
		return nil
	}

	cur := e.currency(ctx, u.ID)
	t := cli.Table{
		Title:   "Alerts",
		Headers: []string{"ID", "Rule", "Threshold", "Created"},
	}
	for _, a := range list {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(a.ID, 10),
			describeRule(a.Rule),
			cli.FormatMoney(cur, a.Rule.Limit()),
			cli.FormatDate(a.CreatedAt, e.loc),
		})
	}
	fmt.Println(cli.RenderTable(t))
	return nil
}

func runAlertsUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	var p model.AlertPatch
	if cmd.Flags().Changed("threshold") {
		p.Threshold = &flagAlertThreshold
	}
	if cmd.Flags().Changed("active") {
		p.Active = &flagAlertActive
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
	a, err := e.alerts.Update(ctx, id, u.ID, p)
	if err != nil {
		return err
	}
	info("  Updated alert #%d: %s at %s (active %v)\n", a.ID, describeRule(a.Rule),
		cli.FormatMoney(e.currency(ctx, u.ID), a.Rule.Limit()), a.Active)
	return nil
}

func runAlertsRm(_ *cobra.Command, args []string) error {
	id, err := parseID(args[0])
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
	ok, err := e.alerts.SoftDelete(ctx, id, u.ID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotFound
	}
	info("  Removed alert #%d\n", id)
	return nil
}

func runAlertsCheck(_ *cobra.Command, _ []string) error {
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
	triggers, err := e.alerts.Evaluate(ctx, u.ID)
	if err != nil {
		return err
	}
	if len(triggers) == 0 {
		info("  No alerts fired.\n")
		return nil
	}

	printTriggers(e.currency(ctx, u.ID), triggers)
	return nil
}

func printTriggers(cur string, triggers []model.Trigger) {
	for _, tr := range triggers {
		label := "balance"
		if tr.Category != nil {
			label = tr.Category.Label()
		}
		state := "sent"
		if !tr.Delivered {
			state = "not delivered"
		}
		fmt.Println(cli.RenderWarning(fmt.Sprintf("  Alert #%d %s: %s against %s (%s)",
			tr.AlertID, label, cli.FormatMoney(cur, tr.Current), cli.FormatMoney(cur, tr.Threshold), state)))
	}
}
