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
	flagBillName     string
	flagBillAmount   float64
	flagBillDay      int
	flagBillCategory string
	flagBillNewCat   string
	flagBillActive   bool
)

var billsCmd = &cobra.Command{
	Use:     "bills",
	Aliases: []string{"bill"},
	Short:   "Manage fixed monthly bills",
}

var billsAddCmd = &cobra.Command{
	Use:   "add <name> <amount> <due-day>",
	Short: "Add a fixed bill",
	Args:  cobra.ExactArgs(3),
	RunE:  runBillsAdd,
}

var billsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active bills by due day",
	RunE:  runBillsList,
}

var billsDueCmd = &cobra.Command{
	Use:   "due",
	Short: "List bills whose due day has not passed this month",
	RunE:  runBillsDue,
}

var billsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a bill",
	Args:  cobra.ExactArgs(1),
	RunE:  runBillsUpdate,
}

var billsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Deactivate a bill",
	Args:  cobra.ExactArgs(1),
	RunE:  runBillsRm,
}

func init() {
	billsAddCmd.Flags().StringVarP(&flagBillCategory, "category", "c", "housing", "Category")

	billsUpdateCmd.Flags().StringVar(&flagBillName, "name", "", "New name")
	billsUpdateCmd.Flags().Float64Var(&flagBillAmount, "amount", 0, "New amount")
	billsUpdateCmd.Flags().IntVar(&flagBillDay, "day", 0, "New due day (1-31)")
	billsUpdateCmd.Flags().StringVarP(&flagBillNewCat, "category", "c", "", "New category")
	billsUpdateCmd.Flags().BoolVar(&flagBillActive, "active", true, "Reactivate or deactivate")

	billsCmd.AddCommand(billsAddCmd, billsListCmd, billsDueCmd, billsUpdateCmd, billsRmCmd)
	rootCmd.AddCommand(billsCmd)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func runBillsAdd(_ *cobra.Command, args []string) error {
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	day, err := strconv.Atoi(args[2])
	if err != nil {
		return model.ErrInvalidDueDay
	}
	cat, err := model.ParseCategory(flagBillCategory)
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
	b, err := e.bills.Create(ctx, u.ID, args[0], amount, day, cat)
	if err != nil {
		return err
	}
	info("  Added bill #%d %s, %s on day %d\n", b.ID, b.Name, cli.FormatMoney(e.currency(ctx, u.ID), b.Amount), b.DueDay)
	return nil
}

func runBillsList(_ *cobra.Command, _ []string) error {
	return listBills(false)
}

func runBillsDue(_ *cobra.Command, _ []string) error {
	return listBills(true)
}

func listBills(dueOnly bool) error {
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

	var rows []model.FixedBill
	title := "Bills"
	if dueOnly {
		rows, err = e.bills.DueSoon(ctx, u.ID)
		title = "Due soon"
	} else {
		rows, err = e.bills.ListActive(ctx, u.ID)
	}
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		info("  No bills.\n")
		return nil
	}

	cur := e.currency(ctx, u.ID)
	var total float64
	t := cli.Table{
		Title:   title,
		Headers: []string{"ID", "Day", "Name", "Amount", "Category"},
	}
	for _, b := range rows {
		total += b.Amount
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(b.ID, 10),
			strconv.Itoa(b.DueDay),
			b.Name,
			cli.FormatMoney(cur, b.Amount),
			b.Category.Label(),
		})
	}
	t.Rows = append(t.Rows, []string{"---"}, []string{"", "", "Total", cli.FormatMoney(cur, total), ""})
	fmt.Println(cli.RenderTable(t))
	return nil
}

func runBillsUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var p model.BillPatch
	flags := cmd.Flags()
	if flags.Changed("name") {
		p.Name = &flagBillName
	}
	if flags.Changed("amount") {
		p.Amount = &flagBillAmount
	}
	if flags.Changed("day") {
		p.DueDay = &flagBillDay
	}
	if flags.Changed("category") {
		cat, err := model.ParseCategory(flagBillNewCat)
		if err != nil {
			return err
		}
		p.Category = &cat
	}
	if flags.Changed("active") {
		p.Active = &flagBillActive
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
	b, err := e.bills.Update(ctx, id, u.ID, p)
	if err != nil {
		return err
	}
	info("  Updated bill #%d %s, %s on day %d\n", b.ID, b.Name, cli.FormatMoney(e.currency(ctx, u.ID), b.Amount), b.DueDay)
	return nil
}

func runBillsRm(_ *cobra.Command, args []string) error {
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
	ok, err := e.bills.SoftDelete(ctx, id, u.ID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotFound
	}
	info("  Removed bill #%d\n", id)
	return nil
}
