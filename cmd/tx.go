package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finbot/internal/cli"
	"github.com/theirongolddev/finbot/internal/ledger"
	"github.com/theirongolddev/finbot/internal/model"
)

var (
	flagTxCategory  string
	flagTxDesc      string
	flagTxDate      string
	flagTxRecurring bool
	flagTxBalance   bool
	flagTxSince     string
	flagTxFilterCat string
	flagTxType      string
	flagTxLimit     int
)

var txCmd = &cobra.Command{
	Use:     "tx",
	Aliases: []string{"transactions"},
	Short:   "Record and list transactions",
}

var txAddCmd = &cobra.Command{
	Use:   "add <income|expense> <amount>",
	Short: "Record a transaction (expenses are checked against alerts)",
	Args:  cobra.ExactArgs(2),
	RunE:  runTxAdd,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, newest first",
	RunE:  runTxList,
}

func init() {
	txAddCmd.Flags().StringVarP(&flagTxCategory, "category", "c", "other", "Category")
	txAddCmd.Flags().StringVarP(&flagTxDesc, "desc", "m", "", "Description")
	txAddCmd.Flags().StringVar(&flagTxDate, "date", "", "Date as YYYY-MM-DD (default now)")
	txAddCmd.Flags().BoolVar(&flagTxRecurring, "recurring", false, "Mark as recurring")
	txAddCmd.Flags().BoolVar(&flagTxBalance, "balance", true, "Apply to the running balance")

	txListCmd.Flags().StringVar(&flagTxSince, "since", "", "Only on or after YYYY-MM-DD")
	txListCmd.Flags().StringVarP(&flagTxFilterCat, "category", "c", "", "Filter by category")
	txListCmd.Flags().StringVarP(&flagTxType, "type", "t", "", "Filter by income or expense")
	txListCmd.Flags().IntVarP(&flagTxLimit, "limit", "n", 20, "Maximum rows")

	txCmd.AddCommand(txAddCmd, txListCmd)
	rootCmd.AddCommand(txCmd)
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !model.Finite(v) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func runTxAdd(_ *cobra.Command, args []string) error {
	typ, err := model.ParseTxType(args[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	cat, err := model.ParseCategory(flagTxCategory)
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	entry := ledger.Entry{
		Amount:         amount,
		Type:           typ,
		Category:       cat,
		Description:    flagTxDesc,
		Recurring:      flagTxRecurring,
		ApplyToBalance: flagTxBalance,
	}
	if flagTxDate != "" {
		if entry.At, err = parseDay(flagTxDate, e.loc); err != nil {
			return err
		}
	}

	ctx := context.Background()
	u, err := e.currentUser(ctx)
	if err != nil {
		return err
	}
	t, err := e.ledger.Record(ctx, u.ID, entry)
	if err != nil {
		return err
	}
	cur := e.currency(ctx, u.ID)
	info("  Recorded #%d %s %s\n", t.ID, cli.FormatSigned(cur, *t), cat.Label())

	if typ != model.TxExpense {
		return nil
	}
	triggers, err := e.alerts.Evaluate(ctx, u.ID)
	if err != nil {
		return err
	}
	printTriggers(cur, triggers)
	return nil
}

func runTxList(_ *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	f := model.TxFilter{Limit: flagTxLimit}
	if flagTxSince != "" {
		if f.Since, err = parseDay(flagTxSince, e.loc); err != nil {
			return err
		}
	}
	if flagTxFilterCat != "" {
		if f.Category, err = model.ParseCategory(flagTxFilterCat); err != nil {
			return err
		}
	}
	if flagTxType != "" {
		if f.Type, err = model.ParseTxType(flagTxType); err != nil {
			return err
		}
	}

	ctx := context.Background()
	u, err := e.currentUser(ctx)
	if err != nil {
		return err
	}
	rows, err := e.ledger.List(ctx, u.ID, f)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		info("  No transactions.\n")
		return nil
	}

	cur := e.currency(ctx, u.ID)
	t := cli.Table{
		Title:   fmt.Sprintf("Transactions (%d)", len(rows)),
		Headers: []string{"ID", "Date", "Amount", "Category", "Description"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(r.ID, 10),
			cli.FormatDate(r.Date, e.loc),
			cli.FormatSigned(cur, r),
			r.Category.Label(),
			r.Description,
		})
	}
	fmt.Println(cli.RenderTable(t))
	return nil
}
