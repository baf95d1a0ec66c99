package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finbot/internal/cli"
)

var flagReportMonth string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Monthly income, expenses and category breakdown",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&flagReportMonth, "month", "", "Month as YYYY-MM (default current)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	month := time.Now().In(e.loc)
	if flagReportMonth != "" {
		month, err = time.ParseInLocation("2006-01", flagReportMonth, e.loc)
		if err != nil {
			return fmt.Errorf("invalid month %q, want YYYY-MM", flagReportMonth)
		}
	}

	ctx := context.Background()
	u, err := e.currentUser(ctx)
	if err != nil {
		return err
	}
	cur := e.currency(ctx, u.ID)

	sum, err := e.ledger.MonthlySummary(ctx, u.ID, month)
	if err != nil {
		return err
	}
	prev, err := e.ledger.MonthlySummary(ctx, u.ID, sum.Month.AddDate(0, -1, 0))
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderTitle(cli.FormatMonth(sum.Month)))
	fmt.Println(cli.RenderTable(cli.Table{
		Headers: []string{"", "This month", "vs last month"},
		Rows: [][]string{
			{"Income", cli.FormatDecimal(cur, sum.Income), cli.FormatDelta(cur, sum.Income, prev.Income)},
			{"Expenses", cli.FormatDecimal(cur, sum.Expense), cli.FormatDelta(cur, sum.Expense, prev.Expense)},
			{"---"},
			{"Net", cli.FormatDecimal(cur, sum.Net()), cli.FormatDelta(cur, sum.Net(), prev.Net())},
		},
	}))
	info("  %d transactions\n\n", sum.Count)

	if len(sum.ByCategory) == 0 {
		return nil
	}
	total := sum.Expense.InexactFloat64()
	maxVal := sum.ByCategory[0].Amount.InexactFloat64()
	for _, c := range sum.ByCategory {
		if v := c.Amount.InexactFloat64(); v > maxVal {
			maxVal = v
		}
	}
	for _, c := range sum.ByCategory {
		v := c.Amount.InexactFloat64()
		fmt.Printf("%s %s  %s\n",
			cli.RenderHorizontalBar(c.Category.Label(), v, maxVal, 30),
			cli.FormatDecimal(cur, c.Amount),
			cli.RenderMuted(cli.FormatPercent(v/total*100)))
	}
	return nil
}
