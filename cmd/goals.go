package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finbot/internal/cli"
	"github.com/theirongolddev/finbot/internal/goals"
	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/scheduler"
)

var (
	flagGoalDays    int
	flagGoalInitial float64
)

var goalsCmd = &cobra.Command{
	Use:     "goals",
	Aliases: []string{"goal"},
	Short:   "Manage savings goals",
}

var goalsAddCmd = &cobra.Command{
	Use:   "add <name> <target>",
	Short: "Create a savings goal",
	Args:  cobra.ExactArgs(2),
	RunE:  runGoalsAdd,
}

var goalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals with progress, nearest deadline first",
	RunE:  runGoalsList,
}

var goalsProgressCmd = &cobra.Command{
	Use:   "progress <id> <delta>",
	Short: "Add to (or subtract from) the saved amount",
	Args:  cobra.ExactArgs(2),
	RunE:  runGoalsProgress,
}

var goalsSetCmd = &cobra.Command{
	Use:   "set <id> <amount>",
	Short: "Overwrite the saved amount",
	Args:  cobra.ExactArgs(2),
	RunE:  runGoalsSet,
}

var goalsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsRm,
}

func init() {
	goalsAddCmd.Flags().IntVarP(&flagGoalDays, "days", "d", 30, "Days until the deadline")
	goalsAddCmd.Flags().Float64Var(&flagGoalInitial, "initial", 0, "Amount already saved")

	// Negative deltas look like flags otherwise.
	goalsProgressCmd.Flags().SetInterspersed(false)

	goalsCmd.AddCommand(goalsAddCmd, goalsListCmd, goalsProgressCmd, goalsSetCmd, goalsRmCmd)
	rootCmd.AddCommand(goalsCmd)
}

func runGoalsAdd(_ *cobra.Command, args []string) error {
	target, err := parseAmount(args[1])
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
	g, err := e.goals.Create(ctx, u.ID, args[0], target, flagGoalDays, flagGoalInitial)
	if err != nil {
		return err
	}
	info("  Created goal #%d %s: %s by %s\n", g.ID, g.Name,
		cli.FormatMoney(e.currency(ctx, u.ID), g.TargetAmount), cli.FormatDate(g.Deadline, e.loc))
	return nil
}

func runGoalsList(_ *cobra.Command, _ []string) error {
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
	views, err := e.goals.List(ctx, u.ID)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		info("  No goals.\n")
		return nil
	}

	cur := e.currency(ctx, u.ID)
	t := cli.Table{
		Title:   "Goals",
		Headers: []string{"ID", "Name", "Saved", "Target", "Progress", "Left", "Per day", "Status"},
	}
	for _, v := range views {
		p := v.Progress
		status := scheduler.StatusDone
		if !p.Completed {
			status = scheduler.GoalStatus(p)
		}
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(v.Goal.ID, 10),
			v.Goal.Name,
			cli.FormatMoney(cur, v.Goal.CurrentAmount),
			cli.FormatMoney(cur, v.Goal.TargetAmount),
			cli.FormatPercent(p.Percent),
			cli.FormatDaysLeft(p.DaysLeft),
			cli.FormatMoney(cur, p.DailyNeeded),
			status,
		})
	}
	fmt.Println(cli.RenderTable(t))
	return nil
}

func runGoalsProgress(_ *cobra.Command, args []string) error {
	return changeGoal(args, func(e *env, ctx context.Context, id, userID int64, v float64) (*goals.View, error) {
		return e.goals.UpdateProgress(ctx, id, userID, v)
	})
}

func runGoalsSet(_ *cobra.Command, args []string) error {
	return changeGoal(args, func(e *env, ctx context.Context, id, userID int64, v float64) (*goals.View, error) {
		return e.goals.SetProgress(ctx, id, userID, v)
	})
}

func changeGoal(args []string, apply func(*env, context.Context, int64, int64, float64) (*goals.View, error)) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	value, err := parseAmount(args[1])
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
	v, err := apply(e, ctx, id, u.ID, value)
	if err != nil {
		return err
	}

	cur := e.currency(ctx, u.ID)
	fmt.Printf("  %s  %s of %s\n", v.Goal.Name,
		cli.FormatMoney(cur, v.Goal.CurrentAmount), cli.FormatMoney(cur, v.Goal.TargetAmount))
	fmt.Printf("  %s\n", cli.RenderProgressBar(v.Progress.Percent, 30))
	if v.Progress.Completed {
		fmt.Println("  Goal reached!")
	} else {
		fmt.Printf("  %s left, %s per day\n", cli.FormatDaysLeft(v.Progress.DaysLeft), cli.FormatMoney(cur, v.Progress.DailyNeeded))
	}
	return nil
}

func runGoalsRm(_ *cobra.Command, args []string) error {
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
	ok, err := e.goals.Delete(ctx, id, u.ID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotFound
	}
	info("  Deleted goal #%d\n", id)
	return nil
}
