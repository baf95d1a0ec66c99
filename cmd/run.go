package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finbot/internal/cli"
	"github.com/theirongolddev/finbot/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:       "run <" + strings.Join(scheduler.Jobs, "|") + ">",
	Short:     "Run one scheduled job now for every active user",
	Args:      cobra.ExactArgs(1),
	ValidArgs: scheduler.Jobs,
	RunE:      runJob,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func (e *env) runner() *scheduler.Runner {
	return scheduler.NewRunner(e.store, e.notifier, e.alerts, e.log, scheduler.RunnerConfig{
		Location:    e.loc,
		Currency:    e.cfg.General.Currency,
		SendTimeout: e.timeout,
		Workers:     e.cfg.Scheduler.Workers,
	})
}

func runJob(_ *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := e.runner().Run(ctx, args[0])
	if err != nil {
		return err
	}
	printReport(rep)
	if rep.Err != "" {
		return fmt.Errorf("%s job: %s", rep.Job, rep.Err)
	}
	return nil
}

func printReport(rep scheduler.Report) {
	fmt.Println(cli.RenderTable(cli.Table{
		Title: "Job " + rep.Job,
		Rows: [][]string{
			{"Run", rep.RunID.String()},
			{"Started", rep.StartedAt.Format(time.RFC3339)},
			{"Duration", rep.Duration.Round(time.Millisecond).String()},
			{"Users", cli.FormatNumber(int64(rep.Users))},
			{"Notified", cli.FormatNumber(int64(rep.Notified))},
			{"Skipped", cli.FormatNumber(int64(rep.Skipped))},
			{"Failed", cli.FormatNumber(int64(rep.Failed))},
		},
	}))
}
