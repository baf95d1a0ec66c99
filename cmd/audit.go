package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finbot/internal/cli"
	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/store"
)

var flagAuditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the most recent changes made for the user",
	RunE:  runAudit,
}

func init() {
	auditCmd.Flags().IntVarP(&flagAuditLimit, "limit", "n", 20, "Maximum rows")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(_ *cobra.Command, _ []string) error {
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

	var entries []model.AuditEntry
	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		entries, err = tx.RecentAudit(u.ID, flagAuditLimit)
		return err
	})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		info("  No audit entries.\n")
		return nil
	}

	t := cli.Table{
		Title:   "Audit log",
		Headers: []string{"When", "Action", "Entity", "ID", "Details"},
	}
	for _, a := range entries {
		details := ""
		if len(a.Details) > 0 {
			raw, _ := json.Marshal(a.Details)
			details = string(raw)
		}
		t.Rows = append(t.Rows, []string{
			a.Timestamp.In(e.loc).Format("2006-01-02 15:04"),
			a.Action,
			a.Entity,
			strconv.FormatInt(a.EntityID, 10),
			details,
		})
	}
	fmt.Println(cli.RenderTable(t))
	return nil
}
