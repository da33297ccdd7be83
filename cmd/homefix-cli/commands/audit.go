package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cswnn/Capstone-Homefix2/cmd/homefix-cli/ui"
	"github.com/cswnn/Capstone-Homefix2/internal/bootstrap"
)

func newAuditCmd(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent interactions from the audit store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			res := &bootstrap.Resources{}
			defer res.Close()

			rows, err := res.NewAudit(ctx, e.cfg, e.logger).Recent(ctx, limit)
			if err != nil {
				return err
			}

			if e.ui.JSONMode() {
				return e.ui.JSON(rows)
			}
			if len(rows) == 0 {
				e.ui.Info("no interactions recorded (database driver: %s)", e.cfg.Database.Driver)
				return nil
			}
			for _, r := range rows {
				e.ui.Line("%s  %-9s  %-15s  %s → %s",
					r.OccurredAt.Local().Format("2006-01-02 15:04:05"),
					r.Kind, r.SessionID,
					ui.Truncate(r.Input, 30), ui.Truncate(r.Output, 40))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of interactions to show")
	return cmd
}
