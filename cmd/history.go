package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yufin/yufin/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the learner's ledger events",
	Long:  "List the most recent ledger events of a learner, newest first. Only the sqlite store keeps events.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if e.backend.Events == nil {
			return errors.New("the " + e.cfg.Store + " store does not keep ledger events")
		}
		userID, err := e.user(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		events, err := e.backend.Events.QueryLedgerEvents(cmd.Context(), userID, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tTIME\tKIND\tLESSON\tMODULE\tXP\tCOINS")
		for _, ev := range events {
			lesson := "-"
			if ev.LessonID != nil {
				lesson = *ev.LessonID
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%+d\t%+d\n",
				ev.Sequence, ev.Timestamp.Local().Format("2006-01-02 15:04"), ev.Kind,
				lesson, ev.Module, ev.XPDelta, ev.CoinsDelta)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of events")
}
