package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		userID, err := e.user(cmd)
		if err != nil {
			return err
		}
		st := e.ledger.Stats(cmd.Context(), userID)
		if st == nil {
			return fmt.Errorf("no progress found for learner %s", userID)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, st)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Lessons\t%d/%d (%d%%)\n", st.CompletedLessons, st.TotalLessons, st.CompletionPercent)
		fmt.Fprintf(w, "Level\t%d\n", st.Level)
		fmt.Fprintf(w, "XP\t%d\n", st.XP)
		fmt.Fprintf(w, "YuCoins\t%d\n", st.YuCoins)
		fmt.Fprintf(w, "Streak\t%d\n", st.Streak)
		fmt.Fprintf(w, "Achievements\t%d\n", st.Achievements)
		return w.Flush()
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print as JSON")
}
