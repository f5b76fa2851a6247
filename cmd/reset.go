package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	Long:  "Erase all progress of a learner and start over in --grade. Asks for confirmation unless --yes is given.",
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
		grade, _ := cmd.Flags().GetString("grade")
		if grade == "" {
			if rec := e.ledger.Get(cmd.Context(), userID); rec != nil {
				grade = rec.GradeID
			} else {
				grade = e.cfg.DefaultGrade
			}
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Fprintf(cmd.OutOrStdout(), "Erase all progress of %s and start over in %s? [y/N] ", userID, grade)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		return printJSON(cmd, e.ledger.Reset(cmd.Context(), userID, grade))
	},
}

func init() {
	resetCmd.Flags().String("grade", "", "Grade to start over in (defaults to the current grade)")
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
