package cmd

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the learner's dashboard as JSON",
	Long:  "Print the dashboard view of a learner's progress. The record is created with the default grade if it does not exist yet.",
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
			grade = e.cfg.DefaultGrade
		}
		return printJSON(cmd, e.ledger.LoadDashboard(cmd.Context(), userID, grade))
	},
}

func init() {
	showCmd.Flags().String("grade", "", "Grade used if the record has to be created")
}
