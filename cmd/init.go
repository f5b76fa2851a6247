package cmd

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a learner's progress record",
	Long:  "Create a zeroed progress record. Without --user a new learner ID is generated. An existing record is left untouched.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		userID, err := e.user(cmd)
		if errors.Is(err, errNoUser) {
			userID = uuid.NewString()
		}
		grade, _ := cmd.Flags().GetString("grade")
		if grade == "" {
			grade = e.cfg.DefaultGrade
		}

		rec, created := e.ledger.InitializeIfAbsent(cmd.Context(), userID, grade)
		if !created {
			return fmt.Errorf("learner %s already has progress; use `yufin reset` to start over", userID)
		}
		return printJSON(cmd, rec)
	},
}

func init() {
	initCmd.Flags().String("grade", "", "School grade (defaults to YUFIN_DEFAULT_GRADE)")
}
