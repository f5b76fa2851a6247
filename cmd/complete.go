package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yufin/yufin/internal/progress"
)

var completeCmd = &cobra.Command{
	Use:   "complete <lessonId>",
	Short: "Record a completed lesson",
	Long: `Record a completed lesson and print the updated record.

The module is derived from the lesson ID unless --module is given.
Completing a lesson twice changes nothing.`,
	Args: cobra.ExactArgs(1),
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
		score, _ := cmd.Flags().GetInt("score")
		timeSpent, _ := cmd.Flags().GetInt("time")
		module, _ := cmd.Flags().GetInt("module")

		rec := e.ledger.CompleteLesson(cmd.Context(), userID, progress.LessonResult{
			LessonID:  args[0],
			Score:     score,
			TimeSpent: timeSpent,
			Module:    module,
		})
		if rec == nil {
			return fmt.Errorf("no progress found for learner %s; run `yufin init` first", userID)
		}
		return printJSON(cmd, rec)
	},
}

func init() {
	completeCmd.Flags().Int("score", 100, "Lesson score")
	completeCmd.Flags().Int("time", 0, "Time spent in seconds")
	completeCmd.Flags().Int("module", 0, "Module the lesson belongs to (0 derives it from the lesson ID)")
}
