package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yufin/yufin/internal/progress"
)

var moduleCmd = &cobra.Command{
	Use:   "module <n>",
	Short: "Change the learner's current module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		module, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid module %q: %w", args[0], err)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		userID, err := e.user(cmd)
		if err != nil {
			return err
		}
		rec := e.ledger.SetCurrentModule(cmd.Context(), userID, module)
		if rec == nil {
			return fmt.Errorf("no progress found for learner %s", userID)
		}
		if rec.CurrentModule != module {
			fmt.Fprintf(cmd.ErrOrStderr(), "Module %d is not part of the free plan (modules 1-%d).\n", module, progress.MaxModules)
		}
		return printJSON(cmd, rec)
	},
}
