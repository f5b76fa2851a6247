package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yufin/yufin/internal/backup"
)

// backupService returns the snapshot service of a sqlite-backed env.
func backupService(e *env) (*backup.Service, error) {
	if e.backend.Snapshots == nil {
		return nil, errors.New("the " + e.cfg.Store + " store does not support snapshots")
	}
	return backup.NewService(e.backend.KV, e.backend.Snapshots, e.backend.Events, e.cfg.Snapshot.Keep), nil
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a snapshot of the progress ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		svc, err := backupService(e)
		if err != nil {
			return err
		}
		snap, err := svc.Capture(cmd.Context())
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		if snap == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to snapshot yet.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %d: %d learners at sequence %d\n",
			snap.ID, snap.Data.Learners, snap.Sequence)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the progress ledger from the latest snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		svc, err := backupService(e)
		if err != nil {
			return err
		}
		snap, err := svc.Restore(cmd.Context())
		if err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot %d from %s (%d learners)\n",
			snap.ID, snap.Timestamp.Local().Format("2006-01-02 15:04"), snap.Data.Learners)
		return nil
	},
}
