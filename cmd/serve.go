package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/yufin/yufin/internal/api"
	"github.com/yufin/yufin/internal/backup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the progress API over HTTP",
	Long: `Serve the progress API over HTTP until interrupted.

With the sqlite store the ledger is also snapshotted every
YUFIN_SNAPSHOT_INTERVAL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = e.cfg.Addr
		}

		opts := []api.Option{
			api.WithLogger(e.logger),
			api.WithDefaultGrade(e.cfg.DefaultGrade),
		}
		if e.backend.Events != nil {
			opts = append(opts, api.WithEvents(e.backend.Events))
		}
		srv := api.New(e.ledger, opts...)

		if e.backend.Snapshots != nil && e.cfg.Snapshot.Interval > 0 {
			svc := backup.NewService(e.backend.KV, e.backend.Snapshots, e.backend.Events, e.cfg.Snapshot.Keep)
			sched := backup.NewScheduler(svc, e.cfg.Snapshot.Interval, e.logger)
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}

		errc := make(chan error, 1)
		go func() { errc <- srv.Listen(addr) }()

		select {
		case err := <-errc:
			return err
		case <-cmd.Context().Done():
		}

		e.logger.Printf("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return <-errc
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides YUFIN_ADDR)")
}
