package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yufin/yufin/internal/app"
	"github.com/yufin/yufin/internal/config"
	"github.com/yufin/yufin/internal/progress"
	"github.com/yufin/yufin/internal/store"
)

// errNoUser is returned by commands that act on a learner when neither
// --user nor YUFIN_USER is set.
var errNoUser = errors.New("no learner selected: pass --user or set YUFIN_USER")

// env bundles what every command needs after startup.
type env struct {
	cfg     config.Config
	backend *store.Backend
	ledger  *progress.Ledger
	logger  *log.Logger
}

func (e *env) Close() error {
	return e.backend.Close()
}

// user returns the learner ID from --user or the config.
func (e *env) user(cmd *cobra.Command) (string, error) {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u, nil
	}
	if e.cfg.User != "" {
		return e.cfg.User, nil
	}
	return "", errNoUser
}

// loadConfig reads the environment and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if s, _ := cmd.Flags().GetString("store"); s != "" {
		cfg.Store = s
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := store.EnsureDir(p); err != nil {
			return config.Config{}, fmt.Errorf("create db dir: %w", err)
		}
		cfg.DBPath = p
	}
	return cfg, cfg.Validate()
}

// openEnv loads config, opens the store and builds the ledger.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, fmt.Errorf("resolve DSN: %w", err)
	}
	backend, err := store.OpenBackend(cmd.Context(), cfg.Store, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	logger := log.New(os.Stderr, "yufin: ", log.LstdFlags)
	opts := []progress.Option{progress.WithLogger(logger)}
	if backend.Events != nil {
		opts = append(opts, progress.WithEventRepo(backend.Events))
	}

	return &env{
		cfg:     cfg,
		backend: backend,
		ledger:  progress.NewLedger(backend.KV, opts...),
		logger:  logger,
	}, nil
}

// runApp opens the store and launches the TUI for the selected learner.
// Without a learner a fresh ID is generated and printed.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	userID, err := e.user(cmd)
	if errors.Is(err, errNoUser) {
		userID = uuid.NewString()
		fmt.Fprintf(os.Stderr, "Starting as new learner %s (pass --user %s to continue later)\n", userID, userID)
	}

	return app.Run(cmd.Context(), app.Options{
		Ledger: e.ledger,
		Events: e.backend.Events,
		UserID: userID,
		Grade:  e.cfg.DefaultGrade,
	})
}

// printJSON writes v indented to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
