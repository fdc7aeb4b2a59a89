// Package cli implements the fyora command line.
package cli

import (
	"context"
	"fmt"
	"strings"

	"fyora/internal/config"
	"fyora/internal/logging"
	"fyora/internal/repository"
	"fyora/internal/repository/sqlite"
	"fyora/internal/service"

	"github.com/spf13/cobra"
)

// skipStore marks commands that run without opening the database.
const skipStore = "skip-store"

// app holds what a command run needs, built in PersistentPreRunE.
type app struct {
	configFile string
	dbPath     string
	root       string
	logLevel   string

	cfg       *config.Config
	cfgPath   string
	repo      repository.Repository
	users     *service.UserService
	reconcile *service.ReconcileService
}

// NewRootCommand builds the fyora command tree.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRoot()
	return cmd
}

func newRoot() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "fyora",
		Short:         "Administer Fyora users and progress logs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: search $FYORA_CONFIG, ./fyora.yaml, ~/.config/fyora)")
	flags.StringVar(&a.dbPath, "db", "", "SQLite database path (overrides database.path)")
	flags.StringVar(&a.root, "root", "", "root directory for exports and imports (overrides files.root)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")

	cmd.AddCommand(
		newUserCommand(a),
		newLogCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newSummaryCommand(a),
		newResetCommand(a),
		newConfigCommand(a),
	)
	return cmd, a
}

// Execute runs the command tree with args. The database is closed even when
// the command fails.
func Execute(ctx context.Context, args []string) error {
	cmd, a := newRoot()
	defer a.close()

	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configFile != "" {
		a.cfg, a.cfgPath, err = config.LoadFromPath(a.configFile)
	} else {
		a.cfg, a.cfgPath, err = config.Load()
	}
	if err != nil {
		return err
	}

	if a.dbPath != "" {
		a.cfg.Database.Path = a.dbPath
	}
	if a.root != "" {
		a.cfg.Files.Root = a.root
	}
	if a.logLevel != "" {
		a.cfg.Log.Level = strings.ToLower(a.logLevel)
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}

	logging.Init(a.cfg.Log.Level, a.cfg.Log.Format, cmd.ErrOrStderr())

	if cmd.Annotations[skipStore] == "true" {
		return nil
	}

	repo, err := sqlite.New(a.cfg.Database.Path)
	if err != nil {
		return err
	}
	a.repo = repo

	paths, err := config.NewPaths(a.cfg.Files)
	if err != nil {
		a.close()
		return err
	}

	a.users = service.NewUserService(a.repo)
	a.reconcile = service.NewReconcileService(a.users, paths)
	return nil
}

func (a *app) close() error {
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
