// Command openpass is a local, encrypted credential vault with an
// interactive shell. Running it without a subcommand starts the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/openpass/internal/cli"
	"github.com/dmitrijs2005/openpass/internal/config"
	"github.com/dmitrijs2005/openpass/internal/dbx"
	"github.com/dmitrijs2005/openpass/internal/logging"
	"github.com/dmitrijs2005/openpass/internal/passgen"
	"github.com/dmitrijs2005/openpass/internal/repositories/repomanager"
	"github.com/spf13/cobra"
)

var version = "dev" // set by the linker

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

// newRootCmd builds a fresh command tree, so tests can run it in isolation.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "openpass",
		Short:        "A local encrypted credential vault",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			app, err := cli.NewApp(cmd.Context(), env.cfg, env.exec, env.repomanager, env.log)
			if err != nil {
				return err
			}
			defer app.Close()

			app.Run(cmd.Context())
			return nil
		},
	}

	config.RegisterFlags(cmd)
	cmd.AddCommand(newMigrateCmd(), newGenerateCmd(), newConfigCmd())
	return cmd
}

// environment is what every database-backed command needs.
type environment struct {
	cfg         *config.Config
	log         logging.Logger
	exec        *dbx.Executor
	repomanager repomanager.RepositoryManager
}

func (e *environment) close() {
	_ = e.exec.Close()
}

// setup loads the configuration, opens the database and applies migrations.
func setup(cmd *cobra.Command) (*environment, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.NewTextLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	dialect, err := dbx.ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(ctx, dialect, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	m := repomanager.NewRepositoryManager(dialect)
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Debug(ctx, "database ready", "driver", string(dialect))
	return &environment{
		cfg:         cfg,
		log:         log,
		exec:        dbx.NewExecutor(db, dialect),
		repomanager: m,
	}, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			env.log.Info(cmd.Context(), "migrations applied")
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date.")
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a random password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passgen.GenerateN(length)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pw)
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "n", passgen.DefaultLength, "password length")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString(config.FlagConfig)
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			var c config.Config
			c.LoadDefaults()
			if err := config.WriteFile(&c, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
