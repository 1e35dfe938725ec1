// Command najdeno runs the lost and found service.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the state shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "najdeno",
		Short:         "Najdeno - privacy-first lost and found",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML, TOML or JSON)")
	flags.StringP("db", "d", "najdeno.sqlite3", "SQLite database path")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.StringP("log", "l", "", "log file path (default: no file, stdout/stderr only)")
	_ = a.v.BindPFlag(config.KeyDB, flags.Lookup("db"))
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFile, flags.Lookup("log"))

	root.AddCommand(
		a.newServeCmd(),
		a.newInitCmd(),
		a.newUserCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "najdeno %s\n", version)
			},
		},
	)
	return root
}

// setupLogging installs the default slog logger for a.cfg.
func (a *app) setupLogging() (func() error, error) {
	return logging.Setup(logging.Options{
		Level:      a.cfg.Log.Level,
		File:       a.cfg.Log.File,
		MaxSizeMB:  a.cfg.Log.MaxSizeMB,
		MaxBackups: a.cfg.Log.MaxBackups,
	})
}

// openDB opens the configured database and brings its schema up to date.
func (a *app) openDB() (*sql.DB, error) {
	database, err := db.Open(a.cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return database, nil
}

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.cfg.DB); err == nil {
				return fmt.Errorf("database file %s already exists", a.cfg.DB)
			}

			database, err := a.openDB()
			if err != nil {
				os.Remove(a.cfg.DB)
				return err
			}
			defer database.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database created: %s\n", a.cfg.DB)
			fmt.Fprintln(out, "Schema initialized.")
			fmt.Fprintln(out, "Add accounts with: najdeno user add <username>")
			return nil
		},
	}
}
