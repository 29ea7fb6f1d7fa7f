package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/healthguard/healthguard/internal/config"
)

// errNoCommand is returned by the bare root command after printing usage.
var errNoCommand = errors.New("no command given")

// app carries the state shared by every subcommand of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	dbURL  string
	cfg    *config.Config
	logger zerolog.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{
		stdout: stdout,
		stderr: stderr,
		logger: zerolog.New(stderr).With().Timestamp().Logger(),
	}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errNoCommand) {
			fmt.Fprintln(stderr, color.RedString("Error: %v", err))
		}
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "healthguard",
		Short:         "Patient vitals monitoring: ingest readings, flag anomalies, summarize",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errNoCommand
		},
	}
	root.PersistentFlags().StringVar(&a.dbURL, "db", "", "database path or postgres:// URL (overrides DATABASE_URL)")

	root.AddCommand(a.ingestCmd())
	root.AddCommand(a.reportCmd())
	root.AddCommand(a.monitorCmd())
	root.AddCommand(a.alertsCmd())
	root.AddCommand(a.rangesCmd())
	root.AddCommand(a.patientCmd())
	root.AddCommand(a.migrateCmd())
	root.AddCommand(a.doctorCmd())
	return root
}

// setup loads configuration and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dbURL != "" {
		cfg.DatabaseURL = a.dbURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cfg, a.stderr)
	return nil
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	return logger.Level(cfg.Level())
}
