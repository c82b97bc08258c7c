package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spendmatch/internal/cli"
	"github.com/Veraticus/spendmatch/internal/common"
	"github.com/Veraticus/spendmatch/internal/config"
	"github.com/Veraticus/spendmatch/internal/llm"
)

var version = "dev"

// app carries the state shared by all commands.
type app struct {
	v         *viper.Viper
	settings  *config.Settings
	logger    *slog.Logger
	in        io.Reader
	out       io.Writer
	errOut    io.Writer
	newClient func(ctx context.Context, cfg llm.Config) (llm.Client, error)
	cfgFile   string
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		v:         viper.New(),
		in:        in,
		out:       out,
		errOut:    errOut,
		newClient: llm.NewClient,
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spendmatch",
		Short: "Categorize bank statements with the notes you took while spending",
		Long: `spendmatch reads a bank statement export, pairs each expense with the
note you jotted down when you paid, asks a language model for a category
and writes a clean CSV report.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	cmd.SetIn(a.in)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/spendmatch/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("db", "", "database path (default: $HOME/.local/share/spendmatch/spendmatch.db)")

	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("database.path", flags.Lookup("db"))

	cmd.AddCommand(a.processCmd())
	cmd.AddCommand(a.importCmd())
	cmd.AddCommand(a.noteCmd())
	cmd.AddCommand(a.reconcileCmd())
	cmd.AddCommand(a.categorizeCmd())
	cmd.AddCommand(a.reportCmd())
	cmd.AddCommand(a.categoriesCmd())
	cmd.AddCommand(a.hintsCmd())
	cmd.AddCommand(a.migrateCmd())
	cmd.AddCommand(a.sheetsCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if err := config.Init(a.v, a.cfgFile); err != nil {
		return err
	}

	settings, err := config.Load(a.v)
	if err != nil {
		return err
	}

	level, err := common.ParseLevel(settings.Logging.Level)
	if err != nil {
		return err
	}

	logger, err := common.SetupLogger(a.errOut, level, settings.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	a.settings = settings
	a.logger = logger
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print the version",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "spendmatch %s\n", version)
			return err
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(os.Stdin, os.Stdout, os.Stderr).rootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		slog.Debug("Command failed", "error", err)
		fmt.Fprintln(os.Stderr, cli.FormatError(common.UserMessage(err)))
		os.Exit(1)
	}
}
