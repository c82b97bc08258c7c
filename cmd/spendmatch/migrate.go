package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendmatch/internal/cli"
	"github.com/Veraticus/spendmatch/internal/storage"
)

func (a *app) migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every command migrates on start, so this is only needed to check the
schema or to prepare a database ahead of time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			dbPath := a.settings.Database.Path

			store, err := storage.NewSQLiteStorage(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			current, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			if status {
				_, err := fmt.Fprintln(a.out, cli.RenderTable(
					[]string{"Database", "Version", "Latest"},
					[][]string{{dbPath, fmt.Sprint(current), fmt.Sprint(storage.ExpectedSchemaVersion)}},
				))
				return err
			}

			a.logger.Info("Running database migrations",
				"database", dbPath,
				"from_version", current,
				"to_version", storage.ExpectedSchemaVersion)

			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			_, _ = fmt.Fprintln(a.errOut, cli.FormatSuccess(
				fmt.Sprintf("Database is at schema version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show the schema version without migrating")

	return cmd
}
