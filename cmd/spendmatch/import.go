package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendmatch/internal/cli"
	"github.com/Veraticus/spendmatch/internal/common"
)

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <statement>",
		Short: "Store the transactions of a statement",
		Long: `Parse a statement export (.xlsx, .ofx or .qfx) and store its transactions.

Transactions already in the database are skipped, so importing overlapping
statements is safe. Run 'spendmatch reconcile' and 'spendmatch categorize'
afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			parser, f, err := openStatement(path)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			result, err := parser.Parse(ctx, f)
			if err != nil {
				return statementError(path, err)
			}
			if len(result.Transactions) == 0 {
				return common.NewUserError(fmt.Sprintf("%s contains no transactions", path), nil)
			}

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			inserted, err := store.SaveTransactions(ctx, result.Transactions)
			if err != nil {
				return fmt.Errorf("failed to save transactions: %w", err)
			}

			a.logger.Info("Import complete",
				"file", path,
				"format", parser.Format(),
				"parsed", result.Processed,
				"inserted", inserted,
				"skipped_rows", result.Skipped)

			_, _ = fmt.Fprintln(a.errOut, cli.FormatSuccess(fmt.Sprintf(
				"Imported %d new transactions (%d duplicates, %d unreadable rows)",
				inserted, len(result.Transactions)-inserted, result.Skipped)))
			return nil
		},
	}
}
