package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendmatch/internal/cli"
	"github.com/Veraticus/spendmatch/internal/common"
	"github.com/Veraticus/spendmatch/internal/reconcile"
	"github.com/Veraticus/spendmatch/internal/service"
)

func (a *app) reconcileCmd() *cobra.Command {
	var window time.Duration

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Pair stored expenses with notes",
		Long: `Pair every unmatched expense with the single unmatched note recorded within
the match window. Expenses with no note, or with several candidate notes,
stay unmatched. Existing matches are kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !cmd.Flags().Changed("window") {
				window = a.settings.Reconcile.Window
			}
			if window <= 0 {
				return common.NewUserError("--window must be positive", nil)
			}

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, err := store.GetTransactions(ctx, service.TransactionFilter{ExpensesOnly: true})
			if err != nil {
				return err
			}

			existing, err := store.GetMatches(ctx)
			if err != nil {
				return err
			}

			result, err := reconcile.New(store, window, a.logger).Reconcile(ctx, txns, reconcile.OptionsFromMatches(existing))
			if err != nil {
				return err
			}

			if len(result.Matches) > 0 {
				if err := store.SaveMatches(ctx, result.Matches); err != nil {
					return fmt.Errorf("failed to save matches: %w", err)
				}
			}

			_, _ = fmt.Fprintln(a.errOut, cli.FormatSuccess(fmt.Sprintf(
				"%d new matches, %d expenses without a note (%d ambiguous), %d matched earlier",
				len(result.Matches), len(result.Unmatched), result.Ambiguous, len(existing))))
			return nil
		},
	}

	cmd.Flags().DurationVar(&window, "window", reconcile.DefaultWindow, "how far apart a note and an expense may be")

	return cmd
}
