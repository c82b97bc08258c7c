package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendmatch/internal/cli"
	"github.com/Veraticus/spendmatch/internal/common"
	"github.com/Veraticus/spendmatch/internal/engine"
	"github.com/Veraticus/spendmatch/internal/reconcile"
	"github.com/Veraticus/spendmatch/internal/report"
	"github.com/Veraticus/spendmatch/internal/service"
)

func (a *app) processCmd() *cobra.Command {
	var (
		outPath  string
		toSheets bool
		english  bool
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "process <statement>",
		Short: "Turn a statement into a categorized CSV report",
		Long: `Parse a statement export, pair each expense with a note you recorded,
categorize every expense and write the report.

The report goes to stdout unless --out is given. Use --save to keep the
transactions and matches in the database for later runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			ctx, stop := cli.NewInterruptHandler(a.errOut).HandleInterrupts(cmd.Context(), false)
			defer stop()

			parser, f, err := openStatement(path)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, hints, err := classifierInput(ctx, store)
			if err != nil {
				return err
			}

			categorizer, err := a.categorizer(ctx)
			if err != nil {
				return err
			}

			matched, err := store.GetMatches(ctx)
			if err != nil {
				return err
			}

			var progress *cli.Progress
			serializer := a.serializer(english)
			pipeline := &engine.Pipeline{
				Parser:     parser,
				Notes:      store,
				Reconciler: reconcile.New(store, a.settings.Reconcile.Window, a.logger),
				Orchestrator: engine.NewOrchestrator(categorizer, engine.Options{
					Logger:         a.logger,
					Fallback:       a.settings.Categorize.FallbackCategory,
					ContextWindow:  a.settings.Categorize.ContextWindow,
					MaxConcurrency: a.settings.Categorize.MaxConcurrency,
					OnProgress: func(done, total int) {
						if progress == nil {
							progress = cli.NewProgress(a.errOut, total, "Categorizing")
						}
						progress.Update(done, total)
					},
				}),
				Serializer: serializer,
				Logger:     a.logger,
				Matched:    matched,
			}

			outcome, err := pipeline.Run(ctx, f, categories, hints)
			if errors.Is(err, report.ErrEmptyReport) {
				return common.NewUserError(fmt.Sprintf("%s contains no expenses", path), err)
			}
			if err != nil {
				return statementError(path, err)
			}

			if err := a.writeReport(outPath, outcome.Report); err != nil {
				return err
			}

			if save {
				if err := a.saveOutcome(ctx, store, outcome); err != nil {
					return err
				}
			}

			if toSheets {
				if err := a.pushToSheets(ctx, serializer.Header(), outcome.Transactions); err != nil {
					return err
				}
			}

			a.printOutcome(outcome)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the CSV report to this file instead of stdout")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "also upload the report to Google Sheets")
	cmd.Flags().BoolVar(&english, "english", false, "use English column names in the report")
	cmd.Flags().BoolVar(&save, "save", false, "store transactions and note matches in the database")

	return cmd
}

// saveOutcome stores the categorized expenses and their note matches.
// Transactions already in the database keep their stored categorization.
func (a *app) saveOutcome(ctx context.Context, store service.Storage, outcome engine.Outcome) error {
	inserted, err := store.SaveTransactions(ctx, outcome.Transactions)
	if err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	if len(outcome.Matches) > 0 {
		if err := store.SaveMatches(ctx, outcome.Matches); err != nil {
			return fmt.Errorf("failed to save matches: %w", err)
		}
	}

	_, _ = fmt.Fprintln(a.errOut, cli.FormatInfo(
		fmt.Sprintf("Saved %d new transactions (%d already stored)", inserted, len(outcome.Transactions)-inserted)))
	return nil
}

func (a *app) printOutcome(outcome engine.Outcome) {
	summary := fmt.Sprintf("%d rows parsed, %d skipped, %d expenses, %d matched to notes",
		outcome.Parsed, outcome.Skipped, len(outcome.Transactions), len(outcome.Matches))
	_, _ = fmt.Fprintln(a.errOut, cli.FormatSuccess(summary))

	if outcome.Ambiguous > 0 {
		_, _ = fmt.Fprintln(a.errOut, cli.FormatInfo(
			fmt.Sprintf("%d expenses had more than one candidate note and were left unmatched", outcome.Ambiguous)))
	}
	if outcome.Degraded > 0 {
		_, _ = fmt.Fprintln(a.errOut, cli.FormatWarning(
			fmt.Sprintf("%d expenses fell back to %q", outcome.Degraded, a.settings.Categorize.FallbackCategory)))
	}
}
