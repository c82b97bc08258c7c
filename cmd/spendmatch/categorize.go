package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendmatch/internal/cli"
	"github.com/Veraticus/spendmatch/internal/common"
	"github.com/Veraticus/spendmatch/internal/engine"
	"github.com/Veraticus/spendmatch/internal/llm"
	"github.com/Veraticus/spendmatch/internal/model"
)

type categorized struct {
	result llm.Result
	txn    model.Transaction
}

func (a *app) categorizeCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Categorize stored expenses",
		Long: `Ask the language model for a category and a comment for every stored
expense that has none yet. Matched notes and notes recorded around the
time of each expense are passed along as context.

An interrupted run keeps the categorizations already finished; run the
command again to pick up the rest.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("concurrency") {
				concurrency = a.settings.Categorize.MaxConcurrency
			}
			if concurrency < 1 {
				return common.NewUserError("--concurrency must be at least 1", nil)
			}

			ctx, stop := cli.NewInterruptHandler(a.errOut).HandleInterrupts(cmd.Context(), true)
			defer stop()

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, err := store.GetUncategorizedExpenses(ctx)
			if err != nil {
				return err
			}
			if len(txns) == 0 {
				_, _ = fmt.Fprintln(a.errOut, cli.FormatInfo("Nothing to categorize."))
				return nil
			}

			matches, err := store.GetMatches(ctx)
			if err != nil {
				return err
			}

			categories, hints, err := classifierInput(ctx, store)
			if err != nil {
				return err
			}

			categorizer, err := a.categorizer(ctx)
			if err != nil {
				return err
			}

			var results []categorized
			progress := cli.NewProgress(a.errOut, len(txns), "Categorizing")
			orchestrator := engine.NewOrchestrator(categorizer, engine.Options{
				Logger:         a.logger,
				Fallback:       a.settings.Categorize.FallbackCategory,
				ContextWindow:  a.settings.Categorize.ContextWindow,
				MaxConcurrency: concurrency,
				OnProgress:     progress.Update,
				OnResult: func(txn model.Transaction, result llm.Result) {
					results = append(results, categorized{txn: txn, result: result})
				},
			})

			summary := orchestrator.Categorize(ctx, txns, matches, store, categories, hints)

			// Once interrupted, degraded results are left for the next run.
			interrupted := ctx.Err() != nil
			saveCtx := context.WithoutCancel(ctx)
			saved := 0
			for _, c := range results {
				if interrupted && c.result.Degraded {
					continue
				}
				if err := store.UpdateCategorization(saveCtx, c.txn.ID, c.result.Category, c.result.Comment); err != nil {
					return fmt.Errorf("failed to save categorization of %s: %w", c.txn.ID, err)
				}
				saved++
			}

			a.logger.Info("Categorization saved",
				"saved", saved,
				"total", summary.Total,
				"degraded", summary.Degraded,
				"interrupted", interrupted)

			if interrupted {
				_, _ = fmt.Fprintln(a.errOut, cli.FormatWarning(fmt.Sprintf(
					"Saved %d of %d categorizations before the interrupt", saved, summary.Total)))
				return nil
			}

			_, _ = fmt.Fprintln(a.errOut, cli.FormatSuccess(fmt.Sprintf(
				"Categorized %d expenses in %s", summary.Total, summary.Duration.Round(time.Millisecond))))
			if summary.Degraded > 0 {
				_, _ = fmt.Fprintln(a.errOut, cli.FormatWarning(fmt.Sprintf(
					"%d expenses fell back to %q", summary.Degraded, a.settings.Categorize.FallbackCategory)))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", engine.DefaultMaxConcurrency, "maximum classifier calls in flight")

	return cmd
}
