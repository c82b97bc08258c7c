package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/spendmatch/internal/model"
	"github.com/Veraticus/spendmatch/internal/reconcile"
	"github.com/Veraticus/spendmatch/internal/statement"
)

// Pipeline wires parsing, reconciliation, categorization and serialization
// for a single statement file. Matched holds bindings stored by earlier
// runs; their notes are not offered to this statement's expenses again.
type Pipeline struct {
	Parser       statement.Parser
	Notes        NoteLookup
	Reconciler   *reconcile.Reconciler
	Orchestrator *Orchestrator
	Serializer   Serializer
	Logger       *slog.Logger
	Matched      []model.Match
}

// Outcome is the result of a pipeline run. Matches lists only the
// bindings made by this run.
type Outcome struct {
	Transactions []model.Transaction
	Matches      []model.Match
	Report       []byte
	Parsed       int
	Skipped      int
	Ambiguous    int
	Degraded     int
}

// Run processes one statement. Only a statement format failure and an
// empty report are returned as errors; reconciliation problems leave the
// expenses unmatched and classifier problems degrade to the fallback
// category.
func (p *Pipeline) Run(ctx context.Context, r io.Reader, categories []string, hints string) (Outcome, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	parsed, err := p.Parser.Parse(ctx, r)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to parse statement: %w", err)
	}

	outcome := Outcome{
		Transactions: model.Expenses(parsed.Transactions),
		Parsed:       parsed.Processed,
		Skipped:      parsed.Skipped,
	}

	if len(outcome.Transactions) > 0 && p.Reconciler != nil {
		reconciled, err := p.Reconciler.Reconcile(ctx, outcome.Transactions, reconcile.OptionsFromMatches(p.Matched))
		if err != nil {
			logger.Warn("reconciliation failed, continuing without matches", "error", err)
		} else {
			outcome.Matches = reconciled.Matches
			outcome.Ambiguous = reconciled.Ambiguous
		}
	}

	bound := append(p.priorMatches(outcome.Transactions), outcome.Matches...)
	summary := p.Orchestrator.Categorize(ctx, outcome.Transactions, bound, p.Notes, categories, hints)
	outcome.Degraded = summary.Degraded

	report, err := p.Serializer.Serialize(outcome.Transactions)
	if err != nil {
		return outcome, fmt.Errorf("failed to build report: %w", err)
	}
	outcome.Report = report

	logger.Info("statement processed",
		"parsed", outcome.Parsed,
		"skipped", outcome.Skipped,
		"expenses", len(outcome.Transactions),
		"matched", len(outcome.Matches),
		"ambiguous", outcome.Ambiguous,
		"degraded", outcome.Degraded)

	return outcome, nil
}

// priorMatches returns the stored bindings of the given transactions.
func (p *Pipeline) priorMatches(txns []model.Transaction) []model.Match {
	if len(p.Matched) == 0 {
		return nil
	}
	ids := make(map[string]bool, len(txns))
	for _, txn := range txns {
		ids[txn.ID] = true
	}
	var prior []model.Match
	for _, m := range p.Matched {
		if ids[m.TransactionID] {
			prior = append(prior, m)
		}
	}
	return prior
}
