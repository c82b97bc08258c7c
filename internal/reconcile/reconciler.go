// Package reconcile binds expense transactions to the notes the user wrote
// at the moment of spending.
//
// A transaction is bound to a note only when exactly one unbound note falls
// inside its time window. Transactions with several candidates stay unbound
// and are counted as ambiguous; the matcher never guesses.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Veraticus/spendmatch/internal/model"
)

// DefaultWindow is the maximum distance between a transaction and its note.
const DefaultWindow = 15 * time.Minute

// NoteLookup returns the notes with start <= Timestamp <= end.
type NoteLookup interface {
	NotesBetween(ctx context.Context, start, end time.Time) ([]model.Note, error)
}

// Options excludes transactions and notes bound by an earlier run.
type Options struct {
	MatchedTransactions map[string]bool
	MatchedNotes        map[string]bool
}

// OptionsFromMatches excludes every transaction and note in matches.
func OptionsFromMatches(matches []model.Match) Options {
	opts := Options{
		MatchedTransactions: make(map[string]bool, len(matches)),
		MatchedNotes:        make(map[string]bool, len(matches)),
	}
	for _, m := range matches {
		opts.MatchedTransactions[m.TransactionID] = true
		opts.MatchedNotes[m.NoteID] = true
	}
	return opts
}

// Result is the outcome of a reconciliation run.
type Result struct {
	Matches   []model.Match
	Unmatched []model.Transaction
	Ambiguous int
}

// Reconciler performs greedy one-to-one matching in ascending date order.
type Reconciler struct {
	lookup NoteLookup
	logger *slog.Logger
	window time.Duration
}

// New creates a reconciler. A non-positive window means DefaultWindow.
func New(lookup NoteLookup, window time.Duration, logger *slog.Logger) *Reconciler {
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{lookup: lookup, window: window, logger: logger}
}

// Window returns the match window in use.
func (r *Reconciler) Window() time.Duration {
	return r.window
}

// Reconcile matches transactions against notes with the given window.
func Reconcile(ctx context.Context, transactions []model.Transaction, lookup NoteLookup, window time.Duration) (Result, error) {
	return New(lookup, window, nil).Reconcile(ctx, transactions, Options{})
}

// Reconcile binds each expense to at most one note. Only expenses take
// part; the result lists unbound expenses in ascending date order.
func (r *Reconciler) Reconcile(ctx context.Context, transactions []model.Transaction, opts Options) (Result, error) {
	pending := make([]model.Transaction, 0, len(transactions))
	for _, txn := range transactions {
		if !txn.IsExpense() || opts.MatchedTransactions[txn.ID] {
			continue
		}
		pending = append(pending, txn)
	}

	var result Result
	if len(pending) == 0 {
		return result, nil
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Date.Before(pending[j].Date)
	})

	from := pending[0].Date.Add(-r.window)
	to := pending[len(pending)-1].Date.Add(r.window)

	notes, err := r.lookup.NotesBetween(ctx, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load notes for reconciliation: %w", err)
	}

	pool := make([]model.Note, 0, len(notes))
	for _, note := range notes {
		if !opts.MatchedNotes[note.ID] {
			pool = append(pool, note)
		}
	}

	for _, txn := range pending {
		start, end := txn.Date.Add(-r.window), txn.Date.Add(r.window)

		candidate := -1
		count := 0
		for i, note := range pool {
			if note.Timestamp.Before(start) || note.Timestamp.After(end) {
				continue
			}
			count++
			candidate = i
		}

		switch {
		case count == 1:
			note := pool[candidate]
			result.Matches = append(result.Matches, model.Match{
				TransactionID: txn.ID,
				NoteID:        note.ID,
			})
			pool = append(pool[:candidate], pool[candidate+1:]...)
		case count > 1:
			result.Ambiguous++
			result.Unmatched = append(result.Unmatched, txn)
			r.logger.Debug("ambiguous note match",
				"transaction_id", txn.ID,
				"candidates", count)
		default:
			result.Unmatched = append(result.Unmatched, txn)
		}
	}

	r.logger.Info("reconciled transactions",
		"transactions", len(pending),
		"matched", len(result.Matches),
		"ambiguous", result.Ambiguous,
		"window", r.window)

	return result, nil
}
