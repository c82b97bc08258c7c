// Package engine runs the statement pipeline: parsing, note reconciliation,
// concurrent categorization and report serialization.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Veraticus/spendmatch/internal/llm"
	"github.com/Veraticus/spendmatch/internal/model"
)

// Defaults for the orchestrator.
const (
	DefaultMaxConcurrency = 4
	DefaultContextWindow  = 48 * time.Hour
)

// Options configures an Orchestrator. OnProgress and OnResult are called
// serially, once per resolved expense.
type Options struct {
	Logger         *slog.Logger
	OnProgress     func(done, total int)
	OnResult       func(txn model.Transaction, result llm.Result)
	Fallback       string
	ContextWindow  time.Duration
	MaxConcurrency int
}

// Summary describes a categorization run.
type Summary struct {
	Total    int
	Degraded int
	Duration time.Duration
}

// Orchestrator categorizes transactions concurrently with a bounded number
// of classifier calls in flight.
type Orchestrator struct {
	categorizer    llm.Categorizer
	logger         *slog.Logger
	onProgress     func(done, total int)
	onResult       func(txn model.Transaction, result llm.Result)
	fallback       string
	contextWindow  time.Duration
	maxConcurrency int64
}

// NewOrchestrator creates an orchestrator around categorizer.
func NewOrchestrator(categorizer llm.Categorizer, opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = DefaultContextWindow
	}
	if opts.Fallback == "" {
		opts.Fallback = model.FallbackCategory
	}

	return &Orchestrator{
		categorizer:    categorizer,
		logger:         opts.Logger,
		onProgress:     opts.OnProgress,
		onResult:       opts.OnResult,
		fallback:       opts.Fallback,
		contextWindow:  opts.ContextWindow,
		maxConcurrency: int64(opts.MaxConcurrency),
	}
}

// MaxConcurrency returns the admission limit.
func (o *Orchestrator) MaxConcurrency() int {
	return int(o.maxConcurrency)
}

// Categorize assigns a category and comment to every expense in txns, in
// place. Non-expense transactions are left untouched. It returns once every
// expense is resolved; a canceled context resolves the remaining expenses
// to the fallback category.
func (o *Orchestrator) Categorize(
	ctx context.Context,
	txns []model.Transaction,
	matches []model.Match,
	notes NoteLookup,
	categories []string,
	hints string,
) Summary {
	start := time.Now()
	bound := model.IndexMatches(matches)

	pending := make([]int, 0, len(txns))
	for i := range txns {
		if txns[i].IsExpense() {
			pending = append(pending, i)
		}
	}

	summary := Summary{Total: len(pending)}
	if len(pending) == 0 {
		return summary
	}

	requests := make(map[int]llm.Request, len(pending))
	for _, i := range pending {
		requests[i] = llm.Request{
			Transaction: txns[i],
			NearbyNotes: o.nearbyNotes(ctx, txns[i], bound, notes),
			Categories:  categories,
			UserHints:   hints,
		}
	}

	o.logger.Info("starting categorization",
		"transactions", len(pending),
		"max_concurrency", o.maxConcurrency)

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		done int
	)

	resolve := func(i int, result llm.Result) {
		mu.Lock()
		defer mu.Unlock()

		txns[i].Category = result.Category
		txns[i].Comment = result.Comment
		if result.Degraded {
			summary.Degraded++
		}
		done++
		if o.onResult != nil {
			o.onResult(txns[i], result)
		}
		if o.onProgress != nil {
			o.onProgress(done, len(pending))
		}
	}

	sem := semaphore.NewWeighted(o.maxConcurrency)
	for _, i := range pending {
		if err := sem.Acquire(ctx, 1); err != nil {
			resolve(i, llm.Result{
				Category: o.fallback,
				Comment:  "Категоризация прервана",
				Degraded: true,
			})
			continue
		}

		wg.Add(1)
		go func(i int, req llm.Request) {
			defer wg.Done()
			defer sem.Release(1)
			resolve(i, o.categorizer.Categorize(ctx, req))
		}(i, requests[i])
	}
	wg.Wait()

	summary.Duration = time.Since(start)
	o.logger.Info("categorization complete",
		"transactions", summary.Total,
		"degraded", summary.Degraded,
		"duration", summary.Duration)

	return summary
}

// nearbyNotes returns the notes within the context window of txn, plus the
// bound note when it falls outside. Lookup errors yield an empty context.
func (o *Orchestrator) nearbyNotes(ctx context.Context, txn model.Transaction, bound model.MatchIndex, notes NoteLookup) []model.Note {
	if notes == nil {
		return nil
	}

	nearby, err := notes.NotesBetween(ctx, txn.Date.Add(-o.contextWindow), txn.Date.Add(o.contextWindow))
	if err != nil {
		o.logger.Warn("failed to load nearby notes",
			"transaction_id", txn.ID,
			"error", err)
		nearby = nil
	}

	noteID, ok := bound.NoteFor(txn.ID)
	if !ok {
		return nearby
	}
	for _, n := range nearby {
		if n.ID == noteID {
			return nearby
		}
	}

	getter, ok := notes.(NoteGetter)
	if !ok {
		return nearby
	}
	note, err := getter.GetNote(ctx, noteID)
	if err != nil {
		o.logger.Warn("failed to load bound note",
			"transaction_id", txn.ID,
			"note_id", noteID,
			"error", err)
		return nearby
	}
	return append(nearby, note)
}
