package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spendmatch/internal/llm"
	"github.com/Veraticus/spendmatch/internal/model"
	"github.com/Veraticus/spendmatch/internal/reconcile"
	"github.com/Veraticus/spendmatch/internal/report"
	"github.com/Veraticus/spendmatch/internal/statement"
	"github.com/Veraticus/spendmatch/internal/testutil"
)

func TestOrchestrator_SQLiteNoteContext(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)

	txn := testutil.Expense("txn-gift", testDay, "-2500", "OZON")
	testutil.SeedTransactions(t, store, txn)
	testutil.SeedNotes(t, store,
		model.Note{ID: "note-near", Text: "заказ на озоне", Timestamp: testDay.Add(-30 * time.Minute)},
		model.Note{ID: "note-bound", Text: "подарок маме", Timestamp: testDay.Add(-5 * time.Hour)},
		model.Note{ID: "note-far", Text: "бензин", Timestamp: testDay.Add(-72 * time.Hour)},
	)
	matches := []model.Match{{TransactionID: "txn-gift", NoteID: "note-bound"}}
	require.NoError(t, store.SaveMatches(ctx, matches))

	mock := NewMockCategorizer(map[string]string{"ozon": "Разное"})
	txns := []model.Transaction{txn}

	NewOrchestrator(mock, Options{Logger: discardLogger, ContextWindow: time.Hour}).
		Categorize(ctx, txns, matches, store, testCategories, "")

	require.Len(t, mock.Requests(), 1)
	var texts []string
	for _, n := range mock.Requests()[0].NearbyNotes {
		texts = append(texts, n.Text)
	}
	assert.ElementsMatch(t, []string{"заказ на озоне", "подарок маме"}, texts)
	assert.Equal(t, "Разное", txns[0].Category)

	require.NoError(t, store.UpdateCategorization(ctx, txns[0].ID, txns[0].Category, txns[0].Comment))
	remaining, err := store.GetUncategorizedExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestPipeline_SkipsNotesBoundEarlier(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)

	noteAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	owner := testutil.Expense("txn-owner", noteAt.Add(-5*time.Minute), "-350", "Кофейня")
	testutil.SeedTransactions(t, store, owner)
	testutil.SeedNotes(t, store,
		model.Note{ID: "note-owned", Text: "капучино", Timestamp: noteAt},
		model.Note{ID: "note-free", Text: "такси домой", Timestamp: noteAt.Add(8 * time.Hour)},
	)
	require.NoError(t, store.SaveMatches(ctx, []model.Match{{TransactionID: "txn-owner", NoteID: "note-owned"}}))

	stored, err := store.GetMatches(ctx)
	require.NoError(t, err)

	rows := [][]any{
		{"Дата", "Сумма", "Описание"},
		{"15.01.2024 10:31", "-200", "BAKERY"},
		{"15.01.2024 18:32", "-420", "YANDEX GO"},
	}
	client := &scriptedClient{answers: map[string]string{
		"BAKERY":    `{"category": "Продукты", "comment": "выпечка"}`,
		"YANDEX GO": `{"category": "Транспорт", "comment": "такси"}`,
	}}
	pipeline := &Pipeline{
		Parser:       statement.NewXLSXParser(discardLogger).WithLocation(time.UTC),
		Notes:        store,
		Reconciler:   reconcile.New(store, reconcile.DefaultWindow, discardLogger),
		Orchestrator: NewOrchestrator(llm.NewClassifier(client, llm.Config{}, discardLogger), Options{Logger: discardLogger}),
		Serializer:   report.NewCSVSerializer(),
		Logger:       discardLogger,
		Matched:      stored,
	}

	outcome, err := pipeline.Run(ctx, statementWorkbook(t, rows), testCategories, "")
	require.NoError(t, err)
	require.Len(t, outcome.Transactions, 2)

	bakery, taxi := outcome.Transactions[0], outcome.Transactions[1]
	assert.Equal(t, []model.Match{{TransactionID: taxi.ID, NoteID: "note-free"}}, outcome.Matches)
	assert.Equal(t, "BAKERY", bakery.Description)

	testutil.SeedTransactions(t, store, outcome.Transactions...)
	require.NoError(t, store.SaveMatches(ctx, outcome.Matches))
	all, err := store.GetMatches(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Match{
		{TransactionID: "txn-owner", NoteID: "note-owned"},
		{TransactionID: taxi.ID, NoteID: "note-free"},
	}, all)
}

func TestPipeline_RerunKeepsStoredBindings(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)
	testutil.SeedNotes(t, store,
		model.Note{ID: "note-coffee", Text: "латте", Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	)

	rows := [][]any{
		{"Дата", "Сумма", "Описание"},
		{"15.01.2024 10:30", "-350", "COFFEE POINT"},
	}
	client := &scriptedClient{answers: map[string]string{
		"COFFEE POINT": `{"category": "Кафе и рестораны", "comment": "{note}"}`,
	}}
	newPipeline := func(matched []model.Match) *Pipeline {
		return &Pipeline{
			Parser:       statement.NewXLSXParser(discardLogger).WithLocation(time.UTC),
			Notes:        store,
			Reconciler:   reconcile.New(store, reconcile.DefaultWindow, discardLogger),
			Orchestrator: NewOrchestrator(llm.NewClassifier(client, llm.Config{}, discardLogger), Options{Logger: discardLogger}),
			Serializer:   report.NewCSVSerializer(),
			Logger:       discardLogger,
			Matched:      matched,
		}
	}

	first, err := newPipeline(nil).Run(ctx, statementWorkbook(t, rows), testCategories, "")
	require.NoError(t, err)
	require.Len(t, first.Matches, 1)
	testutil.SeedTransactions(t, store, first.Transactions...)
	require.NoError(t, store.SaveMatches(ctx, first.Matches))

	stored, err := store.GetMatches(ctx)
	require.NoError(t, err)

	second, err := newPipeline(stored).Run(ctx, statementWorkbook(t, rows), testCategories, "")
	require.NoError(t, err)
	assert.Empty(t, second.Matches)
	require.Len(t, second.Transactions, 1)
	assert.Equal(t, first.Transactions[0].ID, second.Transactions[0].ID)
	assert.Equal(t, "латте", second.Transactions[0].Comment)
}
