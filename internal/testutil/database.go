// Package testutil provides shared helpers for tests that need a real
// database.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendmatch/internal/model"
	"github.com/Veraticus/spendmatch/internal/storage"
)

// SetupTestDB creates a migrated in-memory database that is closed when
// the test finishes.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	store.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return store
}

// Expense builds an uncategorized expense with its identity filled in.
func Expense(id string, at time.Time, amount string, description string) model.Transaction {
	txn := model.Transaction{
		ID:          id,
		Date:        at,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Currency:    model.DefaultCurrency,
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

// SeedTransactions stores transactions or fails the test.
func SeedTransactions(t *testing.T, store *storage.SQLiteStorage, txns ...model.Transaction) {
	t.Helper()
	if _, err := store.SaveTransactions(context.Background(), txns); err != nil {
		t.Fatalf("failed to seed transactions: %v", err)
	}
}

// SeedNotes stores notes or fails the test.
func SeedNotes(t *testing.T, store *storage.SQLiteStorage, notes ...model.Note) {
	t.Helper()
	for _, note := range notes {
		if err := store.AddNote(context.Background(), note); err != nil {
			t.Fatalf("failed to seed note %q: %v", note.ID, err)
		}
	}
}
