package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_GenerateHash(t *testing.T) {
	base := Transaction{
		ID:          "TX001",
		Date:        time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("-350.5"),
		Currency:    "RUB",
		Description: "Кофейня",
	}

	same := base
	same.ID = "TX002"
	same.Amount = decimal.RequireFromString("-350.50")
	assert.Equal(t, base.GenerateHash(), same.GenerateHash(), "ID and trailing zeros do not affect the hash")

	tests := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{name: "amount", mutate: func(tx *Transaction) { tx.Amount = decimal.RequireFromString("-351") }},
		{name: "date", mutate: func(tx *Transaction) { tx.Date = tx.Date.Add(time.Minute) }},
		{name: "description", mutate: func(tx *Transaction) { tx.Description = "Кофе" }},
		{name: "currency", mutate: func(tx *Transaction) { tx.Currency = "USD" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := base
			tt.mutate(&changed)
			assert.NotEqual(t, base.GenerateHash(), changed.GenerateHash())
		})
	}
}

func TestExpenses(t *testing.T) {
	txns := []Transaction{
		{ID: "a", Amount: decimal.NewFromInt(-10)},
		{ID: "b", Amount: decimal.NewFromInt(500)},
		{ID: "c", Amount: decimal.Zero},
		{ID: "d", Amount: decimal.RequireFromString("-0.01")},
	}

	got := Expenses(txns)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "d", got[1].ID)
}

func TestTransaction_IsCategorized(t *testing.T) {
	assert.False(t, Transaction{}.IsCategorized())
	assert.True(t, Transaction{Category: FallbackCategory}.IsCategorized())
}

func TestMatchIndex(t *testing.T) {
	idx := IndexMatches([]Match{
		{TransactionID: "t1", NoteID: "n1"},
		{TransactionID: "t2", NoteID: "n2"},
	})

	noteID, ok := idx.NoteFor("t1")
	assert.True(t, ok)
	assert.Equal(t, "n1", noteID)

	_, ok = idx.NoteFor("t3")
	assert.False(t, ok)

	assert.Equal(t, map[string]bool{"n1": true, "n2": true}, idx.MatchedNotes())
}

func TestNewNote(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 25, 0, 0, time.UTC)
	a := NewNote("кофе с коллегой", at)
	b := NewNote("кофе с коллегой", at)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, at, a.Timestamp)
}

func TestCategoryNames(t *testing.T) {
	assert.Equal(t, []string{"Транспорт", "Дом"},
		CategoryNames([]Category{{Name: "Транспорт"}, {Name: "Дом"}}))
	assert.Contains(t, DefaultCategories, FallbackCategory)
}
