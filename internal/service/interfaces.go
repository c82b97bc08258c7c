// Package service defines the interfaces shared between the CLI and the
// persistence layer.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spendmatch/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// Zero values disable a filter.
type TransactionFilter struct {
	StartDate         *time.Time
	EndDate           *time.Time
	Category          string
	Limit             int
	ExpensesOnly      bool
	UncategorizedOnly bool
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetUncategorizedExpenses(ctx context.Context) ([]model.Transaction, error)
	UpdateCategorization(ctx context.Context, transactionID, category, comment string) error

	// Note operations
	AddNote(ctx context.Context, note model.Note) error
	GetNote(ctx context.Context, id string) (model.Note, error)
	GetNotes(ctx context.Context) ([]model.Note, error)
	NotesBetween(ctx context.Context, start, end time.Time) ([]model.Note, error)

	// Match operations
	SaveMatches(ctx context.Context, matches []model.Match) error
	GetMatches(ctx context.Context) ([]model.Match, error)

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*model.Category, error)
	DeleteCategory(ctx context.Context, name string) error

	// Settings
	GetHints(ctx context.Context) (string, error)
	SetHints(ctx context.Context, hints string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
