// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Defaults applied to transactions imported from bank statements.
const (
	DefaultCurrency    = "RUB"
	DefaultDescription = "Без описания"
)

// Transaction represents a single bank-recorded monetary movement.
// Category and Comment stay empty until the transaction is categorized.
type Transaction struct {
	Date        time.Time
	Amount      decimal.Decimal // Negative for expenses
	ID          string
	Hash        string
	Description string
	Currency    string
	Category    string
	Comment     string
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date.Format(time.RFC3339),
		t.Amount.StringFixed(2),
		t.Currency,
		t.Description)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// IsExpense reports whether the transaction takes money out of the account.
// Only expenses take part in reconciliation and categorization.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsCategorized reports whether a category has been assigned.
func (t Transaction) IsCategorized() bool {
	return t.Category != ""
}

// Expenses returns the expense transactions, preserving order.
func Expenses(transactions []Transaction) []Transaction {
	out := make([]Transaction, 0, len(transactions))
	for _, txn := range transactions {
		if txn.IsExpense() {
			out = append(out, txn)
		}
	}
	return out
}
