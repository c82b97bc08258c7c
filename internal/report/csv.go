// Package report renders categorized transactions.
package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"

	"github.com/Veraticus/spendmatch/internal/model"
)

// ErrEmptyReport is returned when there is nothing to report.
var ErrEmptyReport = errors.New("no transactions to report")

// DateFormat is the layout of the date column.
const DateFormat = "2006-01-02"

var (
	russianHeader = []string{"Дата", "Сумма", "Валюта", "Описание", "Категория", "Комментарий"}
	englishHeader = []string{"Date", "Amount", "Currency", "Description", "Category", "Comment"}
)

// CSVSerializer writes one row per transaction under a fixed header.
type CSVSerializer struct {
	header []string
}

// Option configures a CSVSerializer.
type Option func(*CSVSerializer)

// WithEnglishHeader switches the header row to English column names.
func WithEnglishHeader() Option {
	return func(s *CSVSerializer) {
		s.header = englishHeader
	}
}

// NewCSVSerializer creates a serializer with the Russian header by default.
func NewCSVSerializer(opts ...Option) *CSVSerializer {
	s := &CSVSerializer{header: russianHeader}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Header returns the header row.
func (s *CSVSerializer) Header() []string {
	out := make([]string, len(s.header))
	copy(out, s.header)
	return out
}

// Rows converts transactions into report rows, without the header.
func Rows(transactions []model.Transaction) [][]string {
	rows := make([][]string, 0, len(transactions))
	for _, txn := range transactions {
		rows = append(rows, []string{
			txn.Date.Format(DateFormat),
			txn.Amount.String(),
			txn.Currency,
			txn.Description,
			txn.Category,
			txn.Comment,
		})
	}
	return rows
}

// Serialize renders the transactions as UTF-8 CSV.
func (s *CSVSerializer) Serialize(transactions []model.Transaction) ([]byte, error) {
	if len(transactions) == 0 {
		return nil, ErrEmptyReport
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(s.header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(Rows(transactions)); err != nil {
		return nil, fmt.Errorf("failed to write rows: %w", err)
	}
	return buf.Bytes(), nil
}
