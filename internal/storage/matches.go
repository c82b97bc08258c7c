package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/spendmatch/internal/model"
)

// SaveMatches records transaction/note bindings. A transaction or note
// that is already bound keeps its existing match.
func (s *SQLiteStorage) SaveMatches(ctx context.Context, matches []model.Match) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMatches(matches); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range matches {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO matches (transaction_id, note_id) VALUES (?, ?)`,
			m.TransactionID, m.NoteID); err != nil {
			return fmt.Errorf("failed to save match %s -> %s: %w", m.TransactionID, m.NoteID, err)
		}
	}

	return tx.Commit()
}

// GetMatches returns every stored match.
func (s *SQLiteStorage) GetMatches(ctx context.Context) ([]model.Match, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT transaction_id, note_id FROM matches ORDER BY matched_at, transaction_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.TransactionID, &m.NoteID); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}
