package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const hintsKey = "user_hints"

// GetHints returns the user's free-text categorization hints, or an empty
// string when none were set.
func (s *SQLiteStorage) GetHints(ctx context.Context) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	var hints string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, hintsKey).Scan(&hints)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read hints: %w", err)
	}
	return hints, nil
}

// SetHints replaces the user's categorization hints.
func (s *SQLiteStorage) SetHints(ctx context.Context, hints string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		hintsKey, hints)
	if err != nil {
		return fmt.Errorf("failed to save hints: %w", err)
	}
	return nil
}
