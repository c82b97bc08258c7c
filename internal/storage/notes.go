package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spendmatch/internal/model"
)

// ErrNoteNotFound is returned when a note ID is unknown.
var ErrNoteNotFound = errors.New("note not found")

// AddNote stores a note.
func (s *SQLiteStorage) AddNote(ctx context.Context, note model.Note) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNote(note); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (id, text, timestamp) VALUES (?, ?, ?)`,
		note.ID, note.Text, toUnix(note.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	return nil
}

// GetNote returns the note with the given ID.
func (s *SQLiteStorage) GetNote(ctx context.Context, id string) (model.Note, error) {
	if err := validateContext(ctx); err != nil {
		return model.Note{}, err
	}
	if err := validateString(id, "id"); err != nil {
		return model.Note{}, err
	}

	var (
		note model.Note
		ts   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, text, timestamp FROM notes WHERE id = ?`, id).
		Scan(&note.ID, &note.Text, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Note{}, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	if err != nil {
		return model.Note{}, fmt.Errorf("failed to query note: %w", err)
	}
	note.Timestamp = fromUnix(ts)
	return note, nil
}

// GetNotes returns every note ordered by timestamp.
func (s *SQLiteStorage) GetNotes(ctx context.Context) ([]model.Note, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryNotes(ctx, `SELECT id, text, timestamp FROM notes ORDER BY timestamp, id`)
}

// NotesBetween returns notes whose timestamp lies in [start, end].
func (s *SQLiteStorage) NotesBetween(ctx context.Context, start, end time.Time) ([]model.Note, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}
	return s.queryNotes(ctx,
		`SELECT id, text, timestamp FROM notes
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp, id`,
		toUnix(start), toUnix(end))
}

func (s *SQLiteStorage) queryNotes(ctx context.Context, query string, args ...any) ([]model.Note, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var notes []model.Note
	for rows.Next() {
		var (
			note model.Note
			ts   int64
		)
		if err := rows.Scan(&note.ID, &note.Text, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		note.Timestamp = fromUnix(ts)
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}
	return notes, nil
}
