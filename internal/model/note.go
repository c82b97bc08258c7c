package model

import (
	"time"

	"github.com/google/uuid"
)

// Note is a free-text memo written by the user at the moment of spending.
type Note struct {
	Timestamp time.Time
	ID        string
	Text      string
}

// NewNote creates a note with a fresh identifier.
func NewNote(text string, at time.Time) Note {
	return Note{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: at,
	}
}

// Match binds a transaction to the note that describes it.
type Match struct {
	TransactionID string
	NoteID        string
}

// MatchIndex maps transaction IDs to matched note IDs.
type MatchIndex map[string]string

// IndexMatches builds a MatchIndex from a slice of matches.
func IndexMatches(matches []Match) MatchIndex {
	idx := make(MatchIndex, len(matches))
	for _, m := range matches {
		idx[m.TransactionID] = m.NoteID
	}
	return idx
}

// NoteFor returns the note matched to the transaction, if any.
func (m MatchIndex) NoteFor(transactionID string) (string, bool) {
	id, ok := m[transactionID]
	return id, ok
}

// MatchedNotes returns the set of note IDs present in the index.
func (m MatchIndex) MatchedNotes() map[string]bool {
	notes := make(map[string]bool, len(m))
	for _, noteID := range m {
		notes[noteID] = true
	}
	return notes
}
